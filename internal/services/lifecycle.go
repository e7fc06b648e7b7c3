// internal/services/lifecycle.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
)

// All status movement goes through applyTransition against this table. The
// allowed-next hints on application_statuses rows are display metadata only;
// this table is the authority.

type LifecycleEvent string

const (
	EventStartReview    LifecycleEvent = "start_review"
	EventApprove        LifecycleEvent = "approve"
	EventReject         LifecycleEvent = "reject"
	EventSubmitReceipt  LifecycleEvent = "submit_receipt"
	EventVerifyPayment  LifecycleEvent = "verify_payment"
	EventRejectPayment  LifecycleEvent = "reject_payment"
	EventMarkReady      LifecycleEvent = "mark_ready"
	EventComplete       LifecycleEvent = "complete"
	EventCancel         LifecycleEvent = "cancel"
	EventGatewayConfirm LifecycleEvent = "gateway_confirm"
)

type transitionRule struct {
	From []models.ApplicationStatus
	To   models.ApplicationStatus
}

var transitionTable = map[LifecycleEvent]transitionRule{
	EventStartReview: {
		From: []models.ApplicationStatus{models.StatusReceived},
		To:   models.StatusUnderReview,
	},
	EventApprove: {
		From: []models.ApplicationStatus{models.StatusUnderReview},
		To:   models.StatusApprovedPaymentPending,
	},
	EventReject: {
		From: []models.ApplicationStatus{
			models.StatusReceived,
			models.StatusUnderReview,
			models.StatusApprovedPaymentPending,
			models.StatusPaymentSubmitted,
		},
		To: models.StatusRejected,
	},
	EventSubmitReceipt: {
		From: []models.ApplicationStatus{models.StatusApprovedPaymentPending},
		To:   models.StatusPaymentSubmitted,
	},
	EventVerifyPayment: {
		From: []models.ApplicationStatus{models.StatusPaymentSubmitted},
		To:   models.StatusPaymentVerified,
	},
	EventRejectPayment: {
		From: []models.ApplicationStatus{models.StatusPaymentSubmitted},
		To:   models.StatusApprovedPaymentPending,
	},
	EventMarkReady: {
		From: []models.ApplicationStatus{models.StatusPaymentVerified},
		To:   models.StatusReady,
	},
	EventComplete: {
		From: []models.ApplicationStatus{models.StatusReady},
		To:   models.StatusCompleted,
	},
	EventCancel: {
		From: []models.ApplicationStatus{
			models.StatusReceived,
			models.StatusUnderReview,
			models.StatusApprovedPaymentPending,
			models.StatusPaymentSubmitted,
		},
		To: models.StatusCancelled,
	},
	// A verified gateway payment needs no pickup step; the license is issued
	// electronically on confirmation.
	EventGatewayConfirm: {
		From: []models.ApplicationStatus{models.StatusApprovedPaymentPending},
		To:   models.StatusCompleted,
	},
}

var ErrInvalidTransition = errors.New("invalid status transition")

// applyTransition moves an application along one edge of the table inside
// the caller's transaction. The status update is guarded on the expected
// predecessor, so a concurrent actor who got there first turns this call
// into ErrInvalidTransition instead of a double transition. Exactly one
// history row is written per successful call.
func applyTransition(tx *gorm.DB, app *models.Application, event LifecycleEvent, actorID *uuid.UUID, note string, extra map[string]interface{}) error {
	rule, ok := transitionTable[event]
	if !ok {
		return fmt.Errorf("unknown lifecycle event %q", event)
	}

	from := app.Status
	allowed := false
	for _, s := range rule.From {
		if s == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{"status": rule.To}
	for k, v := range extra {
		updates[k] = v
	}

	// Advisory display pointer; the string column stays the source of truth.
	var ref models.ApplicationStatusRef
	if err := tx.Select("id").Where("code = ?", rule.To).First(&ref).Error; err == nil {
		updates["status_id"] = ref.ID
	}

	result := tx.Model(&models.Application{}).
		Where("id = ? AND status = ?", app.ID, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race: someone else moved the application first.
		return ErrInvalidTransition
	}

	history := &models.ApplicationStatusHistory{
		ApplicationID: app.ID,
		OldStatus:     from,
		NewStatus:     rule.To,
		ActorID:       actorID,
		Note:          note,
	}
	if err := tx.Create(history).Error; err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}

	app.Status = rule.To
	return nil
}
