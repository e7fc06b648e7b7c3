// internal/services/application_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/database"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/i18n"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

type ApplicationService struct {
	db            *gorm.DB
	cfg           *config.Config
	pricing       *PricingService
	notifications *NotificationService
}

type SubmitApplicationRequest struct {
	ApplicationType models.ApplicationType `json:"application_type" validate:"required"`
	LicenseCategory string                 `json:"license_category" validate:"required"`
	DurationMonths  int                    `json:"duration_months" validate:"required,min=1,max=120"`
	BoatType        string                 `json:"boat_type,omitempty"`
	IsRenewal       bool                   `json:"is_renewal"`
	Data            models.JSONB           `json:"data" validate:"required"`
}

// DocumentInput describes an already-stored upload being attached to an
// application.
type DocumentInput struct {
	DocType  models.DocumentType
	FileName string
	Key      string
	URL      string
	Size     int64
	MimeType string
}

type ApplicationFilters struct {
	Status          models.ApplicationStatus
	ApplicationType models.ApplicationType
}

func NewApplicationService(db *gorm.DB, cfg *config.Config, pricing *PricingService, notifications *NotificationService) *ApplicationService {
	return &ApplicationService{
		db:            db,
		cfg:           cfg,
		pricing:       pricing,
		notifications: notifications,
	}
}

// Submit validates the request against the category whitelist, the typed
// payload for the application type, and the required-document list, then
// creates the application with its documents and a fresh BRD number in one
// transaction.
func (s *ApplicationService) Submit(userID uuid.UUID, req *SubmitApplicationRequest, docs []DocumentInput) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !models.IsValidCategory(req.ApplicationType, req.LicenseCategory) {
		return nil, errors.New("invalid license category")
	}

	if req.ApplicationType == models.ApplicationTypeBoat && req.BoatType == "" {
		return nil, errors.New("boat type is required for boat applications")
	}

	payload, err := models.DecodeApplicationData(req.ApplicationType, req.Data)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(payload); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.checkRequiredDocuments(req.ApplicationType, docs); err != nil {
		return nil, err
	}

	app := &models.Application{
		ApplicationType: req.ApplicationType,
		LicenseCategory: req.LicenseCategory,
		DurationMonths:  req.DurationMonths,
		BoatType:        req.BoatType,
		IsRenewal:       req.IsRenewal,
		Status:          models.StatusReceived,
		Data:            req.Data,
		UserID:          userID,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		number, err := s.nextApplicationNumber(tx)
		if err != nil {
			return err
		}
		app.ApplicationNumber = number

		var ref models.ApplicationStatusRef
		if err := tx.Select("id").Where("code = ?", models.StatusReceived).First(&ref).Error; err == nil {
			app.StatusID = &ref.ID
		}

		if err := tx.Create(app).Error; err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}

		for _, d := range docs {
			doc := &models.Document{
				ApplicationID: app.ID,
				DocType:       d.DocType,
				FileName:      d.FileName,
				StorageKey:    d.Key,
				URL:           d.URL,
				SizeBytes:     d.Size,
				MimeType:      d.MimeType,
				UploadedBy:    userID,
			}
			if err := tx.Create(doc).Error; err != nil {
				return fmt.Errorf("failed to attach document: %w", err)
			}
		}

		return s.notifications.Notify(tx, userID, &app.ID, models.NotificationGeneral,
			s.t(i18n.KeyApplicationCreated),
			fmt.Sprintf("%s: %s", s.t(i18n.KeyApplicationCreated), app.ApplicationNumber))
	})
	if err != nil {
		return nil, err
	}

	return app, nil
}

// nextApplicationNumber bumps the per-year counter inside the submission
// transaction. The unique index on application_number backstops any race the
// counter read misses.
func (s *ApplicationService) nextApplicationNumber(tx *gorm.DB) (string, error) {
	year := time.Now().UTC().Year()

	var counter models.ApplicationCounter
	err := tx.Where("year = ?", year).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.ApplicationCounter{Year: year, LastSeq: 0}
		if err := tx.Create(&counter).Error; err != nil {
			return "", fmt.Errorf("failed to create application counter: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to read application counter: %w", err)
	}

	counter.LastSeq++
	if err := tx.Model(&models.ApplicationCounter{}).
		Where("year = ?", year).
		Update("last_seq", counter.LastSeq).Error; err != nil {
		return "", fmt.Errorf("failed to bump application counter: %w", err)
	}

	return fmt.Sprintf("BRD-%d-%04d", year, counter.LastSeq), nil
}

func (s *ApplicationService) checkRequiredDocuments(appType models.ApplicationType, docs []DocumentInput) error {
	var required models.ServiceRequiredDocument
	err := s.db.Where("application_type = ?", appType).First(&required).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read required documents: %w", err)
	}

	provided := make(map[string]bool, len(docs))
	for _, d := range docs {
		provided[string(d.DocType)] = true
	}

	var missing []string
	for _, docType := range required.DocumentTypes {
		if !provided[docType] {
			missing = append(missing, docType)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required documents missing: %s", strings.Join(missing, ", "))
	}

	return nil
}

// AddDocument attaches a further document while the application is still in
// review, for when staff ask the applicant for missing papers.
func (s *ApplicationService) AddDocument(userID, appID uuid.UUID, input DocumentInput) (*models.Document, error) {
	app, err := s.ownedApplication(userID, appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusReceived && app.Status != models.StatusUnderReview {
		return nil, errors.New("documents can no longer be added to this application")
	}

	doc := &models.Document{
		ApplicationID: app.ID,
		DocType:       input.DocType,
		FileName:      input.FileName,
		StorageKey:    input.Key,
		URL:           input.URL,
		SizeBytes:     input.Size,
		MimeType:      input.MimeType,
		UploadedBy:    userID,
	}
	if err := s.db.Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}

	return doc, nil
}

// DeleteDocument removes an owner's upload. Allowed only while the
// application sits untouched in received; the returned row carries the
// storage key so the caller can drop the stored object.
func (s *ApplicationService) DeleteDocument(userID, appID, docID uuid.UUID) (*models.Document, error) {
	app, err := s.ownedApplication(userID, appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusReceived {
		return nil, errors.New("documents can no longer be removed from this application")
	}

	var doc models.Document
	err = s.db.Where("id = ? AND application_id = ?", docID, appID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	if err := s.db.Delete(&doc).Error; err != nil {
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}

	return &doc, nil
}

// GetDocument returns one document of an application the requester may see,
// under the same visibility rule as the application itself.
func (s *ApplicationService) GetDocument(appID, docID, requesterID uuid.UUID, isStaff bool) (*models.Document, error) {
	if _, err := s.GetByID(appID, requesterID, isStaff); err != nil {
		return nil, err
	}

	var doc models.Document
	err := s.db.Where("id = ? AND application_id = ?", docID, appID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return &doc, nil
}

func (s *ApplicationService) ownedApplication(userID, appID uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.db.First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("application not found")
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}
	if app.UserID != userID {
		return nil, errors.New("application not found")
	}
	return &app, nil
}

func (s *ApplicationService) GetByID(appID uuid.UUID, requesterID uuid.UUID, isStaff bool) (*models.Application, error) {
	var app models.Application
	err := s.db.Preload("Documents").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("History.Actor").
		Preload("User").
		First(&app, appID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("application not found")
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	// Citizens only see their own applications.
	if !isStaff && app.UserID != requesterID {
		return nil, errors.New("application not found")
	}

	return &app, nil
}

func (s *ApplicationService) ListForUser(userID uuid.UUID, params utils.PaginationParams, filters ApplicationFilters) (*utils.PaginationResult, error) {
	return s.list(s.db.Where("user_id = ?", userID), params, filters)
}

func (s *ApplicationService) ListAll(params utils.PaginationParams, filters ApplicationFilters) (*utils.PaginationResult, error) {
	return s.list(s.db.Preload("User"), params, filters)
}

func (s *ApplicationService) list(query *gorm.DB, params utils.PaginationParams, filters ApplicationFilters) (*utils.PaginationResult, error) {
	query = query.Model(&models.Application{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ApplicationType != "" {
		query = query.Where("application_type = ?", filters.ApplicationType)
	}
	if params.Search != "" {
		query = query.Where("application_number LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	var apps []models.Application
	query = utils.ApplySort(query, params, []string{"created_at", "updated_at", "status", "application_number"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}

	result := utils.CreatePaginationResult(apps, total, params)
	return &result, nil
}

func (s *ApplicationService) History(appID uuid.UUID, requesterID uuid.UUID, isStaff bool) ([]models.ApplicationStatusHistory, error) {
	if _, err := s.GetByID(appID, requesterID, isStaff); err != nil {
		return nil, err
	}

	var history []models.ApplicationStatusHistory
	err := s.db.Preload("Actor").
		Where("application_id = ?", appID).
		Order("created_at ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status history: %w", err)
	}

	return history, nil
}

// Cancel is the one transition a citizen may trigger directly. Allowed until
// payment has been submitted.
func (s *ApplicationService) Cancel(userID, appID uuid.UUID) (*models.Application, error) {
	return s.transition(appID, EventCancel, &userID, "", nil,
		models.NotificationStatusChange, i18n.KeyApplicationCancelled,
		func(app *models.Application) error {
			if app.UserID != userID {
				return errors.New("application not found")
			}
			return nil
		})
}

func (s *ApplicationService) StartReview(actorID, appID uuid.UUID) (*models.Application, error) {
	return s.transition(appID, EventStartReview, &actorID, "",
		map[string]interface{}{"reviewed_by": actorID},
		models.NotificationStatusChange, i18n.KeyApplicationReviewStarted, nil)
}

// Approve stamps the fee from the price table in effect now and issues the
// payment reference the applicant quotes on a bank receipt. An application
// whose (type, category, duration) has no active price cannot be approved
// and is left untouched.
func (s *ApplicationService) Approve(actorID, appID uuid.UUID) (*models.Application, error) {
	return s.transitionWithExtra(appID, EventApprove, &actorID, "",
		func(tx *gorm.DB, app *models.Application) (map[string]interface{}, error) {
			price, err := s.pricing.ResolveFee(tx, app, time.Now())
			if err != nil {
				return nil, err
			}

			ref, err := utils.GenerateRandomString(10)
			if err != nil {
				return nil, fmt.Errorf("failed to generate payment reference: %w", err)
			}

			return map[string]interface{}{
				"approved_by":       actorID,
				"payment_amount":    price.Amount,
				"payment_reference": "BRD-" + strings.ToUpper(ref),
			}, nil
		},
		models.NotificationPaymentRequired, i18n.KeyApplicationApproved, nil)
}

func (s *ApplicationService) Reject(actorID, appID uuid.UUID, reason string) (*models.Application, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.New("rejection reason is required")
	}
	return s.transition(appID, EventReject, &actorID, reason,
		map[string]interface{}{"rejection_reason": reason, "reviewed_by": actorID},
		models.NotificationStatusChange, i18n.KeyApplicationRejected, nil)
}

// SubmitReceipt attaches an uploaded bank receipt and moves the application
// into the financial officer's verification queue. The receipt document row
// commits in the same transaction as the status change.
func (s *ApplicationService) SubmitReceipt(userID, appID uuid.UUID, receipt *UploadResult) (*models.Application, error) {
	return s.transitionWithExtra(appID, EventSubmitReceipt, &userID, "",
		func(tx *gorm.DB, app *models.Application) (map[string]interface{}, error) {
			doc := &models.Document{
				ApplicationID: app.ID,
				DocType:       models.DocumentPaymentReceipt,
				FileName:      receipt.Key,
				StorageKey:    receipt.Key,
				URL:           receipt.URL,
				SizeBytes:     receipt.Size,
				MimeType:      receipt.MimeType,
				UploadedBy:    userID,
			}
			if err := tx.Create(doc).Error; err != nil {
				return nil, fmt.Errorf("failed to record receipt document: %w", err)
			}

			return map[string]interface{}{"payment_receipt_path": receipt.Key}, nil
		},
		models.NotificationStatusChange, i18n.KeyApplicationReceiptSubmitted,
		func(app *models.Application) error {
			if app.UserID != userID {
				return errors.New("application not found")
			}
			return nil
		})
}

func (s *ApplicationService) VerifyPayment(actorID, appID uuid.UUID, note string) (*models.Application, error) {
	now := time.Now()
	return s.transition(appID, EventVerifyPayment, &actorID, note,
		map[string]interface{}{"verified_by": actorID, "verified_at": &now},
		models.NotificationPaymentResult, i18n.KeyApplicationPaymentVerified, nil)
}

// RejectPayment bounces a receipt the financial officer could not match; the
// application returns to awaiting payment and the citizen may try again.
func (s *ApplicationService) RejectPayment(actorID, appID uuid.UUID, reason string) (*models.Application, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.New("rejection reason is required")
	}
	return s.transition(appID, EventRejectPayment, &actorID, reason,
		map[string]interface{}{"payment_receipt_path": ""},
		models.NotificationPaymentResult, i18n.KeyApplicationPaymentRejected, nil)
}

func (s *ApplicationService) MarkReady(actorID, appID uuid.UUID) (*models.Application, error) {
	return s.transition(appID, EventMarkReady, &actorID, "", nil,
		models.NotificationStatusChange, i18n.KeyApplicationReady, nil)
}

func (s *ApplicationService) Complete(actorID, appID uuid.UUID) (*models.Application, error) {
	return s.transition(appID, EventComplete, &actorID, "", nil,
		models.NotificationStatusChange, i18n.KeyApplicationCompleted, nil)
}

type guardFunc func(app *models.Application) error
type extraFunc func(tx *gorm.DB, app *models.Application) (map[string]interface{}, error)

func (s *ApplicationService) transition(appID uuid.UUID, event LifecycleEvent, actorID *uuid.UUID, note string, extra map[string]interface{}, ntype models.NotificationType, messageKey string, guard guardFunc) (*models.Application, error) {
	return s.transitionWithExtra(appID, event, actorID, note,
		func(tx *gorm.DB, app *models.Application) (map[string]interface{}, error) {
			return extra, nil
		}, ntype, messageKey, guard)
}

func (s *ApplicationService) transitionWithExtra(appID uuid.UUID, event LifecycleEvent, actorID *uuid.UUID, note string, buildExtra extraFunc, ntype models.NotificationType, messageKey string, guard guardFunc) (*models.Application, error) {
	var app models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&app, appID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("application not found")
			}
			return fmt.Errorf("failed to fetch application: %w", err)
		}

		if guard != nil {
			if err := guard(&app); err != nil {
				return err
			}
		}

		extra, err := buildExtra(tx, &app)
		if err != nil {
			return err
		}

		if err := applyTransition(tx, &app, event, actorID, note, extra); err != nil {
			return err
		}

		message := s.t(messageKey)
		if note != "" {
			message = fmt.Sprintf("%s: %s", message, note)
		}
		return s.notifications.Notify(tx, app.UserID, &app.ID, ntype,
			fmt.Sprintf("%s %s", app.ApplicationNumber, s.t(messageKey)), message)
	})
	if err != nil {
		return nil, err
	}

	// Reload so stamped fields written by the transition are visible to the
	// caller.
	if err := s.db.First(&app, appID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload application: %w", err)
	}

	go s.notifications.emailApplicant(app.UserID,
		fmt.Sprintf("%s %s", app.ApplicationNumber, s.t(messageKey)), s.t(messageKey))

	return &app, nil
}

func (s *ApplicationService) t(key string) string {
	return i18n.T(s.cfg.I18n.DefaultLocale, key)
}
