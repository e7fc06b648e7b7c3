// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// IDs are assigned in-process so the same models run against both the
// postgres deployment and the sqlite test backend.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	RoleCitizen          UserRole = "citizen"
	RoleAdmin            UserRole = "admin"
	RoleSuperAdmin       UserRole = "super_admin"
	RoleFinancialOfficer UserRole = "financial_officer"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type ApplicationType string

const (
	ApplicationTypeFisherman ApplicationType = "fisherman"
	ApplicationTypeBoat      ApplicationType = "boat"
	ApplicationTypeVehicle   ApplicationType = "vehicle"
	ApplicationTypeTrade     ApplicationType = "trade"
	ApplicationTypeEntry     ApplicationType = "entry"
	ApplicationTypeOther     ApplicationType = "other"
)

type ApplicationStatus string

const (
	StatusReceived               ApplicationStatus = "received"
	StatusUnderReview            ApplicationStatus = "under_review"
	StatusApprovedPaymentPending ApplicationStatus = "approved_payment_pending"
	StatusPaymentSubmitted       ApplicationStatus = "payment_submitted"
	StatusPaymentVerified        ApplicationStatus = "payment_verified"
	StatusReady                  ApplicationStatus = "ready"
	StatusCompleted              ApplicationStatus = "completed"
	StatusRejected               ApplicationStatus = "rejected"
	StatusCancelled              ApplicationStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave this status.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

type DocumentType string

const (
	DocumentNationalIDCopy   DocumentType = "national_id_copy"
	DocumentPersonalPhoto    DocumentType = "personal_photo"
	DocumentBoatRegistration DocumentType = "boat_registration"
	DocumentVehicleLicense   DocumentType = "vehicle_license_copy"
	DocumentCommercialRecord DocumentType = "commercial_record"
	DocumentFishingCard      DocumentType = "fishing_card"
	DocumentPaymentReceipt   DocumentType = "payment_receipt"
	DocumentOther            DocumentType = "other"
)

type NotificationType string

const (
	NotificationStatusChange    NotificationType = "status_change"
	NotificationPaymentRequired NotificationType = "payment_required"
	NotificationPaymentResult   NotificationType = "payment_result"
	NotificationGeneral         NotificationType = "general"
)
