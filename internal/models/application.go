// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	BaseModel
	ApplicationNumber string            `json:"application_number" gorm:"uniqueIndex;size:20;not null"`
	ApplicationType   ApplicationType   `json:"application_type" gorm:"type:varchar(20);not null;index"`
	LicenseCategory   string            `json:"license_category" gorm:"size:100;not null"`
	DurationMonths    int               `json:"duration_months" gorm:"not null"`
	BoatType          string            `json:"boat_type,omitempty" gorm:"size:50"`
	IsRenewal         bool              `json:"is_renewal" gorm:"default:false"`
	Status            ApplicationStatus `json:"status" gorm:"type:varchar(30);default:'received';index"`
	StatusID          *uuid.UUID        `json:"status_id" gorm:"type:uuid"` // advisory display lookup
	Data              JSONB             `json:"data" gorm:"type:jsonb"`

	// Financial
	PaymentAmount        *float64   `json:"payment_amount" gorm:"type:decimal(12,2)"`
	PaymentReference     string     `json:"payment_reference,omitempty" gorm:"size:64;index"`
	PaymentReceiptPath   string     `json:"payment_receipt_path,omitempty" gorm:"size:512"`
	GatewayOrderID       string     `json:"gateway_order_id,omitempty" gorm:"size:64"`
	GatewayTransactionID string     `json:"gateway_transaction_id,omitempty" gorm:"size:64"`
	VerifiedBy           *uuid.UUID `json:"verified_by" gorm:"type:uuid"`
	VerifiedAt           *time.Time `json:"verified_at"`

	// Workflow actors
	UserID          uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by" gorm:"type:uuid"`
	ApprovedBy      *uuid.UUID `json:"approved_by" gorm:"type:uuid"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`

	// Relationships
	User      User                       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Reviewer  *User                      `json:"reviewer,omitempty" gorm:"foreignKey:ReviewedBy"`
	Approver  *User                      `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
	Verifier  *User                      `json:"verifier,omitempty" gorm:"foreignKey:VerifiedBy"`
	Documents []Document                 `json:"documents,omitempty" gorm:"foreignKey:ApplicationID"`
	History   []ApplicationStatusHistory `json:"history,omitempty" gorm:"foreignKey:ApplicationID"`
}

// ApplicationCounter backs the human-facing application number sequence.
// One row per calendar year; bumped inside the submission transaction.
type ApplicationCounter struct {
	Year    int `json:"year" gorm:"primaryKey;autoIncrement:false"`
	LastSeq int `json:"last_seq" gorm:"not null;default:0"`
}

func (ApplicationCounter) TableName() string {
	return "application_counters"
}
