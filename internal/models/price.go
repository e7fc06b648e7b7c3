// internal/models/price.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LicensePrice is a versioned fee row. Rows are staff-curated and never
// mutated after an application has been stamped from them; price changes are
// new rows with a later effective window.
type LicensePrice struct {
	BaseModel
	ApplicationType ApplicationType `json:"application_type" gorm:"type:varchar(20);not null;index"`
	Category        string          `json:"category" gorm:"size:100;not null;index"`
	IsRenewal       bool            `json:"is_renewal" gorm:"default:false"`
	DurationMonths  int             `json:"duration_months" gorm:"not null"`
	BoatType        string          `json:"boat_type,omitempty" gorm:"size:50"` // empty matches any
	Amount          float64         `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency        string          `json:"currency" gorm:"size:3;default:'EGP'"`
	EffectiveFrom   time.Time       `json:"effective_from" gorm:"not null;index"`
	EffectiveTo     *time.Time      `json:"effective_to"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	CreatedBy       uuid.UUID       `json:"created_by" gorm:"type:uuid"`
}
