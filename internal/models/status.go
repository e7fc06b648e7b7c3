// internal/models/status.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ApplicationStatusRef carries display metadata for a status. The
// allowed-next list is advisory (rendered as hints in staff views); the
// transition rules enforced in code live in the lifecycle engine.
type ApplicationStatusRef struct {
	BaseModel
	Code        ApplicationStatus `json:"code" gorm:"uniqueIndex;type:varchar(30);not null"`
	NameEn      string            `json:"name_en" gorm:"size:100;not null"`
	NameAr      string            `json:"name_ar" gorm:"size:100;not null"`
	Color       string            `json:"color" gorm:"size:20"`
	Icon        string            `json:"icon" gorm:"size:50"`
	AllowedNext pq.StringArray    `json:"allowed_next" gorm:"type:text[]"`
	SortOrder   int               `json:"sort_order" gorm:"default:0"`
}

func (ApplicationStatusRef) TableName() string {
	return "application_statuses"
}

// ApplicationStatusHistory is the append-only audit trail: exactly one row
// per transition, never updated.
type ApplicationStatusHistory struct {
	BaseModel
	ApplicationID uuid.UUID         `json:"application_id" gorm:"type:uuid;not null;index"`
	OldStatus     ApplicationStatus `json:"old_status" gorm:"type:varchar(30);not null"`
	NewStatus     ApplicationStatus `json:"new_status" gorm:"type:varchar(30);not null"`
	ActorID       *uuid.UUID        `json:"actor_id" gorm:"type:uuid"`
	Note          string            `json:"note,omitempty" gorm:"type:text"`

	Application Application `json:"-" gorm:"foreignKey:ApplicationID"`
	Actor       *User       `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
}

func (ApplicationStatusHistory) TableName() string {
	return "application_status_history"
}
