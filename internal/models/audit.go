// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ProcessedWebhook is the idempotency ledger for gateway callbacks: a
// transaction id is recorded exactly once, and re-delivery short-circuits
// before any state change.
type ProcessedWebhook struct {
	BaseModel
	GatewayTransactionID string     `json:"gateway_transaction_id" gorm:"uniqueIndex;size:64;not null"`
	ApplicationID        *uuid.UUID `json:"application_id" gorm:"type:uuid;index"`
	Success              bool       `json:"success"`
	Payload              JSONB      `json:"payload" gorm:"type:jsonb"`
}

func (ProcessedWebhook) TableName() string {
	return "processed_webhooks"
}
