// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	UserID        uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	ApplicationID *uuid.UUID       `json:"application_id" gorm:"type:uuid;index"`
	Type          NotificationType `json:"type" gorm:"type:varchar(30);not null"`
	Title         string           `json:"title" gorm:"size:255;not null"`
	Message       string           `json:"message" gorm:"type:text;not null"`
	IsRead        bool             `json:"is_read" gorm:"default:false;index"`
	ReadAt        *time.Time       `json:"read_at"`

	User        User         `json:"-" gorm:"foreignKey:UserID"`
	Application *Application `json:"-" gorm:"foreignKey:ApplicationID"`
}
