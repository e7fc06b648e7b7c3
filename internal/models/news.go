// internal/models/news.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type News struct {
	BaseModel
	TitleAr     string     `json:"title_ar" gorm:"size:255;not null"`
	TitleEn     string     `json:"title_en" gorm:"size:255"`
	BodyAr      string     `json:"body_ar" gorm:"type:text;not null"`
	BodyEn      string     `json:"body_en" gorm:"type:text"`
	ImageURL    string     `json:"image_url,omitempty" gorm:"size:512"`
	IsPublished bool       `json:"is_published" gorm:"default:false;index"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedBy   uuid.UUID  `json:"created_by" gorm:"type:uuid"`

	Author User `json:"author,omitempty" gorm:"foreignKey:CreatedBy"`
}
