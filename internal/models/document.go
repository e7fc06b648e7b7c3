// internal/models/document.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Document struct {
	BaseModel
	ApplicationID uuid.UUID    `json:"application_id" gorm:"type:uuid;not null;index"`
	DocType       DocumentType `json:"doc_type" gorm:"type:varchar(30);not null"`
	FileName      string       `json:"file_name" gorm:"size:255;not null"`
	StorageKey    string       `json:"storage_key" gorm:"size:512;not null"`
	URL           string       `json:"url" gorm:"size:512"`
	SizeBytes     int64        `json:"size_bytes"`
	MimeType      string       `json:"mime_type" gorm:"size:100"`
	UploadedBy    uuid.UUID    `json:"uploaded_by" gorm:"type:uuid;not null"`

	Application Application `json:"-" gorm:"foreignKey:ApplicationID"`
}

// ServiceRequiredDocument maps an application type to the document kinds a
// submission must attach.
type ServiceRequiredDocument struct {
	BaseModel
	ApplicationType ApplicationType `json:"application_type" gorm:"uniqueIndex;type:varchar(20);not null"`
	DocumentTypes   pq.StringArray  `json:"document_types" gorm:"type:text[];not null"`
}

func (ServiceRequiredDocument) TableName() string {
	return "service_required_documents"
}
