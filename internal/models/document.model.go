package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentType string

const (
	DocumentTypeCNIC                 DocumentType = "cnic"
	DocumentTypePoliceVerification   DocumentType = "police_verification"
	DocumentTypeReferenceLetter      DocumentType = "reference_letter"
	DocumentTypeBusinessRegistration DocumentType = "business_registration"
	DocumentTypeOther                DocumentType = "other"
)

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

var DocumentTypes = []DocumentType{
	DocumentTypeCNIC,
	DocumentTypePoliceVerification,
	DocumentTypeReferenceLetter,
	DocumentTypeBusinessRegistration,
	DocumentTypeOther,
}

type Document struct {
	BaseUUIDModel
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_documents_user_status" json:"userId"`
	Type         DocumentType   `gorm:"type:text;not null"                                 json:"type"`
	FilePath     string         `gorm:"type:text;not null"                                 json:"filePath"`
	OriginalName string         `gorm:"type:text"                                          json:"originalName"`
	MimeType     string         `gorm:"type:text"                                          json:"mimeType"`
	Size         int64          `gorm:"type:bigint"                                        json:"size"`
	Status       DocumentStatus `gorm:"type:text;not null;default:'pending';index:idx_documents_user_status" json:"status"`
	AdminNotes   *string        `gorm:"type:text"                                          json:"adminNotes,omitempty"`
	ReviewedBy   *uuid.UUID     `gorm:"type:uuid"                                          json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time     `gorm:"type:timestamp"                                     json:"reviewedAt,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.UserID == uuid.Nil || d.FilePath == "" {
		return gorm.ErrInvalidValue
	}
	if d.Status == "" {
		d.Status = DocumentStatusPending
	}
	return nil
}

func IsValidDocumentType(value string) bool {
	return slices.Contains(DocumentTypes, DocumentType(value))
}

// AllVerified reports whether there is at least one document and every
// document is verified.
func AllVerified(documents []Document) bool {
	if len(documents) == 0 {
		return false
	}
	for _, doc := range documents {
		if doc.Status != DocumentStatusVerified {
			return false
		}
	}
	return true
}
