package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	BaseUUIDModel
	JobPostID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"jobPostId"`
	ReviewerID uuid.UUID `gorm:"type:uuid;not null;index"       json:"reviewerId"`
	HelperID   uuid.UUID `gorm:"type:uuid;not null;index"       json:"helperId"`
	Rating     int       `gorm:"type:int;not null"              json:"rating"`
	Comment    *string   `gorm:"type:text"                      json:"comment,omitempty"`

	Reviewer *User    `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	JobPost  *JobPost `gorm:"foreignKey:JobPostID"  json:"jobPost,omitempty"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.JobPostID == uuid.Nil || r.HelperID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return gorm.ErrInvalidValue
	}
	return nil
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
