package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobApplicationStatus string

const (
	JobApplicationStatusPending   JobApplicationStatus = "pending"
	JobApplicationStatusAccepted  JobApplicationStatus = "accepted"
	JobApplicationStatusRejected  JobApplicationStatus = "rejected"
	JobApplicationStatusWithdrawn JobApplicationStatus = "withdrawn"
)

type JobApplication struct {
	BaseUUIDModel
	JobPostID    uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_job_applications_post_applicant" json:"jobPostId"`
	ApplicantID  uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_job_applications_post_applicant;index" json:"applicantId"`
	Message      *string              `gorm:"type:text"                                                          json:"message,omitempty"`
	ProposedRate *decimal.Decimal     `gorm:"type:decimal(12,2)"                                                 json:"proposedRate,omitempty"`
	Status       JobApplicationStatus `gorm:"type:text;not null;default:'pending';index"                         json:"status"`
	RespondedAt  *time.Time           `gorm:"type:timestamp"                                                     json:"respondedAt,omitempty"`

	JobPost   *JobPost `gorm:"foreignKey:JobPostID"   json:"jobPost,omitempty"`
	Applicant *User    `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

func (a *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if a.JobPostID == uuid.Nil || a.ApplicantID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if a.Status == "" {
		a.Status = JobApplicationStatusPending
	}
	return nil
}

func (a *JobApplication) IsPending() bool {
	return a.Status == JobApplicationStatusPending
}
