package models

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobPostStatus string

const (
	JobPostStatusPending    JobPostStatus = "pending"
	JobPostStatusConfirmed  JobPostStatus = "confirmed"
	JobPostStatusInProgress JobPostStatus = "in_progress"
	JobPostStatusCompleted  JobPostStatus = "completed"
	JobPostStatusCancelled  JobPostStatus = "cancelled"
)

var JobPostStatuses = []JobPostStatus{
	JobPostStatusPending,
	JobPostStatusConfirmed,
	JobPostStatusInProgress,
	JobPostStatusCompleted,
	JobPostStatusCancelled,
}

var ErrInvalidStatusTransition = errors.New("invalid job post status transition")

var jobPostTransitions = map[JobPostStatus][]JobPostStatus{
	JobPostStatusPending:    {JobPostStatusConfirmed, JobPostStatusCancelled},
	JobPostStatusConfirmed:  {JobPostStatusInProgress, JobPostStatusCancelled},
	JobPostStatusInProgress: {JobPostStatusCompleted},
}

func IsValidJobPostStatus(value string) bool {
	return slices.Contains(JobPostStatuses, JobPostStatus(value))
}

func CanTransition(from, to JobPostStatus) bool {
	return slices.Contains(jobPostTransitions[from], to)
}

type JobPost struct {
	BaseUUIDModel
	UserID              uuid.UUID        `gorm:"type:uuid;not null;index"                 json:"userId"`
	ServiceTypeID       int              `gorm:"type:int;not null;index"                  json:"serviceTypeId"`
	WorkType            WorkType         `gorm:"type:text;not null"                       json:"workType"`
	City                string           `gorm:"type:text;not null;index"                 json:"city"`
	Area                *string          `gorm:"type:text"                                json:"area,omitempty"`
	Address             *string          `gorm:"type:text"                                json:"address,omitempty"`
	StartDate           time.Time        `gorm:"type:date;not null"                       json:"startDate"`
	StartTime           *string          `gorm:"type:text"                                json:"startTime,omitempty"`
	Budget              *decimal.Decimal `gorm:"type:decimal(12,2)"                       json:"budget,omitempty"`
	Description         *string          `gorm:"type:text"                                json:"description,omitempty"`
	SpecialRequirements *string          `gorm:"type:text"                                json:"specialRequirements,omitempty"`
	Status              JobPostStatus    `gorm:"type:text;not null;default:'pending';index" json:"status"`
	AssignedUserID      *uuid.UUID       `gorm:"type:uuid;index"                          json:"assignedUserId,omitempty"`
	AdminNotes          *string          `gorm:"type:text"                                json:"adminNotes,omitempty"`
	CancelledAt         *time.Time       `gorm:"type:timestamp"                           json:"cancelledAt,omitempty"`
	CompletedAt         *time.Time       `gorm:"type:timestamp"                           json:"completedAt,omitempty"`

	User         *User        `gorm:"foreignKey:UserID"         json:"user,omitempty"`
	AssignedUser *User        `gorm:"foreignKey:AssignedUserID" json:"assignedUser,omitempty"`
	ServiceType  *ServiceType `gorm:"foreignKey:ServiceTypeID"  json:"serviceType,omitempty"`
}

func (j *JobPost) BeforeCreate(tx *gorm.DB) error {
	if j.UserID == uuid.Nil || j.ServiceTypeID == 0 {
		return gorm.ErrInvalidValue
	}
	if j.Status == "" {
		j.Status = JobPostStatusPending
	}
	return nil
}

func (j *JobPost) IsOwnedBy(userID uuid.UUID) bool {
	return j.UserID == userID
}

func (j *JobPost) IsAssignedTo(userID uuid.UUID) bool {
	return j.AssignedUserID != nil && *j.AssignedUserID == userID
}

// TransitionTo moves the post to status, stamping the matching timestamp.
func (j *JobPost) TransitionTo(status JobPostStatus, at time.Time) error {
	if !CanTransition(j.Status, status) {
		return ErrInvalidStatusTransition
	}

	j.Status = status
	switch status {
	case JobPostStatusCancelled:
		j.CancelledAt = &at
	case JobPostStatusCompleted:
		j.CompletedAt = &at
	}
	return nil
}
