package models

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WorkType string

const (
	WorkTypeFullTime WorkType = "full_time"
	WorkTypePartTime WorkType = "part_time"
	WorkTypeLiveIn   WorkType = "live_in"
	WorkTypeOneTime  WorkType = "one_time"
)

var WorkTypes = []WorkType{WorkTypeFullTime, WorkTypePartTime, WorkTypeLiveIn, WorkTypeOneTime}

func IsValidWorkType(value string) bool {
	return slices.Contains(WorkTypes, WorkType(value))
}

type ServiceListingStatus string

const (
	ServiceListingStatusActive ServiceListingStatus = "active"
	ServiceListingStatusPaused ServiceListingStatus = "paused"
)

type ServiceListing struct {
	BaseUUIDModel
	UserID      uuid.UUID            `gorm:"type:uuid;not null;index"                json:"userId"`
	WorkType    WorkType             `gorm:"type:text;not null;index"                json:"workType"`
	MonthlyRate decimal.Decimal      `gorm:"type:decimal(12,2);not null"             json:"monthlyRate"`
	Description *string              `gorm:"type:text"                               json:"description,omitempty"`
	Status      ServiceListingStatus `gorm:"type:text;not null;default:'active';index" json:"status"`

	ServiceTypes []ServiceType `gorm:"many2many:service_listing_service_types;" json:"serviceTypes,omitempty"`
	Locations    []Location    `gorm:"many2many:service_listing_locations;"     json:"locations,omitempty"`
	User         *User         `gorm:"foreignKey:UserID"                        json:"user,omitempty"`
}

func (s *ServiceListing) BeforeCreate(tx *gorm.DB) error {
	if s.UserID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if s.Status == "" {
		s.Status = ServiceListingStatusActive
	}
	return nil
}

func (s *ServiceListing) IsOwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}
