package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	BaseUUIDModel
	Name                  string     `gorm:"type:text;not null"             json:"name"`
	Phone                 string     `gorm:"type:text;uniqueIndex;not null" json:"phone"`
	Email                 *string    `gorm:"type:text;uniqueIndex"          json:"email,omitempty"`
	PasswordHash          string     `gorm:"type:text;not null"             json:"-"`
	IsActive              bool       `gorm:"type:bool;default:true;not null" json:"isActive"`
	IsVerified            bool       `gorm:"type:bool;default:false;not null" json:"isVerified"`
	PhoneVerifiedAt       *time.Time `gorm:"type:timestamp"                 json:"phoneVerifiedAt,omitempty"`
	OnboardingCompletedAt *time.Time `gorm:"type:timestamp"                 json:"onboardingCompletedAt,omitempty"`
	Locale                string     `gorm:"type:text;default:'en';not null" json:"locale"`
	BusinessID            *uuid.UUID `gorm:"type:uuid;index"                json:"businessId,omitempty"`
	LastLoginAt           *time.Time `gorm:"type:timestamp"                 json:"lastLoginAt,omitempty"`

	Roles   []Role   `gorm:"many2many:user_roles;"  json:"roles,omitempty"`
	Profile *Profile `gorm:"polymorphic:Owner;"     json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Phone == "" {
		return gorm.ErrInvalidValue
	}
	if u.Locale == "" {
		u.Locale = "en"
	}
	return nil
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

func (u *User) HasRole(names ...string) bool {
	for _, role := range u.Roles {
		if slices.Contains(names, role.Name) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// IsProvider reports whether the user offers services (helper or business).
func (u *User) IsProvider() bool {
	return u.HasRole(RoleHelper, RoleBusiness)
}

func (u *User) IsPhoneVerified() bool {
	return u.PhoneVerifiedAt != nil
}

func (u *User) HasCompletedOnboarding() bool {
	return u.OnboardingCompletedAt != nil
}

// NeedsOnboarding is true for helpers and businesses that have not finished
// onboarding. Helpers created by a business are onboarded by that business.
func (u *User) NeedsOnboarding() bool {
	if !u.IsProvider() || u.BusinessID != nil {
		return false
	}
	return !u.HasCompletedOnboarding()
}

// UserSummary is the public view of another user.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	IsVerified bool      `json:"isVerified"`
	PhotoPath  *string   `json:"photoPath,omitempty"`
	City       *string   `json:"city,omitempty"`
}

func (u *User) ToSummary() UserSummary {
	summary := UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		IsVerified: u.IsVerified,
	}
	if u.Profile != nil {
		summary.PhotoPath = u.Profile.PhotoPath
		summary.City = u.Profile.City
	}
	return summary
}
