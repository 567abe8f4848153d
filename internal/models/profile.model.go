package models

import (
	"strings"

	"kamwaalay/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const ProfileOwnerUsers = "users"

type Profile struct {
	BaseUUIDModel
	OwnerID              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_profiles_owner" json:"ownerId"`
	OwnerType            string         `gorm:"type:text;not null;uniqueIndex:idx_profiles_owner" json:"ownerType"`
	Bio                  *string        `gorm:"type:text"                                         json:"bio,omitempty"`
	City                 *string        `gorm:"type:text;index"                                   json:"city,omitempty"`
	Area                 *string        `gorm:"type:text"                                         json:"area,omitempty"`
	Address              *string        `gorm:"type:text"                                         json:"address,omitempty"`
	Age                  *int           `gorm:"type:int"                                          json:"age,omitempty"`
	Gender               *string        `gorm:"type:text"                                         json:"gender,omitempty"`
	Religion             *string        `gorm:"type:text"                                         json:"religion,omitempty"`
	ExperienceYears      *int           `gorm:"type:int"                                          json:"experienceYears,omitempty"`
	Languages            pq.StringArray `gorm:"type:text[]"                                       json:"languages"`
	PhotoPath            *string        `gorm:"type:text"                                         json:"photoPath,omitempty"`
	BusinessName         *string        `gorm:"type:text"                                         json:"businessName,omitempty"`
	BusinessRegistration *string        `gorm:"type:text"                                         json:"businessRegistration,omitempty"`
}

func (p *Profile) IsEmpty() bool {
	return p.Bio == nil && p.City == nil && p.Area == nil && p.Address == nil &&
		p.Age == nil && p.Gender == nil && p.ExperienceYears == nil &&
		len(p.Languages) == 0 && p.BusinessName == nil
}

// ProfileFields is the editable part of a profile. Nil fields are left
// untouched and blank strings clear the stored value.
type ProfileFields struct {
	Bio                  *string  `json:"bio"                  validate:"omitempty,max=2000"`
	City                 *string  `json:"city"                 validate:"omitempty,max=100"`
	Area                 *string  `json:"area"                 validate:"omitempty,max=100"`
	Address              *string  `json:"address"              validate:"omitempty,max=500"`
	Age                  *int     `json:"age"                  validate:"omitempty,gte=18,lte=80"`
	Gender               *string  `json:"gender"               validate:"omitempty,oneof=male female other"`
	Religion             *string  `json:"religion"             validate:"omitempty,max=50"`
	ExperienceYears      *int     `json:"experienceYears"      validate:"omitempty,gte=0,lte=60"`
	Languages            []string `json:"languages"            validate:"omitempty,max=10,dive,min=1,max=50"`
	BusinessName         *string  `json:"businessName"         validate:"omitempty,max=255"`
	BusinessRegistration *string  `json:"businessRegistration" validate:"omitempty,max=100"`
}

func (p *Profile) Apply(fields ProfileFields) {
	setText(&p.Bio, fields.Bio)
	setText(&p.City, fields.City)
	setText(&p.Area, fields.Area)
	setText(&p.Address, fields.Address)
	setText(&p.Gender, fields.Gender)
	setText(&p.Religion, fields.Religion)
	setText(&p.BusinessName, fields.BusinessName)
	setText(&p.BusinessRegistration, fields.BusinessRegistration)

	if fields.Age != nil {
		p.Age = fields.Age
	}
	if fields.ExperienceYears != nil {
		p.ExperienceYears = fields.ExperienceYears
	}
	if fields.Languages != nil {
		languages := make(pq.StringArray, 0, len(fields.Languages))
		for _, language := range fields.Languages {
			languages = append(languages, strings.TrimSpace(language))
		}
		p.Languages = languages
	}
}

func setText(field **string, value *string) {
	if value == nil {
		return
	}
	cleaned := utils.CleanText(*value)
	if cleaned == "" {
		*field = nil
		return
	}
	*field = &cleaned
}
