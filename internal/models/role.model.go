package models

import "slices"

const (
	RoleUser     = "user"
	RoleHelper   = "helper"
	RoleBusiness = "business"
	RoleAdmin    = "admin"
)

var AllRoles = []string{RoleUser, RoleHelper, RoleBusiness, RoleAdmin}

// SelfRegistrableRoles are the roles a visitor may pick at sign up.
var SelfRegistrableRoles = []string{RoleUser, RoleHelper, RoleBusiness}

type Role struct {
	BaseModel
	Name string `gorm:"type:text;uniqueIndex;not null" json:"name"`
}

func IsValidRole(name string) bool {
	return slices.Contains(AllRoles, name)
}
