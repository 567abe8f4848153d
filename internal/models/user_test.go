package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func rolesOf(names ...string) []Role {
	roles := make([]Role, 0, len(names))
	for i, name := range names {
		roles = append(roles, Role{BaseModel: BaseModel{ID: i + 1}, Name: name})
	}
	return roles
}

func TestUser_HasRole(t *testing.T) {
	user := &User{Roles: rolesOf(RoleHelper)}

	assert.True(t, user.HasRole(RoleHelper))
	assert.True(t, user.HasRole(RoleUser, RoleHelper))
	assert.False(t, user.HasRole(RoleAdmin))
	assert.False(t, user.IsAdmin())
	assert.True(t, user.IsProvider())
	assert.Equal(t, []string{RoleHelper}, user.RoleNames())
}

func TestUser_NeedsOnboarding(t *testing.T) {
	now := time.Now()
	businessID := uuid.New()

	tests := []struct {
		name     string
		user     User
		expected bool
	}{
		{
			name:     "Household user never onboards",
			user:     User{Roles: rolesOf(RoleUser)},
			expected: false,
		},
		{
			name:     "Helper without onboarding",
			user:     User{Roles: rolesOf(RoleHelper)},
			expected: true,
		},
		{
			name:     "Business without onboarding",
			user:     User{Roles: rolesOf(RoleBusiness)},
			expected: true,
		},
		{
			name:     "Helper with onboarding",
			user:     User{Roles: rolesOf(RoleHelper), OnboardingCompletedAt: &now},
			expected: false,
		},
		{
			name:     "Helper managed by a business",
			user:     User{Roles: rolesOf(RoleHelper), BusinessID: &businessID},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.NeedsOnboarding())
		})
	}
}

func TestUser_ToSummary(t *testing.T) {
	city := "Lahore"
	user := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Name:          "Amna",
		IsVerified:    true,
		Profile:       &Profile{City: &city},
	}

	summary := user.ToSummary()
	assert.Equal(t, user.ID, summary.ID)
	assert.Equal(t, "Amna", summary.Name)
	assert.True(t, summary.IsVerified)
	assert.Equal(t, &city, summary.City)
	assert.Nil(t, summary.PhotoPath)
}

func TestAllVerified(t *testing.T) {
	assert.False(t, AllVerified(nil))
	assert.True(t, AllVerified([]Document{{Status: DocumentStatusVerified}}))
	assert.False(t, AllVerified([]Document{
		{Status: DocumentStatusVerified},
		{Status: DocumentStatusPending},
	}))
	assert.False(t, AllVerified([]Document{{Status: DocumentStatusRejected}}))
}

func TestOrderedPair(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	first, second := OrderedPair(b, a)
	assert.Equal(t, a, first)
	assert.Equal(t, b, second)

	first, second = OrderedPair(a, b)
	assert.Equal(t, a, first)
	assert.Equal(t, b, second)

	conversation := Conversation{UserOneID: a, UserTwoID: b}
	assert.True(t, conversation.HasParticipant(a))
	assert.False(t, conversation.HasParticipant(uuid.New()))
	assert.Equal(t, b, conversation.OtherParticipant(a))
	assert.Equal(t, a, conversation.OtherParticipant(b))
}
