package seed

import (
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/services"
	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const demoPassword = "password123"

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

type demoUser struct {
	user    User
	role    string
	profile Profile
}

// Seed inserts demo accounts, listings and a job post for local development.
// Every demo account logs in with demoPassword.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("Seed")
	log.Info("Seeding development data")

	hash, err := services.HashPassword(demoPassword)
	if err != nil {
		return log.Err("failed to hash demo password", err)
	}

	roles, err := loadRoles(db)
	if err != nil {
		return log.Err("failed to load roles", err)
	}

	now := time.Now().UTC()
	demoUsers := []demoUser{
		{
			user: User{Name: "Ayesha Khan", Phone: "+923001234567"},
			role: RoleUser,
			profile: Profile{
				City:    stringPtr("Lahore"),
				Area:    stringPtr("Gulberg"),
				Address: stringPtr("House 12, Main Boulevard"),
			},
		},
		{
			user: User{Name: "Sana Bibi", Phone: "+923011234567"},
			role: RoleHelper,
			profile: Profile{
				Bio:             stringPtr("Experienced cook and housekeeper."),
				City:            stringPtr("Lahore"),
				Area:            stringPtr("Johar Town"),
				Age:             intPtr(32),
				Gender:          stringPtr("female"),
				ExperienceYears: intPtr(8),
				Languages:       pq.StringArray{"Urdu", "Punjabi"},
			},
		},
		{
			user: User{Name: "Karachi Home Services", Phone: "+923021234567"},
			role: RoleBusiness,
			profile: Profile{
				City:                 stringPtr("Karachi"),
				Area:                 stringPtr("Clifton"),
				BusinessName:         stringPtr("Karachi Home Services"),
				BusinessRegistration: stringPtr("KHS-2021-0042"),
			},
		},
	}

	created := make(map[string]*User, len(demoUsers))
	for _, demo := range demoUsers {
		user := demo.user
		user.PasswordHash = hash
		user.IsActive = true
		user.IsVerified = true
		user.PhoneVerifiedAt = &now
		user.Locale = config.DefaultLocale
		user.Roles = []Role{roles[demo.role]}
		if demo.role != RoleUser {
			user.OnboardingCompletedAt = &now
		}

		if err := db.Create(&user).Error; err != nil {
			return log.Err("failed to create demo user", err, "name", user.Name)
		}

		profile := demo.profile
		profile.OwnerID = user.ID
		profile.OwnerType = ProfileOwnerUsers
		if err := db.Create(&profile).Error; err != nil {
			return log.Err("failed to create demo profile", err, "name", user.Name)
		}

		log.Info("Seeded user", "name", user.Name, "role", demo.role)
		created[demo.role] = &user
	}

	if err := seedListings(db, created, log); err != nil {
		return err
	}

	return seedJobPost(db, created[RoleUser], now, log)
}

func loadRoles(db *gorm.DB) (map[string]Role, error) {
	var roles []Role
	if err := db.Find(&roles).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]Role, len(roles))
	for _, role := range roles {
		byName[role.Name] = role
	}
	return byName, nil
}

func seedListings(db *gorm.DB, users map[string]*User, log logger.Logger) error {
	var serviceTypes []ServiceType
	if err := db.Where("slug IN ?", []string{"cook", "maid", "babysitter"}).Find(&serviceTypes).Error; err != nil {
		return log.Err("failed to load service types", err)
	}

	var locations []Location
	if err := db.Where("city = ?", "Lahore").Limit(3).Find(&locations).Error; err != nil {
		return log.Err("failed to load locations", err)
	}

	listings := []ServiceListing{
		{
			UserID:       users[RoleHelper].ID,
			WorkType:     WorkTypeFullTime,
			MonthlyRate:  decimal.NewFromInt(35000),
			Description:  stringPtr("Full time cooking and cleaning."),
			Status:       ServiceListingStatusActive,
			ServiceTypes: serviceTypes,
			Locations:    locations,
		},
		{
			UserID:       users[RoleBusiness].ID,
			WorkType:     WorkTypePartTime,
			MonthlyRate:  decimal.NewFromInt(20000),
			Description:  stringPtr("Vetted part time staff across Lahore."),
			Status:       ServiceListingStatusActive,
			ServiceTypes: serviceTypes,
			Locations:    locations,
		},
	}

	for _, listing := range listings {
		if err := db.Omit("User").Create(&listing).Error; err != nil {
			return log.Err("failed to create demo listing", err, "userID", listing.UserID)
		}
	}

	log.Info("Seeded service listings", "count", len(listings))
	return nil
}

func seedJobPost(db *gorm.DB, owner *User, now time.Time, log logger.Logger) error {
	var cook ServiceType
	if err := db.First(&cook, "slug = ?", "cook").Error; err != nil {
		return log.Err("failed to load cook service type", err)
	}

	budget := decimal.NewFromInt(30000)
	post := JobPost{
		UserID:        owner.ID,
		ServiceTypeID: cook.ID,
		WorkType:      WorkTypeFullTime,
		City:          "Lahore",
		Area:          stringPtr("Gulberg"),
		StartDate:     now.AddDate(0, 0, 7).Truncate(24 * time.Hour),
		StartTime:     stringPtr("09:00"),
		Budget:        &budget,
		Description:   stringPtr("Cook needed for a family of five."),
		Status:        JobPostStatusPending,
	}

	if err := db.Create(&post).Error; err != nil {
		return log.Err("failed to create demo job post", err)
	}

	log.Info("Seeded job post", "jobPostID", post.ID)
	return nil
}
