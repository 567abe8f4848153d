package initialize

import (
	"errors"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/services"
	"kamwaalay/internal/utils"
	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeRoles(db, log); err != nil {
		return log.Err("failed to initialize roles", err)
	}

	if err := initializeServiceTypes(db, log); err != nil {
		return log.Err("failed to initialize service types", err)
	}

	if err := initializeLocations(db, log); err != nil {
		return log.Err("failed to initialize locations", err)
	}

	if err := initializeAdmin(db, config, log); err != nil {
		return log.Err("failed to initialize admin", err)
	}

	log.Info("Table initialization complete")
	return nil
}

func initializeRoles(db *gorm.DB, log logger.Logger) error {
	for _, name := range AllRoles {
		role := Role{Name: name}
		if err := db.Where(Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return log.Err("failed to create role", err, "role", name)
		}
	}

	log.Info("Roles initialized", "count", len(AllRoles))
	return nil
}

func initializeServiceTypes(db *gorm.DB, log logger.Logger) error {
	serviceTypes := getServiceTypesData()

	for _, serviceType := range serviceTypes {
		var existing ServiceType
		if err := db.First(&existing, "slug = ?", serviceType.Slug).Error; err == nil {
			log.Debug("Service type already exists", "slug", serviceType.Slug)
			continue
		}
		if err := db.Create(&serviceType).Error; err != nil {
			return log.Err("failed to create service type", err, "slug", serviceType.Slug)
		}
	}

	log.Info("Service types initialized", "count", len(serviceTypes))
	return nil
}

func initializeLocations(db *gorm.DB, log logger.Logger) error {
	locations := getLocationsData()

	for _, location := range locations {
		var existing Location
		if err := db.First(&existing, "city = ? AND area = ?", location.City, location.Area).Error; err == nil {
			continue
		}
		if err := db.Create(&location).Error; err != nil {
			return log.Err("failed to create location", err, "city", location.City, "area", location.Area)
		}
	}

	log.Info("Locations initialized", "count", len(locations))
	return nil
}

// initializeAdmin creates the bootstrap admin from ADMIN_PHONE and
// ADMIN_PASSWORD. Nothing happens when either is unset.
func initializeAdmin(db *gorm.DB, config config.Config, log logger.Logger) error {
	if config.AdminPhone == "" || config.AdminPassword == "" {
		log.Info("Admin credentials not configured, skipping admin bootstrap")
		return nil
	}

	phone, ok := utils.NormalizePhone(config.AdminPhone)
	if !ok {
		return log.Error("invalid admin phone", "phone", utils.MaskPhone(config.AdminPhone))
	}

	var existing User
	err := db.First(&existing, "phone = ?", phone).Error
	if err == nil {
		log.Debug("Admin already exists", "phone", utils.MaskPhone(phone))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return log.Err("failed to look up admin", err)
	}

	var role Role
	if err := db.First(&role, "name = ?", RoleAdmin).Error; err != nil {
		return log.Err("failed to load admin role", err)
	}

	hash, err := services.HashPassword(config.AdminPassword)
	if err != nil {
		return log.Err("failed to hash admin password", err)
	}

	now := time.Now().UTC()
	admin := User{
		Name:            config.AdminName,
		Phone:           phone,
		PasswordHash:    hash,
		IsActive:        true,
		IsVerified:      true,
		PhoneVerifiedAt: &now,
		Locale:          config.DefaultLocale,
		Roles:           []Role{role},
	}
	if err := db.Create(&admin).Error; err != nil {
		return log.Err("failed to create admin", err)
	}

	log.Info("Admin created", "phone", utils.MaskPhone(phone))
	return nil
}

func getServiceTypesData() []ServiceType {
	return []ServiceType{
		{Slug: "maid", Name: "Maid", Icon: "broom", SortOrder: 1, IsActive: true},
		{Slug: "cook", Name: "Cook", Icon: "chef-hat", SortOrder: 2, IsActive: true},
		{Slug: "babysitter", Name: "Babysitter", Icon: "baby", SortOrder: 3, IsActive: true},
		{Slug: "elderly_care", Name: "Elderly Care", Icon: "heart-handshake", SortOrder: 4, IsActive: true},
		{Slug: "driver", Name: "Driver", Icon: "car", SortOrder: 5, IsActive: true},
		{Slug: "gardener", Name: "Gardener", Icon: "sprout", SortOrder: 6, IsActive: true},
		{Slug: "security_guard", Name: "Security Guard", Icon: "shield", SortOrder: 7, IsActive: true},
		{Slug: "cleaner", Name: "Cleaner", Icon: "sparkles", SortOrder: 8, IsActive: true},
	}
}

func getLocationsData() []Location {
	areas := map[string][]string{
		"Karachi":    {"Clifton", "DHA", "Gulshan-e-Iqbal", "North Nazimabad", "PECHS"},
		"Lahore":     {"DHA", "Gulberg", "Johar Town", "Model Town", "Bahria Town"},
		"Islamabad":  {"F-6", "F-7", "F-10", "G-9", "E-11"},
		"Rawalpindi": {"Bahria Town", "Saddar", "Satellite Town"},
		"Faisalabad": {"Madina Town", "Peoples Colony"},
	}

	cities := []string{"Karachi", "Lahore", "Islamabad", "Rawalpindi", "Faisalabad"}

	var locations []Location
	for _, city := range cities {
		for _, area := range areas[city] {
			locations = append(locations, Location{City: city, Area: area, IsActive: true})
		}
	}
	return locations
}
