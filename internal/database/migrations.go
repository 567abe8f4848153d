package database

import (
	"kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// Models lists every table managed through GORM AutoMigrate, in dependency order.
func Models() []any {
	return []any{
		&models.Role{},
		&models.User{},
		&models.Profile{},
		&models.Document{},
		&models.ServiceType{},
		&models.Location{},
		&models.ServiceListing{},
		&models.JobPost{},
		&models.JobApplication{},
		&models.Review{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
	}
}

func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range Models() {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}
