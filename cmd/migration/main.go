package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"kamwaalay/cmd/migration/initialize"
	"kamwaalay/cmd/migration/seed"
	"kamwaalay/config"
	"kamwaalay/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

const (
	MIGRATION_PATH = "cmd/migration/migrations"
	MIGRATION_DB   = "postgres"
)

func main() {
	log := logger.New("migrations").Function("main")

	config, err := config.New()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(config)
	if err != nil {
		log.Er("failed to create database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	migrationType := "up"
	if len(os.Args) > 1 {
		migrationType = os.Args[1]
	}

	switch migrationType {
	case "up":
		err = migrateUp(db.SQL, config, log)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				log.Er("failed to parse step", fmt.Errorf("invalid step count %q", os.Args[2]))
				os.Exit(1)
			}
		}
		err = migrateDown(steps, config, log)
	case "seed":
		err = migrateSeed(db, config, log)
	default:
		err = fmt.Errorf("unknown command %q, expected up, down or seed", migrationType)
	}

	if err != nil {
		log.Er("failed to run migrations", err)
		os.Exit(1)
	}

	log.Info("Migrations complete")
}

// migrateUp creates the tables first since the file migrations only add
// indexes on top of them.
func migrateUp(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("migrateUp")
	log.Info("Running migrations up")

	if err := autoMigrate(db, log); err != nil {
		return log.Err("failed to auto migrate", err)
	}

	if err := runMigrations(config, log, migrate.Up, 0); err != nil {
		return log.Err("failed to run migrations", err)
	}

	if err := initialize.InitializeTables(db, config, log); err != nil {
		return log.Err("failed to initialize tables", err)
	}

	return nil
}

func migrateDown(steps int, config config.Config, log logger.Logger) error {
	log = log.Function("migrateDown")
	log.Info("Running migrations down", "steps", steps)

	if err := runMigrations(config, log, migrate.Down, steps); err != nil {
		return log.Err("failed to run migrations", err)
	}

	return nil
}

func migrateSeed(db database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("migrateSeed")
	log.Info("Running seed")

	if err := cleanDatabase(db.SQL, config, log); err != nil {
		return log.Err("failed to clean database", err)
	}

	if err := db.FlushAllCaches(); err != nil {
		return log.Err("failed to flush cache databases", err)
	}

	if err := migrateUp(db.SQL, config, log); err != nil {
		return log.Err("failed to migrate up", err)
	}

	log.Info("Seeding database")
	if err := seed.Seed(db.SQL, config, log); err != nil {
		return log.Err("failed to seed database", err)
	}

	return nil
}

func autoMigrate(db *gorm.DB, log logger.Logger) error {
	log = log.Function("autoMigrate")
	models := database.Models()

	// Phase 1: tables only, so creation order does not matter.
	log.Info("Phase 1: Creating tables without foreign key constraints")
	db.Config.DisableForeignKeyConstraintWhenMigrating = true
	for _, table := range models {
		if !db.Migrator().HasTable(table) {
			log.Info("Creating table structure", "table", fmt.Sprintf("%T", table))
			if err := db.Migrator().CreateTable(table); err != nil {
				return log.Err("failed to create table structure", err)
			}
		}
	}

	// Phase 2: constraints, join tables and indexes.
	db.Config.DisableForeignKeyConstraintWhenMigrating = false
	log.Info("Phase 2: Adding foreign key constraints and relationships")
	if err := db.AutoMigrate(models...); err != nil {
		return log.Err("failed to add constraints", err)
	}

	return nil
}

func runMigrations(
	config config.Config,
	log logger.Logger,
	direction migrate.MigrationDirection,
	max int,
) error {
	log = log.Function("runMigrations")

	files, err := filepath.Glob(filepath.Join(MIGRATION_PATH, "*.sql"))
	if err != nil {
		return log.Err("failed to check for migration files", err)
	}

	if len(files) == 0 {
		log.Info("No migration files found, skipping file-based migrations")
		return nil
	}

	db, err := sql.Open(MIGRATION_DB, database.DSN(config))
	if err != nil {
		return log.Err("failed to open database for migrations", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	migrations := &migrate.FileMigrationSource{Dir: MIGRATION_PATH}

	n, err := migrate.ExecMax(db, MIGRATION_DB, migrations, direction, max)
	if err != nil {
		return log.Err("failed to run migrations", err)
	}

	if n == 0 {
		log.Info("No migrations to apply")
	} else {
		log.Info("Applied migrations", "migrationCount", n)
	}

	return nil
}

func cleanDatabase(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("cleanDatabase")
	log.Info("Cleaning database before seeding")

	if config.Environment == "production" {
		return log.ErrMsg("refusing to drop tables in production")
	}

	tables := append(database.Models(), "user_roles", "service_listing_service_types", "service_listing_locations", "gorp_migrations")
	if err := db.Migrator().DropTable(tables...); err != nil {
		return log.Err("failed to drop tables", err)
	}

	log.Info("Database cleaned successfully")
	return nil
}
