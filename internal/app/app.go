package app

import (
	"context"

	"kamwaalay/config"
	"kamwaalay/internal/controllers"
	"kamwaalay/internal/database"
	"kamwaalay/internal/events"
	"kamwaalay/internal/handlers/middleware"
	"kamwaalay/internal/jobs"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/storage"
	"kamwaalay/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Config      config.Config
	EventBus    *events.EventBus
	Storage     *storage.Local
	Repos       repositories.Repository
	Services    services.Service
	Controllers controllers.Controllers
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	if config.IsDevelopment() {
		if err := db.MigrateModels(); err != nil {
			return &App{}, log.Err("failed to migrate models", err)
		}
	}

	eventBus := events.New(db.Cache.Events)

	store, err := storage.NewLocal(config.StoragePath, config.StorageBaseURL, config.MaxUploadMB)
	if err != nil {
		return &App{}, log.Err("failed to create storage", err)
	}

	repos := repositories.New(db)

	services, err := services.New(db, config, eventBus, repos, store)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	websocket, err := websockets.New(db, eventBus, services.Token, repos.User)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	if config.SchedulerEnabled {
		if err := jobs.RegisterAllJobs(config, db, services, repos); err != nil {
			return &App{}, log.Err("failed to register jobs", err)
		}
		if err := services.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:    db,
		Config:      config,
		EventBus:    eventBus,
		Storage:     store,
		Repos:       repos,
		Services:    services,
		Controllers: controllers.New(services, repos, config, db),
		Middleware:  middleware.New(db, services, config, repos),
		Websocket:   websocket,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.EventBus,
		a.Storage,
		a.Websocket,
		a.Services.Transaction,
		a.Services.Token,
		a.Services.OTP,
		a.Services.Notification,
		a.Services.Scheduler,
		a.Controllers.Auth,
		a.Controllers.JobPost,
		a.Controllers.JobApplication,
		a.Controllers.Admin,
		a.Repos.User,
		a.Repos.JobPost,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
