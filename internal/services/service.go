package services

import (
	"kamwaalay/config"
	"kamwaalay/internal/database"
	"kamwaalay/internal/events"
	"kamwaalay/internal/locales"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/storage"
)

type Service struct {
	Transaction   *TransactionService
	Token         *TokenService
	OTP           *OTPService
	OTPSender     OTPSender
	Notification  *NotificationService
	ProfileCache  ProfileCache
	Scheduler     *SchedulerService
	UploadCleanup *UploadCleanupService
	Storage       *storage.Local
	Locales       *locales.Catalog
	Events        events.Publisher
}

func New(
	db database.DB,
	config config.Config,
	eventBus *events.EventBus,
	repos repositories.Repository,
	store *storage.Local,
) (Service, error) {
	sessionStore := NewValkeyKeyStore(db.Cache.Session)

	catalog, err := locales.Default()
	if err != nil {
		return Service{}, err
	}

	return Service{
		Transaction:   NewTransactionService(db),
		Token:         NewTokenService(config, sessionStore),
		OTP:           NewOTPService(config, sessionStore),
		OTPSender:     NewOTPDeliveryService(config),
		Notification:  NewNotificationService(db.SQL, repos.Notification, eventBus),
		ProfileCache:  NewProfileCache(db.Cache.User),
		Scheduler:     NewSchedulerService(),
		UploadCleanup: NewUploadCleanupService(db.SQL, store, repos.Document, repos.Profile),
		Storage:       store,
		Locales:       catalog,
		Events:        eventBus,
	}, nil
}
