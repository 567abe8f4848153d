package controllers

import (
	"kamwaalay/config"
	"kamwaalay/internal/database"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"

	adminController "kamwaalay/internal/controllers/admin"
	authController "kamwaalay/internal/controllers/auth"
	catalogController "kamwaalay/internal/controllers/catalog"
	chatController "kamwaalay/internal/controllers/chat"
	documentController "kamwaalay/internal/controllers/document"
	jobApplicationController "kamwaalay/internal/controllers/jobApplication"
	jobPostController "kamwaalay/internal/controllers/jobPost"
	notificationController "kamwaalay/internal/controllers/notification"
	onboardingController "kamwaalay/internal/controllers/onboarding"
	profileController "kamwaalay/internal/controllers/profile"
	providerController "kamwaalay/internal/controllers/provider"
	reviewController "kamwaalay/internal/controllers/review"
	serviceListingController "kamwaalay/internal/controllers/serviceListing"
)

type Controllers struct {
	Auth           authController.AuthControllerInterface
	Profile        profileController.ProfileControllerInterface
	Document       documentController.DocumentControllerInterface
	Onboarding     onboardingController.OnboardingControllerInterface
	ServiceListing serviceListingController.ServiceListingControllerInterface
	Provider       providerController.ProviderControllerInterface
	Catalog        catalogController.CatalogControllerInterface
	JobPost        jobPostController.JobPostControllerInterface
	JobApplication jobApplicationController.JobApplicationControllerInterface
	Review         reviewController.ReviewControllerInterface
	Chat           chatController.ChatControllerInterface
	Notification   notificationController.NotificationControllerInterface
	Admin          adminController.AdminControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:           authController.New(repos, services, config, db),
		Profile:        profileController.New(repos, services, config, db),
		Document:       documentController.New(repos, services, config, db),
		Onboarding:     onboardingController.New(repos, services, config, db),
		ServiceListing: serviceListingController.New(repos, services, config, db),
		Provider:       providerController.New(repos, services, config, db),
		Catalog:        catalogController.New(repos, services, config, db),
		JobPost:        jobPostController.New(repos, services, config, db),
		JobApplication: jobApplicationController.New(repos, services, config, db),
		Review:         reviewController.New(repos, services, config, db),
		Chat:           chatController.New(repos, services, config, db),
		Notification:   notificationController.New(repos, services, config, db),
		Admin:          adminController.New(repos, services, config, db),
	}
}
