package repositories

import (
	"kamwaalay/internal/database"
)

type Repository struct {
	User           UserRepository
	Role           RoleRepository
	Profile        ProfileRepository
	Document       DocumentRepository
	Catalog        CatalogRepository
	ServiceListing ServiceListingRepository
	JobPost        JobPostRepository
	JobApplication JobApplicationRepository
	Review         ReviewRepository
	Conversation   ConversationRepository
	Notification   NotificationRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:           NewUserRepository(),
		Role:           NewRoleRepository(),
		Profile:        NewProfileRepository(),
		Document:       NewDocumentRepository(),
		Catalog:        NewCatalogRepository(db.Cache.General),
		ServiceListing: NewServiceListingRepository(),
		JobPost:        NewJobPostRepository(),
		JobApplication: NewJobApplicationRepository(),
		Review:         NewReviewRepository(),
		Conversation:   NewConversationRepository(),
		Notification:   NewNotificationRepository(),
	}
}
