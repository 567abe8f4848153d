package testutil

import (
	"context"
	"sync"
	"time"

	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MemoryJobPosts is a map backed JobPostRepository. Reads return copies so
// controllers only observe changes written through Update.
type MemoryJobPosts struct {
	repositories.JobPostRepository
	mu    sync.Mutex
	Posts map[uuid.UUID]*models.JobPost
	Locks int
}

func NewMemoryJobPosts() *MemoryJobPosts {
	return &MemoryJobPosts{Posts: make(map[uuid.UUID]*models.JobPost)}
}

// Add stores a post owned by ownerID in the given status.
func (r *MemoryJobPosts) Add(ownerID uuid.UUID, status models.JobPostStatus) *models.JobPost {
	r.mu.Lock()
	defer r.mu.Unlock()

	post := &models.JobPost{
		UserID:        ownerID,
		ServiceTypeID: 1,
		WorkType:      models.WorkTypePartTime,
		City:          "Lahore",
		StartDate:     time.Now().AddDate(0, 0, 7),
		Status:        status,
	}
	post.ID = uuid.New()
	post.CreatedAt = time.Now()
	r.Posts[post.ID] = post
	return post
}

func (r *MemoryJobPosts) Create(ctx context.Context, tx *gorm.DB, post *models.JobPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = uuid.New()
	post.CreatedAt = time.Now()
	if post.Status == "" {
		post.Status = models.JobPostStatusPending
	}
	copied := *post
	r.Posts[post.ID] = &copied
	return nil
}

func (r *MemoryJobPosts) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.Posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *MemoryJobPosts) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.JobPost, error) {
	r.mu.Lock()
	r.Locks++
	r.mu.Unlock()
	return r.GetByID(ctx, tx, id)
}

func (r *MemoryJobPosts) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.Posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	for key, value := range updates {
		switch key {
		case "status":
			post.Status = value.(models.JobPostStatus)
		case "assigned_user_id":
			assigned := value.(uuid.UUID)
			post.AssignedUserID = &assigned
		case "cancelled_at":
			at := value.(time.Time)
			post.CancelledAt = &at
		case "completed_at":
			at := value.(time.Time)
			post.CompletedAt = &at
		case "admin_notes":
			notes := value.(string)
			post.AdminNotes = &notes
		case "service_type_id":
			post.ServiceTypeID = value.(int)
		case "work_type":
			post.WorkType = models.WorkType(value.(string))
		case "city":
			post.City = value.(string)
		case "start_date":
			post.StartDate = value.(time.Time)
		case "start_time":
			startTime := value.(string)
			post.StartTime = &startTime
		case "budget":
			budget := value.(decimal.Decimal)
			post.Budget = &budget
		case "area":
			post.Area = optionalString(value)
		case "address":
			post.Address = optionalString(value)
		case "description":
			post.Description = optionalString(value)
		case "special_requirements":
			post.SpecialRequirements = optionalString(value)
		}
	}
	return nil
}

func (r *MemoryJobPosts) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	page repositories.Page,
) ([]*models.JobPost, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []*models.JobPost
	for _, post := range r.Posts {
		if post.UserID == userID {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	return repositories.Slice(posts, page), int64(len(posts)), nil
}

func (r *MemoryJobPosts) ListStale(
	ctx context.Context,
	tx *gorm.DB,
	createdBefore, startBefore time.Time,
) ([]*models.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []*models.JobPost
	for _, post := range r.Posts {
		if post.Status == models.JobPostStatusPending &&
			post.CreatedAt.Before(createdBefore) &&
			post.StartDate.Before(startBefore) {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	return posts, nil
}

func optionalString(value any) *string {
	text, ok := value.(string)
	if !ok {
		return nil
	}
	return &text
}

// MemoryApplications is a map backed JobApplicationRepository.
type MemoryApplications struct {
	repositories.JobApplicationRepository
	mu           sync.Mutex
	Applications map[uuid.UUID]*models.JobApplication
	Posts        *MemoryJobPosts
}

func NewMemoryApplications(posts *MemoryJobPosts) *MemoryApplications {
	return &MemoryApplications{
		Applications: make(map[uuid.UUID]*models.JobApplication),
		Posts:        posts,
	}
}

// Add stores a pending application of applicantID to jobPostID.
func (r *MemoryApplications) Add(jobPostID, applicantID uuid.UUID) *models.JobApplication {
	r.mu.Lock()
	defer r.mu.Unlock()

	application := &models.JobApplication{
		JobPostID:   jobPostID,
		ApplicantID: applicantID,
		Status:      models.JobApplicationStatusPending,
	}
	application.ID = uuid.New()
	application.CreatedAt = time.Now()
	r.Applications[application.ID] = application
	return application
}

func (r *MemoryApplications) Create(ctx context.Context, tx *gorm.DB, application *models.JobApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.Applications {
		if existing.JobPostID == application.JobPostID && existing.ApplicantID == application.ApplicantID {
			return gorm.ErrDuplicatedKey
		}
	}

	application.ID = uuid.New()
	application.CreatedAt = time.Now()
	if application.Status == "" {
		application.Status = models.JobApplicationStatusPending
	}
	copied := *application
	r.Applications[application.ID] = &copied
	return nil
}

func (r *MemoryApplications) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.JobApplication, error) {
	r.mu.Lock()
	application, ok := r.Applications[id]
	if !ok {
		r.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	copied := *application
	r.mu.Unlock()

	if r.Posts != nil {
		if post, err := r.Posts.GetByID(ctx, tx, copied.JobPostID); err == nil {
			copied.JobPost = post
		}
	}
	return &copied, nil
}

func (r *MemoryApplications) Exists(ctx context.Context, tx *gorm.DB, jobPostID, applicantID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, application := range r.Applications {
		if application.JobPostID == jobPostID && application.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryApplications) ListByJobPost(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID uuid.UUID,
) ([]*models.JobApplication, error) {
	return r.filter(func(a *models.JobApplication) bool { return a.JobPostID == jobPostID }), nil
}

func (r *MemoryApplications) ListPendingByJobPost(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID uuid.UUID,
) ([]*models.JobApplication, error) {
	return r.filter(func(a *models.JobApplication) bool {
		return a.JobPostID == jobPostID && a.IsPending()
	}), nil
}

func (r *MemoryApplications) ListByApplicant(
	ctx context.Context,
	tx *gorm.DB,
	applicantID uuid.UUID,
	page repositories.Page,
) ([]*models.JobApplication, int64, error) {
	applications := r.filter(func(a *models.JobApplication) bool { return a.ApplicantID == applicantID })
	return repositories.Slice(applications, page), int64(len(applications)), nil
}

func (r *MemoryApplications) UpdateStatus(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	status models.JobApplicationStatus,
	at time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	application, ok := r.Applications[id]
	if !ok || application.Status != models.JobApplicationStatusPending {
		return repositories.ErrApplicationNotPending
	}
	application.Status = status
	application.RespondedAt = &at
	return nil
}

func (r *MemoryApplications) RejectPending(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID uuid.UUID,
	exceptID *uuid.UUID,
	at time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, application := range r.Applications {
		if application.JobPostID != jobPostID || !application.IsPending() {
			continue
		}
		if exceptID != nil && application.ID == *exceptID {
			continue
		}
		application.Status = models.JobApplicationStatusRejected
		application.RespondedAt = &at
	}
	return nil
}

// StatusOf returns the stored status of an application.
func (r *MemoryApplications) StatusOf(id uuid.UUID) models.JobApplicationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Applications[id].Status
}

func (r *MemoryApplications) filter(keep func(*models.JobApplication) bool) []*models.JobApplication {
	r.mu.Lock()
	defer r.mu.Unlock()

	var applications []*models.JobApplication
	for _, application := range r.Applications {
		if keep(application) {
			copied := *application
			applications = append(applications, &copied)
		}
	}
	return applications
}
