package repositories

import (
	"context"
	"errors"
	"time"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrApplicationNotPending is returned by UpdateStatus when the application
// was already answered.
var ErrApplicationNotPending = errors.New("job application is not pending")

type JobApplicationFilter struct {
	Status string
	Page   Page
}

type JobApplicationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, application *JobApplication) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*JobApplication, error)
	Exists(ctx context.Context, tx *gorm.DB, jobPostID, applicantID uuid.UUID) (bool, error)
	ListByJobPost(ctx context.Context, tx *gorm.DB, jobPostID uuid.UUID) ([]*JobApplication, error)
	ListByApplicant(ctx context.Context, tx *gorm.DB, applicantID uuid.UUID, page Page) ([]*JobApplication, int64, error)
	ListPendingByJobPost(ctx context.Context, tx *gorm.DB, jobPostID uuid.UUID) ([]*JobApplication, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status JobApplicationStatus, at time.Time) error
	RejectPending(ctx context.Context, tx *gorm.DB, jobPostID uuid.UUID, exceptID *uuid.UUID, at time.Time) error
	List(ctx context.Context, tx *gorm.DB, filter JobApplicationFilter) ([]*JobApplication, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type jobApplicationRepository struct {
	log logger.Logger
}

func NewJobApplicationRepository() JobApplicationRepository {
	return &jobApplicationRepository{
		log: logger.New("jobApplicationRepository"),
	}
}

func (r *jobApplicationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	application *JobApplication,
) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(application).Error; err != nil {
		return log.Err(
			"failed to create job application",
			err,
			"jobPostID", application.JobPostID,
			"applicantID", application.ApplicantID,
		)
	}

	return nil
}

func (r *jobApplicationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*JobApplication, error) {
	log := r.log.Function("GetByID")

	var application JobApplication
	if err := tx.WithContext(ctx).
		Preload("JobPost").
		Preload("Applicant.Profile").
		First(&application, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get job application", err, "id", id)
	}

	return &application, nil
}

func (r *jobApplicationRepository) Exists(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID, applicantID uuid.UUID,
) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&JobApplication{}).
		Where("job_post_id = ? AND applicant_id = ?", jobPostID, applicantID).
		Count(&count).Error; err != nil {
		return false, r.log.Function("Exists").Err("failed to check job application", err)
	}
	return count > 0, nil
}

func (r *jobApplicationRepository) ListByJobPost(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID uuid.UUID,
) ([]*JobApplication, error) {
	log := r.log.Function("ListByJobPost")

	var applications []*JobApplication
	if err := tx.WithContext(ctx).
		Preload("Applicant.Profile").
		Where("job_post_id = ?", jobPostID).
		Order("created_at ASC").
		Find(&applications).Error; err != nil {
		return nil, log.Err("failed to list job applications", err, "jobPostID", jobPostID)
	}

	return applications, nil
}

func (r *jobApplicationRepository) ListByApplicant(
	ctx context.Context,
	tx *gorm.DB,
	applicantID uuid.UUID,
	page Page,
) ([]*JobApplication, int64, error) {
	log := r.log.Function("ListByApplicant")

	query := tx.WithContext(ctx).Model(&JobApplication{}).Where("applicant_id = ?", applicantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count job applications", err)
	}

	var applications []*JobApplication
	if err := query.
		Preload("JobPost.ServiceType").
		Scopes(paginate(page)).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, 0, log.Err("failed to list job applications", err, "applicantID", applicantID)
	}

	return applications, total, nil
}

func (r *jobApplicationRepository) ListPendingByJobPost(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID uuid.UUID,
) ([]*JobApplication, error) {
	log := r.log.Function("ListPendingByJobPost")

	var applications []*JobApplication
	if err := tx.WithContext(ctx).
		Where("job_post_id = ? AND status = ?", jobPostID, JobApplicationStatusPending).
		Order("created_at ASC").
		Find(&applications).Error; err != nil {
		return nil, log.Err("failed to list pending applications", err, "jobPostID", jobPostID)
	}

	return applications, nil
}

// UpdateStatus moves a pending application to status. Applications that
// have left the pending state are never overwritten.
func (r *jobApplicationRepository) UpdateStatus(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	status JobApplicationStatus,
	at time.Time,
) error {
	log := r.log.Function("UpdateStatus")

	result := tx.WithContext(ctx).
		Model(&JobApplication{}).
		Where("id = ? AND status = ?", id, JobApplicationStatusPending).
		Updates(map[string]any{"status": status, "responded_at": at})
	if result.Error != nil {
		return log.Err("failed to update job application", result.Error, "id", id, "status", status)
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotPending
	}

	return nil
}

// RejectPending rejects every pending application of the job post except
// exceptID when given.
func (r *jobApplicationRepository) RejectPending(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID uuid.UUID,
	exceptID *uuid.UUID,
	at time.Time,
) error {
	log := r.log.Function("RejectPending")

	query := tx.WithContext(ctx).
		Model(&JobApplication{}).
		Where("job_post_id = ? AND status = ?", jobPostID, JobApplicationStatusPending)
	if exceptID != nil {
		query = query.Where("id <> ?", *exceptID)
	}

	if err := query.Updates(map[string]any{
		"status":       JobApplicationStatusRejected,
		"responded_at": at,
	}).Error; err != nil {
		return log.Err("failed to reject pending applications", err, "jobPostID", jobPostID)
	}

	return nil
}

func (r *jobApplicationRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter JobApplicationFilter,
) ([]*JobApplication, int64, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&JobApplication{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count job applications", err)
	}

	var applications []*JobApplication
	if err := query.
		Preload("JobPost").
		Preload("Applicant").
		Scopes(paginate(filter.Page)).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, 0, log.Err("failed to list job applications", err)
	}

	return applications, total, nil
}

func (r *jobApplicationRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&JobApplication{}).Count(&count).Error; err != nil {
		return 0, r.log.Function("Count").Err("failed to count job applications", err)
	}
	return count, nil
}
