package jobPostController

import (
	"context"
	"testing"
	"time"

	"kamwaalay/internal/apperrors"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/testutil"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	repositories.CatalogRepository
}

func (r *fakeCatalog) GetServiceTypeByID(ctx context.Context, tx *gorm.DB, id int) (*ServiceType, error) {
	if id < 1 || id > 5 {
		return nil, gorm.ErrRecordNotFound
	}
	return &ServiceType{BaseModel: BaseModel{ID: id}}, nil
}

type fixture struct {
	controller   *JobPostController
	posts        *testutil.MemoryJobPosts
	applications *testutil.MemoryApplications
	notifier     *testutil.RecordingNotifier
	mock         sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	db, mock := testutil.NewMockDB(t)

	posts := testutil.NewMemoryJobPosts()
	f := &fixture{
		posts:        posts,
		applications: testutil.NewMemoryApplications(posts),
		notifier:     &testutil.RecordingNotifier{},
		mock:         mock,
	}
	f.controller = &JobPostController{
		jobPostRepo:        f.posts,
		applicationRepo:    f.applications,
		catalogRepo:        &fakeCatalog{},
		transactionService: services.NewTransactionService(db),
		notifier:           f.notifier,
		db:                 db,
		now:                func() time.Time { return fixedNow },
		log:                logger.New("jobPostController_test"),
	}
	return f
}

func validRequest() CreateJobPostRequest {
	budget := decimal.NewFromInt(25000)
	address := "  House 12, Street 4 "
	return CreateJobPostRequest{
		ServiceTypeID: 1,
		WorkType:      string(WorkTypePartTime),
		City:          " Lahore ",
		Address:       &address,
		StartDate:     "2026-03-15",
		Budget:        &budget,
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	owner := testutil.NewUser("Ayesha", RoleUser)

	post, err := f.controller.Create(context.Background(), owner, validRequest())
	require.NoError(t, err)

	assert.Equal(t, owner.ID, post.UserID)
	assert.Equal(t, JobPostStatusPending, post.Status)
	assert.Equal(t, "Lahore", post.City)
	require.NotNil(t, post.Address)
	assert.Equal(t, "House 12, Street 4", *post.Address)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateJobPostRequest)
		field  string
	}{
		{
			name:   "start date in the past",
			mutate: func(r *CreateJobPostRequest) { r.StartDate = "2026-03-09" },
			field:  "startDate",
		},
		{
			name: "negative budget",
			mutate: func(r *CreateJobPostRequest) {
				budget := decimal.NewFromInt(-1)
				r.Budget = &budget
			},
			field: "budget",
		},
		{
			name:   "unknown service type",
			mutate: func(r *CreateJobPostRequest) { r.ServiceTypeID = 42 },
			field:  "serviceTypeId",
		},
		{
			name:   "bad work type",
			mutate: func(r *CreateJobPostRequest) { r.WorkType = "weekends" },
			field:  "workType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			request := validRequest()
			tt.mutate(&request)

			_, err := f.controller.Create(context.Background(), testutil.NewUser("Ayesha", RoleUser), request)

			appErr := apperrors.From(err)
			assert.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Fields, tt.field)
			assert.Empty(t, f.posts.Posts)
		})
	}
}

func TestCreate_TodayIsAllowed(t *testing.T) {
	f := newFixture(t)
	request := validRequest()
	request.StartDate = "2026-03-10"

	_, err := f.controller.Create(context.Background(), testutil.NewUser("Ayesha", RoleUser), request)
	assert.NoError(t, err)
}

func TestGet_Visibility(t *testing.T) {
	owner := testutil.NewUser("Ayesha", RoleUser)
	helper := testutil.NewUser("Bilal", RoleHelper)
	stranger := testutil.NewUser("Kamran", RoleHelper)
	admin := testutil.NewUser("Admin", RoleAdmin)

	t.Run("stranger sees open post without address", func(t *testing.T) {
		f := newFixture(t)
		post := f.posts.Add(owner.ID, JobPostStatusPending)
		address := "House 12"
		post.Address = &address

		got, err := f.controller.Get(context.Background(), stranger, post.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Address)
	})

	t.Run("stranger cannot see confirmed post", func(t *testing.T) {
		f := newFixture(t)
		post := f.posts.Add(owner.ID, JobPostStatusConfirmed)

		_, err := f.controller.Get(context.Background(), stranger, post.ID)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
	})

	t.Run("applicant and admin see full details", func(t *testing.T) {
		f := newFixture(t)
		post := f.posts.Add(owner.ID, JobPostStatusConfirmed)
		address := "House 12"
		post.Address = &address
		f.applications.Add(post.ID, helper.ID)

		for _, viewer := range []*User{owner, helper, admin} {
			got, err := f.controller.Get(context.Background(), viewer, post.ID)
			require.NoError(t, err, viewer.Name)
			require.NotNil(t, got.Address, viewer.Name)
		}
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.controller.Get(context.Background(), owner, uuid.New())
		assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
	})
}

func TestUpdate(t *testing.T) {
	owner := testutil.NewUser("Ayesha", RoleUser)
	city := "Karachi"
	blank := "   "

	t.Run("owner updates open post", func(t *testing.T) {
		f := newFixture(t)
		testutil.ExpectTransactions(f.mock, 1)
		post := f.posts.Add(owner.ID, JobPostStatusPending)
		description := "Old"
		post.Description = &description

		got, err := f.controller.Update(context.Background(), owner, post.ID, UpdateJobPostRequest{
			City:        &city,
			Description: &blank,
		})
		require.NoError(t, err)
		assert.Equal(t, "Karachi", got.City)
		assert.Nil(t, got.Description)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		post := f.posts.Add(owner.ID, JobPostStatusPending)

		_, err := f.controller.Update(context.Background(), testutil.NewUser("Other", RoleUser), post.ID,
			UpdateJobPostRequest{City: &city})
		assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)
	})

	t.Run("confirmed post is locked", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		post := f.posts.Add(owner.ID, JobPostStatusConfirmed)

		_, err := f.controller.Update(context.Background(), owner, post.ID, UpdateJobPostRequest{City: &city})
		assert.Equal(t, apperrors.CodeUnprocessable, apperrors.From(err).Code)
		assert.Equal(t, "Lahore", f.posts.Posts[post.ID].City)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestCancel_RejectsPendingApplications(t *testing.T) {
	f := newFixture(t)
	testutil.ExpectTransactions(f.mock, 1)

	owner := testutil.NewUser("Ayesha", RoleUser)
	first := testutil.NewUser("Bilal", RoleHelper)
	second := testutil.NewUser("Kamran", RoleHelper)
	post := f.posts.Add(owner.ID, JobPostStatusPending)
	a := f.applications.Add(post.ID, first.ID)
	b := f.applications.Add(post.ID, second.ID)

	got, err := f.controller.Cancel(context.Background(), owner, post.ID)
	require.NoError(t, err)

	assert.Equal(t, JobPostStatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.Equal(fixedNow))
	assert.Equal(t, JobApplicationStatusRejected, f.applications.StatusOf(a.ID))
	assert.Equal(t, JobApplicationStatusRejected, f.applications.StatusOf(b.ID))
	assert.Equal(t, []NotificationType{NotificationApplicationRejected}, f.notifier.To(first.ID))
	assert.Equal(t, []NotificationType{NotificationApplicationRejected}, f.notifier.To(second.ID))
	assert.Empty(t, f.notifier.To(owner.ID))
	assert.Equal(t, 1, f.posts.Locks)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTransitions(t *testing.T) {
	owner := testutil.NewUser("Ayesha", RoleUser)
	helper := testutil.NewUser("Bilal", RoleHelper)
	stranger := testutil.NewUser("Kamran", RoleHelper)

	type action func(c *JobPostController, user *User, id uuid.UUID) (*JobPost, error)
	cancel := func(c *JobPostController, u *User, id uuid.UUID) (*JobPost, error) {
		return c.Cancel(context.Background(), u, id)
	}
	start := func(c *JobPostController, u *User, id uuid.UUID) (*JobPost, error) {
		return c.Start(context.Background(), u, id)
	}
	complete := func(c *JobPostController, u *User, id uuid.UUID) (*JobPost, error) {
		return c.Complete(context.Background(), u, id)
	}

	tests := []struct {
		name   string
		from   JobPostStatus
		actor  *User
		act    action
		want   JobPostStatus
		code   apperrors.Code
		notify *User
	}{
		{"helper starts confirmed job", JobPostStatusConfirmed, helper, start, JobPostStatusInProgress, "", owner},
		{"owner starts confirmed job", JobPostStatusConfirmed, owner, start, JobPostStatusInProgress, "", helper},
		{"owner completes job in progress", JobPostStatusInProgress, owner, complete, JobPostStatusCompleted, "", helper},
		{"owner cancels confirmed job", JobPostStatusConfirmed, owner, cancel, JobPostStatusCancelled, "", helper},
		{"stranger cannot start", JobPostStatusConfirmed, stranger, start, "", apperrors.CodeForbidden, nil},
		{"helper cannot complete", JobPostStatusInProgress, helper, complete, "", apperrors.CodeForbidden, nil},
		{"helper cannot cancel", JobPostStatusConfirmed, helper, cancel, "", apperrors.CodeForbidden, nil},
		{"pending job cannot start", JobPostStatusPending, owner, start, "", apperrors.CodeUnprocessable, nil},
		{"job in progress cannot be cancelled", JobPostStatusInProgress, owner, cancel, "", apperrors.CodeUnprocessable, nil},
		{"completed job is final", JobPostStatusCompleted, owner, complete, "", apperrors.CodeUnprocessable, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			post := f.posts.Add(owner.ID, tt.from)
			post.AssignedUserID = &helper.ID

			f.mock.ExpectBegin()
			if tt.code == "" {
				f.mock.ExpectCommit()
			} else {
				f.mock.ExpectRollback()
			}

			got, err := tt.act(f.controller, tt.actor, post.ID)

			if tt.code != "" {
				assert.Equal(t, tt.code, apperrors.From(err).Code)
				assert.Equal(t, tt.from, f.posts.Posts[post.ID].Status)
				assert.Empty(t, f.notifier.Sent)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got.Status)
				assert.Equal(t, []NotificationType{NotificationJobStatusChanged}, f.notifier.To(tt.notify.ID))
				assert.Empty(t, f.notifier.To(tt.actor.ID))
			}
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	owner := testutil.NewUser("Ayesha", RoleUser)
	admin := testutil.NewUser("Admin", RoleAdmin)

	t.Run("admin cancels with note", func(t *testing.T) {
		f := newFixture(t)
		testutil.ExpectTransactions(f.mock, 1)
		post := f.posts.Add(owner.ID, JobPostStatusPending)
		note := " Duplicate post "

		got, err := f.controller.AdminUpdateStatus(context.Background(), admin, post.ID, AdminStatusRequest{
			Status:     string(JobPostStatusCancelled),
			AdminNotes: &note,
		})
		require.NoError(t, err)
		assert.Equal(t, JobPostStatusCancelled, got.Status)
		require.NotNil(t, got.AdminNotes)
		assert.Equal(t, "Duplicate post", *got.AdminNotes)
		assert.Equal(t, []NotificationType{NotificationJobStatusChanged}, f.notifier.To(owner.ID))
	})

	t.Run("confirmed is reserved for accepting an application", func(t *testing.T) {
		f := newFixture(t)
		post := f.posts.Add(owner.ID, JobPostStatusPending)

		_, err := f.controller.AdminUpdateStatus(context.Background(), admin, post.ID, AdminStatusRequest{
			Status: string(JobPostStatusConfirmed),
		})
		appErr := apperrors.From(err)
		assert.Equal(t, apperrors.CodeValidation, appErr.Code)
		assert.Contains(t, appErr.Fields, "status")
	})
}

func TestListOpen_RedactsAddress(t *testing.T) {
	f := newFixture(t)
	f.controller.jobPostRepo = &listingPosts{MemoryJobPosts: f.posts}
	post := f.posts.Add(uuid.New(), JobPostStatusPending)
	address := "House 12"
	post.Address = &address

	list, err := f.controller.ListOpen(context.Background(), repositories.JobPostFilter{Page: repositories.NewPage(1, 20)})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Nil(t, list.Data[0].Address)
	assert.Equal(t, int64(1), list.Meta.Total)
}

type listingPosts struct {
	*testutil.MemoryJobPosts
}

func (r *listingPosts) ListOpen(
	ctx context.Context,
	tx *gorm.DB,
	filter repositories.JobPostFilter,
) ([]*JobPost, int64, error) {
	var posts []*JobPost
	for _, post := range r.Posts {
		if post.Status == JobPostStatusPending {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	return posts, int64(len(posts)), nil
}
