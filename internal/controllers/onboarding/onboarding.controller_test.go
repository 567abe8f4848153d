package onboardingController

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

type fakeCatalog struct {
	repositories.CatalogRepository
}

func (r *fakeCatalog) GetServiceTypesByIDs(ctx context.Context, tx *gorm.DB, ids []int) ([]ServiceType, error) {
	var serviceTypes []ServiceType
	for _, id := range ids {
		if id <= 5 {
			serviceTypes = append(serviceTypes, ServiceType{BaseModel: BaseModel{ID: id}, Name: "Service"})
		}
	}
	return serviceTypes, nil
}

func (r *fakeCatalog) GetLocationsByIDs(ctx context.Context, tx *gorm.DB, ids []int) ([]Location, error) {
	var locations []Location
	for _, id := range ids {
		if id <= 10 {
			locations = append(locations, Location{BaseModel: BaseModel{ID: id}, City: "Lahore"})
		}
	}
	return locations, nil
}

type fakeListingRepo struct {
	repositories.ServiceListingRepository
	created []*ServiceListing
}

func (r *fakeListingRepo) Create(ctx context.Context, tx *gorm.DB, listing *ServiceListing) error {
	listing.ID = uuid.New()
	r.created = append(r.created, listing)
	return nil
}

type fixture struct {
	controller *OnboardingController
	users      *testutil.MemoryUsers
	profiles   *testutil.MemoryProfiles
	documents  *testutil.MemoryDocuments
	listings   *fakeListingRepo
	cache      *testutil.MemoryProfileCache
	mock       sqlmock.Sqlmock
}

func newFixture(t *testing.T, users ...*User) *fixture {
	db, mock := testutil.NewMockDB(t)

	f := &fixture{
		users:     testutil.NewMemoryUsers(users...),
		profiles:  testutil.NewMemoryProfiles(),
		documents: testutil.NewMemoryDocuments(),
		listings:  &fakeListingRepo{},
		cache:     testutil.NewMemoryProfileCache(),
		mock:      mock,
	}
	f.controller = &OnboardingController{
		userRepo:           f.users,
		profileRepo:        f.profiles,
		documentRepo:       f.documents,
		catalogRepo:        &fakeCatalog{},
		listingRepo:        f.listings,
		transactionService: services.NewTransactionService(db),
		profileCache:       f.cache,
		db:                 db,
		now:                func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC) },
		log:                logger.New("onboardingController_test"),
	}
	return f
}

func (f *fixture) uploadDocument(t *testing.T, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.documents.Create(context.Background(), nil, &Document{
		UserID:   userID,
		Type:     DocumentTypeCNIC,
		FilePath: "documents/" + userID.String() + "/cnic.pdf",
	}))
}

func rate(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

func ptr[T any](value T) *T {
	return &value
}

func TestGroupServices(t *testing.T) {
	t.Run("shared attributes collapse into one group", func(t *testing.T) {
		groups := GroupServices([]ServiceEntry{
			{ServiceTypeID: 1, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{1, 2}},
			{ServiceTypeID: 2, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{2, 1}},
			{ServiceTypeID: 1, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{1, 2}},
		})

		require.Len(t, groups, 1)
		assert.Equal(t, []int{1, 2}, groups[0].ServiceTypeIDs)
		assert.Equal(t, []int{1, 2}, groups[0].LocationIDs)
	})

	t.Run("different attributes produce separate groups in order", func(t *testing.T) {
		groups := GroupServices([]ServiceEntry{
			{ServiceTypeID: 3, WorkType: "part_time", MonthlyRate: rate(15000), LocationIDs: []int{4}},
			{ServiceTypeID: 1, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{4}},
			{ServiceTypeID: 2, WorkType: "full_time", MonthlyRate: rate(32000), LocationIDs: []int{4}},
			{ServiceTypeID: 4, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{5}},
			{ServiceTypeID: 5, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{4},
				Description: ptr("Weekends only")},
		})

		require.Len(t, groups, 5)
		assert.Equal(t, WorkTypePartTime, groups[0].WorkType)
		assert.Equal(t, []int{3}, groups[0].ServiceTypeIDs)
		assert.Equal(t, []int{1}, groups[1].ServiceTypeIDs)
		assert.Equal(t, []int{2}, groups[2].ServiceTypeIDs)
		assert.Equal(t, []int{4}, groups[3].ServiceTypeIDs)
		require.NotNil(t, groups[4].Description)
		assert.Equal(t, "Weekends only", *groups[4].Description)
	})

	t.Run("equal rates with different precision group together", func(t *testing.T) {
		precise, err := decimal.NewFromString("25000.00")
		require.NoError(t, err)

		groups := GroupServices([]ServiceEntry{
			{ServiceTypeID: 1, WorkType: "live_in", MonthlyRate: rate(25000), LocationIDs: []int{1}},
			{ServiceTypeID: 2, WorkType: "live_in", MonthlyRate: precise, LocationIDs: []int{1}},
		})

		require.Len(t, groups, 1)
		assert.Equal(t, []int{1, 2}, groups[0].ServiceTypeIDs)
	})

	t.Run("blank descriptions match missing ones", func(t *testing.T) {
		groups := GroupServices([]ServiceEntry{
			{ServiceTypeID: 1, WorkType: "one_time", MonthlyRate: rate(5000), LocationIDs: []int{1}},
			{ServiceTypeID: 2, WorkType: "one_time", MonthlyRate: rate(5000), LocationIDs: []int{1},
				Description: ptr("   ")},
		})

		require.Len(t, groups, 1)
		assert.Nil(t, groups[0].Description)
	})

	t.Run("repeated locations group with the deduplicated set", func(t *testing.T) {
		groups := GroupServices([]ServiceEntry{
			{ServiceTypeID: 1, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{1, 1, 2}},
			{ServiceTypeID: 2, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{2, 1}},
		})

		require.Len(t, groups, 1)
		assert.Equal(t, []int{1, 2}, groups[0].ServiceTypeIDs)
		assert.Equal(t, []int{1, 2}, groups[0].LocationIDs)
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	request := CompleteOnboardingRequest{
		Profile: ProfileFields{City: ptr("Lahore"), ExperienceYears: ptr(4)},
		Services: []ServiceEntry{
			{ServiceTypeID: 1, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{1, 2}},
			{ServiceTypeID: 2, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{2, 1}},
			{ServiceTypeID: 3, WorkType: "part_time", MonthlyRate: rate(12000), LocationIDs: []int{3}},
		},
	}

	t.Run("creates profile and grouped listings", func(t *testing.T) {
		helper := testutil.NewUser("Nasreen", RoleHelper)
		f := newFixture(t, helper)
		f.uploadDocument(t, helper.ID)
		testutil.ExpectTransactions(f.mock, 1)

		result, err := f.controller.Complete(ctx, helper, request)
		require.NoError(t, err)

		require.Len(t, result.Listings, 2)
		assert.Len(t, result.Listings[0].ServiceTypes, 2)
		assert.Len(t, result.Listings[0].Locations, 2)
		assert.Equal(t, WorkTypePartTime, result.Listings[1].WorkType)
		assert.True(t, result.Listings[1].MonthlyRate.Equal(rate(12000)))

		require.NotNil(t, result.User.OnboardingCompletedAt)
		assert.Equal(t, "Lahore", *f.profiles.Profiles[helper.ID].City)
		assert.Equal(t, []uuid.UUID{helper.ID}, f.cache.Invalidated)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("requires an uploaded document", func(t *testing.T) {
		helper := testutil.NewUser("Nasreen", RoleHelper)
		f := newFixture(t, helper)

		_, err := f.controller.Complete(ctx, helper, request)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeDocumentsRequired))
		assert.Empty(t, f.listings.created)
	})

	t.Run("only once", func(t *testing.T) {
		helper := testutil.NewUser("Nasreen", RoleHelper)
		completed := time.Now()
		helper.OnboardingCompletedAt = &completed
		f := newFixture(t, helper)

		_, err := f.controller.Complete(ctx, helper, request)
		assert.True(t, apperrors.Is(err, apperrors.CodeUnprocessable))
	})

	t.Run("households cannot onboard", func(t *testing.T) {
		household := testutil.NewUser("Ayesha", RoleUser)
		f := newFixture(t, household)

		_, err := f.controller.Complete(ctx, household, request)
		assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	})

	t.Run("rejects unknown catalog entries", func(t *testing.T) {
		business := testutil.NewUser("Agency", RoleBusiness)
		f := newFixture(t, business)
		f.uploadDocument(t, business.ID)

		_, err := f.controller.Complete(ctx, business, CompleteOnboardingRequest{
			Services: []ServiceEntry{
				{ServiceTypeID: 99, WorkType: "full_time", MonthlyRate: rate(30000), LocationIDs: []int{77}},
			},
		})
		require.Error(t, err)
		fields := apperrors.From(err).Fields
		assert.Contains(t, fields, "services")
		assert.Contains(t, fields, "locationIds")
		assert.Empty(t, f.listings.created)
	})

	t.Run("rejects non positive rates", func(t *testing.T) {
		helper := testutil.NewUser("Nasreen", RoleHelper)
		f := newFixture(t, helper)
		f.uploadDocument(t, helper.ID)

		_, err := f.controller.Complete(ctx, helper, CompleteOnboardingRequest{
			Services: []ServiceEntry{
				{ServiceTypeID: 1, WorkType: "full_time", MonthlyRate: rate(0), LocationIDs: []int{1}},
			},
		})
		require.Error(t, err)
		assert.Contains(t, apperrors.From(err).Fields, "services[0].monthlyRate")
	})

	t.Run("requires at least one service", func(t *testing.T) {
		helper := testutil.NewUser("Nasreen", RoleHelper)
		f := newFixture(t, helper)

		_, err := f.controller.Complete(ctx, helper, CompleteOnboardingRequest{})
		require.Error(t, err)
		assert.Contains(t, apperrors.From(err).Fields, "services")
	})
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	helper := testutil.NewUser("Nasreen", RoleHelper)
	f := newFixture(t, helper)

	status, err := f.controller.Status(ctx, helper)
	require.NoError(t, err)
	assert.Equal(t, OnboardingStatus{}, *status)

	f.uploadDocument(t, helper.ID)
	f.profiles.Profiles[helper.ID] = &Profile{OwnerID: helper.ID, City: ptr("Karachi")}

	status, err = f.controller.Status(ctx, helper)
	require.NoError(t, err)
	assert.Equal(t, OnboardingStatus{DocumentsUploaded: true, HasProfile: true}, *status)
}
