package serviceListingController

import (
	"context"
	"testing"

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
			serviceTypes = append(serviceTypes, ServiceType{BaseModel: BaseModel{ID: id}})
		}
	}
	return serviceTypes, nil
}

func (r *fakeCatalog) GetLocationsByIDs(ctx context.Context, tx *gorm.DB, ids []int) ([]Location, error) {
	var locations []Location
	for _, id := range ids {
		if id <= 5 {
			locations = append(locations, Location{BaseModel: BaseModel{ID: id}})
		}
	}
	return locations, nil
}

type fakeListingRepo struct {
	repositories.ServiceListingRepository
	listings map[uuid.UUID]*ServiceListing
	updates  int
}

func (r *fakeListingRepo) Create(ctx context.Context, tx *gorm.DB, listing *ServiceListing) error {
	listing.ID = uuid.New()
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*ServiceListing, error) {
	if listing, ok := r.listings[id]; ok {
		copied := *listing
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeListingRepo) Update(
	ctx context.Context,
	tx *gorm.DB,
	listing *ServiceListing,
	serviceTypes []ServiceType,
	locations []Location,
) error {
	r.updates++
	if serviceTypes != nil {
		listing.ServiceTypes = serviceTypes
	}
	if locations != nil {
		listing.Locations = locations
	}
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if _, ok := r.listings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.listings, id)
	return nil
}

type fixture struct {
	controller *ServiceListingController
	listings   *fakeListingRepo
	cache      *testutil.MemoryProfileCache
	mock       sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	db, mock := testutil.NewMockDB(t)

	f := &fixture{
		listings: &fakeListingRepo{listings: map[uuid.UUID]*ServiceListing{}},
		cache:    testutil.NewMemoryProfileCache(),
		mock:     mock,
	}
	f.controller = &ServiceListingController{
		listingRepo:        f.listings,
		catalogRepo:        &fakeCatalog{},
		transactionService: services.NewTransactionService(db),
		profileCache:       f.cache,
		db:                 db,
		log:                logger.New("serviceListingController_test"),
	}
	return f
}

func validRequest() CreateListingRequest {
	return CreateListingRequest{
		ServiceTypeIDs: []int{1, 2, 2},
		LocationIDs:    []int{3},
		WorkType:       "part_time",
		MonthlyRate:    decimal.NewFromInt(18000),
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	helper := testutil.NewUser("Nasreen", RoleHelper)

	t.Run("creates with deduplicated service types", func(t *testing.T) {
		f := newFixture(t)

		listing, err := f.controller.Create(ctx, helper, validRequest())
		require.NoError(t, err)
		assert.Equal(t, helper.ID, listing.UserID)
		assert.Equal(t, ServiceListingStatusActive, listing.Status)
		assert.Len(t, listing.ServiceTypes, 2)
		assert.Len(t, listing.Locations, 1)
		assert.Equal(t, []uuid.UUID{helper.ID}, f.cache.Invalidated)
	})

	t.Run("unknown catalog ids are rejected", func(t *testing.T) {
		f := newFixture(t)
		request := validRequest()
		request.LocationIDs = []int{42}

		_, err := f.controller.Create(ctx, helper, request)
		require.Error(t, err)
		assert.Contains(t, apperrors.From(err).Fields, "locationIds")
		assert.Empty(t, f.listings.listings)
	})

	t.Run("rate must be positive", func(t *testing.T) {
		f := newFixture(t)
		request := validRequest()
		request.MonthlyRate = decimal.NewFromInt(-5)

		_, err := f.controller.Create(ctx, helper, request)
		require.Error(t, err)
		assert.Contains(t, apperrors.From(err).Fields, "monthlyRate")
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	owner := testutil.NewUser("Nasreen", RoleHelper)
	stranger := testutil.NewUser("Bilal", RoleHelper)

	f := newFixture(t)
	listing, err := f.controller.Create(ctx, owner, validRequest())
	require.NoError(t, err)

	paused := "paused"
	_, err = f.controller.Update(ctx, stranger, listing.ID, UpdateListingRequest{Status: &paused})
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	testutil.ExpectTransactions(f.mock, 1)
	rate := decimal.NewFromInt(20000)
	updated, err := f.controller.Update(ctx, owner, listing.ID, UpdateListingRequest{
		Status:      &paused,
		MonthlyRate: &rate,
		LocationIDs: []int{4, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, ServiceListingStatusPaused, updated.Status)
	assert.True(t, updated.MonthlyRate.Equal(rate))
	assert.Len(t, updated.Locations, 2)
	assert.Len(t, updated.ServiceTypes, 2, "service types are kept when not sent")
	assert.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.controller.Get(ctx, stranger, listing.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "paused listings are hidden")
	_, err = f.controller.Get(ctx, owner, listing.ID)
	assert.NoError(t, err)

	err = f.controller.Delete(ctx, stranger, listing.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	require.NoError(t, f.controller.Delete(ctx, owner, listing.ID))
	assert.Empty(t, f.listings.listings)
}

func TestAdminDelete(t *testing.T) {
	ctx := context.Background()
	owner := testutil.NewUser("Nasreen", RoleHelper)
	f := newFixture(t)

	listing, err := f.controller.Create(ctx, owner, validRequest())
	require.NoError(t, err)

	require.NoError(t, f.controller.AdminDelete(ctx, listing.ID))
	assert.Empty(t, f.listings.listings)
	assert.Equal(t, []uuid.UUID{owner.ID, owner.ID}, f.cache.Invalidated)

	err = f.controller.AdminDelete(ctx, listing.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
}
