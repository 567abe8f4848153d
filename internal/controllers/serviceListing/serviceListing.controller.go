package serviceListingController

import (
	"context"
	"slices"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/types"
	"kamwaalay/internal/utils"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateListingRequest struct {
	ServiceTypeIDs []int           `json:"serviceTypeIds" validate:"required,min=1,max=20,dive,gt=0"`
	LocationIDs    []int           `json:"locationIds"    validate:"required,min=1,max=50,dive,gt=0"`
	WorkType       string          `json:"workType"       validate:"required,worktype"`
	MonthlyRate    decimal.Decimal `json:"monthlyRate"`
	Description    *string         `json:"description"    validate:"omitempty,max=2000"`
}

type UpdateListingRequest struct {
	ServiceTypeIDs []int            `json:"serviceTypeIds" validate:"omitempty,min=1,max=20,dive,gt=0"`
	LocationIDs    []int            `json:"locationIds"    validate:"omitempty,min=1,max=50,dive,gt=0"`
	WorkType       *string          `json:"workType"       validate:"omitempty,worktype"`
	MonthlyRate    *decimal.Decimal `json:"monthlyRate"`
	Description    *string          `json:"description"    validate:"omitempty,max=2000"`
	Status         *string          `json:"status"         validate:"omitempty,oneof=active paused"`
}

type ServiceListingControllerInterface interface {
	ListPublic(ctx context.Context, filter repositories.ServiceListingFilter) (types.List[*ServiceListing], error)
	Get(ctx context.Context, viewer *User, id uuid.UUID) (*ServiceListing, error)
	Mine(ctx context.Context, user *User) ([]*ServiceListing, error)
	Create(ctx context.Context, user *User, request CreateListingRequest) (*ServiceListing, error)
	Update(ctx context.Context, user *User, id uuid.UUID, request UpdateListingRequest) (*ServiceListing, error)
	Delete(ctx context.Context, user *User, id uuid.UUID) error
	AdminList(ctx context.Context, filter repositories.ServiceListingFilter) (types.List[*ServiceListing], error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

type ServiceListingController struct {
	listingRepo        repositories.ServiceListingRepository
	catalogRepo        repositories.CatalogRepository
	transactionService *services.TransactionService
	profileCache       services.ProfileCache
	db                 database.DB
	config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) ServiceListingControllerInterface {
	return &ServiceListingController{
		listingRepo:        repos.ServiceListing,
		catalogRepo:        repos.Catalog,
		transactionService: services.Transaction,
		profileCache:       services.ProfileCache,
		db:                 db,
		config:             config,
		log:                logger.New("serviceListingController"),
	}
}

func (c *ServiceListingController) ListPublic(
	ctx context.Context,
	filter repositories.ServiceListingFilter,
) (types.List[*ServiceListing], error) {
	listings, total, err := c.listingRepo.ListPublic(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[*ServiceListing]{}, err
	}
	return types.NewList(listings, filter.Page, total), nil
}

// Get hides paused listings and listings of deactivated users from everyone
// but the owner and admins.
func (c *ServiceListingController) Get(
	ctx context.Context,
	viewer *User,
	id uuid.UUID,
) (*ServiceListing, error) {
	listing, err := c.listingRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}

	if viewer != nil && (listing.IsOwnedBy(viewer.ID) || viewer.IsAdmin()) {
		return listing, nil
	}

	ownerActive := listing.User == nil || listing.User.IsActive
	if listing.Status != ServiceListingStatusActive || !ownerActive {
		return nil, apperrors.NotFound("Service listing")
	}

	return listing, nil
}

func (c *ServiceListingController) Mine(ctx context.Context, user *User) ([]*ServiceListing, error) {
	listings, err := c.listingRepo.ListByUser(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []*ServiceListing{}
	}
	return listings, nil
}

func (c *ServiceListingController) Create(
	ctx context.Context,
	user *User,
	request CreateListingRequest,
) (*ServiceListing, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	if !request.MonthlyRate.IsPositive() {
		return nil, apperrors.Field("monthlyRate", "Must be greater than 0")
	}

	serviceTypes, locations, err := c.resolveCatalog(ctx, request.ServiceTypeIDs, request.LocationIDs)
	if err != nil {
		return nil, err
	}

	listing := &ServiceListing{
		UserID:       user.ID,
		WorkType:     WorkType(request.WorkType),
		MonthlyRate:  request.MonthlyRate,
		Description:  cleanDescription(request.Description),
		Status:       ServiceListingStatusActive,
		ServiceTypes: serviceTypes,
		Locations:    locations,
	}
	if err := c.listingRepo.Create(ctx, c.db.SQL, listing); err != nil {
		return nil, err
	}

	c.profileCache.Invalidate(ctx, user.ID)

	log.Info("service listing created", "listingID", listing.ID, "userID", user.ID)
	return listing, nil
}

func (c *ServiceListingController) Update(
	ctx context.Context,
	user *User,
	id uuid.UUID,
	request UpdateListingRequest,
) (*ServiceListing, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	if request.MonthlyRate != nil && !request.MonthlyRate.IsPositive() {
		return nil, apperrors.Field("monthlyRate", "Must be greater than 0")
	}

	listing, err := c.listingRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsOwnedBy(user.ID) {
		return nil, apperrors.Forbidden("You can only update your own service listings")
	}

	var (
		serviceTypes []ServiceType
		locations    []Location
	)
	if len(request.ServiceTypeIDs) > 0 || len(request.LocationIDs) > 0 {
		serviceTypes, locations, err = c.resolveCatalog(ctx, request.ServiceTypeIDs, request.LocationIDs)
		if err != nil {
			return nil, err
		}
	}

	if request.WorkType != nil {
		listing.WorkType = WorkType(*request.WorkType)
	}
	if request.MonthlyRate != nil {
		listing.MonthlyRate = *request.MonthlyRate
	}
	if request.Description != nil {
		listing.Description = cleanDescription(request.Description)
	}
	if request.Status != nil {
		listing.Status = ServiceListingStatus(*request.Status)
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.listingRepo.Update(ctx, tx, listing, serviceTypes, locations)
	})
	if err != nil {
		return nil, err
	}

	c.profileCache.Invalidate(ctx, user.ID)

	return c.listingRepo.GetByID(ctx, c.db.SQL, id)
}

func (c *ServiceListingController) Delete(ctx context.Context, user *User, id uuid.UUID) error {
	listing, err := c.listingRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return err
	}
	if !listing.IsOwnedBy(user.ID) {
		return apperrors.Forbidden("You can only delete your own service listings")
	}

	if err := c.listingRepo.Delete(ctx, c.db.SQL, id); err != nil {
		return err
	}

	c.profileCache.Invalidate(ctx, user.ID)
	return nil
}

func (c *ServiceListingController) AdminList(
	ctx context.Context,
	filter repositories.ServiceListingFilter,
) (types.List[*ServiceListing], error) {
	listings, total, err := c.listingRepo.List(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[*ServiceListing]{}, err
	}
	return types.NewList(listings, filter.Page, total), nil
}

func (c *ServiceListingController) AdminDelete(ctx context.Context, id uuid.UUID) error {
	log := c.log.TraceFromContext(ctx).Function("AdminDelete")

	listing, err := c.listingRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return err
	}
	if err := c.listingRepo.Delete(ctx, c.db.SQL, id); err != nil {
		return err
	}

	c.profileCache.Invalidate(ctx, listing.UserID)

	log.Info("service listing removed by admin", "listingID", id, "ownerID", listing.UserID)
	return nil
}

// resolveCatalog loads the requested service types and locations. An empty id
// list yields a nil result so updates leave that association untouched.
func (c *ServiceListingController) resolveCatalog(
	ctx context.Context,
	serviceTypeIDs, locationIDs []int,
) ([]ServiceType, []Location, error) {
	fields := map[string]string{}

	var serviceTypes []ServiceType
	if len(serviceTypeIDs) > 0 {
		ids := unique(serviceTypeIDs)
		found, err := c.catalogRepo.GetServiceTypesByIDs(ctx, c.db.SQL, ids)
		if err != nil {
			return nil, nil, err
		}
		if len(found) != len(ids) {
			fields["serviceTypeIds"] = "One or more service types do not exist"
		}
		serviceTypes = found
	}

	var locations []Location
	if len(locationIDs) > 0 {
		ids := unique(locationIDs)
		found, err := c.catalogRepo.GetLocationsByIDs(ctx, c.db.SQL, ids)
		if err != nil {
			return nil, nil, err
		}
		if len(found) != len(ids) {
			fields["locationIds"] = "One or more locations do not exist"
		}
		locations = found
	}

	if len(fields) > 0 {
		return nil, nil, apperrors.Validation(fields)
	}
	return serviceTypes, locations, nil
}

func unique(ids []int) []int {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func cleanDescription(description *string) *string {
	if description == nil {
		return nil
	}
	cleaned := utils.CleanText(*description)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
