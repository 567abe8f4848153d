package onboardingController

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/utils"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceEntry struct {
	ServiceTypeID int             `json:"serviceTypeId" validate:"required"`
	WorkType      string          `json:"workType"      validate:"required,worktype"`
	MonthlyRate   decimal.Decimal `json:"monthlyRate"`
	LocationIDs   []int           `json:"locationIds"   validate:"required,min=1,max=50,dive,gt=0"`
	Description   *string         `json:"description"   validate:"omitempty,max=2000"`
}

type CompleteOnboardingRequest struct {
	Profile  ProfileFields  `json:"profile"`
	Services []ServiceEntry `json:"services" validate:"required,min=1,max=30,dive"`
}

// ServiceGroup is one listing to create: every entry sharing work type,
// rate, description and location set collapses into it.
type ServiceGroup struct {
	WorkType       WorkType
	MonthlyRate    decimal.Decimal
	Description    *string
	LocationIDs    []int
	ServiceTypeIDs []int
}

type OnboardingResult struct {
	User     *User             `json:"user"`
	Listings []*ServiceListing `json:"listings"`
}

type OnboardingStatus struct {
	Completed         bool `json:"completed"`
	DocumentsUploaded bool `json:"documentsUploaded"`
	HasProfile        bool `json:"hasProfile"`
}

type OnboardingControllerInterface interface {
	Complete(ctx context.Context, user *User, request CompleteOnboardingRequest) (*OnboardingResult, error)
	Status(ctx context.Context, user *User) (*OnboardingStatus, error)
}

type OnboardingController struct {
	userRepo           repositories.UserRepository
	profileRepo        repositories.ProfileRepository
	documentRepo       repositories.DocumentRepository
	catalogRepo        repositories.CatalogRepository
	listingRepo        repositories.ServiceListingRepository
	transactionService *services.TransactionService
	profileCache       services.ProfileCache
	db                 database.DB
	config             config.Config
	now                func() time.Time
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) OnboardingControllerInterface {
	return &OnboardingController{
		userRepo:           repos.User,
		profileRepo:        repos.Profile,
		documentRepo:       repos.Document,
		catalogRepo:        repos.Catalog,
		listingRepo:        repos.ServiceListing,
		transactionService: services.Transaction,
		profileCache:       services.ProfileCache,
		db:                 db,
		config:             config,
		now:                time.Now,
		log:                logger.New("onboardingController"),
	}
}

func (c *OnboardingController) Complete(
	ctx context.Context,
	user *User,
	request CompleteOnboardingRequest,
) (*OnboardingResult, error) {
	log := c.log.TraceFromContext(ctx).Function("Complete")

	if !user.IsProvider() {
		return nil, apperrors.Forbidden("Only helpers and businesses complete onboarding")
	}
	if user.HasCompletedOnboarding() {
		return nil, apperrors.Unprocessable("Onboarding has already been completed")
	}

	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	for i, entry := range request.Services {
		if !entry.MonthlyRate.IsPositive() {
			return nil, apperrors.Field(
				fmt.Sprintf("services[%d].monthlyRate", i),
				"Must be greater than 0",
			)
		}
	}

	documentCount, err := c.documentRepo.CountByUser(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}
	if documentCount == 0 {
		return nil, apperrors.
			Unprocessable("Upload at least one verification document before completing onboarding").
			WithCode(apperrors.CodeDocumentsRequired)
	}

	groups := GroupServices(request.Services)
	serviceTypes, locations, err := c.resolveCatalog(ctx, groups)
	if err != nil {
		return nil, err
	}

	var listings []*ServiceListing
	completedAt := c.now()
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		profile, err := c.profileRepo.GetByOwner(ctx, tx, user.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = &Profile{OwnerID: user.ID, OwnerType: ProfileOwnerUsers}
		} else if err != nil {
			return err
		}

		profile.Apply(request.Profile)
		if err := c.profileRepo.Save(ctx, tx, profile); err != nil {
			return err
		}

		listings = make([]*ServiceListing, 0, len(groups))
		for _, group := range groups {
			listing := &ServiceListing{
				UserID:       user.ID,
				WorkType:     group.WorkType,
				MonthlyRate:  group.MonthlyRate,
				Description:  group.Description,
				Status:       ServiceListingStatusActive,
				ServiceTypes: pick(serviceTypes, group.ServiceTypeIDs),
				Locations:    pick(locations, group.LocationIDs),
			}
			if err := c.listingRepo.Create(ctx, tx, listing); err != nil {
				return err
			}
			listings = append(listings, listing)
		}

		return c.userRepo.Update(ctx, tx, user.ID, map[string]any{
			"onboarding_completed_at": completedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	c.profileCache.Invalidate(ctx, user.ID)

	updated, err := c.userRepo.GetByID(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}

	log.Info("onboarding completed",
		"userID", user.ID,
		"entries", len(request.Services),
		"listings", len(listings),
	)
	return &OnboardingResult{User: updated, Listings: listings}, nil
}

func (c *OnboardingController) Status(ctx context.Context, user *User) (*OnboardingStatus, error) {
	documentCount, err := c.documentRepo.CountByUser(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}

	hasProfile := false
	profile, err := c.profileRepo.GetByOwner(ctx, c.db.SQL, user.ID)
	switch {
	case err == nil:
		hasProfile = !profile.IsEmpty()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return &OnboardingStatus{
		Completed:         user.HasCompletedOnboarding() || !user.NeedsOnboarding(),
		DocumentsUploaded: documentCount > 0,
		HasProfile:        hasProfile,
	}, nil
}

// GroupServices merges entries by the hash of their shared attributes.
// Groups keep the order in which they first appear and each lists its service
// types once.
func GroupServices(entries []ServiceEntry) []ServiceGroup {
	var groups []ServiceGroup
	index := make(map[string]int)

	for _, entry := range entries {
		var description *string
		if entry.Description != nil {
			if cleaned := utils.CleanText(*entry.Description); cleaned != "" {
				description = &cleaned
			}
		}

		locationIDs := slices.Clone(entry.LocationIDs)
		slices.Sort(locationIDs)
		locationIDs = slices.Compact(locationIDs)

		key := utils.HashFields(map[string]any{
			"work_type":    entry.WorkType,
			"monthly_rate": entry.MonthlyRate.StringFixed(2),
			"description":  description,
			"location_ids": locationIDs,
		})

		position, ok := index[key]
		if !ok {
			groups = append(groups, ServiceGroup{
				WorkType:    WorkType(entry.WorkType),
				MonthlyRate: entry.MonthlyRate,
				Description: description,
				LocationIDs: locationIDs,
			})
			position = len(groups) - 1
			index[key] = position
		}

		group := &groups[position]
		if !slices.Contains(group.ServiceTypeIDs, entry.ServiceTypeID) {
			group.ServiceTypeIDs = append(group.ServiceTypeIDs, entry.ServiceTypeID)
		}
	}

	return groups
}

func (c *OnboardingController) resolveCatalog(
	ctx context.Context,
	groups []ServiceGroup,
) (map[int]ServiceType, map[int]Location, error) {
	var serviceTypeIDs, locationIDs []int
	for _, group := range groups {
		serviceTypeIDs = append(serviceTypeIDs, group.ServiceTypeIDs...)
		locationIDs = append(locationIDs, group.LocationIDs...)
	}
	slices.Sort(serviceTypeIDs)
	serviceTypeIDs = slices.Compact(serviceTypeIDs)
	slices.Sort(locationIDs)
	locationIDs = slices.Compact(locationIDs)

	serviceTypes, err := c.catalogRepo.GetServiceTypesByIDs(ctx, c.db.SQL, serviceTypeIDs)
	if err != nil {
		return nil, nil, err
	}
	locations, err := c.catalogRepo.GetLocationsByIDs(ctx, c.db.SQL, locationIDs)
	if err != nil {
		return nil, nil, err
	}

	fields := map[string]string{}
	if len(serviceTypes) != len(serviceTypeIDs) {
		fields["services"] = "One or more service types do not exist"
	}
	if len(locations) != len(locationIDs) {
		fields["locationIds"] = "One or more locations do not exist"
	}
	if len(fields) > 0 {
		return nil, nil, apperrors.Validation(fields)
	}

	serviceTypesByID := make(map[int]ServiceType, len(serviceTypes))
	for _, serviceType := range serviceTypes {
		serviceTypesByID[serviceType.ID] = serviceType
	}
	locationsByID := make(map[int]Location, len(locations))
	for _, location := range locations {
		locationsByID[location.ID] = location
	}

	return serviceTypesByID, locationsByID, nil
}

func pick[T any](byID map[int]T, ids []int) []T {
	items := make([]T, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items
}
