package providerController

import (
	"context"
	"errors"
	"strings"
	"time"

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
	"gorm.io/gorm"
)

// ProviderCard is the public view of a helper or business.
type ProviderCard struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	IsVerified  bool      `json:"isVerified"`
	Profile     *Profile  `json:"profile,omitempty"`
	MemberSince time.Time `json:"memberSince"`
}

type HelperProfile struct {
	ProviderCard
	Listings []*ServiceListing `json:"listings"`
	Rating   RatingSummary     `json:"rating"`
	Business *UserSummary      `json:"business,omitempty"`
}

type BusinessProfile struct {
	ProviderCard
	Listings    []*ServiceListing `json:"listings"`
	WorkerCount int64             `json:"workerCount"`
}

type CreateWorkerRequest struct {
	Name     string        `json:"name"     validate:"required,max=255"`
	Phone    string        `json:"phone"    validate:"required,pkphone"`
	Email    *string       `json:"email"    validate:"omitempty,email,max=255"`
	Password string        `json:"password" validate:"required,min=8,max=72"`
	Profile  ProfileFields `json:"profile"`
}

type UpdateWorkerRequest struct {
	Name     *string       `json:"name"     validate:"omitempty,min=1,max=255"`
	IsActive *bool         `json:"isActive"`
	Profile  ProfileFields `json:"profile"`
}

type ProviderControllerInterface interface {
	ListHelpers(ctx context.Context, filter repositories.ProviderFilter) (types.List[ProviderCard], error)
	GetHelper(ctx context.Context, id uuid.UUID) (*HelperProfile, error)
	HelperReviews(ctx context.Context, id uuid.UUID, page repositories.Page) (types.List[*Review], error)
	ListBusinesses(ctx context.Context, filter repositories.ProviderFilter) (types.List[ProviderCard], error)
	GetBusiness(ctx context.Context, id uuid.UUID) (*BusinessProfile, error)
	ListWorkers(ctx context.Context, business *User) ([]*User, error)
	CreateWorker(ctx context.Context, business *User, request CreateWorkerRequest) (*User, error)
	UpdateWorker(ctx context.Context, business *User, id uuid.UUID, request UpdateWorkerRequest) (*User, error)
	DeleteWorker(ctx context.Context, business *User, id uuid.UUID) error
}

type ProviderController struct {
	userRepo           repositories.UserRepository
	roleRepo           repositories.RoleRepository
	profileRepo        repositories.ProfileRepository
	listingRepo        repositories.ServiceListingRepository
	reviewRepo         repositories.ReviewRepository
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
) ProviderControllerInterface {
	return &ProviderController{
		userRepo:           repos.User,
		roleRepo:           repos.Role,
		profileRepo:        repos.Profile,
		listingRepo:        repos.ServiceListing,
		reviewRepo:         repos.Review,
		transactionService: services.Transaction,
		profileCache:       services.ProfileCache,
		db:                 db,
		config:             config,
		now:                time.Now,
		log:                logger.New("providerController"),
	}
}

func (c *ProviderController) ListHelpers(
	ctx context.Context,
	filter repositories.ProviderFilter,
) (types.List[ProviderCard], error) {
	filter.Role = RoleHelper
	return c.listProviders(ctx, filter)
}

func (c *ProviderController) ListBusinesses(
	ctx context.Context,
	filter repositories.ProviderFilter,
) (types.List[ProviderCard], error) {
	filter.Role = RoleBusiness
	return c.listProviders(ctx, filter)
}

func (c *ProviderController) listProviders(
	ctx context.Context,
	filter repositories.ProviderFilter,
) (types.List[ProviderCard], error) {
	users, total, err := c.userRepo.ListProviders(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[ProviderCard]{}, err
	}

	cards := make([]ProviderCard, 0, len(users))
	for _, user := range users {
		cards = append(cards, card(user))
	}
	return types.NewList(cards, filter.Page, total), nil
}

// GetHelper serves the public helper profile from the profile cache when it
// is warm.
func (c *ProviderController) GetHelper(ctx context.Context, id uuid.UUID) (*HelperProfile, error) {
	var cached HelperProfile
	if c.profileCache.Get(ctx, id, &cached) {
		return &cached, nil
	}

	user, err := c.publicProvider(ctx, id, RoleHelper)
	if err != nil {
		return nil, err
	}

	listings, err := c.activeListings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	rating, err := c.reviewRepo.Summary(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &HelperProfile{
		ProviderCard: card(user),
		Listings:     listings,
		Rating:       rating,
	}

	if user.BusinessID != nil {
		business, err := c.userRepo.GetByID(ctx, c.db.SQL, *user.BusinessID)
		if err == nil {
			summary := business.ToSummary()
			profile.Business = &summary
		} else if !isNotFound(err) {
			return nil, err
		}
	}

	c.profileCache.Set(ctx, id, profile)
	return profile, nil
}

func (c *ProviderController) HelperReviews(
	ctx context.Context,
	id uuid.UUID,
	page repositories.Page,
) (types.List[*Review], error) {
	if _, err := c.publicProvider(ctx, id, RoleHelper); err != nil {
		return types.List[*Review]{}, err
	}

	reviews, total, err := c.reviewRepo.ListByHelper(ctx, c.db.SQL, id, page)
	if err != nil {
		return types.List[*Review]{}, err
	}
	return types.NewList(reviews, page, total), nil
}

func (c *ProviderController) GetBusiness(ctx context.Context, id uuid.UUID) (*BusinessProfile, error) {
	user, err := c.publicProvider(ctx, id, RoleBusiness)
	if err != nil {
		return nil, err
	}

	listings, err := c.activeListings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	workers, err := c.userRepo.CountWorkers(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}

	return &BusinessProfile{
		ProviderCard: card(user),
		Listings:     listings,
		WorkerCount:  workers,
	}, nil
}

func (c *ProviderController) ListWorkers(ctx context.Context, business *User) ([]*User, error) {
	workers, err := c.userRepo.ListWorkers(ctx, c.db.SQL, business.ID)
	if err != nil {
		return nil, err
	}
	if workers == nil {
		workers = []*User{}
	}
	return workers, nil
}

// CreateWorker registers a helper account managed by the business. The
// business vouches for the phone number, so it starts out verified.
func (c *ProviderController) CreateWorker(
	ctx context.Context,
	business *User,
	request CreateWorkerRequest,
) (*User, error) {
	log := c.log.TraceFromContext(ctx).Function("CreateWorker")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	phone, _ := utils.NormalizePhone(request.Phone)
	var email *string
	if request.Email != nil {
		if normalized := strings.ToLower(strings.TrimSpace(*request.Email)); normalized != "" {
			email = &normalized
		}
	}

	fields := map[string]string{}
	exists, err := c.userRepo.PhoneExists(ctx, c.db.SQL, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		fields["phone"] = "The phone has already been taken"
	}
	if email != nil {
		exists, err := c.userRepo.EmailExists(ctx, c.db.SQL, *email)
		if err != nil {
			return nil, err
		}
		if exists {
			fields["email"] = "The email has already been taken"
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	role, err := c.roleRepo.GetByName(ctx, c.db.SQL, RoleHelper)
	if err != nil {
		return nil, err
	}

	passwordHash, err := services.HashPassword(request.Password)
	if err != nil {
		return nil, log.Err("failed to hash password", err)
	}

	verifiedAt := c.now()
	worker := &User{
		Name:            strings.TrimSpace(request.Name),
		Phone:           phone,
		Email:           email,
		PasswordHash:    passwordHash,
		IsActive:        true,
		PhoneVerifiedAt: &verifiedAt,
		Locale:          business.Locale,
		BusinessID:      &business.ID,
		Roles:           []Role{*role},
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.userRepo.Create(ctx, tx, worker); err != nil {
			return err
		}

		profile := &Profile{OwnerID: worker.ID, OwnerType: ProfileOwnerUsers}
		profile.Apply(request.Profile)
		if err := c.profileRepo.Save(ctx, tx, profile); err != nil {
			return err
		}
		worker.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("worker created", "businessID", business.ID, "workerID", worker.ID)
	return worker, nil
}

func (c *ProviderController) UpdateWorker(
	ctx context.Context,
	business *User,
	id uuid.UUID,
	request UpdateWorkerRequest,
) (*User, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	worker, err := c.ownedWorker(ctx, business, id)
	if err != nil {
		return nil, err
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		updates := map[string]any{}
		if request.Name != nil {
			updates["name"] = strings.TrimSpace(*request.Name)
		}
		if request.IsActive != nil {
			updates["is_active"] = *request.IsActive
		}
		if len(updates) > 0 {
			if err := c.userRepo.Update(ctx, tx, worker.ID, updates); err != nil {
				return err
			}
		}

		profile, err := c.profileRepo.GetByOwner(ctx, tx, worker.ID)
		if isNotFound(err) {
			profile = &Profile{OwnerID: worker.ID, OwnerType: ProfileOwnerUsers}
		} else if err != nil {
			return err
		}
		profile.Apply(request.Profile)
		return c.profileRepo.Save(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}

	c.profileCache.Invalidate(ctx, worker.ID)

	return c.userRepo.GetByID(ctx, c.db.SQL, worker.ID)
}

func (c *ProviderController) DeleteWorker(ctx context.Context, business *User, id uuid.UUID) error {
	log := c.log.TraceFromContext(ctx).Function("DeleteWorker")

	worker, err := c.ownedWorker(ctx, business, id)
	if err != nil {
		return err
	}

	if err := c.userRepo.Delete(ctx, c.db.SQL, worker.ID); err != nil {
		return err
	}

	c.profileCache.Invalidate(ctx, worker.ID)

	log.Info("worker removed", "businessID", business.ID, "workerID", worker.ID)
	return nil
}

func (c *ProviderController) ownedWorker(ctx context.Context, business *User, id uuid.UUID) (*User, error) {
	worker, err := c.userRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}
	if worker.BusinessID == nil || *worker.BusinessID != business.ID {
		return nil, apperrors.Forbidden("This helper is not managed by your business")
	}
	return worker, nil
}

// publicProvider loads an active user holding role, reporting anyone else as
// missing.
func (c *ProviderController) publicProvider(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	user, err := c.userRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.HasRole(role) {
		return nil, apperrors.NotFound(strings.ToUpper(role[:1]) + role[1:])
	}
	return user, nil
}

func (c *ProviderController) activeListings(ctx context.Context, userID uuid.UUID) ([]*ServiceListing, error) {
	listings, err := c.listingRepo.ListByUser(ctx, c.db.SQL, userID)
	if err != nil {
		return nil, err
	}

	active := make([]*ServiceListing, 0, len(listings))
	for _, listing := range listings {
		if listing.Status == ServiceListingStatusActive {
			active = append(active, listing)
		}
	}
	return active, nil
}

func card(user *User) ProviderCard {
	return ProviderCard{
		ID:          user.ID,
		Name:        user.Name,
		IsVerified:  user.IsVerified,
		Profile:     user.Profile,
		MemberSince: user.CreatedAt,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
