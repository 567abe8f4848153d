package repositories

import (
	"context"
	"strings"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceListingFilter struct {
	ServiceTypeID int
	City          string
	LocationID    int
	WorkType      string
	MinRate       *decimal.Decimal
	MaxRate       *decimal.Decimal
	Status        string
	Page          Page
}

type ServiceListingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, listing *ServiceListing) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*ServiceListing, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*ServiceListing, error)
	ListPublic(ctx context.Context, tx *gorm.DB, filter ServiceListingFilter) ([]*ServiceListing, int64, error)
	List(ctx context.Context, tx *gorm.DB, filter ServiceListingFilter) ([]*ServiceListing, int64, error)
	Update(
		ctx context.Context,
		tx *gorm.DB,
		listing *ServiceListing,
		serviceTypes []ServiceType,
		locations []Location,
	) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type serviceListingRepository struct {
	log logger.Logger
}

func NewServiceListingRepository() ServiceListingRepository {
	return &serviceListingRepository{
		log: logger.New("serviceListingRepository"),
	}
}

func withListingRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("ServiceTypes").Preload("Locations")
}

// Create inserts the listing and its service type and location pivot rows.
func (r *serviceListingRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	listing *ServiceListing,
) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit("User").Create(listing).Error; err != nil {
		return log.Err("failed to create service listing", err, "userID", listing.UserID)
	}

	return nil
}

func (r *serviceListingRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*ServiceListing, error) {
	log := r.log.Function("GetByID")

	var listing ServiceListing
	if err := withListingRelations(tx.WithContext(ctx)).
		Preload("User.Profile").
		First(&listing, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get service listing", err, "id", id)
	}

	return &listing, nil
}

func (r *serviceListingRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]*ServiceListing, error) {
	log := r.log.Function("ListByUser")

	var listings []*ServiceListing
	if err := withListingRelations(tx.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&listings).Error; err != nil {
		return nil, log.Err("failed to list service listings", err, "userID", userID)
	}

	return listings, nil
}

// ListPublic only returns active listings whose owners are active.
func (r *serviceListingRepository) ListPublic(
	ctx context.Context,
	tx *gorm.DB,
	filter ServiceListingFilter,
) ([]*ServiceListing, int64, error) {
	filter.Status = string(ServiceListingStatusActive)
	query := r.filtered(tx.WithContext(ctx), filter).
		Where("service_listings.user_id IN (SELECT id FROM users WHERE is_active = ? AND deleted_at IS NULL)", true)

	return r.find(query, filter.Page, "ListPublic")
}

func (r *serviceListingRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter ServiceListingFilter,
) ([]*ServiceListing, int64, error) {
	return r.find(r.filtered(tx.WithContext(ctx), filter), filter.Page, "List")
}

func (r *serviceListingRepository) filtered(tx *gorm.DB, filter ServiceListingFilter) *gorm.DB {
	query := tx.Model(&ServiceListing{})

	if filter.Status != "" {
		query = query.Where("service_listings.status = ?", filter.Status)
	}
	if filter.WorkType != "" {
		query = query.Where("service_listings.work_type = ?", filter.WorkType)
	}
	if filter.MinRate != nil {
		query = query.Where("service_listings.monthly_rate >= ?", *filter.MinRate)
	}
	if filter.MaxRate != nil {
		query = query.Where("service_listings.monthly_rate <= ?", *filter.MaxRate)
	}
	if filter.ServiceTypeID != 0 {
		query = query.Where(
			"service_listings.id IN (SELECT service_listing_id FROM service_listing_service_types WHERE service_type_id = ?)",
			filter.ServiceTypeID,
		)
	}
	if filter.LocationID != 0 {
		query = query.Where(
			"service_listings.id IN (SELECT service_listing_id FROM service_listing_locations WHERE location_id = ?)",
			filter.LocationID,
		)
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where(
			"service_listings.id IN (SELECT sll.service_listing_id FROM service_listing_locations sll JOIN locations ON locations.id = sll.location_id WHERE LOWER(locations.city) = ?)",
			strings.ToLower(city),
		)
	}

	return query
}

func (r *serviceListingRepository) find(
	query *gorm.DB,
	page Page,
	function string,
) ([]*ServiceListing, int64, error) {
	log := r.log.Function(function)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count service listings", err)
	}

	var listings []*ServiceListing
	if err := withListingRelations(query).
		Preload("User.Profile").
		Scopes(paginate(page)).
		Order("service_listings.created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, 0, log.Err("failed to list service listings", err)
	}

	return listings, total, nil
}

// Update saves the listing columns and replaces its pivot rows when new
// service types or locations are given.
func (r *serviceListingRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	listing *ServiceListing,
	serviceTypes []ServiceType,
	locations []Location,
) error {
	log := r.log.Function("Update")

	db := tx.WithContext(ctx)
	if err := db.Model(listing).
		Select("work_type", "monthly_rate", "description", "status").
		Updates(listing).Error; err != nil {
		return log.Err("failed to update service listing", err, "id", listing.ID)
	}

	if serviceTypes != nil {
		if err := db.Model(listing).Association("ServiceTypes").Replace(serviceTypes); err != nil {
			return log.Err("failed to replace service types", err, "id", listing.ID)
		}
	}

	if locations != nil {
		if err := db.Model(listing).Association("Locations").Replace(locations); err != nil {
			return log.Err("failed to replace locations", err, "id", listing.ID)
		}
	}

	return nil
}

func (r *serviceListingRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).Delete(&ServiceListing{}, "id = ?", id)
	if result.Error != nil {
		return log.Err("failed to delete service listing", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *serviceListingRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&ServiceListing{}).Count(&count).Error; err != nil {
		return 0, r.log.Function("Count").Err("failed to count service listings", err)
	}
	return count, nil
}
