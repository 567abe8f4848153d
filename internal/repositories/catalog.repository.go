package repositories

import (
	"context"
	"strings"
	"time"

	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const (
	CATALOG_CACHE_PREFIX = "catalog"
	CATALOG_CACHE_EXPIRY = 24 * time.Hour
)

type CatalogRepository interface {
	ListServiceTypes(ctx context.Context, tx *gorm.DB) ([]ServiceType, error)
	ListLocations(ctx context.Context, tx *gorm.DB, city string) ([]Location, error)
	GetServiceTypeByID(ctx context.Context, tx *gorm.DB, id int) (*ServiceType, error)
	GetServiceTypeBySlug(ctx context.Context, tx *gorm.DB, slug string) (*ServiceType, error)
	GetServiceTypesByIDs(ctx context.Context, tx *gorm.DB, ids []int) ([]ServiceType, error)
	GetLocationsByIDs(ctx context.Context, tx *gorm.DB, ids []int) ([]Location, error)
}

type catalogRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewCatalogRepository(cache database.CacheClient) CatalogRepository {
	return &catalogRepository{
		cache: cache,
		log:   logger.New("catalogRepository"),
	}
}

// ListServiceTypes returns active service types, cached in the general cache.
func (r *catalogRepository) ListServiceTypes(ctx context.Context, tx *gorm.DB) ([]ServiceType, error) {
	log := r.log.Function("ListServiceTypes")

	var serviceTypes []ServiceType
	if r.cache != nil {
		found, err := database.NewCacheBuilder(r.cache, "service_types").
			WithContext(ctx).
			WithHash(CATALOG_CACHE_PREFIX).
			Get(&serviceTypes)
		if err != nil {
			log.Warn("failed to read service types from cache", "error", err)
		}
		if found {
			return serviceTypes, nil
		}
	}

	if err := tx.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&serviceTypes).Error; err != nil {
		return nil, log.Err("failed to list service types", err)
	}

	if r.cache != nil {
		err := database.NewCacheBuilder(r.cache, "service_types").
			WithContext(ctx).
			WithHash(CATALOG_CACHE_PREFIX).
			WithStruct(serviceTypes).
			WithTTL(CATALOG_CACHE_EXPIRY).
			Set()
		if err != nil {
			log.Warn("failed to cache service types", "error", err)
		}
	}

	return serviceTypes, nil
}

func (r *catalogRepository) ListLocations(
	ctx context.Context,
	tx *gorm.DB,
	city string,
) ([]Location, error) {
	log := r.log.Function("ListLocations")

	query := tx.WithContext(ctx).Where("is_active = ?", true)
	if city = strings.TrimSpace(city); city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(city))
	}

	var locations []Location
	if err := query.Order("city ASC, area ASC").Find(&locations).Error; err != nil {
		return nil, log.Err("failed to list locations", err)
	}

	return locations, nil
}

func (r *catalogRepository) GetServiceTypeByID(
	ctx context.Context,
	tx *gorm.DB,
	id int,
) (*ServiceType, error) {
	log := r.log.Function("GetServiceTypeByID")

	var serviceType ServiceType
	if err := tx.WithContext(ctx).First(&serviceType, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, log.Err("failed to get service type", err, "id", id)
	}

	return &serviceType, nil
}

func (r *catalogRepository) GetServiceTypeBySlug(
	ctx context.Context,
	tx *gorm.DB,
	slug string,
) (*ServiceType, error) {
	log := r.log.Function("GetServiceTypeBySlug")

	var serviceType ServiceType
	if err := tx.WithContext(ctx).First(&serviceType, "slug = ?", slug).Error; err != nil {
		return nil, log.Err("failed to get service type", err, "slug", slug)
	}

	return &serviceType, nil
}

func (r *catalogRepository) GetServiceTypesByIDs(
	ctx context.Context,
	tx *gorm.DB,
	ids []int,
) ([]ServiceType, error) {
	log := r.log.Function("GetServiceTypesByIDs")

	if len(ids) == 0 {
		return []ServiceType{}, nil
	}

	var serviceTypes []ServiceType
	if err := tx.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&serviceTypes).Error; err != nil {
		return nil, log.Err("failed to get service types", err)
	}

	return serviceTypes, nil
}

func (r *catalogRepository) GetLocationsByIDs(
	ctx context.Context,
	tx *gorm.DB,
	ids []int,
) ([]Location, error) {
	log := r.log.Function("GetLocationsByIDs")

	if len(ids) == 0 {
		return []Location{}, nil
	}

	var locations []Location
	if err := tx.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&locations).Error; err != nil {
		return nil, log.Err("failed to get locations", err)
	}

	return locations, nil
}
