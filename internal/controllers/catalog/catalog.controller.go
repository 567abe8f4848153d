package catalogController

import (
	"context"

	"kamwaalay/config"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type CatalogControllerInterface interface {
	ServiceTypes(ctx context.Context) ([]ServiceType, error)
	Locations(ctx context.Context, city string) ([]Location, error)
}

type CatalogController struct {
	catalogRepo repositories.CatalogRepository
	db          database.DB
	config      config.Config
	log         logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) CatalogControllerInterface {
	return &CatalogController{
		catalogRepo: repos.Catalog,
		db:          db,
		config:      config,
		log:         logger.New("catalogController"),
	}
}

func (c *CatalogController) ServiceTypes(ctx context.Context) ([]ServiceType, error) {
	serviceTypes, err := c.catalogRepo.ListServiceTypes(ctx, c.db.SQL)
	if err != nil {
		return nil, err
	}
	if serviceTypes == nil {
		serviceTypes = []ServiceType{}
	}
	return serviceTypes, nil
}

// Locations lists active locations, narrowed to one city when given.
func (c *CatalogController) Locations(ctx context.Context, city string) ([]Location, error) {
	locations, err := c.catalogRepo.ListLocations(ctx, c.db.SQL, city)
	if err != nil {
		return nil, err
	}
	if locations == nil {
		locations = []Location{}
	}
	return locations, nil
}
