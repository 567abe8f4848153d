package catalogController

import (
	"context"
	"errors"
	"testing"

	"kamwaalay/config"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCatalog struct {
	repositories.CatalogRepository
	serviceTypes []ServiceType
	locations    []Location
	city         string
	err          error
}

func (f *fakeCatalog) ListServiceTypes(ctx context.Context, tx *gorm.DB) ([]ServiceType, error) {
	return f.serviceTypes, f.err
}

func (f *fakeCatalog) ListLocations(ctx context.Context, tx *gorm.DB, city string) ([]Location, error) {
	f.city = city
	return f.locations, f.err
}

func newController(t *testing.T, catalog *fakeCatalog) CatalogControllerInterface {
	db, _ := testutil.NewMockDB(t)
	return New(repositories.Repository{Catalog: catalog}, services.Service{}, config.Config{}, db)
}

func TestServiceTypes(t *testing.T) {
	catalog := &fakeCatalog{serviceTypes: []ServiceType{{Slug: "cook", Name: "Cook"}}}

	serviceTypes, err := newController(t, catalog).ServiceTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cook", serviceTypes[0].Slug)
}

func TestServiceTypes_EmptyIsNotNil(t *testing.T) {
	serviceTypes, err := newController(t, &fakeCatalog{}).ServiceTypes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, serviceTypes)
	assert.Empty(t, serviceTypes)
}

func TestLocations(t *testing.T) {
	catalog := &fakeCatalog{locations: []Location{{City: "Lahore", Area: "Gulberg"}}}
	controller := newController(t, catalog)

	locations, err := controller.Locations(context.Background(), "Lahore")
	require.NoError(t, err)
	assert.Len(t, locations, 1)
	assert.Equal(t, "Lahore", catalog.city)

	catalog.err = errors.New("connection refused")
	_, err = controller.Locations(context.Background(), "")
	assert.Error(t, err)
}
