package repositories

import (
	"context"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type RoleRepository interface {
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*Role, error)
	List(ctx context.Context, tx *gorm.DB) ([]Role, error)
}

type roleRepository struct {
	log logger.Logger
}

func NewRoleRepository() RoleRepository {
	return &roleRepository{
		log: logger.New("roleRepository"),
	}
}

func (r *roleRepository) GetByName(ctx context.Context, tx *gorm.DB, name string) (*Role, error) {
	log := r.log.Function("GetByName")

	var role Role
	if err := tx.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		return nil, log.Err("failed to get role", err, "name", name)
	}

	return &role, nil
}

func (r *roleRepository) List(ctx context.Context, tx *gorm.DB) ([]Role, error) {
	log := r.log.Function("List")

	var roles []Role
	if err := tx.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, log.Err("failed to list roles", err)
	}

	return roles, nil
}
