package repositories

import (
	"context"
	"strings"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserFilter struct {
	Role   string
	Search string
	Page   Page
}

// ProviderFilter narrows the public helper and business directories.
type ProviderFilter struct {
	Role          string
	ServiceTypeID int
	City          string
	WorkType      string
	VerifiedOnly  bool
	Page          Page
}

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	PhoneExists(ctx context.Context, tx *gorm.DB, phone string) (bool, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, user *User) error
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, tx *gorm.DB, filter UserFilter) ([]*User, int64, error)
	ListProviders(ctx context.Context, tx *gorm.DB, filter ProviderFilter) ([]*User, int64, error)
	ListWorkers(ctx context.Context, tx *gorm.DB, businessID uuid.UUID) ([]*User, error)
	CountWorkers(ctx context.Context, tx *gorm.DB, businessID uuid.UUID) (int64, error)
	CountByRole(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
}

type userRepository struct {
	log logger.Logger
}

func NewUserRepository() UserRepository {
	return &userRepository{
		log: logger.New("userRepository"),
	}
}

func withUserRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Roles").Preload("Profile")
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if err := withUserRelations(tx.WithContext(ctx)).First(&user, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*User, error) {
	log := r.log.Function("GetByPhone")

	var user User
	if err := withUserRelations(tx.WithContext(ctx)).First(&user, "phone = ?", phone).Error; err != nil {
		return nil, log.Err("failed to get user by phone", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error) {
	log := r.log.Function("GetByEmail")

	var user User
	if err := withUserRelations(tx.WithContext(ctx)).
		First(&user, "LOWER(email) = ?", strings.ToLower(email)).Error; err != nil {
		return nil, log.Err("failed to get user by email", err)
	}

	return &user, nil
}

func (r *userRepository) PhoneExists(ctx context.Context, tx *gorm.DB, phone string) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&User{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
		return false, r.log.Function("PhoneExists").Err("failed to check phone", err)
	}
	return count > 0, nil
}

func (r *userRepository) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&User{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, r.log.Function("EmailExists").Err("failed to check email", err)
	}
	return count > 0, nil
}

// Create inserts the user together with its role links and profile.
func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err)
	}

	return nil
}

func (r *userRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	updates map[string]any,
) error {
	log := r.log.Function("Update")

	result := tx.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return log.Err("failed to update user", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return log.Err("failed to delete user", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter UserFilter,
) ([]*User, int64, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&User{})
	if filter.Role != "" {
		query = query.Where(
			"users.id IN (SELECT user_roles.user_id FROM user_roles JOIN roles ON roles.id = user_roles.role_id WHERE roles.name = ?)",
			filter.Role,
		)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(users.name) LIKE ? OR users.phone LIKE ? OR LOWER(users.email) LIKE ?)",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count users", err)
	}

	var users []*User
	if err := withUserRelations(query).
		Scopes(paginate(filter.Page)).
		Order("users.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, log.Err("failed to list users", err)
	}

	return users, total, nil
}

// ListProviders returns active, phone verified helpers or businesses that can
// be found in the public directory.
func (r *userRepository) ListProviders(
	ctx context.Context,
	tx *gorm.DB,
	filter ProviderFilter,
) ([]*User, int64, error) {
	log := r.log.Function("ListProviders")

	query := tx.WithContext(ctx).
		Model(&User{}).
		Where("users.is_active = ? AND users.phone_verified_at IS NOT NULL", true).
		Where(
			"users.id IN (SELECT user_roles.user_id FROM user_roles JOIN roles ON roles.id = user_roles.role_id WHERE roles.name = ?)",
			filter.Role,
		).
		Where("(users.onboarding_completed_at IS NOT NULL OR users.business_id IS NOT NULL)")

	if filter.VerifiedOnly {
		query = query.Where("users.is_verified = ?", true)
	}
	if filter.City != "" {
		query = query.Where(
			"users.id IN (SELECT profiles.owner_id FROM profiles WHERE profiles.owner_type = ? AND LOWER(profiles.city) = ? AND profiles.deleted_at IS NULL)",
			ProfileOwnerUsers,
			strings.ToLower(filter.City),
		)
	}
	if filter.ServiceTypeID != 0 || filter.WorkType != "" {
		listings := tx.Session(&gorm.Session{NewDB: true}).
			Model(&ServiceListing{}).
			Select("service_listings.user_id").
			Where("service_listings.status = ?", ServiceListingStatusActive)
		if filter.ServiceTypeID != 0 {
			listings = listings.Joins(
				"JOIN service_listing_service_types slst ON slst.service_listing_id = service_listings.id",
			).Where("slst.service_type_id = ?", filter.ServiceTypeID)
		}
		if filter.WorkType != "" {
			listings = listings.Where("service_listings.work_type = ?", filter.WorkType)
		}
		query = query.Where("users.id IN (?)", listings)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count providers", err)
	}

	var users []*User
	if err := withUserRelations(query).
		Scopes(paginate(filter.Page)).
		Order("users.is_verified DESC, users.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, log.Err("failed to list providers", err)
	}

	return users, total, nil
}

func (r *userRepository) ListWorkers(
	ctx context.Context,
	tx *gorm.DB,
	businessID uuid.UUID,
) ([]*User, error) {
	log := r.log.Function("ListWorkers")

	var users []*User
	if err := withUserRelations(tx.WithContext(ctx)).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, log.Err("failed to list workers", err, "businessID", businessID)
	}

	return users, nil
}

func (r *userRepository) CountWorkers(
	ctx context.Context,
	tx *gorm.DB,
	businessID uuid.UUID,
) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&User{}).
		Where("business_id = ?", businessID).
		Count(&count).Error; err != nil {
		return 0, r.log.Function("CountWorkers").Err("failed to count workers", err)
	}
	return count, nil
}

func (r *userRepository) CountByRole(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	log := r.log.Function("CountByRole")

	var rows []struct {
		Name  string
		Count int64
	}
	if err := tx.WithContext(ctx).
		Table("user_roles").
		Select("roles.name AS name, COUNT(*) AS count").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Group("roles.name").
		Scan(&rows).Error; err != nil {
		return nil, log.Err("failed to count users by role", err)
	}

	counts := make(map[string]int64, len(AllRoles))
	for _, role := range AllRoles {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[row.Name] = row.Count
	}

	return counts, nil
}
