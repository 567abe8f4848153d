package repositories

import (
	"context"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, tx *gorm.DB, profile *Profile) error
	ListPhotoPaths(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type profileRepository struct {
	log logger.Logger
}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{
		log: logger.New("profileRepository"),
	}
}

func (r *profileRepository) GetByOwner(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
) (*Profile, error) {
	log := r.log.Function("GetByOwner")

	var profile Profile
	if err := tx.WithContext(ctx).
		First(&profile, "owner_id = ? AND owner_type = ?", ownerID, ProfileOwnerUsers).Error; err != nil {
		return nil, log.Err("failed to get profile", err, "ownerID", ownerID)
	}

	return &profile, nil
}

// Save inserts the profile when it has no id yet and updates every column
// otherwise.
func (r *profileRepository) Save(ctx context.Context, tx *gorm.DB, profile *Profile) error {
	log := r.log.Function("Save")

	if profile.OwnerType == "" {
		profile.OwnerType = ProfileOwnerUsers
	}

	var err error
	if profile.ID == uuid.Nil {
		err = tx.WithContext(ctx).Create(profile).Error
	} else {
		err = tx.WithContext(ctx).Save(profile).Error
	}
	if err != nil {
		return log.Err("failed to save profile", err, "ownerID", profile.OwnerID)
	}

	return nil
}

func (r *profileRepository) ListPhotoPaths(ctx context.Context, tx *gorm.DB) ([]string, error) {
	log := r.log.Function("ListPhotoPaths")

	var paths []string
	if err := tx.WithContext(ctx).
		Model(&Profile{}).
		Unscoped().
		Where("photo_path IS NOT NULL AND photo_path <> ''").
		Pluck("photo_path", &paths).Error; err != nil {
		return nil, log.Err("failed to list profile photos", err)
	}

	return paths, nil
}
