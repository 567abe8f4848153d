package profileController

import (
	"context"
	"errors"
	"mime/multipart"
	"path"
	"strings"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/database"
	"kamwaalay/internal/locales"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/storage"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	ProfileFields
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"currentPassword"      validate:"required"`
	Password             string `json:"password"             validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

type UpdateLocaleRequest struct {
	Locale string `json:"locale" validate:"required,locale"`
}

type LocaleInfo struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

type ProfileControllerInterface interface {
	GetProfile(ctx context.Context, user *User) (*User, error)
	UpdateProfile(ctx context.Context, user *User, request UpdateProfileRequest) (*User, error)
	UploadPhoto(ctx context.Context, user *User, file *multipart.FileHeader) (*Profile, error)
	ChangePassword(ctx context.Context, user *User, request ChangePasswordRequest) error
	UpdateLocale(ctx context.Context, user *User, request UpdateLocaleRequest) (*User, error)
	Locales() []LocaleInfo
	Translations(locale string) (map[string]string, error)
}

type ProfileController struct {
	userRepo     repositories.UserRepository
	profileRepo  repositories.ProfileRepository
	profileCache services.ProfileCache
	storage      storage.Uploader
	catalog      *locales.Catalog
	db           database.DB
	config       config.Config
	log          logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) ProfileControllerInterface {
	return &ProfileController{
		userRepo:     repos.User,
		profileRepo:  repos.Profile,
		profileCache: services.ProfileCache,
		storage:      services.Storage,
		catalog:      services.Locales,
		db:           db,
		config:       config,
		log:          logger.New("profileController"),
	}
}

var localeNames = map[string]string{
	"en": "English",
	"ur": "اردو",
}

func (c *ProfileController) GetProfile(ctx context.Context, user *User) (*User, error) {
	return c.userRepo.GetByID(ctx, c.db.SQL, user.ID)
}

func (c *ProfileController) UpdateProfile(
	ctx context.Context,
	user *User,
	request UpdateProfileRequest,
) (*User, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	userUpdates := map[string]any{}
	if request.Name != nil {
		userUpdates["name"] = strings.TrimSpace(*request.Name)
	}
	if request.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*request.Email))
		if user.Email == nil || *user.Email != email {
			taken, err := c.userRepo.EmailExists(ctx, c.db.SQL, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperrors.Field("email", "The email has already been taken")
			}
		}
		userUpdates["email"] = email
	}
	if len(userUpdates) > 0 {
		if err := c.userRepo.Update(ctx, c.db.SQL, user.ID, userUpdates); err != nil {
			return nil, err
		}
	}

	profile, err := c.loadProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	profile.Apply(request.ProfileFields)
	if err := c.profileRepo.Save(ctx, c.db.SQL, profile); err != nil {
		return nil, err
	}

	if user.IsProvider() {
		c.profileCache.Invalidate(ctx, user.ID)
	}

	return c.userRepo.GetByID(ctx, c.db.SQL, user.ID)
}

func (c *ProfileController) UploadPhoto(
	ctx context.Context,
	user *User,
	file *multipart.FileHeader,
) (*Profile, error) {
	log := c.log.TraceFromContext(ctx).Function("UploadPhoto")

	if file == nil {
		return nil, apperrors.Field("photo", "This field is required")
	}

	stored, err := c.storage.SaveUpload(ctx, path.Join(storage.PhotoDir, user.ID.String()), file, storage.ImageMimeTypes)
	if err != nil {
		return nil, err
	}

	profile, err := c.loadProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	previous := profile.PhotoPath
	profile.PhotoPath = &stored.Path
	if err := c.profileRepo.Save(ctx, c.db.SQL, profile); err != nil {
		if deleteErr := c.storage.Delete(ctx, stored.Path); deleteErr != nil {
			log.Warn("failed to remove unsaved photo", "error", deleteErr, "path", stored.Path)
		}
		return nil, err
	}

	if previous != nil && *previous != "" && *previous != stored.Path {
		if err := c.storage.Delete(ctx, *previous); err != nil {
			log.Warn("failed to remove previous photo", "error", err, "path", *previous)
		}
	}

	if user.IsProvider() {
		c.profileCache.Invalidate(ctx, user.ID)
	}

	return profile, nil
}

func (c *ProfileController) ChangePassword(
	ctx context.Context,
	user *User,
	request ChangePasswordRequest,
) error {
	log := c.log.TraceFromContext(ctx).Function("ChangePassword")

	if err := validation.Struct(request); err != nil {
		return err
	}

	if !services.CheckPassword(user.PasswordHash, request.CurrentPassword) {
		return apperrors.Field("currentPassword", "The current password is incorrect")
	}

	passwordHash, err := services.HashPassword(request.Password)
	if err != nil {
		return log.Err("failed to hash password", err)
	}

	return c.userRepo.Update(ctx, c.db.SQL, user.ID, map[string]any{"password_hash": passwordHash})
}

func (c *ProfileController) UpdateLocale(
	ctx context.Context,
	user *User,
	request UpdateLocaleRequest,
) (*User, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	if err := c.userRepo.Update(ctx, c.db.SQL, user.ID, map[string]any{"locale": request.Locale}); err != nil {
		return nil, err
	}

	user.Locale = request.Locale
	return user, nil
}

func (c *ProfileController) Locales() []LocaleInfo {
	codes := c.catalog.Locales()
	infos := make([]LocaleInfo, 0, len(codes))
	for _, code := range codes {
		infos = append(infos, LocaleInfo{
			Code:    code,
			Name:    localeNames[code],
			Default: code == c.config.DefaultLocale,
		})
	}
	return infos
}

func (c *ProfileController) Translations(locale string) (map[string]string, error) {
	messages, ok := c.catalog.Messages(locale)
	if !ok {
		return nil, apperrors.NotFound("Locale")
	}
	return messages, nil
}

func (c *ProfileController) loadProfile(ctx context.Context, user *User) (*Profile, error) {
	profile, err := c.profileRepo.GetByOwner(ctx, c.db.SQL, user.ID)
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Profile{OwnerID: user.ID, OwnerType: ProfileOwnerUsers}, nil
	}
	return nil, err
}
