package testutil

import (
	"context"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryUsers is a map backed UserRepository. Methods that are not
// overridden panic through the embedded nil interface.
type MemoryUsers struct {
	repositories.UserRepository
	mu    sync.Mutex
	Users map[uuid.UUID]*models.User
}

func NewMemoryUsers(users ...*models.User) *MemoryUsers {
	repo := &MemoryUsers{Users: make(map[uuid.UUID]*models.User)}
	for _, user := range users {
		repo.Users[user.ID] = user
	}
	return repo
}

func (r *MemoryUsers) Add(users ...*models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range users {
		r.Users[user.ID] = user
	}
}

func (r *MemoryUsers) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.Users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryUsers) PhoneExists(ctx context.Context, tx *gorm.DB, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.Users {
		if user.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUsers) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.Users {
		if user.Email != nil && strings.EqualFold(*user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUsers) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.Users[user.ID] = user
	return nil
}

// Update applies the column names controllers write to the stored user.
func (r *MemoryUsers) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.Users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	for key, value := range updates {
		switch key {
		case "name":
			user.Name = value.(string)
		case "email":
			email := value.(string)
			user.Email = &email
		case "password_hash":
			user.PasswordHash = value.(string)
		case "locale":
			user.Locale = value.(string)
		case "is_active":
			user.IsActive = value.(bool)
		case "is_verified":
			user.IsVerified = value.(bool)
		case "onboarding_completed_at":
			at := value.(time.Time)
			user.OnboardingCompletedAt = &at
		case "phone_verified_at":
			at := value.(time.Time)
			user.PhoneVerifiedAt = &at
		}
	}
	return nil
}

func (r *MemoryUsers) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.Users, id)
	return nil
}

func (r *MemoryUsers) ListWorkers(ctx context.Context, tx *gorm.DB, businessID uuid.UUID) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var workers []*models.User
	for _, user := range r.Users {
		if user.BusinessID != nil && *user.BusinessID == businessID {
			workers = append(workers, user)
		}
	}
	return workers, nil
}

func (r *MemoryUsers) CountWorkers(ctx context.Context, tx *gorm.DB, businessID uuid.UUID) (int64, error) {
	workers, err := r.ListWorkers(ctx, tx, businessID)
	return int64(len(workers)), err
}

// MemoryProfiles is a map backed ProfileRepository keyed by owner.
type MemoryProfiles struct {
	mu       sync.Mutex
	Profiles map[uuid.UUID]*models.Profile
}

func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{Profiles: make(map[uuid.UUID]*models.Profile)}
}

func (r *MemoryProfiles) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile, ok := r.Profiles[ownerID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryProfiles) Save(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.OwnerType == "" {
		profile.OwnerType = models.ProfileOwnerUsers
	}
	copied := *profile
	r.Profiles[profile.OwnerID] = &copied
	return nil
}

func (r *MemoryProfiles) ListPhotoPaths(ctx context.Context, tx *gorm.DB) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var paths []string
	for _, profile := range r.Profiles {
		if profile.PhotoPath != nil {
			paths = append(paths, *profile.PhotoPath)
		}
	}
	return paths, nil
}

// MemoryDocuments is a map backed DocumentRepository.
type MemoryDocuments struct {
	repositories.DocumentRepository
	mu        sync.Mutex
	Documents map[uuid.UUID]*models.Document
}

func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{Documents: make(map[uuid.UUID]*models.Document)}
}

func (r *MemoryDocuments) Create(ctx context.Context, tx *gorm.DB, document *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if document.ID == uuid.Nil {
		document.ID = uuid.New()
	}
	if document.Status == "" {
		document.Status = models.DocumentStatusPending
	}
	document.CreatedAt = time.Now()
	r.Documents[document.ID] = document
	return nil
}

func (r *MemoryDocuments) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if document, ok := r.Documents[id]; ok {
		return document, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryDocuments) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var documents []models.Document
	for _, document := range r.Documents {
		if document.UserID == userID {
			documents = append(documents, *document)
		}
	}
	return documents, nil
}

func (r *MemoryDocuments) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	documents, err := r.ListByUser(ctx, tx, userID)
	return int64(len(documents)), err
}

func (r *MemoryDocuments) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, ok := r.Documents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			document.Status = value.(models.DocumentStatus)
		case "admin_notes":
			if notes, ok := value.(*string); ok {
				document.AdminNotes = notes
			}
		case "reviewed_by":
			reviewer := value.(uuid.UUID)
			document.ReviewedBy = &reviewer
		case "reviewed_at":
			at := value.(time.Time)
			document.ReviewedAt = &at
		}
	}
	return nil
}

func (r *MemoryDocuments) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Documents[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.Documents, id)
	return nil
}

// MemoryUploader records uploads and deletions without touching the disk.
type MemoryUploader struct {
	mu      sync.Mutex
	Saved   []string
	Deleted []string
	Err     error
}

func (u *MemoryUploader) SaveUpload(
	ctx context.Context,
	dir string,
	header *multipart.FileHeader,
	allowed []string,
) (*storage.StoredFile, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.Err != nil {
		return nil, u.Err
	}

	relPath := path.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
	u.Saved = append(u.Saved, relPath)

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" && len(allowed) > 0 {
		mimeType = allowed[0]
	}

	return &storage.StoredFile{
		Path:         relPath,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
	}, nil
}

func (u *MemoryUploader) Delete(ctx context.Context, relPath string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.Deleted = append(u.Deleted, relPath)
	return nil
}

func (u *MemoryUploader) Path(relPath string) (string, error) {
	return path.Join("/srv/storage", relPath), nil
}

func (u *MemoryUploader) URL(relPath string) string {
	return "/storage/" + relPath
}

// FileHeader builds a multipart header for controller upload tests.
func FileHeader(name, contentType string, size int64) *multipart.FileHeader {
	header := &multipart.FileHeader{Filename: name, Size: size, Header: make(map[string][]string)}
	header.Header.Set("Content-Type", contentType)
	return header
}
