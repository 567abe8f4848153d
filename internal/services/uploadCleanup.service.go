package services

import (
	"context"
	"time"

	"kamwaalay/internal/repositories"
	"kamwaalay/internal/storage"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const UploadCleanupMinAge = 24 * time.Hour

type UploadStore interface {
	Files(ctx context.Context) ([]storage.FileInfo, error)
	Delete(ctx context.Context, relPath string) error
}

// UploadCleanupService removes uploaded files that no document or profile
// references anymore.
type UploadCleanupService struct {
	db        *gorm.DB
	store     UploadStore
	documents repositories.DocumentRepository
	profiles  repositories.ProfileRepository
	now       func() time.Time
	log       logger.Logger
}

func NewUploadCleanupService(
	db *gorm.DB,
	store UploadStore,
	documents repositories.DocumentRepository,
	profiles repositories.ProfileRepository,
) *UploadCleanupService {
	return &UploadCleanupService{
		db:        db,
		store:     store,
		documents: documents,
		profiles:  profiles,
		now:       time.Now,
		log:       logger.New("uploadCleanupService"),
	}
}

// CleanupOrphans deletes unreferenced files older than UploadCleanupMinAge
// and returns how many were removed.
func (s *UploadCleanupService) CleanupOrphans(ctx context.Context) (int, error) {
	log := s.log.TraceFromContext(ctx).Function("CleanupOrphans")

	referenced := make(map[string]struct{})

	documentPaths, err := s.documents.ListFilePaths(ctx, s.db)
	if err != nil {
		return 0, err
	}
	photoPaths, err := s.profiles.ListPhotoPaths(ctx, s.db)
	if err != nil {
		return 0, err
	}
	for _, path := range append(documentPaths, photoPaths...) {
		referenced[path] = struct{}{}
	}

	files, err := s.store.Files(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-UploadCleanupMinAge)
	var removed int
	var failures []error
	for _, file := range files {
		if _, ok := referenced[file.Path]; ok {
			continue
		}
		if file.ModTime.After(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, file.Path); err != nil {
			failures = append(failures, err)
			log.Er("failed to remove orphaned upload", err, "path", file.Path)
			continue
		}
		removed++
	}

	if len(failures) > 0 {
		return removed, log.Err("failed to cleanup some uploads", failures[0], "errorCount", len(failures))
	}

	log.Info("Cleaned up orphaned uploads", "scanned", len(files), "removed", removed)
	return removed, nil
}
