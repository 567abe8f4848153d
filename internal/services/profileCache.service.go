package services

import (
	"context"
	"time"

	"kamwaalay/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

const (
	HELPER_PROFILE_CACHE_PREFIX = "helper_profile"
	HELPER_PROFILE_CACHE_EXPIRY = time.Hour
)

// ProfileCache holds the rendered public profile of helpers and businesses.
type ProfileCache interface {
	Get(ctx context.Context, userID uuid.UUID, result any) bool
	Set(ctx context.Context, userID uuid.UUID, value any)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type profileCacheService struct {
	cache database.CacheClient
	log   logger.Logger
}

// NewProfileCache returns a cache backed by the user cache database. A nil
// client disables caching.
func NewProfileCache(cache database.CacheClient) ProfileCache {
	return &profileCacheService{
		cache: cache,
		log:   logger.New("ProfileCache"),
	}
}

func (s *profileCacheService) Get(ctx context.Context, userID uuid.UUID, result any) bool {
	if s.cache == nil {
		return false
	}

	builder := database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(HELPER_PROFILE_CACHE_PREFIX)
	found, err := builder.Get(result)
	if err != nil {
		s.log.Function("Get").Warn("failed to read profile cache", "error", err, "key", builder.Key())
		return false
	}

	return found
}

func (s *profileCacheService) Set(ctx context.Context, userID uuid.UUID, value any) {
	if s.cache == nil {
		return
	}

	builder := database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(HELPER_PROFILE_CACHE_PREFIX).
		WithStruct(value).
		WithTTL(HELPER_PROFILE_CACHE_EXPIRY)
	if err := builder.Set(); err != nil {
		s.log.Function("Set").Warn("failed to write profile cache", "error", err, "key", builder.Key())
	}
}

func (s *profileCacheService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}

	builder := database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(HELPER_PROFILE_CACHE_PREFIX)
	if err := builder.Delete(); err != nil {
		s.log.Function("Invalidate").Warn("failed to invalidate profile cache", "error", err, "key", builder.Key())
	}
}
