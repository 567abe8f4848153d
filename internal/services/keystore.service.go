package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"kamwaalay/internal/database"
)

// KeyStore is the short lived key/value storage behind OTP codes and the
// revoked token list.
type KeyStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type valkeyKeyStore struct {
	cache database.CacheClient
}

func NewValkeyKeyStore(cache database.CacheClient) KeyStore {
	return &valkeyKeyStore{cache: cache}
}

func (s *valkeyKeyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return database.NewCacheBuilder(s.cache, key).
		WithContext(ctx).
		WithValue(value).
		WithTTL(ttl).
		Set()
}

func (s *valkeyKeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	return database.NewCacheBuilder(s.cache, key).WithContext(ctx).GetString()
}

func (s *valkeyKeyStore) Delete(ctx context.Context, key string) error {
	return database.NewCacheBuilder(s.cache, key).WithContext(ctx).Delete()
}

func (s *valkeyKeyStore) Exists(ctx context.Context, key string) (bool, error) {
	return database.NewCacheBuilder(s.cache, key).WithContext(ctx).Exists()
}

func (s *valkeyKeyStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return database.NewCacheBuilder(s.cache, key).WithContext(ctx).WithTTL(ttl).Incr()
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryKeyStore keeps keys in process memory. Used by tests.
type MemoryKeyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryKeyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryKeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(key)
	return entry.value, ok, nil
}

func (s *MemoryKeyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryKeyStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.live(key)
	return ok, nil
}

func (s *MemoryKeyStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	entry, ok := s.live(key)
	if ok {
		parsed, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, err
		}
		count = parsed
	} else {
		entry.expiresAt = s.now().Add(ttl)
	}

	count++
	entry.value = strconv.FormatInt(count, 10)
	s.entries[key] = entry
	return count, nil
}

func (s *MemoryKeyStore) live(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
