// Package testutil holds helpers shared by controller and handler tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kamwaalay/internal/database"
	"kamwaalay/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// NewMockDB returns a database backed by sqlmock. Repositories are faked in
// controller tests, so the mock only sees transaction begin and commit.
func NewMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return database.DB{SQL: gormDB}, mock
}

// ExpectTransactions queues n successful transactions on the mock.
func ExpectTransactions(mock sqlmock.Sqlmock, n int) {
	for range n {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

type SentNotification struct {
	UserID uuid.UUID
	Type   models.NotificationType
	Data   map[string]any
}

// RecordingNotifier collects notifications instead of storing them.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []SentNotification
}

func (n *RecordingNotifier) Notify(
	ctx context.Context,
	userID uuid.UUID,
	notificationType models.NotificationType,
	data map[string]any,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Sent = append(n.Sent, SentNotification{UserID: userID, Type: notificationType, Data: data})
	return nil
}

// To returns the notification types sent to userID in order.
func (n *RecordingNotifier) To(userID uuid.UUID) []models.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()

	var types []models.NotificationType
	for _, sent := range n.Sent {
		if sent.UserID == userID {
			types = append(types, sent.Type)
		}
	}
	return types
}

// MemoryProfileCache is an in-process profile cache that records invalidations.
type MemoryProfileCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]byte
	Invalidated []uuid.UUID
}

func NewMemoryProfileCache() *MemoryProfileCache {
	return &MemoryProfileCache{entries: make(map[uuid.UUID][]byte)}
}

func (c *MemoryProfileCache) Get(ctx context.Context, userID uuid.UUID, result any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries[userID]
	if !ok {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

func (c *MemoryProfileCache) Set(ctx context.Context, userID uuid.UUID, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = data
}

func (c *MemoryProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, userID)
	c.Invalidated = append(c.Invalidated, userID)
}

var phoneCounter atomic.Int64

// NewUser builds an active, phone verified user with the given roles.
func NewUser(name string, roles ...string) *models.User {
	user := &models.User{
		Name:     name,
		Phone:    fmt.Sprintf("+92300%07d", phoneCounter.Add(1)),
		IsActive: true,
		Locale:   "en",
	}
	verifiedAt := time.Now().Add(-time.Hour)
	user.ID = uuid.New()
	user.PhoneVerifiedAt = &verifiedAt
	for i, role := range roles {
		user.Roles = append(user.Roles, models.Role{BaseModel: models.BaseModel{ID: i + 1}, Name: role})
	}
	return user
}
