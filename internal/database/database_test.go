package database

import (
	"context"
	"testing"
	"time"

	"kamwaalay/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, SESSION_CACHE_INDEX)
	assert.Equal(t, 2, USER_CACHE_INDEX)
	assert.Equal(t, 3, EVENTS_CACHE_INDEX)
}

func TestDB_StructCreation(t *testing.T) {
	log := logger.New("test")

	db := &DB{
		log: log,
	}

	assert.NotNil(t, db)
	assert.Nil(t, db.SQL)
	assert.NoError(t, db.Close())
}

func TestModels(t *testing.T) {
	assert.Len(t, Models(), 13)
}

func TestCacheBuilder_Key(t *testing.T) {
	id := uuid.MustParse("0192f1a4-7c2b-7000-8000-000000000001")

	tests := []struct {
		name     string
		builder  *CacheBuilder
		expected string
	}{
		{
			name:     "String key",
			builder:  NewCacheBuilder(nil, "+923001234567"),
			expected: "+923001234567",
		},
		{
			name:     "String key with hash",
			builder:  NewCacheBuilder(nil, "+923001234567").WithHash("otp:register"),
			expected: "otp:register:+923001234567",
		},
		{
			name:     "UUID key with hash",
			builder:  NewCacheBuilder(nil, id).WithHash("helper_profile"),
			expected: "helper_profile:" + id.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.builder.Key())
		})
	}
}

func TestCacheBuilder_Validation(t *testing.T) {
	err := NewCacheBuilder(nil, "").WithValue("x").Set()
	assert.EqualError(t, err, "key is required")

	err = NewCacheBuilder(nil, "key").Set()
	assert.EqualError(t, err, "value is required")

	_, err = NewCacheBuilder(nil, "key").WithStruct(make(chan int)).Get(&struct{}{})
	assert.Error(t, err)
}

func TestCacheBuilder_TimeoutContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cb := NewCacheBuilder(nil, "key").WithContext(ctx).WithTimeout(10 * time.Second)
	timeoutCtx, timeoutCancel := cb.createTimeoutContext()
	defer timeoutCancel()

	deadline, ok := timeoutCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{
		DatabaseHost:     "db",
		DatabasePort:     5432,
		DatabaseUser:     "kamwaalay",
		DatabasePassword: "secret",
		DatabaseName:     "kamwaalay_test",
	})

	assert.Equal(t, "host=db port=5432 user=kamwaalay password=secret dbname=kamwaalay_test sslmode=disable TimeZone=UTC", dsn)
}
