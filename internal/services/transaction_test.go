package services

import (
	"context"
	"errors"
	"testing"

	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTransactionService_Execute(t *testing.T) {
	conflict := apperrors.Unprocessable("This job post is no longer accepting applications.")

	tests := []struct {
		name    string
		fn      func(ctx context.Context, tx *gorm.DB) error
		commit  bool
		wantErr error
	}{
		{
			name:   "commits when the unit of work succeeds",
			fn:     func(ctx context.Context, tx *gorm.DB) error { return nil },
			commit: true,
		},
		{
			name:    "rolls back and returns business errors untouched",
			fn:      func(ctx context.Context, tx *gorm.DB) error { return conflict },
			wantErr: conflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := testutil.NewMockDB(t)
			mock.ExpectBegin()
			if tt.commit {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := NewTransactionService(db).Execute(context.Background(), tt.fn)

			if tt.wantErr != nil {
				assert.Same(t, tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionService_Execute_PanicIsRolledBack(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := NewTransactionService(db).Execute(context.Background(), func(ctx context.Context, tx *gorm.DB) error {
		panic("job post vanished mid-accept")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic during transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Execute_CommitFailure(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := NewTransactionService(db).Execute(context.Background(), func(ctx context.Context, tx *gorm.DB) error {
		return nil
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_Execute_BeginFailure(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := NewTransactionService(db).Execute(context.Background(), func(ctx context.Context, tx *gorm.DB) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}
