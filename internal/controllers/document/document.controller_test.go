package documentController

import (
	"context"
	"testing"
	"time"

	"kamwaalay/internal/apperrors"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/services"
	"kamwaalay/internal/testutil"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	controller *DocumentController
	documents  *testutil.MemoryDocuments
	users      *testutil.MemoryUsers
	notifier   *testutil.RecordingNotifier
	cache      *testutil.MemoryProfileCache
	uploads    *testutil.MemoryUploader
	mock       sqlmock.Sqlmock
}

func newFixture(t *testing.T, users ...*User) *fixture {
	db, mock := testutil.NewMockDB(t)

	f := &fixture{
		documents: testutil.NewMemoryDocuments(),
		users:     testutil.NewMemoryUsers(users...),
		notifier:  &testutil.RecordingNotifier{},
		cache:     testutil.NewMemoryProfileCache(),
		uploads:   &testutil.MemoryUploader{},
		mock:      mock,
	}
	f.controller = &DocumentController{
		documentRepo:       f.documents,
		userRepo:           f.users,
		transactionService: services.NewTransactionService(db),
		notifier:           f.notifier,
		profileCache:       f.cache,
		storage:            f.uploads,
		db:                 db,
		now:                func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
		log:                logger.New("documentController_test"),
	}
	return f
}

func (f *fixture) seed(userID uuid.UUID, status DocumentStatus) *Document {
	document := &Document{
		UserID:   userID,
		Type:     DocumentTypeCNIC,
		FilePath: "documents/" + userID.String() + "/" + uuid.NewString() + ".pdf",
		Status:   status,
	}
	document.ID = uuid.New()
	f.documents.Documents[document.ID] = document
	return document
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	helper := testutil.NewUser("Nasreen", RoleHelper)
	f := newFixture(t, helper)
	testutil.ExpectTransactions(f.mock, 1)

	document, err := f.controller.Upload(
		ctx,
		helper,
		UploadDocumentRequest{Type: "cnic"},
		testutil.FileHeader("cnic.pdf", "application/pdf", 4096),
	)
	require.NoError(t, err)
	assert.Equal(t, DocumentStatusPending, document.Status)
	assert.Equal(t, DocumentTypeCNIC, document.Type)
	assert.Equal(t, "cnic.pdf", document.OriginalName)
	assert.Contains(t, document.FilePath, "documents/"+helper.ID.String()+"/")

	_, err = f.controller.Upload(ctx, helper, UploadDocumentRequest{Type: "passport"},
		testutil.FileHeader("p.pdf", "application/pdf", 10))
	require.Error(t, err)
	assert.Contains(t, apperrors.From(err).Fields, "type")

	_, err = f.controller.Upload(ctx, helper, UploadDocumentRequest{Type: "cnic"}, nil)
	require.Error(t, err)
	assert.Contains(t, apperrors.From(err).Fields, "document")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpload_ClearsVerifiedOwner(t *testing.T) {
	helper := testutil.NewUser("Nasreen", RoleHelper)
	helper.IsVerified = true
	f := newFixture(t, helper)
	f.seed(helper.ID, DocumentStatusVerified)
	testutil.ExpectTransactions(f.mock, 1)

	_, err := f.controller.Upload(
		context.Background(),
		helper,
		UploadDocumentRequest{Type: "police_verification"},
		testutil.FileHeader("police.pdf", "application/pdf", 2048),
	)
	require.NoError(t, err)

	assert.False(t, f.users.Users[helper.ID].IsVerified)
	assert.Contains(t, f.cache.Invalidated, helper.ID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDelete_RestoresVerifiedOwner(t *testing.T) {
	helper := testutil.NewUser("Nasreen", RoleHelper)
	f := newFixture(t, helper)
	f.seed(helper.ID, DocumentStatusVerified)
	pending := f.seed(helper.ID, DocumentStatusPending)
	testutil.ExpectTransactions(f.mock, 1)

	require.NoError(t, f.controller.Delete(context.Background(), helper, pending.ID))

	assert.True(t, f.users.Users[helper.ID].IsVerified)
	assert.Contains(t, f.cache.Invalidated, helper.ID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	helper := testutil.NewUser("Nasreen", RoleHelper)
	other := testutil.NewUser("Bilal", RoleHelper)
	f := newFixture(t, helper, other)

	pending := f.seed(helper.ID, DocumentStatusPending)
	verified := f.seed(helper.ID, DocumentStatusVerified)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	testutil.ExpectTransactions(f.mock, 1)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	err := f.controller.Delete(ctx, other, pending.ID)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)

	err = f.controller.Delete(ctx, helper, verified.ID)
	assert.Equal(t, apperrors.CodeUnprocessable, apperrors.From(err).Code)

	require.NoError(t, f.controller.Delete(ctx, helper, pending.ID))
	assert.NotContains(t, f.documents.Documents, pending.ID)
	assert.Equal(t, []string{pending.FilePath}, f.uploads.Deleted)

	err = f.controller.Delete(ctx, helper, uuid.New())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	admin := testutil.NewUser("Admin", RoleAdmin)

	t.Run("owner is verified once every document is verified", func(t *testing.T) {
		helper := testutil.NewUser("Nasreen", RoleHelper)
		f := newFixture(t, admin, helper)
		first := f.seed(helper.ID, DocumentStatusPending)
		second := f.seed(helper.ID, DocumentStatusPending)
		testutil.ExpectTransactions(f.mock, 2)

		_, err := f.controller.Verify(ctx, admin, first.ID, ReviewDocumentRequest{})
		require.NoError(t, err)
		assert.False(t, f.users.Users[helper.ID].IsVerified)

		document, err := f.controller.Verify(ctx, admin, second.ID, ReviewDocumentRequest{})
		require.NoError(t, err)
		assert.Equal(t, DocumentStatusVerified, document.Status)
		require.NotNil(t, document.ReviewedBy)
		assert.Equal(t, admin.ID, *document.ReviewedBy)
		assert.True(t, f.users.Users[helper.ID].IsVerified)

		assert.Equal(t,
			[]NotificationType{NotificationDocumentVerified, NotificationDocumentVerified},
			f.notifier.To(helper.ID),
		)
		assert.Contains(t, f.cache.Invalidated, helper.ID)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("rejection clears the verified flag", func(t *testing.T) {
		helper := testutil.NewUser("Nasreen", RoleHelper)
		helper.IsVerified = true
		f := newFixture(t, admin, helper)
		f.seed(helper.ID, DocumentStatusVerified)
		police := f.seed(helper.ID, DocumentStatusPending)
		testutil.ExpectTransactions(f.mock, 1)

		notes := "  Image is blurry "
		document, err := f.controller.Reject(ctx, admin, police.ID, ReviewDocumentRequest{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, DocumentStatusRejected, document.Status)
		require.NotNil(t, document.AdminNotes)
		assert.Equal(t, "Image is blurry", *document.AdminNotes)
		assert.False(t, f.users.Users[helper.ID].IsVerified)

		require.Len(t, f.notifier.Sent, 1)
		assert.Equal(t, NotificationDocumentRejected, f.notifier.Sent[0].Type)
		assert.Equal(t, "Image is blurry", f.notifier.Sent[0].Data["notes"])
	})

	t.Run("missing document rolls back", func(t *testing.T) {
		f := newFixture(t, admin)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.controller.Verify(ctx, admin, uuid.New(), ReviewDocumentRequest{})
		assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
		assert.Empty(t, f.notifier.Sent)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestFile(t *testing.T) {
	ctx := context.Background()
	helper := testutil.NewUser("Nasreen", RoleHelper)
	other := testutil.NewUser("Bilal", RoleHelper)
	admin := testutil.NewUser("Admin", RoleAdmin)
	f := newFixture(t, helper, other, admin)
	document := f.seed(helper.ID, DocumentStatusPending)

	got, fullPath, err := f.controller.File(ctx, helper, document.ID)
	require.NoError(t, err)
	assert.Equal(t, document.ID, got.ID)
	assert.Equal(t, "/srv/storage/"+document.FilePath, fullPath)

	_, _, err = f.controller.File(ctx, admin, document.ID)
	require.NoError(t, err)

	_, _, err = f.controller.File(ctx, other, document.ID)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)

	_, _, err = f.controller.File(ctx, helper, uuid.New())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
}
