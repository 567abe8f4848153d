package documentController

import (
	"context"
	"mime/multipart"
	"path"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/storage"
	"kamwaalay/internal/types"
	"kamwaalay/internal/utils"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadDocumentRequest struct {
	Type string `json:"type" validate:"required,doctype"`
}

type ReviewDocumentRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=1000"`
}

type DocumentControllerInterface interface {
	Upload(ctx context.Context, user *User, request UploadDocumentRequest, file *multipart.FileHeader) (*Document, error)
	List(ctx context.Context, user *User) ([]Document, error)
	Delete(ctx context.Context, user *User, id uuid.UUID) error
	File(ctx context.Context, user *User, id uuid.UUID) (*Document, string, error)
	AdminList(ctx context.Context, filter repositories.DocumentFilter) (types.List[*Document], error)
	Verify(ctx context.Context, admin *User, id uuid.UUID, request ReviewDocumentRequest) (*Document, error)
	Reject(ctx context.Context, admin *User, id uuid.UUID, request ReviewDocumentRequest) (*Document, error)
}

type DocumentController struct {
	documentRepo       repositories.DocumentRepository
	userRepo           repositories.UserRepository
	transactionService *services.TransactionService
	notifier           services.Notifier
	profileCache       services.ProfileCache
	storage            storage.Uploader
	db                 database.DB
	config             config.Config
	now                func() time.Time
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) DocumentControllerInterface {
	return &DocumentController{
		documentRepo:       repos.Document,
		userRepo:           repos.User,
		transactionService: services.Transaction,
		notifier:           services.Notification,
		profileCache:       services.ProfileCache,
		storage:            services.Storage,
		db:                 db,
		config:             config,
		now:                time.Now,
		log:                logger.New("documentController"),
	}
}

func (c *DocumentController) Upload(
	ctx context.Context,
	user *User,
	request UploadDocumentRequest,
	file *multipart.FileHeader,
) (*Document, error) {
	log := c.log.TraceFromContext(ctx).Function("Upload")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.Field("document", "This field is required")
	}

	stored, err := c.storage.SaveUpload(ctx, path.Join(storage.DocumentDir, user.ID.String()), file, storage.DocumentMimeTypes)
	if err != nil {
		return nil, err
	}

	document := &Document{
		UserID:       user.ID,
		Type:         DocumentType(request.Type),
		FilePath:     stored.Path,
		OriginalName: utils.CleanText(stored.OriginalName),
		MimeType:     stored.MimeType,
		Size:         stored.Size,
		Status:       DocumentStatusPending,
	}
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.documentRepo.Create(ctx, tx, document); err != nil {
			return err
		}
		_, err := c.syncOwnerVerified(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if deleteErr := c.storage.Delete(ctx, stored.Path); deleteErr != nil {
			log.Warn("failed to remove orphaned upload", "error", deleteErr, "path", stored.Path)
		}
		return nil, err
	}

	c.profileCache.Invalidate(ctx, user.ID)

	log.Info("document uploaded", "userID", user.ID, "documentID", document.ID, "type", document.Type)
	return document, nil
}

func (c *DocumentController) List(ctx context.Context, user *User) ([]Document, error) {
	documents, err := c.documentRepo.ListByUser(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}
	if documents == nil {
		documents = []Document{}
	}
	return documents, nil
}

// File resolves the stored file of a document for its owner or an admin.
func (c *DocumentController) File(ctx context.Context, user *User, id uuid.UUID) (*Document, string, error) {
	document, err := c.documentRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, "", err
	}
	if document.UserID != user.ID && !user.IsAdmin() {
		return nil, "", apperrors.Forbidden("You can only view your own documents")
	}

	fullPath, err := c.storage.Path(document.FilePath)
	if err != nil {
		return nil, "", err
	}
	return document, fullPath, nil
}

// Delete removes a pending document of the caller together with its file.
func (c *DocumentController) Delete(ctx context.Context, user *User, id uuid.UUID) error {
	log := c.log.TraceFromContext(ctx).Function("Delete")

	var document *Document
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		document, err = c.documentRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if document.UserID != user.ID {
			return apperrors.Forbidden("You can only delete your own documents")
		}
		if document.Status != DocumentStatusPending {
			return apperrors.Unprocessable("Only pending documents can be deleted")
		}

		if err := c.documentRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		_, err = c.syncOwnerVerified(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return err
	}

	c.profileCache.Invalidate(ctx, user.ID)

	if err := c.storage.Delete(ctx, document.FilePath); err != nil {
		log.Warn("failed to remove document file", "error", err, "path", document.FilePath)
	}

	return nil
}

func (c *DocumentController) AdminList(
	ctx context.Context,
	filter repositories.DocumentFilter,
) (types.List[*Document], error) {
	documents, total, err := c.documentRepo.List(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[*Document]{}, err
	}
	return types.NewList(documents, filter.Page, total), nil
}

// Verify marks the document verified and flags the owner as verified once
// every document they uploaded is verified.
func (c *DocumentController) Verify(
	ctx context.Context,
	admin *User,
	id uuid.UUID,
	request ReviewDocumentRequest,
) (*Document, error) {
	return c.review(ctx, admin, id, DocumentStatusVerified, request)
}

// Reject marks the document rejected and clears the owner's verified flag.
func (c *DocumentController) Reject(
	ctx context.Context,
	admin *User,
	id uuid.UUID,
	request ReviewDocumentRequest,
) (*Document, error) {
	return c.review(ctx, admin, id, DocumentStatusRejected, request)
}

func (c *DocumentController) review(
	ctx context.Context,
	admin *User,
	id uuid.UUID,
	status DocumentStatus,
	request ReviewDocumentRequest,
) (*Document, error) {
	log := c.log.TraceFromContext(ctx).Function("review")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	var notes *string
	if request.Notes != nil {
		if cleaned := utils.CleanText(*request.Notes); cleaned != "" {
			notes = &cleaned
		}
	}

	var (
		document      *Document
		ownerVerified bool
	)
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		document, err = c.documentRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := c.documentRepo.Update(ctx, tx, id, map[string]any{
			"status":      status,
			"admin_notes": notes,
			"reviewed_by": admin.ID,
			"reviewed_at": c.now(),
		}); err != nil {
			return err
		}

		ownerVerified, err = c.syncOwnerVerified(ctx, tx, document.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	document, err = c.documentRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}

	notificationType := NotificationDocumentRejected
	if status == DocumentStatusVerified {
		notificationType = NotificationDocumentVerified
	}
	data := map[string]any{
		"documentId":   document.ID,
		"documentType": document.Type,
	}
	if notes != nil {
		data["notes"] = *notes
	}
	if err := c.notifier.Notify(ctx, document.UserID, notificationType, data); err != nil {
		log.Warn("failed to notify document owner", "error", err, "documentID", id)
	}

	c.profileCache.Invalidate(ctx, document.UserID)

	log.Info("document reviewed",
		"documentID", id,
		"status", status,
		"adminID", admin.ID,
		"ownerVerified", ownerVerified,
	)
	return document, nil
}

// syncOwnerVerified recomputes the owner's verified flag from their current
// documents.
func (c *DocumentController) syncOwnerVerified(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	documents, err := c.documentRepo.ListByUser(ctx, tx, userID)
	if err != nil {
		return false, err
	}

	verified := AllVerified(documents)
	if err := c.userRepo.Update(ctx, tx, userID, map[string]any{"is_verified": verified}); err != nil {
		return false, err
	}
	return verified, nil
}
