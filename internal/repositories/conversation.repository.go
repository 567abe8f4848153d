package repositories

import (
	"context"
	"time"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, userA, userB uuid.UUID) (*Conversation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Conversation, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*Conversation, error)
	Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	CreateMessage(ctx context.Context, tx *gorm.DB, message *Message) error
	ListMessages(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, page Page) ([]*Message, int64, error)
	LastMessage(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*Message, error)
	CountUnread(ctx context.Context, tx *gorm.DB, conversationID, readerID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, conversationID, readerID uuid.UUID, at time.Time) (int64, error)
}

type conversationRepository struct {
	log logger.Logger
}

func NewConversationRepository() ConversationRepository {
	return &conversationRepository{
		log: logger.New("conversationRepository"),
	}
}

// FindOrCreate returns the conversation between the two users, creating it
// for the ordered pair when it does not exist yet.
func (r *conversationRepository) FindOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	userA, userB uuid.UUID,
) (*Conversation, error) {
	log := r.log.Function("FindOrCreate")

	one, two := OrderedPair(userA, userB)
	db := tx.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&Conversation{UserOneID: one, UserTwoID: two}).Error; err != nil {
		return nil, log.Err("failed to create conversation", err, "userOne", one, "userTwo", two)
	}

	var conversation Conversation
	if err := db.First(&conversation, "user_one_id = ? AND user_two_id = ?", one, two).Error; err != nil {
		return nil, log.Err("failed to get conversation", err, "userOne", one, "userTwo", two)
	}

	return &conversation, nil
}

func (r *conversationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Conversation, error) {
	log := r.log.Function("GetByID")

	var conversation Conversation
	if err := tx.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get conversation", err, "id", id)
	}

	return &conversation, nil
}

func (r *conversationRepository) ListForUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]*Conversation, error) {
	log := r.log.Function("ListForUser")

	var conversations []*Conversation
	if err := tx.WithContext(ctx).
		Preload("UserOne.Profile").
		Preload("UserTwo.Profile").
		Where("(user_one_id = ? OR user_two_id = ?)", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Order("created_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, log.Err("failed to list conversations", err, "userID", userID)
	}

	return conversations, nil
}

func (r *conversationRepository) Touch(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	at time.Time,
) error {
	log := r.log.Function("Touch")

	if err := tx.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error; err != nil {
		return log.Err("failed to update conversation", err, "id", id)
	}

	return nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, tx *gorm.DB, message *Message) error {
	log := r.log.Function("CreateMessage")

	if err := tx.WithContext(ctx).Create(message).Error; err != nil {
		return log.Err("failed to create message", err, "conversationID", message.ConversationID)
	}

	return nil
}

// ListMessages pages from the newest message backwards and returns each page
// in chronological order.
func (r *conversationRepository) ListMessages(
	ctx context.Context,
	tx *gorm.DB,
	conversationID uuid.UUID,
	page Page,
) ([]*Message, int64, error) {
	log := r.log.Function("ListMessages")

	query := tx.WithContext(ctx).Model(&Message{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count messages", err)
	}

	var messages []*Message
	if err := query.
		Scopes(paginate(page)).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, 0, log.Err("failed to list messages", err, "conversationID", conversationID)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, total, nil
}

// LastMessage returns nil without error when the conversation is empty.
func (r *conversationRepository) LastMessage(
	ctx context.Context,
	tx *gorm.DB,
	conversationID uuid.UUID,
) (*Message, error) {
	log := r.log.Function("LastMessage")

	var messages []Message
	if err := tx.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(1).
		Find(&messages).Error; err != nil {
		return nil, log.Err("failed to get last message", err, "conversationID", conversationID)
	}

	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

func (r *conversationRepository) CountUnread(
	ctx context.Context,
	tx *gorm.DB,
	conversationID, readerID uuid.UUID,
) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Count(&count).Error; err != nil {
		return 0, r.log.Function("CountUnread").Err("failed to count unread messages", err)
	}
	return count, nil
}

// MarkRead marks every message sent by the other participant as read.
func (r *conversationRepository) MarkRead(
	ctx context.Context,
	tx *gorm.DB,
	conversationID, readerID uuid.UUID,
	at time.Time,
) (int64, error) {
	log := r.log.Function("MarkRead")

	result := tx.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", at)
	if result.Error != nil {
		return 0, log.Err("failed to mark messages read", result.Error, "conversationID", conversationID)
	}

	return result.RowsAffected, nil
}
