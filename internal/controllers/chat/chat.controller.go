package chatController

import (
	"context"
	"errors"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/database"
	"kamwaalay/internal/events"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/types"
	"kamwaalay/internal/utils"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const previewLength = 100

type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipientId" validate:"required"`
	Body        string    `json:"body"        validate:"required,max=5000"`
}

type SentMessage struct {
	Conversation *Conversation `json:"conversation"`
	Message      *Message      `json:"message"`
}

type ChatControllerInterface interface {
	Conversations(ctx context.Context, user *User) ([]ConversationSummary, error)
	Send(ctx context.Context, user *User, request SendMessageRequest) (*SentMessage, error)
	Messages(ctx context.Context, user *User, conversationID uuid.UUID, page repositories.Page) (types.List[*Message], error)
	MarkRead(ctx context.Context, user *User, conversationID uuid.UUID) (int64, error)
}

type ChatController struct {
	conversationRepo   repositories.ConversationRepository
	userRepo           repositories.UserRepository
	transactionService *services.TransactionService
	notifier           services.Notifier
	publisher          events.Publisher
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
) ChatControllerInterface {
	return &ChatController{
		conversationRepo:   repos.Conversation,
		userRepo:           repos.User,
		transactionService: services.Transaction,
		notifier:           services.Notification,
		publisher:          services.Events,
		db:                 db,
		config:             config,
		now:                time.Now,
		log:                logger.New("chatController"),
	}
}

// Conversations lists the user's inbox, most recently active first.
func (c *ChatController) Conversations(ctx context.Context, user *User) ([]ConversationSummary, error) {
	conversations, err := c.conversationRepo.ListForUser(ctx, c.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		last, err := c.conversationRepo.LastMessage(ctx, c.db.SQL, conversation.ID)
		if err != nil {
			return nil, err
		}
		unread, err := c.conversationRepo.CountUnread(ctx, c.db.SQL, conversation.ID, user.ID)
		if err != nil {
			return nil, err
		}

		summary := ConversationSummary{
			ID:            conversation.ID,
			LastMessage:   last,
			LastMessageAt: conversation.LastMessageAt,
			UnreadCount:   unread,
		}
		if other := otherUser(conversation, user.ID); other != nil {
			summary.OtherUser = other.ToSummary()
		} else {
			summary.OtherUser = UserSummary{ID: conversation.OtherParticipant(user.ID)}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (c *ChatController) Send(
	ctx context.Context,
	user *User,
	request SendMessageRequest,
) (*SentMessage, error) {
	log := c.log.TraceFromContext(ctx).Function("Send")

	request.Body = utils.CleanText(request.Body)
	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	if request.RecipientID == user.ID {
		return nil, apperrors.Unprocessable("You cannot message yourself")
	}

	recipient, err := c.userRepo.GetByID(ctx, c.db.SQL, request.RecipientID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !recipient.IsActive) {
		return nil, apperrors.NotFound("Recipient")
	}
	if err != nil {
		return nil, err
	}

	var sent SentMessage
	at := c.now()
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		conversation, err := c.conversationRepo.FindOrCreate(ctx, tx, user.ID, recipient.ID)
		if err != nil {
			return err
		}

		message := &Message{
			ConversationID: conversation.ID,
			SenderID:       user.ID,
			Body:           request.Body,
		}
		if err := c.conversationRepo.CreateMessage(ctx, tx, message); err != nil {
			return err
		}
		if err := c.conversationRepo.Touch(ctx, tx, conversation.ID, at); err != nil {
			return err
		}

		conversation.LastMessageAt = &at
		sent = SentMessage{Conversation: conversation, Message: message}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.notifier.Notify(ctx, recipient.ID, NotificationMessageReceived, map[string]any{
		"conversationId": sent.Conversation.ID,
		"senderId":       user.ID,
		"senderName":     user.Name,
		"preview":        utils.Truncate(request.Body, previewLength),
	}); err != nil {
		log.Warn("failed to notify recipient", "error", err, "recipientID", recipient.ID)
	}

	if c.publisher != nil {
		event := events.Event{
			Type:   events.CHAT_MESSAGE,
			UserID: &recipient.ID,
			Data: map[string]any{
				"conversationId": sent.Conversation.ID,
				"message":        sent.Message,
			},
		}
		if err := c.publisher.Publish(events.CHAT_CHANNEL, event); err != nil {
			log.Warn("failed to publish chat message", "error", err, "conversationID", sent.Conversation.ID)
		}
	}

	log.Info("message sent", "conversationID", sent.Conversation.ID, "senderID", user.ID)
	return &sent, nil
}

func (c *ChatController) Messages(
	ctx context.Context,
	user *User,
	conversationID uuid.UUID,
	page repositories.Page,
) (types.List[*Message], error) {
	if _, err := c.participant(ctx, user, conversationID); err != nil {
		return types.List[*Message]{}, err
	}

	messages, total, err := c.conversationRepo.ListMessages(ctx, c.db.SQL, conversationID, page)
	if err != nil {
		return types.List[*Message]{}, err
	}
	return types.NewList(messages, page, total), nil
}

// MarkRead marks the other participant's messages read and returns how many
// changed.
func (c *ChatController) MarkRead(ctx context.Context, user *User, conversationID uuid.UUID) (int64, error) {
	if _, err := c.participant(ctx, user, conversationID); err != nil {
		return 0, err
	}
	return c.conversationRepo.MarkRead(ctx, c.db.SQL, conversationID, user.ID, c.now())
}

func (c *ChatController) participant(
	ctx context.Context,
	user *User,
	conversationID uuid.UUID,
) (*Conversation, error) {
	conversation, err := c.conversationRepo.GetByID(ctx, c.db.SQL, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(user.ID) {
		return nil, apperrors.Forbidden("You are not part of this conversation")
	}
	return conversation, nil
}

func otherUser(conversation *Conversation, userID uuid.UUID) *User {
	if conversation.UserOneID == userID {
		return conversation.UserTwo
	}
	return conversation.UserOne
}
