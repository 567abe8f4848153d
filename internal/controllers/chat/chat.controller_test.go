package chatController

import (
	"context"
	"sync"
	"testing"
	"time"

	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/events"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/testutil"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeConversations struct {
	repositories.ConversationRepository
	users         *testutil.MemoryUsers
	conversations map[uuid.UUID]*Conversation
	messages      []*Message
}

func (r *fakeConversations) FindOrCreate(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (*Conversation, error) {
	one, two := OrderedPair(a, b)
	for _, conversation := range r.conversations {
		if conversation.UserOneID == one && conversation.UserTwoID == two {
			copied := *conversation
			return &copied, nil
		}
	}

	conversation := &Conversation{UserOneID: one, UserTwoID: two}
	conversation.ID = uuid.New()
	r.conversations[conversation.ID] = conversation
	copied := *conversation
	return &copied, nil
}

func (r *fakeConversations) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Conversation, error) {
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *conversation
	return &copied, nil
}

func (r *fakeConversations) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*Conversation, error) {
	var conversations []*Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			copied := *conversation
			copied.UserOne = r.users.Users[copied.UserOneID]
			copied.UserTwo = r.users.Users[copied.UserTwoID]
			conversations = append(conversations, &copied)
		}
	}
	return conversations, nil
}

func (r *fakeConversations) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	r.conversations[id].LastMessageAt = &at
	return nil
}

func (r *fakeConversations) CreateMessage(ctx context.Context, tx *gorm.DB, message *Message) error {
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeConversations) ListMessages(
	ctx context.Context,
	tx *gorm.DB,
	conversationID uuid.UUID,
	page repositories.Page,
) ([]*Message, int64, error) {
	var messages []*Message
	for _, message := range r.messages {
		if message.ConversationID == conversationID {
			messages = append(messages, message)
		}
	}
	return repositories.Slice(messages, page), int64(len(messages)), nil
}

func (r *fakeConversations) LastMessage(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*Message, error) {
	var last *Message
	for _, message := range r.messages {
		if message.ConversationID == conversationID {
			last = message
		}
	}
	return last, nil
}

func (r *fakeConversations) CountUnread(
	ctx context.Context,
	tx *gorm.DB,
	conversationID, readerID uuid.UUID,
) (int64, error) {
	var count int64
	for _, message := range r.messages {
		if message.ConversationID == conversationID && message.SenderID != readerID && message.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *fakeConversations) MarkRead(
	ctx context.Context,
	tx *gorm.DB,
	conversationID, readerID uuid.UUID,
	at time.Time,
) (int64, error) {
	var count int64
	for _, message := range r.messages {
		if message.ConversationID == conversationID && message.SenderID != readerID && message.ReadAt == nil {
			message.ReadAt = &at
			count++
		}
	}
	return count, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(channel events.Channel, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	event.Channel = channel
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	controller    *ChatController
	conversations *fakeConversations
	users         *testutil.MemoryUsers
	notifier      *testutil.RecordingNotifier
	publisher     *recordingPublisher
	mock          sqlmock.Sqlmock
	alice         *User
	bilal         *User
}

func newFixture(t *testing.T) *fixture {
	db, mock := testutil.NewMockDB(t)

	alice := testutil.NewUser("Ayesha", RoleUser)
	bilal := testutil.NewUser("Bilal", RoleHelper)
	users := testutil.NewMemoryUsers(alice, bilal)

	f := &fixture{
		conversations: &fakeConversations{users: users, conversations: map[uuid.UUID]*Conversation{}},
		users:         users,
		notifier:      &testutil.RecordingNotifier{},
		publisher:     &recordingPublisher{},
		mock:          mock,
		alice:         alice,
		bilal:         bilal,
	}
	f.controller = &ChatController{
		conversationRepo:   f.conversations,
		userRepo:           users,
		transactionService: services.NewTransactionService(db),
		notifier:           f.notifier,
		publisher:          f.publisher,
		db:                 db,
		now:                time.Now,
		log:                logger.New("chatController_test"),
	}
	return f
}

func TestSend_ReusesConversation(t *testing.T) {
	f := newFixture(t)
	testutil.ExpectTransactions(f.mock, 2)

	first, err := f.controller.Send(context.Background(), f.alice, SendMessageRequest{
		RecipientID: f.bilal.ID,
		Body:        " Salam, are you free on Monday? ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Salam, are you free on Monday?", first.Message.Body)

	reply, err := f.controller.Send(context.Background(), f.bilal, SendMessageRequest{
		RecipientID: f.alice.ID,
		Body:        "Yes",
	})
	require.NoError(t, err)

	assert.Equal(t, first.Conversation.ID, reply.Conversation.ID)
	assert.Len(t, f.conversations.conversations, 1)
	assert.NotNil(t, f.conversations.conversations[first.Conversation.ID].LastMessageAt)

	assert.Equal(t, []NotificationType{NotificationMessageReceived}, f.notifier.To(f.bilal.ID))
	assert.Equal(t, []NotificationType{NotificationMessageReceived}, f.notifier.To(f.alice.ID))

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.CHAT_CHANNEL, f.publisher.events[0].Channel)
	assert.Equal(t, f.bilal.ID, *f.publisher.events[0].UserID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSend_Rejections(t *testing.T) {
	t.Run("to yourself", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.controller.Send(context.Background(), f.alice, SendMessageRequest{RecipientID: f.alice.ID, Body: "hi"})
		assert.Equal(t, apperrors.CodeUnprocessable, apperrors.From(err).Code)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.controller.Send(context.Background(), f.alice, SendMessageRequest{RecipientID: uuid.New(), Body: "hi"})
		assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
	})

	t.Run("inactive recipient", func(t *testing.T) {
		f := newFixture(t)
		f.bilal.IsActive = false
		_, err := f.controller.Send(context.Background(), f.alice, SendMessageRequest{RecipientID: f.bilal.ID, Body: "hi"})
		assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)
	})

	t.Run("blank body", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.controller.Send(context.Background(), f.alice, SendMessageRequest{RecipientID: f.bilal.ID, Body: "   "})
		assert.Contains(t, apperrors.From(err).Fields, "body")
	})
}

func TestConversationsAndRead(t *testing.T) {
	f := newFixture(t)
	testutil.ExpectTransactions(f.mock, 2)

	sent, err := f.controller.Send(context.Background(), f.alice, SendMessageRequest{RecipientID: f.bilal.ID, Body: "one"})
	require.NoError(t, err)
	_, err = f.controller.Send(context.Background(), f.alice, SendMessageRequest{RecipientID: f.bilal.ID, Body: "two"})
	require.NoError(t, err)

	inbox, err := f.controller.Conversations(context.Background(), f.bilal)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, f.alice.ID, inbox[0].OtherUser.ID)
	assert.Equal(t, "Ayesha", inbox[0].OtherUser.Name)
	assert.Equal(t, int64(2), inbox[0].UnreadCount)
	require.NotNil(t, inbox[0].LastMessage)
	assert.Equal(t, "two", inbox[0].LastMessage.Body)

	marked, err := f.controller.MarkRead(context.Background(), f.alice, sent.Conversation.ID)
	require.NoError(t, err)
	assert.Zero(t, marked)

	marked, err = f.controller.MarkRead(context.Background(), f.bilal, sent.Conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	list, err := f.controller.Messages(context.Background(), f.bilal, sent.Conversation.ID, repositories.NewPage(1, 50))
	require.NoError(t, err)
	assert.Len(t, list.Data, 2)

	outsider := testutil.NewUser("Kamran", RoleHelper)
	_, err = f.controller.Messages(context.Background(), outsider, sent.Conversation.ID, repositories.NewPage(1, 50))
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)
}
