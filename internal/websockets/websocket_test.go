package websockets

import (
	"context"
	"testing"

	"kamwaalay/config"
	"kamwaalay/internal/events"
	"kamwaalay/internal/models"
	"kamwaalay/internal/services"
	"kamwaalay/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager *Manager
	bus     *events.EventBus
	users   *testutil.MemoryUsers
	tokens  *services.TokenService
}

func newFixture(t *testing.T) *fixture {
	db, _ := testutil.NewMockDB(t)

	bus := events.New(nil)
	t.Cleanup(func() { _ = bus.Close() })

	tokens := services.NewTokenService(config.Config{
		JWTSecret:      "websocket-test-secret",
		JWTExpiryHours: 1,
	}, services.NewMemoryKeyStore())
	users := testutil.NewMemoryUsers()

	manager, err := New(db, bus, tokens, users)
	require.NoError(t, err)

	return &fixture{manager: manager, bus: bus, users: users, tokens: tokens}
}

// connect registers a client without a network connection.
func (f *fixture) connect(userID *uuid.UUID) *Client {
	client := &Client{
		ID:      uuid.New().String(),
		Manager: f.manager,
		send:    make(chan Message, SEND_CHANNEL_SIZE),
	}
	f.manager.registerClient(client)
	if userID != nil {
		f.manager.promoteClient(client, *userID)
	}
	return client
}

func drain(client *Client) []Message {
	var messages []Message
	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return messages
			}
			messages = append(messages, message)
		default:
			return messages
		}
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)

	active := testutil.NewUser("Sana", models.RoleHelper)
	inactive := testutil.NewUser("Bilal", models.RoleUser)
	inactive.IsActive = false
	f.users.Add(active, inactive)

	activeToken, _, err := f.tokens.Issue(active)
	require.NoError(t, err)
	inactiveToken, _, err := f.tokens.Issue(inactive)
	require.NoError(t, err)

	userID, err := f.manager.authenticate(context.Background(), activeToken)
	require.NoError(t, err)
	assert.Equal(t, active.ID, userID)

	_, err = f.manager.authenticate(context.Background(), inactiveToken)
	assert.ErrorIs(t, err, errInactiveUser)

	_, err = f.manager.authenticate(context.Background(), "")
	assert.ErrorIs(t, err, errInvalidTokenFormat)

	_, err = f.manager.authenticate(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestEventsReachOnlyTheirUser(t *testing.T) {
	f := newFixture(t)

	alice, bob := uuid.New(), uuid.New()
	aliceTab := f.connect(&alice)
	aliceMobile := f.connect(&alice)
	bobTab := f.connect(&bob)
	anonymous := f.connect(nil)

	require.NoError(t, f.bus.Publish(events.NOTIFICATION_CHANNEL, events.Event{
		Type:   events.NOTIFICATION,
		UserID: &alice,
		Data:   map[string]any{"type": "application_received"},
	}))
	require.NoError(t, f.bus.Publish(events.CHAT_CHANNEL, events.Event{
		Type:   events.CHAT_MESSAGE,
		UserID: &bob,
		Data:   map[string]any{"body": "salaam"},
	}))

	for _, client := range []*Client{aliceTab, aliceMobile} {
		messages := drain(client)
		require.Len(t, messages, 1)
		assert.Equal(t, events.NOTIFICATION, messages[0].Type)
		assert.Equal(t, events.NOTIFICATION_CHANNEL.String(), messages[0].Channel)
		assert.Equal(t, alice.String(), messages[0].UserID)
	}

	bobMessages := drain(bobTab)
	require.Len(t, bobMessages, 1)
	assert.Equal(t, events.CHAT_MESSAGE, bobMessages[0].Type)
	assert.Equal(t, "salaam", bobMessages[0].Data["body"])

	assert.Empty(t, drain(anonymous))
	assert.Equal(t, 2, f.manager.ConnectedUsers())
}

func TestEventWithoutUserIsDropped(t *testing.T) {
	f := newFixture(t)

	userID := uuid.New()
	client := f.connect(&userID)

	require.NoError(t, f.bus.Publish(events.NOTIFICATION_CHANNEL, events.Event{Type: events.NOTIFICATION}))

	assert.Empty(t, drain(client))
}

func TestRouteMessage(t *testing.T) {
	f := newFixture(t)

	t.Run("ping from authenticated client", func(t *testing.T) {
		userID := uuid.New()
		client := f.connect(&userID)

		client.routeMessage(Message{Type: events.PING})

		messages := drain(client)
		require.Len(t, messages, 1)
		assert.Equal(t, events.PONG, messages[0].Type)
	})

	t.Run("unauthenticated client is told to authenticate", func(t *testing.T) {
		client := f.connect(nil)

		client.routeMessage(Message{Type: events.PING})

		messages := drain(client)
		require.Len(t, messages, 1)
		assert.Equal(t, events.AUTH_FAILURE, messages[0].Type)
		assert.Equal(t, "authentication_required", messages[0].Action)
	})

	t.Run("unknown type gets an error", func(t *testing.T) {
		userID := uuid.New()
		client := f.connect(&userID)

		client.routeMessage(Message{Type: "dance"})

		messages := drain(client)
		require.Len(t, messages, 1)
		assert.Equal(t, events.ERROR, messages[0].Type)
	})
}

func TestAuthResponseSucceeds(t *testing.T) {
	f := newFixture(t)

	user := testutil.NewUser("Sana", models.RoleHelper)
	f.users.Add(user)
	token, _, err := f.tokens.Issue(user)
	require.NoError(t, err)

	client := f.connect(nil)
	client.routeMessage(Message{Type: events.AUTH_RESPONSE, Data: map[string]any{"token": token}})

	assert.Equal(t, STATUS_AUTHENTICATED, client.Status())
	assert.Equal(t, user.ID, client.UserID)

	messages := drain(client)
	require.Len(t, messages, 1)
	assert.Equal(t, events.AUTH_SUCCESS, messages[0].Type)
	assert.Equal(t, user.ID.String(), messages[0].Data["userId"])
}

func TestUnregisterClosesOnce(t *testing.T) {
	f := newFixture(t)

	userID := uuid.New()
	client := f.connect(&userID)

	f.manager.unregisterClient(client)
	f.manager.unregisterClient(client)

	assert.Equal(t, STATUS_CLOSED, client.Status())
	assert.False(t, client.queue(Message{Type: events.PONG}))
	assert.Equal(t, 0, f.manager.SendMessageToUser(userID, Message{Type: events.NOTIFICATION}))
}
