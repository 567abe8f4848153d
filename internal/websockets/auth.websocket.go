package websockets

import (
	"context"
	"errors"
	"time"

	"kamwaalay/internal/events"

	"github.com/google/uuid"
)

const (
	AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second
	AUTH_LOOKUP_TIMEOUT    = 5 * time.Second
	CLOSE_GRACE            = 100 * time.Millisecond
)

var (
	errInvalidTokenFormat = errors.New("invalid token format")
	errInactiveUser       = errors.New("user is inactive")
)

// authenticate resolves a bearer token to an active user id.
func (m *Manager) authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, errInvalidTokenFormat
	}

	claims, err := m.tokens.Parse(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return uuid.Nil, err
	}

	user, err := m.userRepo.GetByID(ctx, m.db.SQL, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if !user.IsActive {
		return uuid.Nil, errInactiveUser
	}

	return user.ID, nil
}

func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	time.AfterFunc(AUTH_HANDSHAKE_TIMEOUT, func() {
		if c.Status() != STATUS_UNAUTHENTICATED {
			return
		}

		log.Warn("Client failed to authenticate within timeout, disconnecting", "clientID", c.ID)
		c.sendAuthFailure("authentication_timeout", "Authentication timeout")
	})
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Status() != STATUS_UNAUTHENTICATED {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, _ := message.Data["token"].(string)

	ctx, cancel := context.WithTimeout(context.Background(), AUTH_LOOKUP_TIMEOUT)
	defer cancel()

	userID, err := c.Manager.authenticate(ctx, token)
	if err != nil {
		log.Info("WebSocket authentication failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("authentication_failed", "Authentication failed")
		return
	}

	if !c.Manager.promoteClient(c, userID) {
		return
	}

	log.Info("WebSocket client authenticated", "clientID", c.ID, "userID", userID)

	c.queue(Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_SUCCESS,
		Channel:   SYSTEM_CHANNEL,
		Action:    "authenticated",
		UserID:    userID.String(),
		Data:      map[string]any{"userId": userID.String()},
		Timestamp: time.Now().UTC(),
	})
}

// sendAuthFailure tells the client why and closes the connection shortly
// after so the write pump can flush the message.
func (c *Client) sendAuthFailure(action, reason string) {
	c.queue(Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_FAILURE,
		Channel:   SYSTEM_CHANNEL,
		Action:    action,
		Data:      map[string]any{"reason": reason},
		Timestamp: time.Now().UTC(),
	})

	if c.Connection == nil {
		return
	}
	time.AfterFunc(CLOSE_GRACE, func() {
		_ = c.Connection.Close()
	})
}

func (c *Client) sendAuthRequest() error {
	log := c.Manager.log.Function("sendAuthRequest")

	authRequest := Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_REQUEST,
		Channel:   SYSTEM_CHANNEL,
		Action:    "authenticate",
		Timestamp: time.Now().UTC(),
	}

	if err := c.Connection.WriteJSON(authRequest); err != nil {
		return log.Err("failed to send auth request", err, "clientID", c.ID)
	}

	return nil
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	c.Manager.log.Function("handleUnauthenticatedMessage").Warn(
		"Blocking message from unauthenticated client",
		"clientID", c.ID,
		"messageType", message.Type,
	)

	c.queue(Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_FAILURE,
		Channel:   SYSTEM_CHANNEL,
		Action:    "authentication_required",
		Data:      map[string]any{"reason": "Authentication required"},
		Timestamp: time.Now().UTC(),
	})
}
