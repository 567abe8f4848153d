package websockets

import (
	"sync/atomic"
	"time"

	"kamwaalay/internal/database"
	"kamwaalay/internal/events"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	PING_INTERVAL     = 30 * time.Second
	PONG_TIMEOUT      = 60 * time.Second
	WRITE_TIMEOUT     = 10 * time.Second
	MAX_MESSAGE_SIZE  = 64 * 1024
	SEND_CHANNEL_SIZE = 64
	SYSTEM_CHANNEL    = "system"
)

type Message struct {
	ID        string             `json:"id"`
	Type      events.MessageType `json:"type"`
	Channel   string             `json:"channel,omitempty"`
	Action    string             `json:"action,omitempty"`
	UserID    string             `json:"userId,omitempty"`
	Data      map[string]any     `json:"data,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

type Client struct {
	ID         string
	UserID     uuid.UUID
	Connection *websocket.Conn
	Manager    *Manager
	status     atomic.Int32
	send       chan Message
}

func (c *Client) Status() int32 {
	return c.status.Load()
}

// Subscriber is the part of the event bus the manager listens on.
type Subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler) error
}

type Manager struct {
	hub        *Hub
	db         database.DB
	log        logger.Logger
	subscriber Subscriber
	tokens     *services.TokenService
	userRepo   repositories.UserRepository
}

func New(
	db database.DB,
	subscriber Subscriber,
	tokens *services.TokenService,
	userRepo repositories.UserRepository,
) (*Manager, error) {
	log := logger.New("websockets")

	manager := &Manager{
		hub:        newHub(),
		db:         db,
		log:        log,
		subscriber: subscriber,
		tokens:     tokens,
		userRepo:   userRepo,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	for _, channel := range []events.Channel{events.NOTIFICATION_CHANNEL, events.CHAT_CHANNEL} {
		if err := subscriber.Subscribe(channel, manager.deliverEvent); err != nil {
			return nil, log.Function("New").Err("failed to subscribe to channel", err, "channel", channel)
		}
	}

	return manager, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := &Client{
		ID:         uuid.New().String(),
		UserID:     uuid.Nil,
		Connection: c,
		Manager:    m,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	if err := client.sendAuthRequest(); err != nil {
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	m.hub.register <- client
	defer func() {
		log.Info("Client disconnected", "clientID", client.ID)
		m.hub.unregister <- client
		_ = c.Close()
	}()

	client.startAuthTimeout()

	go client.readPump()
	client.writePump()
}

// BroadcastMessage queues message for every authenticated client.
func (m *Manager) BroadcastMessage(message Message) {
	log := m.log.Function("BroadcastMessage")

	select {
	case m.hub.broadcast <- message:
	default:
		log.Warn("Broadcast channel is full, dropping message", "messageID", message.ID)
	}
}

// deliverEvent forwards a bus event to the connections of its user. Events
// without a user are not meant for websocket clients.
func (m *Manager) deliverEvent(event events.Event) error {
	if event.UserID == nil {
		m.log.Function("deliverEvent").Debug("Skipping event without user", "eventID", event.ID)
		return nil
	}

	m.SendMessageToUser(*event.UserID, Message{
		ID:        event.ID,
		Type:      event.Type,
		Channel:   event.Channel.String(),
		UserID:    event.UserID.String(),
		Data:      event.Data,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		message.Timestamp = time.Now().UTC()
		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == events.AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if c.Status() != STATUS_AUTHENTICATED {
		c.handleUnauthenticatedMessage(message)
		return
	}

	switch message.Type {
	case events.PING:
		c.queue(Message{
			ID:        uuid.New().String(),
			Type:      events.PONG,
			Channel:   SYSTEM_CHANNEL,
			Timestamp: time.Now().UTC(),
		})
	default:
		log.Warn("Unknown message type", "type", message.Type, "clientID", c.ID)
		c.queue(Message{
			ID:        uuid.New().String(),
			Type:      events.ERROR,
			Channel:   SYSTEM_CHANNEL,
			Data:      map[string]any{"reason": "Unsupported message type"},
			Timestamp: time.Now().UTC(),
		})
	}
}

// queue hands message to the write pump without blocking the reader. The
// hub lock keeps it from racing the channel close on unregister.
func (c *Client) queue(message Message) bool {
	c.Manager.hub.mutex.RLock()
	defer c.Manager.hub.mutex.RUnlock()

	if c.Status() == STATUS_CLOSED {
		return false
	}
	return c.trySend(message)
}

// trySend expects the caller to hold the hub lock.
func (c *Client) trySend(message Message) bool {
	select {
	case c.send <- message:
		return true
	default:
		c.Manager.log.Function("queue").Warn("Client send channel full, dropping message", "clientID", c.ID)
		return false
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
