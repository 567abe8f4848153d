package websockets

import (
	"sync"

	"github.com/google/uuid"
)

const (
	STATUS_UNAUTHENTICATED int32 = iota
	STATUS_AUTHENTICATED
	STATUS_CLOSED
)

type Hub struct {
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, SEND_CHANNEL_SIZE),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
	}
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message, m)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	m.hub.clients[client.ID] = client
	m.hub.mutex.Unlock()

	m.log.Function("registerClient").Info("Client registered", "clientID", client.ID)
}

// unregisterClient is reached from both pumps of a connection, so only the
// first call closes the send channel.
func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	_, ok := m.hub.clients[client.ID]
	if ok {
		delete(m.hub.clients, client.ID)
		client.status.Store(STATUS_CLOSED)
		close(client.send)
	}
	m.hub.mutex.Unlock()

	if ok {
		m.log.Function("unregisterClient").Info(
			"Client unregistered",
			"clientID", client.ID,
			"userID", client.UserID,
		)
	}
}

func (h *Hub) broadcastMessage(message Message, m *Manager) {
	log := m.log.Function("broadcastMessage")

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if client.Status() != STATUS_AUTHENTICATED {
			continue
		}
		if client.trySend(message) {
			sent++
		}
	}

	log.Debug("Broadcast complete", "messageID", message.ID, "sentTo", sent)
}

// SendMessageToUser queues message on every authenticated connection of the
// user. Slow clients drop the message instead of blocking the bus.
func (m *Manager) SendMessageToUser(userID uuid.UUID, message Message) int {
	log := m.log.Function("SendMessageToUser")

	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	for _, client := range m.hub.clients {
		if client.Status() != STATUS_AUTHENTICATED || client.UserID != userID {
			continue
		}
		if client.trySend(message) {
			sent++
		}
	}

	if sent == 0 {
		log.Debug("No connections found for user", "userID", userID, "messageID", message.ID)
	}

	return sent
}

func (m *Manager) promoteClient(client *Client, userID uuid.UUID) bool {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if client.Status() != STATUS_UNAUTHENTICATED {
		return false
	}
	client.UserID = userID
	client.status.Store(STATUS_AUTHENTICATED)
	return true
}

// ConnectedUsers counts the distinct authenticated users on this instance.
func (m *Manager) ConnectedUsers() int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	users := make(map[uuid.UUID]struct{})
	for _, client := range m.hub.clients {
		if client.Status() == STATUS_AUTHENTICATED {
			users[client.UserID] = struct{}{}
		}
	}
	return len(users)
}
