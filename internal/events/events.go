package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	NOTIFICATION_CHANNEL Channel = "notification"
	CHAT_CHANNEL         Channel = "chat_message"
)

type MessageType string

const (
	PING          MessageType = "ping"
	PONG          MessageType = "pong"
	ERROR         MessageType = "error"
	AUTH_REQUEST  MessageType = "auth_request"
	AUTH_RESPONSE MessageType = "auth_response"
	AUTH_SUCCESS  MessageType = "auth_success"
	AUTH_FAILURE  MessageType = "auth_failure"
	NOTIFICATION  MessageType = "notification"
	CHAT_MESSAGE  MessageType = "chat_message"
)

type Event struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Channel   Channel        `json:"channel"`
	UserID    *uuid.UUID     `json:"userId,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(event Event) error

// Publisher is the part of the bus producers depend on.
type Publisher interface {
	Publish(channel Channel, event Event) error
}

// EventBus relays events between API instances through Valkey pub/sub and
// hands them to the handlers registered in this process. Without a client it
// only delivers locally.
type EventBus struct {
	client    valkey.Client
	logger    logger.Logger
	handlers  map[Channel][]EventHandler
	listening map[Channel]bool
	mutex     sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(client valkey.Client) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:    client,
		logger:    logger.New("EventBus"),
		handlers:  make(map[Channel][]EventHandler),
		listening: make(map[Channel]bool),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (eb *EventBus) Publish(channel Channel, event Event) error {
	log := eb.logger.Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if event.Channel == "" {
		event.Channel = channel
	}

	if eb.client == nil {
		eb.notifyLocalHandlers(channel, event)
		return nil
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	ctx, cancel := context.WithTimeout(eb.ctx, 5*time.Second)
	defer cancel()

	err = eb.client.Do(ctx, eb.client.B().Publish().Channel(channel.String()).Message(string(eventData)).Build()).
		Error()
	if err != nil {
		return log.Err(
			"failed to publish event to valkey",
			err,
			"channel",
			channel,
			"eventID",
			event.ID,
		)
	}

	log.Debug("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)
	return nil
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) error {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	startListener := eb.client != nil && !eb.listening[channel]
	eb.listening[channel] = true
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	if startListener {
		go eb.listenToChannel(channel)
	}

	return nil
}

func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.logger.Function("notifyLocalHandlers")

	eb.mutex.RLock()
	handlers := append([]EventHandler(nil), eb.handlers[channel]...)
	eb.mutex.RUnlock()

	for i, handler := range handlers {
		if err := handler(event); err != nil {
			log.Er(
				"handler failed",
				err,
				"channel",
				channel,
				"eventID",
				event.ID,
				"handlerIndex",
				i,
			)
		}
	}
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.logger.Function("listenToChannel")

	log.Info("Starting to listen to channel", "channel", channel)

	err := eb.client.Receive(
		eb.ctx,
		eb.client.B().Subscribe().Channel(channel.String()).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel)
				return
			}

			eb.notifyLocalHandlers(channel, event)
		},
	)
	if err != nil && eb.ctx.Err() == nil {
		log.Er("failed to listen to channel", err, "channel", channel)
	}
}

func (eb *EventBus) Close() error {
	log := eb.logger.Function("Close")

	eb.cancel()

	log.Info("EventBus closed")
	return nil
}
