package events

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_LocalDelivery(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	userID := uuid.New()
	var received []Event

	require.NoError(t, bus.Subscribe(NOTIFICATION_CHANNEL, func(event Event) error {
		received = append(received, event)
		return nil
	}))
	require.NoError(t, bus.Subscribe(NOTIFICATION_CHANNEL, func(event Event) error {
		return errors.New("second handler fails")
	}))

	err := bus.Publish(NOTIFICATION_CHANNEL, Event{
		Type:   NOTIFICATION,
		UserID: &userID,
		Data:   map[string]any{"type": "application_received"},
	})
	require.NoError(t, err)

	require.Len(t, received, 1)
	event := received[0]
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, NOTIFICATION_CHANNEL, event.Channel)
	assert.Equal(t, &userID, event.UserID)
}

func TestEventBus_ChannelIsolation(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	calls := 0
	require.NoError(t, bus.Subscribe(CHAT_CHANNEL, func(event Event) error {
		calls++
		return nil
	}))

	require.NoError(t, bus.Publish(NOTIFICATION_CHANNEL, Event{Type: NOTIFICATION}))
	assert.Equal(t, 0, calls)

	require.NoError(t, bus.Publish(CHAT_CHANNEL, Event{Type: CHAT_MESSAGE}))
	assert.Equal(t, 1, calls)
}
