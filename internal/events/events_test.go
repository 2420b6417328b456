package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(func(event *Event) error {
		received = append(received, event)
		return nil
	}, BookingTypes...)

	payload := BookingEventPayload{BookingID: "b1", EquipmentID: "eq1", StartDate: "2025-03-01", EndDate: "2025-03-03"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))
	require.NoError(t, bus.PublishJSON(EventBookingDeleted, BookingEventPayload{BookingID: "b1"}))

	require.Len(t, received, 2)
	assert.Equal(t, EventBookingCreated, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, received[0].Decode(&decoded))
	assert.Equal(t, payload, decoded)
	assert.Equal(t, EventBookingDeleted, received[1].Type)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe(func(_ *Event) error { count1++; return nil }, EventBookingUpdated)
	bus.Subscribe(func(_ *Event) error { count2++; return errors.New("boom") }, EventBookingUpdated)
	bus.Subscribe(func(_ *Event) error { count2 += 10; return nil }, EventBookingCreated)

	err := bus.Publish(&Event{Type: EventBookingUpdated})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.Publish(&Event{Type: "unknown"}))
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON(EventBookingCreated, nil))
}

func TestDecodeError(t *testing.T) {
	e := &Event{Type: EventBookingCreated, Payload: []byte("{")}
	var p BookingEventPayload
	assert.Error(t, e.Decode(&p))
}
