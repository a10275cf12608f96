package order

import (
	"encoding/json"
	"fmt"
)

// EventName names a push channel event
type EventName string

const (
	EventCreated EventName = "newOrder"
	EventUpdated EventName = "orderUpdate"
	EventDeleted EventName = "orderDeleted"
)

// Event is one push channel notification about an order
type Event struct {
	Name EventName
	// Seq is the server's monotonic sequence for the order, zero if the
	// server does not stamp events
	Seq     int64
	OrderID string
	// Order is set for created and updated events
	Order *Order
}

// Version returns the ordering key used to discard stale events
func (e Event) Version() Version {
	v := Version{Seq: e.Seq}
	if e.Order != nil {
		v.Stamp = e.Order.Version().Stamp
	}
	return v
}

// DecodeEvent builds an Event from an event name and its JSON payload
func DecodeEvent(name EventName, seq int64, data []byte) (Event, error) {
	evt := Event{Name: name, Seq: seq}

	switch name {
	case EventCreated, EventUpdated:
		var o Order
		if err := json.Unmarshal(data, &o); err != nil {
			return Event{}, fmt.Errorf("failed to decode %s payload: %w", name, err)
		}
		if o.ID == "" {
			return Event{}, fmt.Errorf("%s payload has no order id", name)
		}
		evt.Order = &o
		evt.OrderID = o.ID
	case EventDeleted:
		var payload struct {
			ID      string `json:"id"`
			MongoID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return Event{}, fmt.Errorf("failed to decode %s payload: %w", name, err)
		}
		evt.OrderID = payload.ID
		if evt.OrderID == "" {
			evt.OrderID = payload.MongoID
		}
		if evt.OrderID == "" {
			return Event{}, fmt.Errorf("%s payload has no order id", name)
		}
	default:
		return Event{}, fmt.Errorf("unknown event %q", name)
	}

	return evt, nil
}
