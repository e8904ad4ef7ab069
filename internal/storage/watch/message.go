package watch

import (
	"encoding/json"
	"fmt"

	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
)

// Channel is the notification channel shared by the networked stores.
const Channel = "order_tracking"

type message struct {
	Kind     string                  `json:"kind"`
	OrderID  int64                   `json:"orderId"`
	Snapshot *model.TrackingSnapshot `json:"snapshot,omitempty"`
}

// Encode serializes a node change for a pub/sub channel.
func Encode(ev repository.TrackingEvent) (string, error) {
	msg := message{Kind: ev.Kind.String(), OrderID: ev.OrderID}
	if ev.Kind == repository.EventAdded || ev.Kind == repository.EventChanged {
		snap := ev.Snapshot
		msg.Snapshot = &snap
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode tracking event: %w", err)
	}
	return string(data), nil
}

// Decode parses a payload produced by Encode.
func Decode(payload string) (repository.TrackingEvent, error) {
	var msg message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return repository.TrackingEvent{}, fmt.Errorf("decode tracking event: %w", err)
	}

	ev := repository.TrackingEvent{OrderID: msg.OrderID}
	switch msg.Kind {
	case repository.EventAdded.String():
		ev.Kind = repository.EventAdded
	case repository.EventChanged.String():
		ev.Kind = repository.EventChanged
	case repository.EventRemoved.String():
		ev.Kind = repository.EventRemoved
		return ev, nil
	default:
		return repository.TrackingEvent{}, fmt.Errorf("decode tracking event: unknown kind %q", msg.Kind)
	}
	if msg.Snapshot != nil {
		ev.Snapshot = *msg.Snapshot
	}
	if ev.Snapshot.OrderID == 0 {
		ev.Snapshot.OrderID = msg.OrderID
	}
	return ev, nil
}
