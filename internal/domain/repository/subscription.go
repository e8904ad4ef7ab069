package repository

import (
	"context"
	"sync"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// EventKind tells what happened to a tracking node.
type EventKind int

const (
	EventAdded EventKind = iota + 1
	EventChanged
	EventRemoved
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// TrackingEvent is a change of one tracking node. Snapshot is empty for
// EventRemoved and EventError; Err is set only for EventError.
type TrackingEvent struct {
	Kind     EventKind
	OrderID  int64
	Snapshot model.TrackingSnapshot
	Err      error
}

// DefaultSubscriptionBuffer is the event buffer of a subscription.
const DefaultSubscriptionBuffer = 64

// Subscription is a stream of tracking events owned by the caller that
// opened it. The owner must call Close when done. Events is never closed;
// consumers select on Done as well.
type Subscription struct {
	events  chan TrackingEvent
	done    chan struct{}
	once    sync.Once
	release func()
}

// NewSubscription creates a subscription. release runs once on Close and
// should detach the subscription from its backend.
func NewSubscription(buffer int, release func()) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}
	return &Subscription{
		events:  make(chan TrackingEvent, buffer),
		done:    make(chan struct{}),
		release: release,
	}
}

// Events returns the receive side of the stream.
func (s *Subscription) Events() <-chan TrackingEvent {
	return s.events
}

// Done is closed once the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether Close has been called.
func (s *Subscription) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Publish delivers ev, blocking while the buffer is full. It returns false
// when the subscription is closed or ctx ends first.
func (s *Subscription) Publish(ctx context.Context, ev TrackingEvent) bool {
	if s.Closed() {
		return false
	}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Fail publishes an EventError carrying err.
func (s *Subscription) Fail(ctx context.Context, err error) bool {
	return s.Publish(ctx, TrackingEvent{Kind: EventError, Err: err})
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.release != nil {
			s.release()
		}
	})
	return nil
}
