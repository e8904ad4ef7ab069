// Package watch fans tracking events out to in-process subscriptions.
package watch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/polkiloo/courieragent/internal/domain/repository"
)

// AllOrders subscribes to every node of the tracking tree.
const AllOrders int64 = 0

type watcher struct {
	orderID int64
	sub     atomic.Pointer[repository.Subscription]
	// buffered and live are guarded by Registry.pubMu.
	buffered []repository.TrackingEvent
	live     bool
}

// Registry keeps the subscriptions opened against one store.
type Registry struct {
	mu       sync.RWMutex
	pubMu    sync.Mutex
	nextID   uint64
	watchers map[uint64]*watcher
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{watchers: make(map[uint64]*watcher)}
}

// Pending is a subscription registered with a registry that has not yet
// received its initial events. Events dispatched meanwhile are kept and
// delivered after the initial ones.
type Pending struct {
	r       *Registry
	id      uint64
	w       *watcher
	settled bool
}

// Reserve registers a watcher for orderID (or AllOrders) before the store
// reads the current state, so no change made during that read is missed.
// The caller must finish it with Start or Cancel.
func (r *Registry) Reserve(orderID int64) *Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return &Pending{r: r}
	}
	id := r.nextID
	r.nextID++
	w := &watcher{orderID: orderID}
	r.watchers[id] = w
	return &Pending{r: r, id: id, w: w}
}

// Cancel drops a reserved watcher whose initial read failed.
func (p *Pending) Cancel() {
	if p.settled || p.w == nil {
		p.settled = true
		return
	}
	p.settled = true
	p.r.remove(p.id)
}

// Start opens the subscription, queueing initial and then the events
// buffered since Reserve. A buffered EventAdded for a node already present
// in initial becomes EventChanged. The subscription closes itself when ctx
// ends.
func (p *Pending) Start(ctx context.Context, initial []repository.TrackingEvent) *repository.Subscription {
	r := p.r
	if p.settled || p.w == nil {
		p.settled = true
		return closedSubscription()
	}
	p.settled = true

	r.pubMu.Lock()
	seen := make(map[int64]struct{}, len(initial))
	for _, ev := range initial {
		seen[ev.OrderID] = struct{}{}
	}
	queue := make([]repository.TrackingEvent, 0, len(initial)+len(p.w.buffered))
	queue = append(queue, initial...)
	for _, ev := range p.w.buffered {
		if _, ok := seen[ev.OrderID]; ok && ev.Kind == repository.EventAdded {
			ev.Kind = repository.EventChanged
		}
		queue = append(queue, ev)
	}

	id := p.id
	sub := repository.NewSubscription(repository.DefaultSubscriptionBuffer+len(queue), func() {
		r.remove(id)
	})
	// The queue fits the buffer so this never blocks.
	for _, ev := range queue {
		sub.Publish(ctx, ev)
	}
	p.w.sub.Store(sub)
	p.w.buffered = nil
	p.w.live = true
	r.pubMu.Unlock()

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		_ = sub.Close()
		return sub
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.Done():
		}
	}()
	return sub
}

// Subscribe registers a subscription for orderID (or AllOrders) and queues
// initial before any dispatched event. Stores that read their initial state
// without holding off writers use Reserve instead.
func (r *Registry) Subscribe(ctx context.Context, orderID int64, initial []repository.TrackingEvent) *repository.Subscription {
	return r.Reserve(orderID).Start(ctx, initial)
}

func closedSubscription() *repository.Subscription {
	sub := repository.NewSubscription(0, nil)
	_ = sub.Close()
	return sub
}

func (r *Registry) remove(id uint64) {
	r.mu.Lock()
	delete(r.watchers, id)
	r.mu.Unlock()
}

// Dispatch delivers ev to every matching subscription in call order. It
// blocks while a subscriber's buffer is full, until ctx ends.
func (r *Registry) Dispatch(ctx context.Context, ev repository.TrackingEvent) {
	r.mu.RLock()
	targets := make([]*watcher, 0, len(r.watchers))
	for _, w := range r.watchers {
		if w.orderID == AllOrders || w.orderID == ev.OrderID || ev.Kind == repository.EventError {
			targets = append(targets, w)
		}
	}
	r.pubMu.Lock()
	r.mu.RUnlock()
	defer r.pubMu.Unlock()

	for _, w := range targets {
		if !w.live {
			w.buffered = append(w.buffered, ev)
			continue
		}
		w.sub.Load().Publish(ctx, ev)
	}
}

// Len reports the number of open subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.watchers)
}

// Close closes every subscription and rejects new ones.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	subs := make([]*repository.Subscription, 0, len(r.watchers))
	for _, w := range r.watchers {
		if sub := w.sub.Load(); sub != nil {
			subs = append(subs, sub)
		}
	}
	r.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
}
