package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/port"
)

const (
	DefaultMailboxSize = 100
	DefaultKeepAlive   = 20 * time.Second
)

var ErrSubscriptionClosed = errors.New("subscription closed")

var keepAliveFrame = []byte(": keepalive\n\n")

// Message is one item of a subscription stream: either an event or a
// keep-alive tick.
type Message struct {
	Event     *domain.Event
	KeepAlive bool
}

// Bytes returns the message as a server-sent events frame.
func (m Message) Bytes() []byte {
	if m.KeepAlive || m.Event == nil {
		return keepAliveFrame
	}
	data, err := json.Marshal(m.Event)
	if err != nil {
		return keepAliveFrame
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", m.Event.Kind(), data))
}

type EventBusOption func(*EventBus)

func WithMailboxSize(n int) EventBusOption {
	return func(eb *EventBus) {
		if n > 0 {
			eb.mailboxSize = n
		}
	}
}

func WithKeepAlive(d time.Duration) EventBusOption {
	return func(eb *EventBus) {
		if d > 0 {
			eb.keepAlive = d
		}
	}
}

// EventBus fans job events out to per-job and global subscribers. Emission
// never blocks: a full mailbox drops the message for that subscriber only.
type EventBus struct {
	mu          sync.RWMutex
	byJob       map[string]map[*Subscription]struct{}
	global      map[*Subscription]struct{}
	mailboxSize int
	keepAlive   time.Duration
}

var _ port.EventPublisher = (*EventBus)(nil)

func NewEventBus(opts ...EventBusOption) *EventBus {
	eb := &EventBus{
		byJob:       make(map[string]map[*Subscription]struct{}),
		global:      make(map[*Subscription]struct{}),
		mailboxSize: DefaultMailboxSize,
		keepAlive:   DefaultKeepAlive,
	}
	for _, opt := range opts {
		opt(eb)
	}
	return eb
}

// Emit publishes data for jobID.
func (eb *EventBus) Emit(jobID string, data domain.EventData) {
	eb.Publish(domain.Event{JobID: jobID, Data: data})
}

func (eb *EventBus) Publish(event domain.Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for sub := range eb.byJob[event.JobID] {
		sub.deliver(event)
	}
	for sub := range eb.global {
		sub.deliver(event)
	}
}

// SubscribeAll observes every job.
func (eb *EventBus) SubscribeAll() *Subscription {
	sub := eb.newSubscription("", true)

	eb.mu.Lock()
	eb.global[sub] = struct{}{}
	eb.mu.Unlock()
	return sub
}

// Subscribe observes a single job.
func (eb *EventBus) Subscribe(jobID string) *Subscription {
	sub := eb.newSubscription(jobID, false)

	eb.mu.Lock()
	subs, ok := eb.byJob[jobID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		eb.byJob[jobID] = subs
	}
	subs[sub] = struct{}{}
	eb.mu.Unlock()
	return sub
}

func (eb *EventBus) newSubscription(jobID string, global bool) *Subscription {
	return &Subscription{
		bus:       eb,
		jobID:     jobID,
		global:    global,
		mailbox:   make(chan domain.Event, eb.mailboxSize),
		done:      make(chan struct{}),
		keepAlive: eb.keepAlive,
	}
}

func (eb *EventBus) remove(sub *Subscription) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if sub.global {
		delete(eb.global, sub)
		return
	}
	subs := eb.byJob[sub.jobID]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(eb.byJob, sub.jobID)
	}
}

// SubscriberCount reports the number of open subscriptions.
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	n := len(eb.global)
	for _, subs := range eb.byJob {
		n += len(subs)
	}
	return n
}

// Subscription is a single observer's mailbox. Next must be called from one
// goroutine; Close may be called from any.
type Subscription struct {
	bus       *EventBus
	jobID     string
	global    bool
	mailbox   chan domain.Event
	done      chan struct{}
	closeOnce sync.Once
	started   bool
	keepAlive time.Duration
}

func (s *Subscription) deliver(event domain.Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.mailbox <- event:
	default:
		// Mailbox full, drop.
	}
}

// Next blocks until an event arrives or the keep-alive interval elapses. The
// first call returns a keep-alive immediately.
func (s *Subscription) Next(ctx context.Context) (Message, error) {
	if !s.started {
		s.started = true
		return Message{KeepAlive: true}, nil
	}

	timer := time.NewTimer(s.keepAlive)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-s.done:
		return Message{}, ErrSubscriptionClosed
	case event := <-s.mailbox:
		return Message{Event: &event}, nil
	case <-timer.C:
		return Message{KeepAlive: true}, nil
	}
}

// Close unregisters the subscription. It is idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.remove(s)
		close(s.done)
	})
}
