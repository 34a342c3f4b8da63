// Package eventbus provides the in-process publish/subscribe channel that
// fans state changes out to connected clients. Each subscriber owns a
// bounded delivery queue; publish never blocks and a slow or dead
// subscriber never delays delivery to the others. For a single publisher
// goroutine, each subscriber observes events in publish order. Events are
// not persisted: a late subscriber never sees earlier traffic.
package eventbus

import (
	"encoding/json"
	"sync"
)

// Tag identifies the type of a published event.
type Tag string

const (
	TagSystemConnected           Tag = "system.connected"
	TagDoctorAvailabilityUpdated Tag = "doctor.availability.updated"
	TagAppointmentQueueUpdated   Tag = "appointment.queue.updated"
	TagEmergencyCaseUpdated      Tag = "emergency.case.updated"
	TagHospitalCapacityUpdated   Tag = "hospital.capacity.updated"
)

// Envelope is the typed event/payload pair delivered to subscribers. The
// payload is the entity snapshot taken after the mutation; envelopes are
// immutable after construction.
type Envelope struct {
	Event   Tag             `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope builds an Envelope, serializing the payload snapshot at
// construction time so later entity changes cannot leak into it.
func NewEnvelope(tag Tag, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: tag, Payload: data}, nil
}

// Publisher is the write side of the bus, accepted by domain services.
type Publisher interface {
	Publish(tag Tag, payload interface{})
}

// Subscription is one subscriber's delivery queue. The channel is closed
// when the subscription is cancelled.
type Subscription struct {
	id uint64
	ch chan Envelope
}

// C returns the receive side of the delivery queue.
func (s *Subscription) C() <-chan Envelope { return s.ch }

// Option configures a Bus.
type Option func(*Bus)

// WithBuffer sets the per-subscriber queue capacity.
func WithBuffer(n int) Option {
	return func(b *Bus) { b.buffer = n }
}

// WithPublishHook registers a callback invoked once per publish.
func WithPublishHook(fn func(Tag)) Option {
	return func(b *Bus) { b.onPublish = fn }
}

// WithDropHook registers a callback invoked when a subscriber's queue is
// full and an envelope is dropped for that subscriber.
func WithDropHook(fn func(Tag)) Option {
	return func(b *Bus) { b.onDrop = fn }
}

const defaultBuffer = 256

// Bus delivers envelopes to all live subscriptions.
type Bus struct {
	mu        sync.RWMutex
	subs      map[uint64]*Subscription
	next      uint64
	buffer    int
	onPublish func(Tag)
	onDrop    func(Tag)
}

// New creates a Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[uint64]*Subscription),
		buffer: defaultBuffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new delivery queue. The subscriber receives only
// events published after this call returns.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	sub := &Subscription{id: b.next, ch: make(chan Envelope, b.buffer)}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the subscription and closes its queue. Safe to call
// more than once and concurrently with Publish.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

// Publish delivers the envelope to every live subscription without
// blocking. A subscriber whose queue is full misses this envelope; the
// drop hook is invoked so the loss is observable. An unserializable
// payload loses the event for everyone and is reported the same way.
func (b *Bus) Publish(tag Tag, payload interface{}) {
	env, err := NewEnvelope(tag, payload)
	if err != nil {
		if b.onDrop != nil {
			b.onDrop(tag)
		}
		return
	}

	if b.onPublish != nil {
		b.onPublish(tag)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- env:
		default:
			if b.onDrop != nil {
				b.onDrop(tag)
			}
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
