// Package bus is the in-process event fan-out connecting the trading
// loop to its observers (websocket gateway, notifiers, mirrors). If a
// subscriber channel is full the event is dropped for that subscriber
// to prevent a slow consumer from blocking the pipeline.
package bus

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// EventType tags what an Event carries in Data.
type EventType string

const (
	EventQuote    EventType = "quote"    // model.Quote
	EventSignal   EventType = "signal"   // model.Signal
	EventTrade    EventType = "trade"    // model.Order
	EventPosition EventType = "position" // model.Position
	EventLog      EventType = "log"      // status.Entry
	EventStatus   EventType = "status"   // status.Snapshot
)

// Event is one broadcast message.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// New creates an Event stamped with the current time.
func New(typ EventType, data any) Event {
	return Event{Type: typ, At: time.Now(), Data: data}
}

// Subscription is one consumer's feed. Receive from C; return it with
// Bus.Unsubscribe when done.
type Subscription struct {
	id int
	C  <-chan Event
	ch chan Event
}

// Bus fans events out to all current subscribers.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]*Subscription
	nextID  int
	bufSize int
	closed  bool
	dropped atomic.Int64

	// OnDrop is called when an event is dropped for a subscriber.
	OnDrop func(subscriberID int, ev Event)
}

// NewBus creates a Bus whose subscriber channels buffer bufSize events.
func NewBus(bufSize int) *Bus {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Bus{
		subs:    make(map[int]*Subscription),
		bufSize: bufSize,
	}
}

// Subscribe registers a new consumer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan Event, b.bufSize)
	sub := &Subscription{id: b.nextID, C: ch, ch: ch}
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the consumer and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
}

// Publish delivers ev to every subscriber without blocking. Full
// subscribers lose the event and the drop counter advances.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for id, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			b.dropped.Add(1)
			if b.OnDrop != nil {
				b.OnDrop(id, ev)
			} else {
				log.Printf("[bus] subscriber %d full, dropping %s event", id, ev.Type)
			}
		}
	}
}

// Dropped returns the total number of events dropped across all
// subscribers since the bus was created.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close shuts the bus: all subscriber channels close and further
// publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
