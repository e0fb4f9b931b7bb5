// Package events provides the outbound notification queue of the playback
// engine. The engine pushes notifications (bank ready, codec support, note
// errors) and the host pops them from its own event loop.
package events

import (
	"sort"
	"sync"
	"time"
)

// Type represents the type of a notification.
type Type string

const (
	// BankReady is pushed when a bank load completes. Param "OK" is a bool;
	// on failure "Reason" holds the error text.
	BankReady Type = "BANK_READY"

	// CodecSupport reports whether the preferred compressed format can be
	// played. Param "Supported" is a bool, "Format" the format name.
	CodecSupport Type = "CODEC_SUPPORT"

	// NoteError is pushed for a note event that could not be scheduled.
	// Params "Note", "Index" and "Reason".
	NoteError Type = "NOTE_ERROR"
)

// Event is one notification.
type Event struct {
	// Type is the notification type.
	Type Type

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Params contains type-specific values.
	Params map[string]any
}

// NewEvent creates a new event with the given type.
// The timestamp is set to the current time.
func NewEvent(eventType Type) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Params:    make(map[string]any),
	}
}

// NewEventWithParams creates a new event with the given type and parameters.
func NewEventWithParams(eventType Type, params map[string]any) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Params:    params,
	}
}

// GetParam retrieves a parameter value by name.
func (e *Event) GetParam(name string) (any, bool) {
	if e.Params == nil {
		return nil, false
	}
	val, ok := e.Params[name]
	return val, ok
}

// Bool returns a boolean parameter, false when missing.
func (e *Event) Bool(name string) bool {
	v, _ := e.GetParam(name)
	b, _ := v.(bool)
	return b
}

// DefaultQueueSize is the default maximum size of the queue.
const DefaultQueueSize = 1000

// Queue is a thread-safe queue of events in chronological order.
// When full, the oldest event is discarded.
type Queue struct {
	events  []*Event
	maxSize int
	mu      sync.Mutex
}

// NewQueue creates a queue with the default maximum size.
func NewQueue() *Queue {
	return NewQueueWithSize(DefaultQueueSize)
}

// NewQueueWithSize creates a queue with a custom maximum size.
func NewQueueWithSize(maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = DefaultQueueSize
	}
	return &Queue{
		events:  make([]*Event, 0, maxSize),
		maxSize: maxSize,
	}
}

// Push adds an event, assigning a timestamp if it has none.
func (q *Queue) Push(event *Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if len(q.events) >= q.maxSize {
		q.events = q.events[1:]
	}

	q.events = append(q.events, event)

	// stable so that events with equal timestamps keep push order
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].Timestamp.Before(q.events[j].Timestamp)
	})
}

// Pop removes and returns the oldest event.
func (q *Queue) Pop() (*Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}
	event := q.events[0]
	q.events = q.events[1:]
	return event, true
}

// Peek returns the oldest event without removing it.
func (q *Queue) Peek() (*Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}
	return q.events[0], true
}

// Drain removes and returns every queued event, oldest first.
func (q *Queue) Drain() []*Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.events
	q.events = make([]*Event, 0, q.maxSize)
	return out
}

// Snapshot returns a copy of the queued events, oldest first, leaving the
// queue unchanged.
func (q *Queue) Snapshot() []*Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Event(nil), q.events...)
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Clear removes all events.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = q.events[:0]
}
