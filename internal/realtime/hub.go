package realtime

import (
	"context"
	"sync"
	"time"

	"danceslot/internal/metrics"
)

const (
	TableSessions         = "sessions"
	TableBookings         = "bookings"
	TableCalendarSettings = "calendar_settings"
	TablePricingPlans     = "pricing_plans"

	// AllTables subscribes to every table.
	AllTables = "*"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

var knownTables = map[string]bool{
	TableSessions:         true,
	TableBookings:         true,
	TableCalendarSettings: true,
	TablePricingPlans:     true,
	AllTables:             true,
}

// KnownTable reports whether table can be subscribed to.
func KnownTable(table string) bool {
	return knownTables[table]
}

// Event signals that a row in Table changed. Subscribers re-read the
// table instead of patching local state from the event.
type Event struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

func NewEvent(table, action, id string) Event {
	return Event{Table: table, Action: action, ID: id, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// EventHandler must not block; long work belongs in its own goroutine.
type EventHandler func(Event)

// Hub fans change events out to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]EventHandler
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]EventHandler)}
}

// Subscribe registers fn for table and returns the function that removes it.
// Calling the returned function more than once is a no-op.
func (h *Hub) Subscribe(table string, fn EventHandler) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]EventHandler)
	}
	h.subs[table][id] = fn
	h.mu.Unlock()

	metrics.RealtimeSubscribers.WithLabelValues(table).Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[table], id)
			if len(h.subs[table]) == 0 {
				delete(h.subs, table)
			}
			h.mu.Unlock()
			metrics.RealtimeSubscribers.WithLabelValues(table).Dec()
		})
	}
}

// Publish delivers e synchronously to the table's subscribers and to the
// wildcard subscribers.
func (h *Hub) Publish(_ context.Context, e Event) {
	h.mu.RLock()
	handlers := make([]EventHandler, 0, len(h.subs[e.Table])+len(h.subs[AllTables]))
	for _, fn := range h.subs[e.Table] {
		handlers = append(handlers, fn)
	}
	if e.Table != AllTables {
		for _, fn := range h.subs[AllTables] {
			handlers = append(handlers, fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}

func (h *Hub) Subscribers(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}
