package booking

import (
	"context"
	"sync"
	"time"

	"danceslot/internal/api"
	"danceslot/internal/logger"
	"danceslot/internal/metrics"
	"danceslot/internal/realtime"
)

// BoardSource is the subset of Service the board works against.
type BoardSource interface {
	List(ctx context.Context, f Filter) (*api.Page[Booking], error)
	SetStatus(ctx context.Context, id string, status Status) (*Booking, error)
	Delete(ctx context.Context, id string) error
}

// Board is the admin view of recent bookings. It re-fetches when bookings
// change, drops fetch results that finish after a newer fetch was applied,
// and applies status changes and deletes locally before the store confirms,
// restoring the previous entry when the store call fails.
type Board struct {
	source  BoardSource
	filter  Filter
	timeout time.Duration

	mu       sync.RWMutex
	bookings []Booking
	issued   uint64
	applied  uint64
}

func NewBoard(source BoardSource, filter Filter) *Board {
	filter.normalize()
	return &Board{
		source:   source,
		filter:   filter,
		timeout:  10 * time.Second,
		bookings: []Booking{},
	}
}

// Refresh fetches the board contents. A result is discarded when a fetch
// issued later has already been applied.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.issued++
	seq := b.issued
	b.mu.Unlock()

	page, err := b.source.List(ctx, b.filter)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq <= b.applied {
		logger.Debug("Discarding stale board fetch", "seq", seq, "applied", b.applied)
		return nil
	}
	if err != nil {
		return err
	}

	b.bookings = append([]Booking(nil), page.Items...)
	b.applied = seq
	return nil
}

// Watch refreshes the board on every bookings change event until the
// returned function is called.
func (b *Board) Watch(hub *realtime.Hub) func() {
	return hub.Subscribe(realtime.TableBookings, func(realtime.Event) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
			defer cancel()
			if err := b.Refresh(ctx); err != nil {
				logger.WithError(err).Warn("Board refresh failed")
			}
		}()
	})
}

func (b *Board) Snapshot() []Booking {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Booking(nil), b.bookings...)
}

func (b *Board) SetStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	prev, ok := b.replace(id, func(bk *Booking) { bk.Status = status })

	updated, err := b.source.SetStatus(ctx, id, status)
	if err != nil {
		if ok {
			b.replace(id, func(bk *Booking) { *bk = prev })
			metrics.RecordBoardRollback("set_status")
		}
		return nil, err
	}

	b.replace(id, func(bk *Booking) { *bk = *updated })
	return updated, nil
}

func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	idx := b.index(id)
	var removed Booking
	if idx >= 0 {
		removed = b.bookings[idx]
		b.bookings = append(b.bookings[:idx:idx], b.bookings[idx+1:]...)
	}
	b.mu.Unlock()

	if err := b.source.Delete(ctx, id); err != nil {
		if idx >= 0 {
			b.mu.Lock()
			if b.index(id) < 0 {
				if idx > len(b.bookings) {
					idx = len(b.bookings)
				}
				b.bookings = append(b.bookings[:idx:idx], append([]Booking{removed}, b.bookings[idx:]...)...)
			}
			b.mu.Unlock()
			metrics.RecordBoardRollback("delete")
		}
		return err
	}
	return nil
}

// replace applies fn to the entry with id and returns its previous value.
func (b *Board) replace(id string, fn func(*Booking)) (Booking, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.index(id)
	if idx < 0 {
		return Booking{}, false
	}
	prev := b.bookings[idx]
	fn(&b.bookings[idx])
	return prev, true
}

func (b *Board) index(id string) int {
	for i := range b.bookings {
		if b.bookings[i].ID == id {
			return i
		}
	}
	return -1
}
