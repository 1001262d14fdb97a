package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"danceslot/internal/calendar"
)

// MemoryRepository keeps bookings in process memory. Used in demo mode.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]Booking
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bookings: make(map[string]Booking),
		now:      time.Now,
	}
}

func (m *MemoryRepository) Create(_ context.Context, b *Booking) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *b
	if created.CreatedAt.IsZero() {
		created.CreatedAt = m.now().UTC()
	}
	m.bookings[created.ID] = created

	out := created
	return &out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id string, status Status) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.Status = status
	m.bookings[id] = b
	return &b, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *MemoryRepository) List(_ context.Context, f Filter) ([]Booking, int, error) {
	f.normalize()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	from, fromErr := calendar.ParseDate(f.From)
	to, toErr := calendar.ParseDate(f.To)

	matches := m.filter(func(b Booking) bool {
		if search != "" {
			email := ""
			if b.Email != nil {
				email = strings.ToLower(*b.Email)
			}
			if !strings.Contains(strings.ToLower(b.Name), search) &&
				!strings.Contains(b.Phone, search) &&
				!strings.Contains(email, search) {
				return false
			}
		}
		if f.Status != "" && b.Status != f.Status {
			return false
		}
		if fromErr == nil && b.CreatedAt.Before(from) {
			return false
		}
		if toErr == nil && !b.CreatedAt.Before(to.AddDate(0, 0, 1)) {
			return false
		}
		return true
	}, true)

	total := len(matches)
	start := f.offset()
	if start > total {
		start = total
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matches[start:end], total, nil
}

func (m *MemoryRepository) ListByUser(_ context.Context, userID string) ([]Booking, error) {
	return m.filter(func(b Booking) bool {
		return b.UserID != nil && *b.UserID == userID
	}, true), nil
}

func (m *MemoryRepository) ListCreatedSince(_ context.Context, since time.Time) ([]Booking, error) {
	return m.filter(func(b Booking) bool { return !b.CreatedAt.Before(since) }, false), nil
}

func (m *MemoryRepository) CountByStatus(_ context.Context) (map[Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, b := range m.bookings {
		counts[b.Status]++
	}
	return counts, nil
}

func (m *MemoryRepository) CountBySession(_ context.Context, sessionIDs []string) (map[string]int, error) {
	wanted := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int, len(sessionIDs))
	for _, b := range m.bookings {
		if b.SessionID != nil && wanted[*b.SessionID] && b.Status != StatusCanceled {
			counts[*b.SessionID]++
		}
	}
	return counts, nil
}

func (m *MemoryRepository) filter(keep func(Booking) bool, newestFirst bool) []Booking {
	m.mu.RLock()
	out := []Booking{}
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}
