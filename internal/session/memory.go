package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is the process-local store used when PostgreSQL is not
// reachable at start-up.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryRepository) Create(_ context.Context, s *Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *s
	created.CreatedAt = m.now().UTC()
	created.UpdatedAt = created.CreatedAt
	m.sessions[created.ID] = created

	out := created
	return &out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemoryRepository) Update(_ context.Context, s *Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[s.ID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	updated := *s
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = m.now().UTC()
	m.sessions[s.ID] = updated

	out := updated
	return &out, nil
}

func (m *MemoryRepository) SetActive(_ context.Context, id string, active bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Active = active
	s.UpdatedAt = m.now().UTC()
	m.sessions[id] = s

	return &s, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryRepository) ListActiveByDate(_ context.Context, date string) ([]Session, error) {
	return m.filter(func(s Session) bool { return s.Active && s.Date == date }), nil
}

func (m *MemoryRepository) List(_ context.Context, from string) ([]Session, error) {
	return m.filter(func(s Session) bool { return from == "" || s.Date >= from }), nil
}

func (m *MemoryRepository) filter(keep func(Session) bool) []Session {
	m.mu.RLock()
	out := []Session{}
	for _, s := range m.sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.TrainerID != b.TrainerID {
			return a.TrainerID < b.TrainerID
		}
		return a.ID < b.ID
	})
	return out
}
