package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps accounts in process memory. Used in demo mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (m *MemoryRepository) Create(_ context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[u.Email]; taken {
		return nil, ErrEmailTaken
	}

	created := *u
	now := m.now().UTC()
	created.CreatedAt, created.UpdatedAt = now, now
	m.byID[created.ID] = created
	m.byEmail[created.Email] = created.ID

	out := created
	return &out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	id, ok := m.byEmail[email]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *MemoryRepository) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *MemoryRepository) UpdateProfile(_ context.Context, id string, p Profile) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Name = p.Name
	u.Phone = p.Phone
	u.UpdatedAt = m.now().UTC()
	m.byID[id] = u
	return &u, nil
}
