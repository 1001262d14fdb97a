package pricing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{plans: make(map[string]Plan)}
}

func (m *MemoryRepository) List(_ context.Context) ([]Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plans := make([]Plan, 0, len(m.plans))
	for _, p := range m.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].Price != plans[j].Price {
			return plans[i].Price < plans[j].Price
		}
		return plans[i].ID < plans[j].ID
	})
	return plans, nil
}

func (m *MemoryRepository) Upsert(_ context.Context, plans []Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for _, p := range plans {
		p.Features = append(pq.StringArray(nil), p.Features...)
		p.UpdatedAt = &now
		m.plans[p.ID] = p
	}
	return nil
}
