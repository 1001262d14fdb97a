package calendar

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"

	"danceslot/internal/apperror"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*Limits, error) {
	query := `
		SELECT min_days_ahead, max_days_ahead
		FROM calendar_settings
		WHERE id = 1
	`

	var limits Limits
	err := r.db.GetContext(ctx, &limits, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLimitsNotSet
	}
	if err != nil {
		return nil, apperror.FromStore("calendar.Get", err)
	}

	return &limits, nil
}

func (r *repository) Save(ctx context.Context, limits Limits) (*Limits, error) {
	query := `
		INSERT INTO calendar_settings (id, min_days_ahead, max_days_ahead, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET min_days_ahead = EXCLUDED.min_days_ahead, max_days_ahead = EXCLUDED.max_days_ahead, updated_at = NOW()
		RETURNING min_days_ahead, max_days_ahead
	`

	var saved Limits
	if err := r.db.GetContext(ctx, &saved, query, limits.MinDaysAhead, limits.MaxDaysAhead); err != nil {
		return nil, apperror.FromStore("calendar.Save", err)
	}

	return &saved, nil
}

// MemoryRepository keeps the limits in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	limits *Limits
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Get(_ context.Context) (*Limits, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.limits == nil {
		return nil, ErrLimitsNotSet
	}
	l := *m.limits
	return &l, nil
}

func (m *MemoryRepository) Save(_ context.Context, limits Limits) (*Limits, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := limits
	m.limits = &l
	out := l
	return &out, nil
}
