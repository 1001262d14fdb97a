package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"danceslot/internal/apperror"
)

const columns = `id, to_char(date, 'YYYY-MM-DD') AS date, time, type, trainer_id, duration_minutes, mode, capacity, active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Session) (*Session, error) {
	query := `
		INSERT INTO sessions (id, date, time, type, trainer_id, duration_minutes, mode, capacity, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + columns

	var created Session
	err := r.db.GetContext(ctx, &created, query,
		s.ID, s.Date, s.Time, s.Type, s.TrainerID, s.DurationMinutes, s.Mode, s.Capacity, s.Active)
	if err != nil {
		return nil, apperror.FromStore("session.Create", err)
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Session, error) {
	query := `SELECT ` + columns + ` FROM sessions WHERE id = $1`

	var s Session
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, apperror.FromStore("session.GetByID", err)
	}

	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *Session) (*Session, error) {
	query := `
		UPDATE sessions
		SET date = $2, time = $3, type = $4, trainer_id = $5, duration_minutes = $6, mode = $7, capacity = $8, active = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + columns

	var updated Session
	err := r.db.GetContext(ctx, &updated, query,
		s.ID, s.Date, s.Time, s.Type, s.TrainerID, s.DurationMinutes, s.Mode, s.Capacity, s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, apperror.FromStore("session.Update", err)
	}

	return &updated, nil
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) (*Session, error) {
	query := `UPDATE sessions SET active = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + columns

	var updated Session
	err := r.db.GetContext(ctx, &updated, query, id, active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, apperror.FromStore("session.SetActive", err)
	}

	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return apperror.FromStore("session.Delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *repository) ListActiveByDate(ctx context.Context, date string) ([]Session, error) {
	query := `
		SELECT ` + columns + `
		FROM sessions
		WHERE date = $1 AND active = TRUE
		ORDER BY time ASC, trainer_id ASC, id ASC
	`

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, date); err != nil {
		return nil, apperror.FromStore("session.ListActiveByDate", err)
	}

	return sessions, nil
}

func (r *repository) List(ctx context.Context, from string) ([]Session, error) {
	query := `SELECT ` + columns + ` FROM sessions`
	args := []interface{}{}

	if from != "" {
		query += " WHERE date >= $1"
		args = append(args, from)
	}

	query += " ORDER BY date ASC, time ASC, trainer_id ASC"

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, apperror.FromStore("session.List", err)
	}

	return sessions, nil
}
