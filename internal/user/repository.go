package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"danceslot/internal/apperror"
)

const columns = `id, name, email, phone, password_hash, role, created_at, updated_at`

// uniqueViolation is the Postgres error code for a duplicate key.
const uniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (id, name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + columns

	var created User
	err := r.db.GetContext(ctx, &created, query, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, apperror.FromStore("user.Create", err)
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "user.GetByID", `SELECT `+columns+` FROM users WHERE id = $1`, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "user.GetByEmail", `SELECT `+columns+` FROM users WHERE email = $1`, email)
}

func (r *repository) getOne(ctx context.Context, op, query string, arg interface{}) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.FromStore(op, err)
	}
	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, apperror.FromStore("user.EmailExists", err)
	}
	return exists, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id string, p Profile) (*User, error) {
	query := `UPDATE users SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1 RETURNING ` + columns

	var updated User
	err := r.db.GetContext(ctx, &updated, query, id, p.Name, p.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.FromStore("user.UpdateProfile", err)
	}
	return &updated, nil
}
