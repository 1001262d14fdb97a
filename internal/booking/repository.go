package booking

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"danceslot/internal/apperror"
	"danceslot/internal/calendar"
)

const columns = `id, name, phone, email, COALESCE(notes, '') AS notes, details, status, session_id, user_id, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (id, name, phone, email, notes, details, status, session_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + columns

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.ID, b.Name, b.Phone, b.Email, b.Notes, b.Details, b.Status, b.SessionID, b.UserID)
	if err != nil {
		return nil, apperror.FromStore("booking.Create", err)
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + columns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, apperror.FromStore("booking.GetByID", err)
	}

	b.fillDetails()
	return &b, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	query := `UPDATE bookings SET status = $2 WHERE id = $1 RETURNING ` + columns

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, apperror.FromStore("booking.UpdateStatus", err)
	}

	b.fillDetails()
	return &b, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return apperror.FromStore("booking.Delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]Booking, int, error) {
	f.normalize()
	where, args := whereClause(f)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings`+where, args...); err != nil {
		return nil, 0, apperror.FromStore("booking.List", err)
	}

	n := len(args)
	query := `SELECT ` + columns + ` FROM bookings` + where +
		` ORDER BY created_at DESC, id ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, f.PageSize, f.offset())

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, apperror.FromStore("booking.List", err)
	}

	fillAll(bookings)
	return bookings, total, nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func whereClause(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		p := next("%" + likeEscaper.Replace(s) + "%")
		conds = append(conds, "(name ILIKE "+p+` ESCAPE '\' OR phone LIKE `+p+` ESCAPE '\' OR email ILIKE `+p+` ESCAPE '\')`)
	}
	if f.Status != "" {
		conds = append(conds, "status = "+next(f.Status))
	}
	if from, err := calendar.ParseDate(f.From); err == nil {
		conds = append(conds, "created_at >= "+next(from))
	}
	if to, err := calendar.ParseDate(f.To); err == nil {
		conds = append(conds, "created_at < "+next(to.AddDate(0, 0, 1)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	query := `SELECT ` + columns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, apperror.FromStore("booking.ListByUser", err)
	}

	fillAll(bookings)
	return bookings, nil
}

func (r *repository) ListCreatedSince(ctx context.Context, since time.Time) ([]Booking, error) {
	query := `SELECT ` + columns + ` FROM bookings WHERE created_at >= $1 ORDER BY created_at ASC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, since); err != nil {
		return nil, apperror.FromStore("booking.ListCreatedSince", err)
	}

	fillAll(bookings)
	return bookings, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM bookings GROUP BY status`)
	if err != nil {
		return nil, apperror.FromStore("booking.CountByStatus", err)
	}

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) CountBySession(ctx context.Context, sessionIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SessionID string `db:"session_id"`
		Count     int    `db:"count"`
	}
	query := `
		SELECT session_id, COUNT(*) AS count
		FROM bookings
		WHERE session_id::text = ANY($1) AND status <> 'canceled'
		GROUP BY session_id
	`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(sessionIDs)); err != nil {
		return nil, apperror.FromStore("booking.CountBySession", err)
	}

	for _, row := range rows {
		counts[row.SessionID] = row.Count
	}
	return counts, nil
}

func fillAll(bookings []Booking) {
	for i := range bookings {
		bookings[i].fillDetails()
	}
}
