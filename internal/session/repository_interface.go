package session

import "context"

type Repository interface {
	Create(ctx context.Context, s *Session) (*Session, error)
	GetByID(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) (*Session, error)
	SetActive(ctx context.Context, id string, active bool) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListActiveByDate(ctx context.Context, date string) ([]Session, error)
	// List returns sessions on or after from ("" for all), by date and time.
	List(ctx context.Context, from string) ([]Session, error)
}

// BookingCounter counts bookings referencing the given sessions.
type BookingCounter interface {
	CountBySession(ctx context.Context, sessionIDs []string) (map[string]int, error)
}
