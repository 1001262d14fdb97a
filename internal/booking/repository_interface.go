package booking

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error)
	Delete(ctx context.Context, id string) error
	// List returns one page of matching bookings, newest first, and the
	// total number of matches.
	List(ctx context.Context, f Filter) ([]Booking, int, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]Booking, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	// CountBySession counts bookings that are not canceled, per session.
	CountBySession(ctx context.Context, sessionIDs []string) (map[string]int, error)
}
