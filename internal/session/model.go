package session

import (
	"time"

	"danceslot/internal/studio"
)

// Session is a date-specific override. Any active session on a date
// replaces the weekly template for that date.
type Session struct {
	ID              string              `db:"id" json:"id"`
	Date            string              `db:"date" json:"date" validate:"required,date"`
	Time            string              `db:"time" json:"time" validate:"required,hhmm"`
	Type            studio.TrainingType `db:"type" json:"type" validate:"required"`
	TrainerID       string              `db:"trainer_id" json:"trainer_id" validate:"required"`
	DurationMinutes int                 `db:"duration_minutes" json:"duration_minutes" validate:"min=1"`
	Mode            studio.SessionMode  `db:"mode" json:"mode" validate:"oneof=group personal"`
	Capacity        int                 `db:"capacity" json:"capacity" validate:"min=1"`
	Active          bool                `db:"active" json:"active"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// SessionWithBookings reports how many bookings reference a session.
// Capacity is informational and never enforced.
type SessionWithBookings struct {
	Session
	BookedCount int  `json:"booked_count"`
	Available   int  `json:"available"`
	IsFull      bool `json:"is_full"`
}

type CreateSessionRequest struct {
	Date            string              `json:"date"`
	Time            string              `json:"time"`
	Type            studio.TrainingType `json:"type"`
	TrainerID       string              `json:"trainer_id"`
	DurationMinutes int                 `json:"duration_minutes"`
	Mode            studio.SessionMode  `json:"mode"`
	Capacity        int                 `json:"capacity"`
	Active          *bool               `json:"active"`
}

// UpdateSessionRequest is a patch: nil fields are left unchanged.
type UpdateSessionRequest struct {
	Date            *string              `json:"date"`
	Time            *string              `json:"time"`
	Type            *studio.TrainingType `json:"type"`
	TrainerID       *string              `json:"trainer_id"`
	DurationMinutes *int                 `json:"duration_minutes"`
	Mode            *studio.SessionMode  `json:"mode"`
	Capacity        *int                 `json:"capacity"`
	Active          *bool                `json:"active"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (r UpdateSessionRequest) apply(s *Session) {
	if r.Date != nil {
		s.Date = *r.Date
	}
	if r.Time != nil {
		s.Time = *r.Time
	}
	if r.Type != nil {
		s.Type = *r.Type
	}
	if r.TrainerID != nil {
		s.TrainerID = *r.TrainerID
	}
	if r.DurationMinutes != nil {
		s.DurationMinutes = *r.DurationMinutes
	}
	if r.Mode != nil {
		s.Mode = *r.Mode
	}
	if r.Capacity != nil {
		s.Capacity = *r.Capacity
	}
	if r.Active != nil {
		s.Active = *r.Active
	}
}
