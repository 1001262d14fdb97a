package booking

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"danceslot/internal/availability"
	"danceslot/internal/studio"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
	StatusAttended  Status = "attended"
)

var Statuses = []Status{StatusPending, StatusConfirmed, StatusCanceled, StatusAttended}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusAttended, StatusCanceled},
}

// CanTransition reports whether from -> to is allowed by the booking
// lifecycle. Setting the current status again is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

const (
	SourceWeekly   = string(availability.SourceWeekly)
	SourceCalendar = string(availability.SourceCalendar)
	SourceContact  = "contact"
)

// Details is the structured part of a booking: what was booked and where
// the request came from.
type Details struct {
	Comment     string              `json:"comment,omitempty"`
	Type        studio.TrainingType `json:"type,omitempty"`
	Mode        studio.SessionMode  `json:"mode,omitempty"`
	TrainerID   string              `json:"trainer_id,omitempty"`
	TrainerName string              `json:"trainer_name,omitempty"`
	Date        string              `json:"date,omitempty"`
	Time        string              `json:"time,omitempty"`
	Source      string              `json:"source,omitempty"`
	Label       string              `json:"label,omitempty"`
}

func (d Details) IsZero() bool {
	return d == Details{}
}

func (d Details) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *Details) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = Details{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("booking details: unsupported column type")
	}
	if len(data) == 0 {
		*d = Details{}
		return nil
	}
	return json.Unmarshal(data, d)
}

type Booking struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Notes     string    `db:"notes" json:"notes"`
	Details   Details   `db:"details" json:"details"`
	Status    Status    `db:"status" json:"status"`
	SessionID *string   `db:"session_id" json:"session_id,omitempty"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// fillDetails recovers Details from the notes text of rows written before
// the details column existed.
func (b *Booking) fillDetails() {
	if b.Details.IsZero() && b.Notes != "" {
		b.Details = ParseNotes(b.Notes)
	}
}

// SubmitRequest is a booking for a slot picked from the schedule.
type SubmitRequest struct {
	Name   string                    `json:"name" validate:"required,min=2,max=50"`
	Phone  string                    `json:"phone" validate:"required,min=10,max=20,phone"`
	Email  string                    `json:"email" validate:"omitempty,max=100,email"`
	Notes  string                    `json:"notes" validate:"max=500"`
	Date   string                    `json:"date" validate:"required,date"`
	Slot   availability.ResolvedSlot `json:"slot"`
	Label  string                    `json:"label" validate:"max=100"`
	UserID string                    `json:"-"`
}

// ContactRequest is the general contact form.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=50"`
	Email   string `json:"email" validate:"required,max=100,email"`
	Phone   string `json:"phone" validate:"required,min=10,max=20,phone"`
	Message string `json:"message" validate:"required,min=10,max=500"`
	UserID  string `json:"-"`
}

type SetStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// Filter selects bookings for the admin listing. From and To are dates;
// To includes the whole day.
type Filter struct {
	Search   string `form:"search"`
	Status   Status `form:"status"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (f *Filter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.PageSize
}
