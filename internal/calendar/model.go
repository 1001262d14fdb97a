package calendar

import (
	"time"

	"danceslot/internal/apperror"
)

const DateLayout = "2006-01-02"

// Limits is the booking window relative to today, in whole days.
type Limits struct {
	MinDaysAhead int `db:"min_days_ahead" json:"min_days_ahead"`
	MaxDaysAhead int `db:"max_days_ahead" json:"max_days_ahead"`
}

var DefaultLimits = Limits{MinDaysAhead: 0, MaxDaysAhead: 30}

// Clamp returns limits that satisfy 0 <= min <= max.
func (l Limits) Clamp() Limits {
	lo := l.MinDaysAhead
	if lo < 0 {
		lo = 0
	}
	hi := l.MaxDaysAhead
	if hi < lo {
		hi = lo
	}
	return Limits{MinDaysAhead: lo, MaxDaysAhead: hi}
}

// Normalize validates admin input. A negative minimum is rejected, a
// maximum below the minimum is raised to it.
func Normalize(minDays, maxDays int) (Limits, error) {
	if minDays < 0 {
		return Limits{}, apperror.Field("min_days_ahead", "min_days_ahead must be greater than or equal to 0")
	}
	if maxDays < minDays {
		maxDays = minDays
	}
	return Limits{MinDaysAhead: minDays, MaxDaysAhead: maxDays}, nil
}

type SetLimitsRequest struct {
	MinDaysAhead *int `json:"min_days_ahead" binding:"required"`
	MaxDaysAhead *int `json:"max_days_ahead" binding:"required"`
}

type WindowResponse struct {
	Limits
	Today string `json:"today"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Clock returns the current instant.
type Clock func() time.Time

// DateOf drops the time of day, keeping the calendar date of t in its own
// location. Dates are represented as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Window is the inclusive range of selectable dates.
func Window(today time.Time, l Limits) (from, to time.Time) {
	today = DateOf(today)
	return today.AddDate(0, 0, l.MinDaysAhead), today.AddDate(0, 0, l.MaxDaysAhead)
}

func InWindow(date, today time.Time, l Limits) bool {
	from, to := Window(today, l)
	date = DateOf(date)
	return !date.Before(from) && !date.After(to)
}
