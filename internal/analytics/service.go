package analytics

import (
	"context"
	"math"
	"time"

	"danceslot/internal/booking"
	"danceslot/internal/calendar"
	"danceslot/internal/logger"
)

// Source is the subset of the booking store the reports read from.
type Source interface {
	CountByStatus(ctx context.Context) (map[booking.Status]int, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]booking.Booking, error)
}

type Service interface {
	Report(ctx context.Context) (*Report, error)
}

type service struct {
	source Source
	clock  calendar.Clock
	loc    *time.Location
}

func NewService(source Source, clock calendar.Clock, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{source: source, clock: clock, loc: loc}
}

func (s *service) Report(ctx context.Context) (*Report, error) {
	byStatus, err := s.source.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	today := calendar.Today(s.clock(), s.loc)
	dailyFrom := today.AddDate(0, 0, -(recentDays - 1))
	weeklyFrom := weekStart(today).AddDate(0, 0, -7*(weeksShown-1))

	since := dailyFrom
	if weeklyFrom.Before(since) {
		since = weeklyFrom
	}
	// bucket boundaries are studio-local days
	sinceLocal := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, s.loc)

	recent, err := s.source.ListCreatedSince(ctx, sinceLocal)
	if err != nil {
		return nil, err
	}

	r := &Report{ByStatus: byStatus}
	for _, n := range byStatus {
		r.Total += n
	}
	r.Attended = byStatus[booking.StatusAttended]
	r.AttendanceRate = rate(r.Attended, r.Total)

	daily := make([]Point, recentDays)
	for i := range daily {
		daily[i].Date = calendar.FormatDate(dailyFrom.AddDate(0, 0, i))
	}
	weekly := make([]Point, weeksShown)
	for i := range weekly {
		weekly[i].Date = calendar.FormatDate(weeklyFrom.AddDate(0, 0, 7*i))
	}

	for _, b := range recent {
		day := calendar.Today(b.CreatedAt, s.loc)
		attended := b.Status == booking.StatusAttended

		if i := daysBetween(dailyFrom, day); i >= 0 && i < recentDays {
			daily[i].Bookings++
			r.RecentTotal++
			if attended {
				daily[i].Attended++
				r.RecentAttended++
			}
		}
		if !day.Before(weeklyFrom) {
			if i := daysBetween(weeklyFrom, day) / 7; i < weeksShown {
				weekly[i].Bookings++
				if attended {
					weekly[i].Attended++
				}
			}
		}
	}
	r.RecentRate = rate(r.RecentAttended, r.RecentTotal)
	r.Daily = daily
	r.Weekly = weekly

	logger.Debug("Analytics report built", "total", r.Total, "recent", r.RecentTotal)
	return r, nil
}

// rate is the rounded percentage of part in total, 0 for an empty total.
func rate(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * percentBase))
}

// weekStart returns the Monday on or before day.
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
