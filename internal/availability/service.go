package availability

import (
	"context"
	"sort"
	"time"

	"danceslot/internal/apperror"
	"danceslot/internal/calendar"
	"danceslot/internal/metrics"
	"danceslot/internal/session"
	"danceslot/internal/studio"
)

type LimitsSource interface {
	GetLimits(ctx context.Context) calendar.Limits
}

type SessionSource interface {
	ActiveForDate(ctx context.Context, date time.Time) ([]session.Session, error)
}

type WeeklyTemplate interface {
	SlotsForWeekday(day time.Weekday) []studio.RecurringSlot
	TrainerName(id string) string
}

type Service interface {
	// Today is the current date in the studio time zone.
	Today() time.Time
	Resolve(ctx context.Context, date time.Time) (Result, error)
	ResolveRange(ctx context.Context, from time.Time, days int) ([]Result, error)
}

type service struct {
	limits   LimitsSource
	sessions SessionSource
	template WeeklyTemplate
	clock    calendar.Clock
	loc      *time.Location
}

func NewService(limits LimitsSource, sessions SessionSource, template WeeklyTemplate, clock calendar.Clock, loc *time.Location) Service {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		limits:   limits,
		sessions: sessions,
		template: template,
		clock:    clock,
		loc:      loc,
	}
}

func (s *service) Today() time.Time {
	return calendar.Today(s.clock(), s.loc)
}

func (s *service) Resolve(ctx context.Context, date time.Time) (Result, error) {
	return s.resolve(ctx, calendar.DateOf(date), s.Today(), s.limits.GetLimits(ctx))
}

func (s *service) ResolveRange(ctx context.Context, from time.Time, days int) ([]Result, error) {
	if days < 1 || days > MaxRangeDays {
		return nil, apperror.Field("days", "days must be between 1 and 31")
	}

	today := s.Today()
	limits := s.limits.GetLimits(ctx)
	from = calendar.DateOf(from)

	results := make([]Result, 0, days)
	for i := 0; i < days; i++ {
		r, err := s.resolve(ctx, from.AddDate(0, 0, i), today, limits)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *service) resolve(ctx context.Context, date, today time.Time, limits calendar.Limits) (Result, error) {
	result := Result{
		Date:  calendar.FormatDate(date),
		Slots: []ResolvedSlot{},
	}

	if !calendar.InWindow(date, today, limits) {
		result.Status = StatusOutOfRange
		metrics.RecordResolution(string(StatusOutOfRange), "none")
		return result, nil
	}

	sessions, err := s.sessions.ActiveForDate(ctx, date)
	if err != nil {
		return Result{}, err
	}

	result.Status = StatusAvailable
	if len(sessions) > 0 {
		result.Source = SourceCalendar
		for _, sess := range sessions {
			result.Slots = append(result.Slots, ResolvedSlot{
				Time:            sess.Time,
				Type:            sess.Type,
				TrainerID:       sess.TrainerID,
				TrainerName:     s.template.TrainerName(sess.TrainerID),
				DurationMinutes: sess.DurationMinutes,
				Mode:            sess.Mode,
				SessionID:       sess.ID,
			})
		}
	} else {
		result.Source = SourceWeekly
		for _, slot := range s.template.SlotsForWeekday(date.Weekday()) {
			result.Slots = append(result.Slots, ResolvedSlot{
				Time:            slot.Time,
				Type:            slot.Type,
				TrainerID:       slot.TrainerID,
				TrainerName:     s.template.TrainerName(slot.TrainerID),
				DurationMinutes: slot.DurationMinutes,
				Mode:            slot.Mode,
			})
		}
	}

	sortSlots(result.Slots)
	metrics.RecordResolution(string(result.Status), string(result.Source))
	return result, nil
}

func sortSlots(slots []ResolvedSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.TrainerID != b.TrainerID {
			return a.TrainerID < b.TrainerID
		}
		return a.SessionID < b.SessionID
	})
}
