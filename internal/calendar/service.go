package calendar

import (
	"context"
	"errors"

	"danceslot/internal/logger"
	"danceslot/internal/realtime"
)

type Service interface {
	// GetLimits never fails: a missing row or an unreachable store yields
	// DefaultLimits.
	GetLimits(ctx context.Context) Limits
	SetLimits(ctx context.Context, minDays, maxDays int) (Limits, error)
}

type service struct {
	repo      Repository
	publisher realtime.Publisher
}

func NewService(repo Repository, publisher realtime.Publisher) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *service) GetLimits(ctx context.Context) Limits {
	limits, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrLimitsNotSet) {
			logger.Warn("Failed to load calendar limits, using defaults", "error", err)
		}
		return DefaultLimits
	}
	return limits.Clamp()
}

func (s *service) SetLimits(ctx context.Context, minDays, maxDays int) (Limits, error) {
	limits, err := Normalize(minDays, maxDays)
	if err != nil {
		return Limits{}, err
	}

	saved, err := s.repo.Save(ctx, limits)
	if err != nil {
		return Limits{}, err
	}

	logger.Info("Calendar limits updated", "min_days_ahead", saved.MinDaysAhead, "max_days_ahead", saved.MaxDaysAhead)
	s.publisher.Publish(ctx, realtime.NewEvent(realtime.TableCalendarSettings, realtime.ActionUpdate, "1"))

	return *saved, nil
}
