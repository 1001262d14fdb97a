package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"danceslot/internal/apperror"
	"danceslot/internal/logger"
	"danceslot/internal/realtime"
	"danceslot/internal/validate"
)

type Service interface {
	// List returns the default plans overlaid with stored ones. When the
	// store is unavailable the defaults are returned.
	List(ctx context.Context) []Plan
	ListActive(ctx context.Context) []Plan
	Save(ctx context.Context, plans []Plan) ([]Plan, error)
}

type service struct {
	repo      Repository
	publisher realtime.Publisher
}

func NewService(repo Repository, publisher realtime.Publisher) Service {
	return &service{repo: repo, publisher: publisher}
}

func (s *service) List(ctx context.Context) []Plan {
	stored, err := s.repo.List(ctx)
	if err != nil {
		logger.WithError(err).Warn("Serving default pricing plans")
		return Defaults()
	}
	return merge(Defaults(), stored)
}

func (s *service) ListActive(ctx context.Context) []Plan {
	var active []Plan
	for _, p := range s.List(ctx) {
		if p.Active {
			active = append(active, p)
		}
	}
	if active == nil {
		active = []Plan{}
	}
	return active
}

func (s *service) Save(ctx context.Context, plans []Plan) ([]Plan, error) {
	if len(plans) == 0 {
		return nil, apperror.Field("plans", "plans must not be empty")
	}

	seen := make(map[string]bool, len(plans))
	var errs []error
	for i := range plans {
		p := &plans[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.Features = cleanFeatures(p.Features)

		if err := validate.Struct(p); err != nil {
			errs = append(errs, prefixed(i, err))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, apperror.Field(fmt.Sprintf("plans[%d].id", i), "id must be unique"))
		}
		seen[p.ID] = true
	}
	if err := validate.Merge(errs...); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, plans); err != nil {
		return nil, err
	}

	logger.Info("Pricing plans saved", "count", len(plans))
	s.publisher.Publish(ctx, realtime.NewEvent(realtime.TablePricingPlans, realtime.ActionUpdate, ""))
	return s.List(ctx), nil
}

// merge overlays stored plans on defaults by id. Stored plans without
// features keep the default features. Unknown stored plans are appended.
func merge(defaults, stored []Plan) []Plan {
	byID := make(map[string]int, len(defaults))
	out := append([]Plan(nil), defaults...)
	for i, p := range out {
		byID[p.ID] = i
	}

	for _, p := range stored {
		i, ok := byID[p.ID]
		if !ok {
			out = append(out, p)
			continue
		}
		if len(p.Features) == 0 {
			p.Features = out[i].Features
		}
		if p.Description == "" {
			p.Description = out[i].Description
		}
		out[i] = p
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

func cleanFeatures(features []string) []string {
	cleaned := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	return cleaned
}

func prefixed(i int, err error) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return err
	}
	fields := make(map[string]string, len(appErr.Fields))
	for k, v := range appErr.Fields {
		fields[fmt.Sprintf("plans[%d].%s", i, k)] = v
	}
	return apperror.Validation(fields)
}
