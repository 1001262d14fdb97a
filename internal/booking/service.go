package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"danceslot/internal/api"
	"danceslot/internal/apperror"
	"danceslot/internal/availability"
	"danceslot/internal/calendar"
	"danceslot/internal/logger"
	"danceslot/internal/metrics"
	"danceslot/internal/notify"
	"danceslot/internal/realtime"
	"danceslot/internal/validate"
)

var ErrBookingNotFound = apperror.NotFound("Booking not found")

type Resolver interface {
	Resolve(ctx context.Context, date time.Time) (availability.Result, error)
}

type Notifier interface {
	QueueLead(ctx context.Context, lead notify.Lead) error
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Booking, error)
	SubmitContact(ctx context.Context, req ContactRequest) (*Booking, error)
	Get(ctx context.Context, id string) (*Booking, error)
	SetStatus(ctx context.Context, id string, status Status) (*Booking, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) (*api.Page[Booking], error)
	ListForUser(ctx context.Context, userID string) ([]Booking, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type service struct {
	repo      Repository
	resolver  Resolver
	notifier  Notifier
	publisher realtime.Publisher
	strict    bool
}

// NewService builds the booking service. With strict set, status changes
// must follow the booking lifecycle.
func NewService(repo Repository, resolver Resolver, notifier Notifier, publisher realtime.Publisher, strict bool) Service {
	return &service{
		repo:      repo,
		resolver:  resolver,
		notifier:  notifier,
		publisher: publisher,
		strict:    strict,
	}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Booking, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Notes = strings.TrimSpace(req.Notes)

	if err := validate.Struct(req); err != nil {
		metrics.RecordBookingRejection("validation")
		return nil, err
	}

	date, _ := calendar.ParseDate(req.Date)
	result, err := s.resolver.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}
	if result.Status == availability.StatusOutOfRange {
		metrics.RecordBookingRejection("out_of_range")
		return nil, apperror.Field("slot", "date is outside the booking window")
	}
	slot, ok := result.Find(req.Slot)
	if !ok {
		metrics.RecordBookingRejection("stale_slot")
		return nil, apperror.Field("slot", "slot is no longer available, refresh the schedule")
	}

	details := Details{
		Comment:     req.Notes,
		Type:        slot.Type,
		Mode:        slot.Mode,
		TrainerID:   slot.TrainerID,
		TrainerName: slot.TrainerName,
		Date:        result.Date,
		Time:        slot.Time,
		Source:      string(result.Source),
		Label:       req.Label,
	}

	b := &Booking{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   optional(req.Email),
		Notes:   Render(details),
		Details: details,
		Status:  StatusPending,
		UserID:  optional(req.UserID),
	}
	if slot.SessionID != "" {
		b.SessionID = optional(slot.SessionID)
	}

	return s.create(ctx, b, notify.Summary(string(slot.Type), slot.Mode.Label(), slot.TrainerName, result.Date, slot.Time))
}

func (s *service) SubmitContact(ctx context.Context, req ContactRequest) (*Booking, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)

	if err := validate.Struct(req); err != nil {
		metrics.RecordBookingRejection("validation")
		return nil, err
	}

	details := Details{Comment: req.Message, Source: SourceContact}
	b := &Booking{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   optional(req.Email),
		Notes:   Render(details),
		Details: details,
		Status:  StatusPending,
		UserID:  optional(req.UserID),
	}

	return s.create(ctx, b, req.Message)
}

func (s *service) create(ctx context.Context, b *Booking, summary string) (*Booking, error) {
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(created.Details.Source)
	logger.Info("Booking created",
		"booking_id", created.ID,
		"source", created.Details.Source,
		"session_id", deref(created.SessionID),
	)
	s.publisher.Publish(ctx, realtime.NewEvent(realtime.TableBookings, realtime.ActionInsert, created.ID))

	if s.notifier != nil {
		lead := notify.Lead{
			BookingID: created.ID,
			Name:      created.Name,
			Phone:     created.Phone,
			Email:     deref(created.Email),
			Summary:   summary,
			Source:    created.Details.Source,
		}
		if err := s.notifier.QueueLead(ctx, lead); err != nil {
			logger.WithError(err).Warnw("Lead notification not queued", "booking_id", created.ID)
		}
	}

	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (*Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	if !status.Valid() {
		return nil, apperror.Field("status", "status must be one of: pending confirmed canceled attended")
	}

	if s.strict {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !CanTransition(current.Status, status) {
			return nil, apperror.Field("status", fmt.Sprintf("cannot change status from %s to %s", current.Status, status))
		}
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusChange(string(status))
	logger.Info("Booking status changed", "booking_id", id, "status", status)
	s.publisher.Publish(ctx, realtime.NewEvent(realtime.TableBookings, realtime.ActionUpdate, id))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrBookingNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Booking deleted", "booking_id", id)
	s.publisher.Publish(ctx, realtime.NewEvent(realtime.TableBookings, realtime.ActionDelete, id))
	return nil
}

func (s *service) List(ctx context.Context, f Filter) (*api.Page[Booking], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperror.Field("status", "status must be one of: pending confirmed canceled attended")
	}
	var dateErrs []error
	for name, v := range map[string]string{"from": f.From, "to": f.To} {
		if v == "" {
			continue
		}
		if _, err := calendar.ParseDate(v); err != nil {
			dateErrs = append(dateErrs, apperror.Field(name, name+" must be a date in YYYY-MM-DD format"))
		}
	}
	if err := validate.Merge(dateErrs...); err != nil {
		return nil, err
	}

	f.normalize()
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	return &api.Page[Booking]{
		Items:    items,
		Page:     f.Page,
		PageSize: f.PageSize,
		Total:    total,
		HasNext:  f.offset()+len(items) < total,
		HasPrev:  f.Page > 1,
	}, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]Booking, error) {
	if userID == "" {
		return []Booking{}, nil
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
