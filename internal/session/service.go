package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"danceslot/internal/apperror"
	"danceslot/internal/calendar"
	"danceslot/internal/logger"
	"danceslot/internal/metrics"
	"danceslot/internal/realtime"
	"danceslot/internal/studio"
	"danceslot/internal/validate"
)

var ErrSessionNotFound = apperror.NotFound("Session not found")

// Catalog is the reference data sessions are checked against.
type Catalog interface {
	HasType(t studio.TrainingType) bool
	Trainer(id string) (studio.Trainer, bool)
}

type Service interface {
	ActiveForDate(ctx context.Context, date time.Time) ([]Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Create(ctx context.Context, req CreateSessionRequest) (*Session, error)
	Update(ctx context.Context, id string, req UpdateSessionRequest) (*Session, error)
	SetActive(ctx context.Context, id string, active bool) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, from string) ([]SessionWithBookings, error)
}

type service struct {
	repo      Repository
	counter   BookingCounter
	catalog   Catalog
	publisher realtime.Publisher
}

func NewService(repo Repository, counter BookingCounter, catalog Catalog, publisher realtime.Publisher) Service {
	return &service{
		repo:      repo,
		counter:   counter,
		catalog:   catalog,
		publisher: publisher,
	}
}

func (s *service) ActiveForDate(ctx context.Context, date time.Time) ([]Session, error) {
	return s.repo.ListActiveByDate(ctx, calendar.FormatDate(date))
}

func (s *service) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	sess := Session{
		ID:              uuid.NewString(),
		Date:            req.Date,
		Time:            req.Time,
		Type:            req.Type,
		TrainerID:       req.TrainerID,
		DurationMinutes: req.DurationMinutes,
		Mode:            req.Mode,
		Capacity:        req.Capacity,
		Active:          true,
	}
	if sess.Mode == "" {
		sess.Mode = studio.ModeGroup
	}
	if req.Active != nil {
		sess.Active = *req.Active
	}

	if err := s.check(sess); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &sess)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, "create", realtime.ActionInsert, created)
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateSessionRequest) (*Session, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.apply(existing)
	if err := s.check(*existing); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, "update", realtime.ActionUpdate, updated)
	return updated, nil
}

func (s *service) SetActive(ctx context.Context, id string, active bool) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	updated, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, "set_active", realtime.ActionUpdate, updated)
	return updated, nil
}

// Delete removes the session. Bookings that reference it are kept.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrSessionNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.changed(ctx, "delete", realtime.ActionDelete, &Session{ID: id})
	return nil
}

func (s *service) List(ctx context.Context, from string) ([]SessionWithBookings, error) {
	if from != "" {
		if _, err := calendar.ParseDate(from); err != nil {
			return nil, apperror.Field("from", "from must be a date in YYYY-MM-DD format")
		}
	}

	sessions, err := s.repo.List(ctx, from)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	if s.counter != nil && len(sessions) > 0 {
		ids := make([]string, len(sessions))
		for i, sess := range sessions {
			ids[i] = sess.ID
		}
		counts, err = s.counter.CountBySession(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	result := make([]SessionWithBookings, 0, len(sessions))
	for _, sess := range sessions {
		booked := counts[sess.ID]
		result = append(result, SessionWithBookings{
			Session:     sess,
			BookedCount: booked,
			Available:   sess.Capacity - booked,
			IsFull:      booked >= sess.Capacity,
		})
	}

	return result, nil
}

func (s *service) check(sess Session) error {
	var typeErr, trainerErr error
	if sess.Type != "" && !s.catalog.HasType(sess.Type) {
		typeErr = apperror.Field("type", "type must be one of the studio training types")
	}
	if sess.TrainerID != "" {
		if _, ok := s.catalog.Trainer(sess.TrainerID); !ok {
			trainerErr = apperror.Field("trainer_id", "trainer_id must reference a studio trainer")
		}
	}
	return validate.Merge(validate.Struct(sess), typeErr, trainerErr)
}

func (s *service) changed(ctx context.Context, op, action string, sess *Session) {
	metrics.RecordSessionMutation(op)
	logger.Info("Session changed", "op", op, "session_id", sess.ID, "date", sess.Date)
	s.publisher.Publish(ctx, realtime.NewEvent(realtime.TableSessions, action, sess.ID))
}
