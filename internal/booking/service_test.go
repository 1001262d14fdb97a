package booking

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"danceslot/internal/apperror"
	"danceslot/internal/availability"
	"danceslot/internal/logger"
	"danceslot/internal/notify"
	"danceslot/internal/realtime"
	"danceslot/internal/studio"
)

func TestMain(m *testing.M) {
	logger.InitWithEnv("test")

	code := m.Run()
	os.Exit(code)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, *Booking) *Booking); ok {
		return fn(ctx, b), args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, f Filter) ([]Booking, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Booking), args.Int(1), args.Error(2)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]Booking, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[Status]int), args.Error(1)
}

func (m *MockRepository) CountBySession(ctx context.Context, ids []string) (map[string]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type fakeResolver struct {
	result availability.Result
	err    error
}

func (f fakeResolver) Resolve(context.Context, time.Time) (availability.Result, error) {
	return f.result, f.err
}

type recordingNotifier struct {
	leads []notify.Lead
	err   error
}

func (n *recordingNotifier) QueueLead(_ context.Context, lead notify.Lead) error {
	n.leads = append(n.leads, lead)
	return n.err
}

var mondaySlot = availability.ResolvedSlot{
	Time:            "17:00",
	Type:            studio.HipHop,
	TrainerID:       "max",
	TrainerName:     "Макс",
	DurationMinutes: 60,
	Mode:            studio.ModeGroup,
}

func mondayResult() availability.Result {
	return availability.Result{
		Status: availability.StatusAvailable,
		Date:   "2024-06-03",
		Source: availability.SourceWeekly,
		Slots:  []availability.ResolvedSlot{mondaySlot},
	}
}

func validSubmit() SubmitRequest {
	return SubmitRequest{
		Name:  "Oleksandr",
		Phone: "+380991234567",
		Email: "a@b.com",
		Date:  "2024-06-03",
		Slot:  mondaySlot,
	}
}

func echoCreate(_ context.Context, b *Booking) *Booking { return b }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr), "expected *apperror.Error, got %v", err)
	return appErr.Fields
}

func TestService_Submit(t *testing.T) {
	tests := []struct {
		name       string
		req        func() SubmitRequest
		resolver   fakeResolver
		wantFields []string
	}{
		{
			name: "short phone",
			req: func() SubmitRequest {
				r := validSubmit()
				r.Name = "Al"
				r.Phone = "123"
				return r
			},
			resolver:   fakeResolver{result: mondayResult()},
			wantFields: []string{"phone"},
		},
		{
			name: "all field errors are collected",
			req: func() SubmitRequest {
				return SubmitRequest{Name: " A ", Phone: "abcdefghijkl", Email: "nope", Date: "03.06.2024"}
			},
			resolver:   fakeResolver{result: mondayResult()},
			wantFields: []string{"name", "phone", "email", "date"},
		},
		{
			name: "out of range date",
			req:  validSubmit,
			resolver: fakeResolver{result: availability.Result{
				Status: availability.StatusOutOfRange,
				Date:   "2024-06-03",
			}},
			wantFields: []string{"slot"},
		},
		{
			name: "slot no longer offered",
			req: func() SubmitRequest {
				r := validSubmit()
				r.Slot.Time = "18:00"
				return r
			},
			resolver:   fakeResolver{result: mondayResult()},
			wantFields: []string{"slot"},
		},
		{
			name: "weekly slot cannot claim a session id",
			req: func() SubmitRequest {
				r := validSubmit()
				r.Slot.SessionID = "a0000000-0000-4000-8000-000000000001"
				return r
			},
			resolver:   fakeResolver{result: mondayResult()},
			wantFields: []string{"slot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, tt.resolver, nil, realtime.NewHub(), false)

			_, err := svc.Submit(context.Background(), tt.req())
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))

			fields := fieldsOf(t, err)
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_SubmitSuccess(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(echoCreate, nil)

	hub := realtime.NewHub()
	var events []realtime.Event
	hub.Subscribe(realtime.TableBookings, func(e realtime.Event) { events = append(events, e) })

	notifier := &recordingNotifier{}
	svc := NewService(repo, fakeResolver{result: mondayResult()}, notifier, hub, false)

	req := validSubmit()
	req.Notes = "  перше заняття "
	req.UserID = "user-1"
	req.Slot.TrainerName = "ignored"

	b, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status)
	assert.NotEmpty(t, b.ID)
	assert.Nil(t, b.SessionID)
	require.NotNil(t, b.UserID)
	assert.Equal(t, "user-1", *b.UserID)
	require.NotNil(t, b.Email)
	assert.Equal(t, "a@b.com", *b.Email)

	assert.Equal(t, Details{
		Comment:     "перше заняття",
		Type:        studio.HipHop,
		Mode:        studio.ModeGroup,
		TrainerID:   "max",
		TrainerName: "Макс",
		Date:        "2024-06-03",
		Time:        "17:00",
		Source:      SourceWeekly,
	}, b.Details)
	assert.Equal(t, Render(b.Details), b.Notes)

	require.Len(t, events, 1)
	assert.Equal(t, realtime.ActionInsert, events[0].Action)
	require.Len(t, notifier.leads, 1)
	assert.Equal(t, b.ID, notifier.leads[0].BookingID)
}

func TestService_SubmitCalendarSession(t *testing.T) {
	sessionSlot := mondaySlot
	sessionSlot.SessionID = "a0000000-0000-4000-8000-000000000001"
	result := availability.Result{
		Status: availability.StatusAvailable,
		Date:   "2024-06-03",
		Source: availability.SourceCalendar,
		Slots:  []availability.ResolvedSlot{sessionSlot},
	}

	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.SessionID != nil && *b.SessionID == sessionSlot.SessionID
	})).Return(echoCreate, nil)

	svc := NewService(repo, fakeResolver{result: result}, nil, realtime.NewHub(), false)
	req := validSubmit()
	req.Slot = sessionSlot

	b, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceCalendar, b.Details.Source)
	repo.AssertExpectations(t)
}

func TestService_SubmitNotifierFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(echoCreate, nil)

	notifier := &recordingNotifier{err: errors.New("redis down")}
	svc := NewService(repo, fakeResolver{result: mondayResult()}, notifier, realtime.NewHub(), false)

	_, err := svc.Submit(context.Background(), validSubmit())
	assert.NoError(t, err)
}

func TestService_SubmitStoreUnavailable(t *testing.T) {
	storeErr := apperror.FromStore("booking.Create", errors.New("connection refused"))

	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, storeErr)
	svc := NewService(repo, fakeResolver{result: mondayResult()}, nil, realtime.NewHub(), false)

	_, err := svc.Submit(context.Background(), validSubmit())
	assert.True(t, apperror.IsStoreUnavailable(err))

	svc = NewService(new(MockRepository), fakeResolver{err: storeErr}, nil, realtime.NewHub(), false)
	_, err = svc.Submit(context.Background(), validSubmit())
	assert.True(t, apperror.IsStoreUnavailable(err))
}

func TestService_SubmitContact(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(echoCreate, nil)
		svc := NewService(repo, nil, nil, realtime.NewHub(), false)

		b, err := svc.SubmitContact(context.Background(), ContactRequest{
			Name:    "Марія",
			Email:   "maria@example.com",
			Phone:   "(099) 123-45-67",
			Message: "Хочу записатися на пробне заняття",
		})
		require.NoError(t, err)
		assert.Equal(t, SourceContact, b.Details.Source)
		assert.Equal(t, "Хочу записатися на пробне заняття\nДжерело: Контактна форма", b.Notes)
		assert.Nil(t, b.SessionID)
	})

	t.Run("invalid", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, nil, realtime.NewHub(), false)

		_, err := svc.SubmitContact(context.Background(), ContactRequest{Name: "M", Phone: "1", Message: "short"})
		fields := fieldsOf(t, err)
		for _, f := range []string{"name", "email", "phone", "message"} {
			assert.Contains(t, fields, f)
		}
	})
}

func TestService_SetStatus(t *testing.T) {
	pending := &Booking{ID: testBookingID, Status: StatusPending}
	attended := &Booking{ID: testBookingID, Status: StatusAttended}

	tests := []struct {
		name      string
		strict    bool
		id        string
		status    Status
		setupMock func(*MockRepository)
		wantErr   func(error) bool
	}{
		{
			name:   "unconstrained by default",
			status: StatusPending,
			setupMock: func(m *MockRepository) {
				m.On("UpdateStatus", mock.Anything, testBookingID, StatusPending).
					Return(&Booking{ID: testBookingID, Status: StatusPending}, nil)
			},
		},
		{
			name:   "strict allows lifecycle move",
			strict: true,
			status: StatusConfirmed,
			setupMock: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, testBookingID).Return(pending, nil)
				m.On("UpdateStatus", mock.Anything, testBookingID, StatusConfirmed).
					Return(&Booking{ID: testBookingID, Status: StatusConfirmed}, nil)
			},
		},
		{
			name:   "strict rejects leaving a terminal state",
			strict: true,
			status: StatusPending,
			setupMock: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, testBookingID).Return(attended, nil)
			},
			wantErr: apperror.IsValidation,
		},
		{
			name:      "unknown status",
			status:    "lost",
			setupMock: func(m *MockRepository) {},
			wantErr:   apperror.IsValidation,
		},
		{
			name:      "malformed id",
			id:        "17",
			status:    StatusConfirmed,
			setupMock: func(m *MockRepository) {},
			wantErr:   apperror.IsNotFound,
		},
		{
			name:   "unknown id",
			status: StatusConfirmed,
			setupMock: func(m *MockRepository) {
				m.On("UpdateStatus", mock.Anything, testBookingID, StatusConfirmed).Return(nil, ErrBookingNotFound)
			},
			wantErr: apperror.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)
			svc := NewService(repo, nil, nil, realtime.NewHub(), tt.strict)

			id := tt.id
			if id == "" {
				id = testBookingID
			}
			got, err := svc.SetStatus(context.Background(), id, tt.status)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error %v", err)
				repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Delete", mock.Anything, testBookingID).Return(nil)

	hub := realtime.NewHub()
	var got realtime.Event
	hub.Subscribe(realtime.TableBookings, func(e realtime.Event) { got = e })

	svc := NewService(repo, nil, nil, hub, false)
	require.NoError(t, svc.Delete(context.Background(), testBookingID))
	assert.Equal(t, realtime.ActionDelete, got.Action)

	assert.True(t, apperror.IsNotFound(svc.Delete(context.Background(), "nope")))
}

func TestService_List(t *testing.T) {
	t.Run("pagination flags", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("List", mock.Anything, Filter{Page: 2, PageSize: 2}).
			Return([]Booking{{ID: "a"}, {ID: "b"}}, 5, nil)

		svc := NewService(repo, nil, nil, realtime.NewHub(), false)
		page, err := svc.List(context.Background(), Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
		assert.True(t, page.HasNext)
		assert.True(t, page.HasPrev)
	})

	t.Run("bad filter", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, nil, realtime.NewHub(), false)

		_, err := svc.List(context.Background(), Filter{Status: "lost"})
		assert.True(t, apperror.IsValidation(err))

		_, err = svc.List(context.Background(), Filter{From: "yesterday", To: "2024-13-01"})
		fields := fieldsOf(t, err)
		assert.Contains(t, fields, "from")
		assert.Contains(t, fields, "to")
	})
}

func TestService_ListForUser(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByUser", mock.Anything, "user-1").Return([]Booking{{ID: "a"}}, nil)
	svc := NewService(repo, nil, nil, realtime.NewHub(), false)

	got, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ListForUser(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
