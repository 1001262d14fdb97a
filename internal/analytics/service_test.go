package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"danceslot/internal/apperror"
	"danceslot/internal/booking"
	"danceslot/internal/logger"
)

func TestMain(m *testing.M) {
	logger.InitWithEnv("test")
	os.Exit(m.Run())
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) CountByStatus(ctx context.Context) (map[booking.Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[booking.Status]int), args.Error(1)
}

func (m *MockSource) ListCreatedSince(ctx context.Context, since time.Time) ([]booking.Booking, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.Booking), args.Error(1)
}

// Wednesday
var now = time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func at(day string, status booking.Status) booking.Booking {
	t, err := time.Parse("2006-01-02 15:04", day+" 12:00")
	if err != nil {
		panic(err)
	}
	return booking.Booking{CreatedAt: t, Status: status}
}

func TestReport(t *testing.T) {
	src := new(MockSource)
	src.On("CountByStatus", mock.Anything).Return(map[booking.Status]int{
		booking.StatusPending:   1,
		booking.StatusConfirmed: 0,
		booking.StatusCanceled:  0,
		booking.StatusAttended:  2,
	}, nil)
	// daily window starts 2024-05-14, weekly window on Monday 2024-04-22
	src.On("ListCreatedSince", mock.Anything, time.Date(2024, 4, 22, 0, 0, 0, 0, time.UTC)).Return([]booking.Booking{
		at("2024-04-23", booking.StatusAttended),
		at("2024-06-10", booking.StatusAttended),
		at("2024-06-12", booking.StatusPending),
	}, nil)

	report, err := NewService(src, clock, time.UTC).Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Attended)
	assert.Equal(t, 67, report.AttendanceRate)
	assert.Equal(t, 2, report.RecentTotal)
	assert.Equal(t, 1, report.RecentAttended)
	assert.Equal(t, 50, report.RecentRate)

	require.Len(t, report.Daily, 30)
	assert.Equal(t, "2024-05-14", report.Daily[0].Date)
	assert.Equal(t, "2024-06-12", report.Daily[29].Date)
	assert.Equal(t, Point{Date: "2024-06-10", Bookings: 1, Attended: 1}, report.Daily[27])

	require.Len(t, report.Weekly, 8)
	assert.Equal(t, Point{Date: "2024-04-22", Bookings: 1, Attended: 1}, report.Weekly[0])
	assert.Equal(t, Point{Date: "2024-06-10", Bookings: 2, Attended: 1}, report.Weekly[7])
	src.AssertExpectations(t)
}

func TestReport_Empty(t *testing.T) {
	src := new(MockSource)
	src.On("CountByStatus", mock.Anything).Return(map[booking.Status]int{}, nil)
	src.On("ListCreatedSince", mock.Anything, mock.Anything).Return([]booking.Booking{}, nil)

	report, err := NewService(src, clock, time.UTC).Report(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.AttendanceRate)
	assert.Zero(t, report.RecentRate)
	assert.Len(t, report.Daily, 30)
}

func TestReport_StoreDown(t *testing.T) {
	src := new(MockSource)
	src.On("CountByStatus", mock.Anything).
		Return(nil, apperror.FromStore("booking.CountByStatus", errors.New("connection refused")))

	_, err := NewService(src, clock, time.UTC).Report(context.Background())
	assert.True(t, apperror.IsStoreUnavailable(err))
}

func TestHandler_Report(t *testing.T) {
	gin.SetMode(gin.TestMode)

	src := new(MockSource)
	src.On("CountByStatus", mock.Anything).Return(map[booking.Status]int{booking.StatusAttended: 1}, nil)
	src.On("ListCreatedSince", mock.Anything, mock.Anything).Return([]booking.Booking{}, nil)

	router := gin.New()
	router.GET("/admin/analytics", NewHandler(NewService(src, clock, time.UTC)).Report)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attendance_rate":100`)
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, "2024-06-10", weekStart(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"))
	assert.Equal(t, "2024-06-10", weekStart(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"))
}
