package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danceslot/internal/analytics"
	"danceslot/internal/api"
	"danceslot/internal/auth"
	"danceslot/internal/availability"
	"danceslot/internal/booking"
	"danceslot/internal/calendar"
	"danceslot/internal/config"
	"danceslot/internal/logger"
	"danceslot/internal/notify"
	"danceslot/internal/pricing"
	"danceslot/internal/realtime"
	"danceslot/internal/session"
	"danceslot/internal/studio"
	"danceslot/internal/user"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	logger.InitWithEnv("test")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// Saturday
var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func testTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens(testSecret)
	require.NoError(t, err)
	return tokens
}

func newTestServer(t *testing.T, rps float64) *gin.Engine {
	t.Helper()

	cfg := &config.Config{Env: "test", Port: "0", JWTSecret: testSecret, RateLimitRPS: rps, RateLimitBurst: 2}
	clock := func() time.Time { return testNow }

	template, err := studio.Default()
	require.NoError(t, err)

	hub := realtime.NewHub()
	bookings := booking.NewMemoryRepository()
	calendarSvc := calendar.NewService(calendar.NewMemoryRepository(), hub)
	sessionSvc := session.NewService(session.NewMemoryRepository(), bookings, template, hub)
	resolver := availability.NewService(calendarSvc, sessionSvc, template, clock, time.UTC)
	bookingSvc := booking.NewService(bookings, resolver, notify.NewInline("owner@example.com"), hub, false)
	board := booking.NewBoard(bookingSvc, booking.Filter{})

	hash, err := auth.HashPassword("secret-password")
	require.NoError(t, err)

	tokens := testTokens(t)
	users := user.NewService(user.NewMemoryRepository(), tokens, "admin@example.com")

	srv := New(cfg, tokens, Handlers{
		Auth:         auth.NewHandler(auth.AdminCredentials{Email: "admin@example.com", PasswordHash: hash}, users, tokens),
		Studio:       studio.NewHandler(template),
		Calendar:     calendar.NewHandler(calendarSvc, clock, time.UTC),
		Availability: availability.NewHandler(resolver),
		Session:      session.NewHandler(sessionSvc),
		Booking:      booking.NewHandler(bookingSvc, board),
		Pricing:      pricing.NewHandler(pricing.NewService(pricing.NewMemoryRepository(), hub)),
		Analytics:    analytics.NewHandler(analytics.NewService(bookings, clock, time.UTC)),
		Realtime:     realtime.NewHandler(hub),
		User:         user.NewHandler(users),
	}, StoreMemory)
	return srv.Router()
}

func token(t *testing.T, role auth.Role) string {
	t.Helper()
	id := auth.Admin("admin@example.com")
	if role == auth.RoleUser {
		id = auth.Identity{UserID: "5b1e7c1a-0000-4000-8000-000000000001", Email: "dancer@example.com", Role: auth.RoleUser}
	}
	pair, err := testTokens(t).Issue(id)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestHealth(t *testing.T) {
	router := newTestServer(t, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.HealthResponse{Status: "ok", Store: StoreMemory}, resp)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestServer(t, 0)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "danceslot_http_requests_total")
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	router := newTestServer(t, 0)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"user role", token(t, auth.RoleUser), http.StatusForbidden},
		{"admin role", token(t, auth.RoleAdmin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOverrideSessionReplacesTemplate(t *testing.T) {
	router := newTestServer(t, 0)
	admin := "Bearer " + token(t, auth.RoleAdmin)

	// Monday 2024-06-03 has template slots at 17:00 and 19:00
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/availability/2024-06-03", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var before availability.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))
	assert.Equal(t, availability.SourceWeekly, before.Source)
	assert.Len(t, before.Slots, 2)

	body := `{"date":"2024-06-03","time":"12:00","type":"HEELS","trainer_id":"anna","duration_minutes":90,"mode":"personal","capacity":1}`
	req := httptest.NewRequest(http.MethodPost, "/admin/sessions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", admin)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/availability/2024-06-03", nil))
	var after availability.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, availability.SourceCalendar, after.Source)
	require.Len(t, after.Slots, 1)
	assert.Equal(t, "12:00", after.Slots[0].Time)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/bookings", nil)
	req.Header.Set("Origin", "https://studio.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	router := newTestServer(t, 0.001)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trainers", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// system endpoints are not limited
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func doJSON(router *gin.Engine, method, path, bearer, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestDancerAccountFlow(t *testing.T) {
	router := newTestServer(t, 0)

	w := doJSON(router, http.MethodPost, "/auth/register", "",
		`{"name":"Олена","email":"olena@example.com","password":"dance-all-night"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/auth/login", "", `{"email":"Olena@Example.com","password":"dance-all-night"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))

	w = doJSON(router, http.MethodPut, "/me/profile", pair.AccessToken, `{"phone":"+380991234567"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/me/profile", pair.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile user.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "+380991234567", profile.Phone)

	w = doJSON(router, http.MethodGet, "/me/bookings", pair.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// dancer tokens do not open admin routes
	w = doJSON(router, http.MethodGet, "/admin/bookings", pair.AccessToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/login", "", `{"email":"admin@example.com","password":"secret-password"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMeRoutes_RequireToken(t *testing.T) {
	router := newTestServer(t, 0)

	for _, path := range []string{"/me/bookings", "/me/profile"} {
		w := doJSON(router, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRealtimeStream_Access(t *testing.T) {
	router := newTestServer(t, 0)

	tests := []struct {
		name       string
		table      string
		query      string
		bearer     string
		wantStatus int
	}{
		{"bookings anonymous", "bookings", "", "", http.StatusUnauthorized},
		{"all tables anonymous", "*", "", "", http.StatusUnauthorized},
		{"bookings as dancer", "bookings", "", token(t, auth.RoleUser), http.StatusForbidden},
		{"bookings with query token of dancer", "bookings", "?access_token=" + token(t, auth.RoleUser), "", http.StatusForbidden},
		// the admin passes the guard; a plain GET then fails the upgrade
		{"bookings as admin", "bookings", "", token(t, auth.RoleAdmin), http.StatusBadRequest},
		{"bookings with admin query token", "bookings", "?access_token=" + token(t, auth.RoleAdmin), "", http.StatusBadRequest},
		{"sessions are public", "sessions", "", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws/"+tt.table+tt.query, nil)
			req.Header.Set("Connection", "Upgrade")
			req.Header.Set("Upgrade", "websocket")
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSwaggerUI(t *testing.T) {
	router := newTestServer(t, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/auth/register")
	assert.Contains(t, w.Body.String(), "/me/profile")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
