package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danceslot/internal/api"
	"danceslot/internal/realtime"
	"danceslot/internal/studio"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewHandler(NewService(NewMemoryRepository(), nil, testCatalog(), realtime.NewHub()))

	router := gin.New()
	admin := router.Group("/admin")
	admin.GET("/sessions", h.ListSessions)
	admin.POST("/sessions", h.CreateSession)
	admin.GET("/sessions/:id", h.GetSession)
	admin.PATCH("/sessions/:id", h.UpdateSession)
	admin.PATCH("/sessions/:id/active", h.SetActive)
	admin.DELETE("/sessions/:id", h.DeleteSession)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSessionHandlers_RoundTrip(t *testing.T) {
	router := setupRouter()

	w := doJSON(router, http.MethodPost, "/admin/sessions",
		`{"date":"2024-07-05","time":"18:00","type":"HIP-HOP","trainer_id":"max","duration_minutes":60,"capacity":10}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, studio.ModeGroup, created.Mode)

	w = doJSON(router, http.MethodPatch, "/admin/sessions/"+created.ID, `{"time":"18:30"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPatch, "/admin/sessions/"+created.ID+"/active", `{"active":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/admin/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "18:30", fetched.Time)
	assert.False(t, fetched.Active)

	w = doJSON(router, http.MethodGet, "/admin/sessions?from=2024-07-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []SessionWithBookings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 10, listed[0].Available)

	w = doJSON(router, http.MethodDelete, "/admin/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/admin/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSession_Handler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "malformed json",
			body:       `{"date":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "field errors",
			body:       `{"date":"2024-07-05","time":"25:00","type":"HIP-HOP","trainer_id":"max","duration_minutes":60,"capacity":10}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "time",
		},
		{
			name:       "unknown trainer",
			body:       `{"date":"2024-07-05","time":"18:00","type":"HIP-HOP","trainer_id":"ghost","duration_minutes":60,"capacity":10}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "trainer_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter()
			w := doJSON(router, http.MethodPost, "/admin/sessions", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantField != "" {
				var resp api.ValidationErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Contains(t, resp.Fields, tt.wantField)
			}
		})
	}
}

func TestSessionHandlers_NotFound(t *testing.T) {
	router := setupRouter()

	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/admin/sessions/123", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodDelete, "/admin/sessions/00000000-0000-4000-8000-000000000000", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodPatch, "/admin/sessions/123/active", `{}`).Code)
}
