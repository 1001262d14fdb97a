package studio

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	tpl, err := Default()
	require.NoError(t, err)

	h := NewHandler(tpl)
	router := gin.New()
	router.GET("/trainers", h.ListTrainers)
	router.GET("/schedule/weekly", h.WeeklySchedule)
	return router
}

func TestListTrainers_Handler(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trainers", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var trainers []Trainer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trainers))
	assert.Len(t, trainers, 3)
	assert.Equal(t, "max", trainers[0].ID)
}

func TestWeeklySchedule_Handler(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedule/weekly", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var week []WeekdaySchedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &week))
	require.Len(t, week, 7)
	assert.Equal(t, "Monday", week[0].Weekday)
	assert.Equal(t, "Sunday", week[6].Weekday)
	assert.Len(t, week[0].Slots, 2)
}
