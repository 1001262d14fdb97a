package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamServer(hub *Hub) *httptest.Server {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/:table", NewHandler(hub).Stream)
	return httptest.NewServer(router)
}

func TestStream_UnknownTable(t *testing.T) {
	srv := newStreamServer(NewHub())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/users")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStream_DeliversEvents(t *testing.T) {
	hub := NewHub()
	srv := newStreamServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.Subscribers(TableSessions) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(context.Background(), NewEvent(TableSessions, ActionInsert, "s42"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, "s42", e.ID)
	assert.Equal(t, TableSessions, e.Table)

	conn.Close()
	assert.Eventually(t, func() bool {
		return hub.Subscribers(TableSessions) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
