package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub)

	// Give the register channel a moment to be consumed.
	time.Sleep(50 * time.Millisecond)

	frame, err := json.Marshal(Message{Type: "new_post", Data: map[string]string{"id": "p-1"}})
	require.NoError(t, err)
	hub.Broadcast <- frame

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, got, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(got, &msg))
	assert.Equal(t, "new_post", msg.Type)
}

func TestHubBroadcastFanOut(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := dialTestHub(t, hub)
	second := dialTestHub(t, hub)
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast <- []byte(`{"type":"feed","data":[]}`)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, got, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"feed","data":[]}`, string(got))
	}
}
