package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/pkg/logger"
)

// Pings go out from a separate goroutine than the turn loop's reply frames,
// so they must stay on the control-frame path gorilla permits alongside a
// concurrent writer.
func TestPingLoop_ConcurrentWithReplies(t *testing.T) {
	const frames = 50

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		done := make(chan struct{})
		defer close(done)
		go pingLoop(conn, 5*time.Millisecond, done, logger.Get())

		for i := 0; i < frames; i++ {
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteJSON(wsResponse{Type: "reply"}); err != nil {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	pings := 0
	client.SetPingHandler(func(string) error {
		pings++
		return nil
	})

	received := 0
	client.SetReadDeadline(time.Now().Add(3 * time.Second))
	for received < frames {
		var resp wsResponse
		if err := client.ReadJSON(&resp); err != nil {
			break
		}
		received++
	}

	assert.Equal(t, frames, received)
	assert.Greater(t, pings, 0)
}
