package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversBroadcastToSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration is asynchronous; keep publishing until the client sees one.
	type event struct {
		Type string `json:"type"`
	}
	received := make(chan event, 1)
	go func() {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var e event
		if json.Unmarshal(data, &e) == nil {
			received <- e
		}
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case e := <-received:
			require.Equal(t, "draw_settled", e.Type)
			return
		case <-tick.C:
			hub.Broadcast(event{Type: "draw_settled"})
		case <-deadline:
			t.Fatal("no event received")
		}
	}
}

func TestHubBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 1000; i++ {
		hub.Broadcast(map[string]int{"n": i})
	}
}
