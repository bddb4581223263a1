package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsServer accepts websocket connections and hands each one to accept.
func wsServer(t *testing.T, accept func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accept(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitEvent(t *testing.T, ch *Channel, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch.Events():
			require.True(t, ok, "event stream closed while waiting")
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("event kind %d never arrived", kind)
		}
	}
}

func TestDeliversLocationUpdates(t *testing.T) {
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		update := UpdateLocationPayload{
			RideCode: "ABCD1234", UserID: 2, Latitude: 52.37, Longitude: 4.90,
			LocationTimestamp: time.Now().UTC(),
		}
		msg, _ := marshalEnvelope(EventLocationUpdate, update)
		_ = conn.WriteMessage(websocket.TextMessage, msg)
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := Dial(context.Background(), wsURL(srv))
	defer ch.Close()

	waitEvent(t, ch, Connected)
	ev := waitEvent(t, ch, LocationUpdate)
	assert.Equal(t, int64(2), ev.Update.UserID)
	assert.Equal(t, 52.37, ev.Update.Latitude)
}

func TestIgnoresUnknownAndMalformedFrames(t *testing.T) {
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"something_else","data":{}}`))
		msg, _ := marshalEnvelope(EventLocationUpdate, UpdateLocationPayload{UserID: 5})
		_ = conn.WriteMessage(websocket.TextMessage, msg)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := Dial(context.Background(), wsURL(srv))
	defer ch.Close()

	ev := waitEvent(t, ch, LocationUpdate)
	assert.Equal(t, int64(5), ev.Update.UserID)
}

func TestReconnectEmitsConnectedAgain(t *testing.T) {
	var mu sync.Mutex
	conns := 0
	srv := wsServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		conns++
		first := conns == 1
		mu.Unlock()
		if first {
			// Drop the first connection immediately to force a reconnect.
			conn.Close()
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := Dial(context.Background(), wsURL(srv))
	defer ch.Close()

	waitEvent(t, ch, Connected)
	waitEvent(t, ch, Disconnected)
	waitEvent(t, ch, Connected)
}

func TestJoinRideWritesEnvelope(t *testing.T) {
	frames := make(chan []byte, 1)
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frames <- msg
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := Dial(context.Background(), wsURL(srv))
	defer ch.Close()
	waitEvent(t, ch, Connected)

	require.NoError(t, ch.JoinRide("ABCD1234"))

	select {
	case msg := <-frames:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		assert.Equal(t, EventJoinRide, env.Event)
		var payload JoinRidePayload
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, "ABCD1234", payload.RideCode)
	case <-time.After(2 * time.Second):
		t.Fatal("join_ride frame never arrived")
	}
}

func TestSendAfterCloseReturnsErrClosed(t *testing.T) {
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := Dial(context.Background(), wsURL(srv))
	waitEvent(t, ch, Connected)
	require.NoError(t, ch.Close())

	assert.ErrorIs(t, ch.JoinRide("ABCD1234"), ErrClosed)

	_, ok := <-ch.Events()
	assert.False(t, ok, "event stream must be closed")
}

func TestRepeatedConnectFailureSurfaces(t *testing.T) {
	if testing.Short() {
		t.Skip("waits through several backoff rounds")
	}

	ch := Dial(context.Background(), "ws://127.0.0.1:1/ws")
	defer ch.Close()

	// Connect attempts fail instantly; the failure event arrives only after
	// the threshold is crossed, several backoff sleeps in.
	deadline := time.After(15 * time.Second)
	for {
		select {
		case ev := <-ch.Events():
			if ev.Kind == ChannelFailure {
				require.Error(t, ev.Err)
				return
			}
		case <-deadline:
			t.Fatal("channel failure never surfaced")
		}
	}
}
