package notify

import (
	"context"
	"detectionview/internal/config"
	"detectionview/internal/logger"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l := logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
	t.Cleanup(func() { l.Close() })
	return l
}

// pushServer accepts one client, sends frames in order and records replies.
func pushServer(t *testing.T, frames []string, replies chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if replies != nil {
					replies <- string(msg)
				}
			}
		}()

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
		time.Sleep(50 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func countingTrigger(n *atomic.Int32) Trigger {
	return func(ctx context.Context) error {
		n.Add(1)
		return nil
	}
}

func TestListener_SocketIO_OneTriggerPerEvent(t *testing.T) {
	replies := make(chan string, 10)
	srv := pushServer(t, []string{
		`0{"sid":"abc","pingInterval":25000,"pingTimeout":20000}`,
		`40{"sid":"def"}`,
		`42["new_detection",{"label":"cat"}]`,
		`2`,
		`42["status",{}]`,
		`42["new_detection"]`,
		`42/cameras,["new_detection",{}]`,
	}, replies)

	var triggers atomic.Int32
	l := NewListener(wsURL(srv), "new_detection", ProtocolSocketIO, countingTrigger(&triggers), newTestLogger(t))

	err := l.Listen(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
	assert.Equal(t, int32(3), triggers.Load())
	assert.Equal(t, "40", <-replies)
	assert.Equal(t, "3", <-replies)
}

func TestListener_JSON(t *testing.T) {
	srv := pushServer(t, []string{
		`{"event":"new_detection","payload":{"ignored":true}}`,
		`{"event":"heartbeat"}`,
		`new_detection`,
		`{"event":"new_detection"}`,
	}, nil)

	var triggers atomic.Int32
	l := NewListener(wsURL(srv), "new_detection", ProtocolJSON, countingTrigger(&triggers), newTestLogger(t))

	_ = l.Listen(context.Background())

	assert.Equal(t, int32(3), triggers.Load())
}

func TestListener_TriggerErrorDoesNotStopListening(t *testing.T) {
	srv := pushServer(t, []string{`new_detection`, `new_detection`}, nil)

	var calls atomic.Int32
	trigger := func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("queue full")
	}
	l := NewListener(wsURL(srv), "new_detection", ProtocolJSON, trigger, newTestLogger(t))

	_ = l.Listen(context.Background())

	assert.Equal(t, int32(2), calls.Load())
}

func TestListener_ContextCancelStopsListen(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener(wsURL(srv), "new_detection", ProtocolJSON, func(context.Context) error { return nil }, newTestLogger(t))

	done := make(chan error, 1)
	go func() { done <- l.Listen(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestListener_DialFailure(t *testing.T) {
	l := NewListener("ws://127.0.0.1:1/socket.io/", "new_detection", ProtocolSocketIO, func(context.Context) error { return nil }, newTestLogger(t))

	err := l.Listen(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
}

func TestDecodeSocketIOFrame(t *testing.T) {
	tests := []struct {
		frame    string
		expected frameAction
	}{
		{`0{"sid":"x"}`, frameAction{reply: "40"}},
		{`2`, frameAction{reply: "3"}},
		{`2hello`, frameAction{reply: "3hello"}},
		{`1`, frameAction{close: true}},
		{`40{"sid":"x"}`, frameAction{}},
		{`42["new_detection"]`, frameAction{event: "new_detection"}},
		{`4212["new_detection",1]`, frameAction{event: "new_detection"}},
		{`42/admin,7["other"]`, frameAction{event: "other"}},
		{`42/admin`, frameAction{}},
		{`42[]`, frameAction{}},
		{`42[5]`, frameAction{}},
		{`42not json`, frameAction{}},
		{``, frameAction{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, decodeSocketIOFrame(tt.frame), "frame %q", tt.frame)
	}
}

func TestParseProtocol(t *testing.T) {
	assert.Equal(t, ProtocolJSON, ParseProtocol(" JSON "))
	assert.Equal(t, ProtocolSocketIO, ParseProtocol("socketio"))
	assert.Equal(t, ProtocolSocketIO, ParseProtocol(""))
}
