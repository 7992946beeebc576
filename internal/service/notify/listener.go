package notify

import (
	"context"
	"detectionview/internal/logger"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Trigger is called once per matching push event. The payload is not passed on.
type Trigger func(ctx context.Context) error

// Listener subscribes to one named event on the push channel.
type Listener struct {
	url      string
	event    string
	protocol Protocol
	dialer   *websocket.Dialer
	trigger  Trigger
	logger   *logger.Logger
}

func NewListener(url, event string, protocol Protocol, trigger Trigger, logger *logger.Logger) *Listener {
	return &Listener{
		url:      url,
		event:    event,
		protocol: protocol,
		dialer:   websocket.DefaultDialer,
		trigger:  trigger,
		logger:   logger,
	}
}

// Listen dials the channel and reads frames until the connection fails or ctx
// is done. It returns ctx.Err() on cancellation.
func (l *Listener) Listen(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", l.url, err)
	}

	// Unblock ReadMessage when ctx is cancelled.
	var once sync.Once
	closeConn := func() { once.Do(func() { conn.Close() }) }
	defer closeConn()
	stop := context.AfterFunc(ctx, closeConn)
	defer stop()

	l.logger.Info("Subscribed to %q on %s", l.event, l.url)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("push channel closed: %w", err)
			}
			return fmt.Errorf("read push frame: %w", err)
		}

		action := decodeFrame(l.protocol, frame)
		if action.reply != "" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(action.reply)); err != nil {
				return fmt.Errorf("write push frame: %w", err)
			}
		}
		if action.close {
			return errors.New("push channel closed by server")
		}
		if action.event == "" || action.event != l.event {
			continue
		}

		if err := l.trigger(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("Failed to queue refresh for %q: %v", l.event, err)
		}
	}
}
