package agent

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/civicsync/civicsync/internal/events"
	"github.com/civicsync/civicsync/internal/logger"
)

// Stream is a live event subscription over the /ws endpoint.
type Stream struct {
	conn *websocket.Conn
}

// DialStream connects to the realtime endpoint, e.g. ws://host:8080/ws.
// Reconnection on transport drop is the caller's concern.
func DialStream(ctx context.Context, url string) (*Stream, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Stream{conn: conn}, nil
}

// Events decodes incoming frames onto the returned channel until the
// connection drops or ctx is cancelled. The channel is closed on exit.
func (s *Stream) Events(ctx context.Context) <-chan events.Event {
	ch := make(chan events.Event)
	done := make(chan struct{})

	// ReadJSON takes no context; cancellation unblocks it by closing the
	// connection, which also closes the channel below.
	go func() {
		select {
		case <-ctx.Done():
			s.conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(ch)
		defer close(done)
		for {
			var ev events.Event
			if err := s.conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					logger.Debug("Event stream closed", map[string]interface{}{
						"error":     err.Error(),
						"component": "sync_agent",
					})
				}
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Close terminates the subscription immediately.
func (s *Stream) Close() error {
	return s.conn.Close()
}
