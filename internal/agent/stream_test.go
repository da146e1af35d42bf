package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/civicsync/civicsync/internal/events"
	"github.com/civicsync/civicsync/internal/models"
)

var testUpgrader = websocket.Upgrader{}

// newStreamServer serves /ws-style connections: it writes the given frames,
// then holds the connection open until the client goes away.
func newStreamServer(t *testing.T, send []events.Event) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, ev := range send {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamDeliversFrames(t *testing.T) {
	issue := models.Issue{ID: 7, Title: "Pothole", Status: models.StatusPending}
	srv := newStreamServer(t, []events.Event{{Kind: events.IssueCreated, Issue: issue}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := DialStream(ctx, wsURL(srv))
	require.NoError(t, err)
	defer stream.Close()

	select {
	case ev := <-stream.Events(ctx):
		require.Equal(t, events.IssueCreated, ev.Kind)
		require.Equal(t, uint(7), ev.Issue.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event before timeout")
	}
}

func TestStreamCancelClosesChannel(t *testing.T) {
	srv := newStreamServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := DialStream(ctx, wsURL(srv))
	require.NoError(t, err)
	defer stream.Close()

	ch := stream.Events(ctx)
	cancel()

	// Cancellation alone must tear the subscription down, without an
	// explicit Close from the caller.
	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel still open after cancel")
	}
}
