package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civicsync/civicsync/internal/events"
	"github.com/civicsync/civicsync/internal/models"
)

func ev(id uint, kind events.Kind) events.Event {
	return events.Event{Kind: kind, Issue: models.Issue{ID: id}}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(ev(1, events.IssueCreated))
	hub.Publish(ev(2, events.IssueUpdated))
	hub.Publish(ev(3, events.IssueUpdated))

	for i, want := range []uint{1, 2, 3} {
		select {
		case got := <-ch:
			require.Equal(t, want, got.Issue.ID, "event %d out of order", i)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestHubFansOutToAllSessions(t *testing.T) {
	hub := NewHub()

	const sessions = 5
	channels := make([]<-chan events.Event, sessions)
	for i := range channels {
		ch, cancel := hub.Subscribe()
		defer cancel()
		channels[i] = ch
	}
	require.Equal(t, sessions, hub.Sessions())

	hub.Publish(ev(1, events.IssueCreated))

	for i, ch := range channels {
		select {
		case got := <-ch:
			require.Equal(t, uint(1), got.Issue.ID, "session %d", i)
		case <-time.After(time.Second):
			t.Fatalf("session %d missed the event", i)
		}
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()

	cancel()
	require.Equal(t, 0, hub.Sessions())

	// No replay: events published after disconnect are lost to the session.
	hub.Publish(ev(1, events.IssueCreated))

	_, open := <-ch
	require.False(t, open, "channel should be closed after cancel")

	// Cancel is idempotent.
	cancel()
}

func TestHubDropsSlowSession(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	// Never read: the session buffer fills and the hub must drop the session
	// instead of blocking the publisher.
	for i := 0; i < sessionBuffer+2; i++ {
		hub.Publish(ev(uint(i), events.IssueCreated))
	}

	require.Equal(t, 0, hub.Sessions())
}

func TestHubConcurrentSubscribePublish(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, cancel := hub.Subscribe()
			// Drain a little then disconnect mid-stream.
			select {
			case <-ch:
			case <-time.After(10 * time.Millisecond):
			}
			cancel()
		}()
		go func(n int) {
			defer wg.Done()
			hub.Publish(ev(uint(n), events.IssueUpdated))
		}(i)
	}
	wg.Wait()
}
