package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/civicsync/civicsync/internal/apperr"
	"github.com/civicsync/civicsync/internal/events"
	"github.com/civicsync/civicsync/internal/logger"
	"github.com/civicsync/civicsync/internal/models"
)

// State of the issue list view.
type State int

const (
	StateLoading State = iota
	StateReady
)

// SyncAgent keeps a client-local snapshot of the issue list. The server stays
// authoritative: a successful refresh replaces the cache outright, realtime
// events only patch it in between.
type SyncAgent struct {
	mu     sync.Mutex
	api    API
	queue  *OfflineQueue
	cache  []models.Issue
	state  State
	closed bool
	log    *logrus.Entry
}

func NewSyncAgent(api API) *SyncAgent {
	return &SyncAgent{
		api:   api,
		queue: NewOfflineQueue(),
		state: StateLoading,
		log:   logger.WithContext(map[string]interface{}{"component": "sync_agent"}),
	}
}

// State returns the view state.
func (a *SyncAgent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Refresh fetches the full list and replaces the cache authoritatively.
func (a *SyncAgent) Refresh(ctx context.Context) error {
	issues, err := a.api.FetchIssues(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.cache = issues
	a.state = StateReady
	return nil
}

// Apply merges one realtime event into the cache. Created issues are
// prepended unless already present (the refetch race delivers the same issue
// twice); update events patch only entries the cache already knows about,
// by design: an unknown id is learned on the next full refresh.
func (a *SyncAgent) Apply(ev events.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	switch ev.Kind {
	case events.IssueCreated:
		for _, issue := range a.cache {
			if issue.ID == ev.Issue.ID {
				return
			}
		}
		a.cache = append([]models.Issue{ev.Issue}, a.cache...)
	case events.IssueUpdated:
		for i, issue := range a.cache {
			if issue.ID == ev.Issue.ID {
				a.cache[i] = ev.Issue
				return
			}
		}
	}
}

// Watch applies events from ch until it closes or ctx is cancelled.
func (a *SyncAgent) Watch(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			a.Apply(ev)
		}
	}
}

// Issues returns a snapshot of the cached list.
func (a *SyncAgent) Issues() []models.Issue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Issue(nil), a.cache...)
}

// Filter is a pure projection over the cache: case-insensitive substring
// match on title/description plus an exact category match. It never mutates
// the cache.
func (a *SyncAgent) Filter(search string, category models.IssueCategory) []models.Issue {
	a.mu.Lock()
	defer a.mu.Unlock()
	search = strings.ToLower(search)
	out := make([]models.Issue, 0, len(a.cache))
	for _, issue := range a.cache {
		if category != "" && issue.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(issue.Title), search) &&
			!strings.Contains(strings.ToLower(issue.Description), search) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// Create submits a report. When the server is unreachable the draft goes to
// the offline queue instead of failing the user action; the returned pending
// entry is not part of the authoritative cache.
func (a *SyncAgent) Create(ctx context.Context, draft Draft) (*models.Issue, *PendingIssue, error) {
	issue, err := a.api.CreateIssue(ctx, draft)
	if err != nil {
		if errors.Is(err, apperr.ErrUnavailable) {
			pending := a.queue.Enqueue(draft)
			a.log.WithField("temp_id", pending.TempID).Info("Server unreachable, queued report for replay")
			return nil, &pending, nil
		}
		return nil, nil, err
	}
	a.Apply(events.Event{Kind: events.IssueCreated, Issue: *issue})
	return issue, nil, nil
}

// Replay submits queued drafts in the order they were queued. Each success
// removes its entry; the first failure leaves that entry (and everything
// after it) queued for a later attempt, preserving submission order. Returns
// the number of entries synced.
func (a *SyncAgent) Replay(ctx context.Context) (int, error) {
	synced := 0
	for {
		entry, ok := a.queue.Peek()
		if !ok {
			return synced, nil
		}
		issue, err := a.api.CreateIssue(ctx, entry.Draft)
		if err != nil {
			a.log.WithFields(logrus.Fields{
				"temp_id": entry.TempID,
				"error":   err.Error(),
			}).Warn("Replay attempt failed, keeping entry queued")
			return synced, err
		}
		a.queue.Remove(entry.TempID)
		a.Apply(events.Event{Kind: events.IssueCreated, Issue: *issue})
		synced++
	}
}

// PendingCount returns the number of unsynced queued reports.
func (a *SyncAgent) PendingCount() int {
	return a.queue.Len()
}

// Pending returns the unsynced queued reports in submission order.
func (a *SyncAgent) Pending() []PendingIssue {
	return a.queue.Entries()
}

// Close tears the view down. Events arriving after Close are not applied.
func (a *SyncAgent) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}
