package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingIssue is one queued "create issue" request that could not reach the
// server. TempID is a client-generated random token, never confusable with a
// server-assigned numeric id.
type PendingIssue struct {
	TempID   string    `json:"tempId"`
	Draft    Draft     `json:"draft"`
	QueuedAt time.Time `json:"queuedAt"`
}

// OfflineQueue buffers creation requests in submission order until they can
// be replayed.
type OfflineQueue struct {
	mu      sync.Mutex
	entries []PendingIssue
}

func NewOfflineQueue() *OfflineQueue {
	return &OfflineQueue{}
}

// Enqueue appends draft to the queue and returns its pending entry.
func (q *OfflineQueue) Enqueue(draft Draft) PendingIssue {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry := PendingIssue{
		TempID:   uuid.NewString(),
		Draft:    draft,
		QueuedAt: time.Now(),
	}
	q.entries = append(q.entries, entry)
	return entry
}

// Peek returns the oldest pending entry without removing it.
func (q *OfflineQueue) Peek() (PendingIssue, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return PendingIssue{}, false
	}
	return q.entries[0], true
}

// Remove deletes the entry with tempID, typically after a successful replay.
func (q *OfflineQueue) Remove(tempID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.TempID == tempID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of queued entries.
func (q *OfflineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a snapshot of the queue in submission order.
func (q *OfflineQueue) Entries() []PendingIssue {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]PendingIssue(nil), q.entries...)
}
