package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueuePreservesSubmissionOrder(t *testing.T) {
	q := NewOfflineQueue()

	first := q.Enqueue(Draft{Title: "first"})
	second := q.Enqueue(Draft{Title: "second"})
	third := q.Enqueue(Draft{Title: "third"})

	entries := q.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, []string{first.TempID, second.TempID, third.TempID},
		[]string{entries[0].TempID, entries[1].TempID, entries[2].TempID})
}

func TestQueueTempIDsAreDistinct(t *testing.T) {
	q := NewOfflineQueue()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		entry := q.Enqueue(Draft{Title: "x"})
		require.NotEmpty(t, entry.TempID)
		require.False(t, seen[entry.TempID])
		seen[entry.TempID] = true
	}
}

func TestQueueRemove(t *testing.T) {
	q := NewOfflineQueue()

	first := q.Enqueue(Draft{Title: "first"})
	second := q.Enqueue(Draft{Title: "second"})

	q.Remove(first.TempID)
	require.Equal(t, 1, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, second.TempID, head.TempID)

	q.Remove(second.TempID)
	_, ok = q.Peek()
	require.False(t, ok)

	// Removing an unknown id is a no-op.
	q.Remove("nope")
}
