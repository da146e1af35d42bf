package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civicsync/civicsync/internal/models"
)

// Clients key off the wire event names, so they are part of the contract.
func TestEventWireFormat(t *testing.T) {
	ev := Event{
		Kind:  IssueCreated,
		Issue: models.Issue{ID: 7, Title: "Pothole", Status: models.StatusPending},
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var frame struct {
		Event string `json:"event"`
		Data  struct {
			ID     uint   `json:"id"`
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &frame))
	require.Equal(t, "new_issue", frame.Event)
	require.Equal(t, uint(7), frame.Data.ID)
	require.Equal(t, "Pending", frame.Data.Status)

	require.Equal(t, "issue_updated", string(IssueUpdated))
}

func TestEventRoundTripThroughClientDecode(t *testing.T) {
	original := Event{Kind: IssueUpdated, Issue: models.Issue{ID: 3, Status: models.StatusResolved}}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, original.Kind, decoded.Kind)
	require.Equal(t, original.Issue.ID, decoded.Issue.ID)
	require.Equal(t, original.Issue.Status, decoded.Issue.Status)
}
