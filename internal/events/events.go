// Package events defines the closed set of realtime events the issue service
// publishes and the interface the fan-out layer implements.
package events

import (
	"github.com/civicsync/civicsync/internal/models"
)

type Kind string

const (
	IssueCreated Kind = "new_issue"
	IssueUpdated Kind = "issue_updated"
)

// Event carries the full issue snapshot for one lifecycle transition. Kind
// doubles as the wire event name.
type Event struct {
	Kind  Kind         `json:"event"`
	Issue models.Issue `json:"data"`
}

// Publisher fans an event out to every currently connected session,
// best-effort. Implementations must not block the caller on slow consumers.
type Publisher interface {
	Publish(ev Event)
}
