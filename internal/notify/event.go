package notify

import (
	"context"
	"time"

	"github.com/temirov/reposcm/internal/snapshot"
)

// EventKind identifies the operation an event reports.
type EventKind string

// Supported event kinds.
const (
	EventKindCheckout EventKind = "checkout"
	EventKindPoll     EventKind = "poll"
)

// Event describes the outcome of one checkout or poll.
type Event struct {
	Kind        EventKind         `json:"kind"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Branch      string            `json:"branch,omitempty"`
	BuildNumber int               `json:"build_number,omitempty"`
	Change      string            `json:"change,omitempty"`
	NoBaseline  bool              `json:"no_baseline"`
	Changes     []snapshot.Change `json:"changes,omitempty"`
}

// NewChangeSetEvent builds an event carrying the entries of a change set.
func NewChangeSetEvent(kind EventKind, occurredAt time.Time, branch string, changeSet snapshot.ChangeSet) Event {
	return Event{
		Kind:       kind,
		OccurredAt: occurredAt.UTC(),
		Branch:     branch,
		NoBaseline: changeSet.NoBaseline(),
		Changes:    changeSet.Changes(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(executionContext context.Context, event Event) error
	Close() error
}
