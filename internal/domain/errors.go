package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced by the core. Callers match with errors.Is.
var (
	// ErrNotFound: unknown subject or actor.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTimeFormat: unparsable or non-hour-aligned timestamp.
	ErrInvalidTimeFormat = errors.New("invalid time format")
	// ErrStoreUnavailable: I/O failure reaching the event store. Propagated
	// verbatim; retry policy belongs to the caller, not the core.
	ErrStoreUnavailable = errors.New("event store unavailable")
	// ErrConfiguration: invalid threshold values.
	ErrConfiguration = errors.New("invalid configuration")
)

// IntegrityWarning records an event timestamped before its actor's creation.
// Warnings ride alongside otherwise-valid results; they never abort a query.
type IntegrityWarning struct {
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("actor %s: event at %s precedes account creation at %s",
		w.ActorID, w.OccurredAt.Format(time.RFC3339), w.CreatedAt.Format(time.RFC3339))
}
