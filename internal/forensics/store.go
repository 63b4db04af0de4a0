package forensics

import (
	"context"
	"time"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// EventStore is the read contract the core consumes. Implementations must
// never double-count or omit events inside a half-open [start, end) interval,
// and AllWindowedCounts must reflect a single consistent snapshot. I/O
// failures surface as domain.ErrStoreUnavailable; the core never retries.
type EventStore interface {
	// CountEvents returns the number of events for subjectID with
	// occurredAt in [start, end).
	CountEvents(ctx context.Context, subjectID string, start, end time.Time) (int64, error)

	// EventsInWindow returns all matching events, complete and
	// duplicate-free. Order is unspecified.
	EventsInWindow(ctx context.Context, subjectID string, start, end time.Time) ([]EventRef, error)

	// AllWindowedCounts scans every (subject, hour) bucket, counting total
	// events and events whose actor was younger than freshAge at event time.
	// from/to optionally bound occurredAt; nil means unbounded.
	AllWindowedCounts(ctx context.Context, freshAge time.Duration, from, to *time.Time) ([]WindowedCount, error)

	// SubjectCounts returns the per-hour bucket series for one subject,
	// ordered by hour ascending. Empty when the subject has no events.
	SubjectCounts(ctx context.Context, subjectID string) ([]BucketCount, error)

	// SubjectStats lists every subject that has events, ordered by event
	// count descending, then subject id ascending.
	SubjectStats(ctx context.Context) ([]SubjectStat, error)

	// GetEntity resolves an actor, or domain.ErrNotFound.
	GetEntity(ctx context.Context, actorID string) (domain.Entity, error)

	// ActorEventCount returns the actor's lifetime event count across the
	// entire store.
	ActorEventCount(ctx context.Context, actorID string) (int64, error)
}

// EventRef is an (actor, timestamp) pair inside a queried window.
type EventRef struct {
	ActorID    string
	OccurredAt time.Time
}

// BucketCount is one hour bucket for a single subject.
type BucketCount struct {
	HourStart time.Time `json:"hour_start"`
	Count     int64     `json:"count"`
}

// SubjectStat is one row of the subject directory.
type SubjectStat struct {
	SubjectID   string    `json:"subject_id"`
	TotalEvents int64     `json:"total_events"`
	FirstEvent  time.Time `json:"first_event"`
	LastEvent   time.Time `json:"last_event"`
}

// WindowedCount is one row of the store-wide scan.
type WindowedCount struct {
	SubjectID  string
	HourStart  time.Time
	Count      int64
	FreshCount int64
}
