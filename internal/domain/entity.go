package domain

import "time"

// Entity is an account that produces engagement events. Immutable once
// created; the forensics core only ever holds read views of it.
type Entity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a single engagement action ("like"). The store is append-only:
// events are never updated or deleted, and all windowing is timestamp-based.
type Event struct {
	ActorID    string    `json:"actor_id"`
	SubjectID  string    `json:"subject_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AgeAt returns the account age at the given instant. Negative values mean
// the event precedes the account's creation, which is a data-integrity
// violation the caller must surface, not clamp.
func (e Entity) AgeAt(t time.Time) time.Duration {
	return t.Sub(e.CreatedAt)
}
