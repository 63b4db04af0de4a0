package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DeriveEventKey returns a stable key for an engagement event from its
// composite identity (actor, subject, timestamp). Inserts dedupe on this
// key, so replaying a seed run or an ingest batch never double-counts.
// Hex-encoded SHA-256 guarantees fixed length.
func DeriveEventKey(actorID, subjectID string, occurredAt time.Time) string {
	composite := fmt.Sprintf("%s|%s|%d", actorID, subjectID, occurredAt.UTC().UnixNano())
	sum := sha256.Sum256([]byte(composite))
	return hex.EncodeToString(sum[:])
}
