package domain

import (
	"fmt"
	"time"
)

// Hour-granularity timestamps exchanged with callers. Minute and second are
// implicitly zero; finer-grained input is rejected, not normalized.

const (
	hourLayoutT     = "2006-01-02T15"
	hourLayoutSpace = "2006-01-02 15"
)

// ParseHour parses "2006-01-02T15" or "2006-01-02 15" into an hour-aligned
// UTC time. Anything else, including input carrying minutes or seconds,
// returns ErrInvalidTimeFormat.
func ParseHour(s string) (time.Time, error) {
	for _, layout := range []string{hourLayoutT, hourLayoutSpace} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DDTHH)", ErrInvalidTimeFormat, s)
}

// FormatHour renders an hour-aligned time in the wire format.
func FormatHour(t time.Time) string {
	return t.UTC().Format(hourLayoutT)
}

// TruncateHour floors a timestamp to its wall-clock hour in UTC. Bucket
// boundaries depend only on the event timestamp, never on query time.
func TruncateHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// CheckHourAligned rejects timestamps that are not exactly on an hour
// boundary with ErrInvalidTimeFormat.
func CheckHourAligned(t time.Time) error {
	if !t.Equal(TruncateHour(t)) {
		return fmt.Errorf("%w: %s is not hour-aligned", ErrInvalidTimeFormat, t.Format(time.RFC3339))
	}
	return nil
}
