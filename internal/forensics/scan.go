package forensics

import (
	"context"
	"sort"
	"time"
)

// AnomalyBucket is one (subject, hour) pair surfaced by the global scan.
type AnomalyBucket struct {
	SubjectID   string    `json:"subject_id"`
	HourStart   time.Time `json:"hour_start"`
	TotalEvents int64     `json:"total_events"`
	FreshCount  int64     `json:"fresh_count"`
}

// ScanAnomalies sweeps the whole store in a single pass and returns the top
// buckets whose fresh-actor event count exceeds the configured floor.
// Ordering: fresh count desc, total events desc, then (subject, hour) asc
// for determinism. from/to optionally bound the scanned time range without
// changing output semantics when unset.
func (e *Engine) ScanAnomalies(ctx context.Context, limit int, from, to *time.Time) ([]AnomalyBucket, error) {
	if limit <= 0 {
		return nil, nil
	}

	started := time.Now()
	rows, err := e.store.AllWindowedCounts(ctx, e.cfg.FreshAge, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]AnomalyBucket, 0, limit)
	for _, row := range rows {
		if row.FreshCount <= e.cfg.MinAnomalyCount {
			continue
		}
		out = append(out, AnomalyBucket{
			SubjectID:   row.SubjectID,
			HourStart:   row.HourStart,
			TotalEvents: row.Count,
			FreshCount:  row.FreshCount,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FreshCount != b.FreshCount {
			return a.FreshCount > b.FreshCount
		}
		if a.TotalEvents != b.TotalEvents {
			return a.TotalEvents > b.TotalEvents
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.HourStart.Before(b.HourStart)
	})
	if len(out) > limit {
		out = out[:limit]
	}

	e.log.Debug().
		Int("scanned_buckets", len(rows)).
		Int("anomalies", len(out)).
		Dur("elapsed", time.Since(started)).
		Msg("global anomaly scan")
	return out, nil
}
