package forensics

import (
	"context"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// SubjectSummary is a one-shot overview of a subject's engagement history.
// PeakBucket is nil when the subject has no events.
type SubjectSummary struct {
	SubjectID   string       `json:"subject_id"`
	Exists      bool         `json:"exists"`
	TotalEvents int64        `json:"total_events"`
	PeakBucket  *BucketCount `json:"peak_bucket,omitempty"`
}

// Summarize returns total event count and the peak hour bucket for a
// subject. Peak ties resolve to the earliest hour.
func (e *Engine) Summarize(ctx context.Context, subjectID string) (SubjectSummary, error) {
	series, err := e.store.SubjectCounts(ctx, subjectID)
	if err != nil {
		return SubjectSummary{}, err
	}

	sum := SubjectSummary{SubjectID: subjectID, Exists: len(series) > 0}
	for i, b := range series {
		sum.TotalEvents += b.Count
		if sum.PeakBucket == nil || b.Count > sum.PeakBucket.Count {
			sum.PeakBucket = &series[i]
		}
	}
	return sum, nil
}

// ListSubjects returns the subject directory, busiest first, so operators
// can discover what to investigate.
func (e *Engine) ListSubjects(ctx context.Context) ([]SubjectStat, error) {
	return e.store.SubjectStats(ctx)
}

// Series returns the hourly bucket series for a subject, for charting.
// Unknown subjects return domain.ErrNotFound.
func (e *Engine) Series(ctx context.Context, subjectID string) ([]BucketCount, error) {
	series, err := e.store.SubjectCounts(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, domain.ErrNotFound
	}
	return series, nil
}
