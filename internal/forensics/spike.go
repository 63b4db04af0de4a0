package forensics

import (
	"context"
	"time"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// SpikeResult compares a target hour bucket against its temporal neighbors.
type SpikeResult struct {
	SubjectID string    `json:"subject_id"`
	Hour      time.Time `json:"hour"`
	Prev      int64     `json:"prev"`
	Target    int64     `json:"target"`
	Next      int64     `json:"next"`
	IsSpike   bool      `json:"is_spike"`
}

// CheckSpike decides whether targetHour is a local anomaly for the subject.
// targetHour must be hour-aligned. A subject with no events at all returns
// domain.ErrNotFound so callers can tell "no data" from "no anomaly".
func (e *Engine) CheckSpike(ctx context.Context, subjectID string, targetHour time.Time) (SpikeResult, error) {
	if err := domain.CheckHourAligned(targetHour); err != nil {
		return SpikeResult{}, err
	}
	targetHour = targetHour.UTC()

	q := e.newQuery()
	res, err := q.spike(ctx, subjectID, targetHour)
	if err != nil {
		return SpikeResult{}, err
	}

	if res.Prev == 0 && res.Target == 0 && res.Next == 0 {
		series, err := e.store.SubjectCounts(ctx, subjectID)
		if err != nil {
			return SpikeResult{}, err
		}
		if len(series) == 0 {
			return SpikeResult{}, domain.ErrNotFound
		}
	}
	return res, nil
}

// spike is the raw three-bucket comparison, shared with the risk scorer's
// spike-participation bonus. No existence check here.
func (q *query) spike(ctx context.Context, subjectID string, targetHour time.Time) (SpikeResult, error) {
	prev, err := q.countBucket(ctx, subjectID, targetHour.Add(-time.Hour))
	if err != nil {
		return SpikeResult{}, err
	}
	target, err := q.countBucket(ctx, subjectID, targetHour)
	if err != nil {
		return SpikeResult{}, err
	}
	next, err := q.countBucket(ctx, subjectID, targetHour.Add(time.Hour))
	if err != nil {
		return SpikeResult{}, err
	}

	// max(prev, next, 1) avoids flagging a bucket purely because its
	// neighbors are empty. Strict inequality: target == 2*baseline is not
	// a spike at the default multiplier.
	baseline := max(prev, next, 1)
	isSpike := float64(target) > q.eng.cfg.SpikeMultiplier*float64(baseline)

	return SpikeResult{
		SubjectID: subjectID,
		Hour:      targetHour,
		Prev:      prev,
		Target:    target,
		Next:      next,
		IsSpike:   isSpike,
	}, nil
}
