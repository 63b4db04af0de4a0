package forensics

import (
	"context"
	"sort"
	"time"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// Classification is derived from created_at, occurred_at, and lifetime
// activity only. There is no stored ground-truth label to consult.
type Classification string

const (
	ClassNormal Classification = "Normal"
	// ClassFreshAccount: account age at event time below the fresh
	// threshold. The strongest single signal of disposable registration.
	ClassFreshAccount Classification = "FreshAccount"
	// ClassSleeperPattern: old account, near-zero lifetime activity,
	// suddenly participating. Age alone is not enough; long-tenured
	// legitimate users are common.
	ClassSleeperPattern Classification = "SleeperPattern"
)

// Score weights. Policy constants, not derived statistics: fresh and
// sleeper are mutually exclusive, spike participation stacks on either.
const (
	scoreFresh   = 50
	scoreSleeper = 40
	scoreInSpike = 50
)

// RiskRecord is the per-actor result of scoring one window.
type RiskRecord struct {
	ActorID           string         `json:"actor_id"`
	AccountAgeAtEvent time.Duration  `json:"account_age_at_event"`
	LifetimeEvents    int64          `json:"total_lifetime_events"`
	Classification    Classification `json:"classification"`
	Score             int            `json:"score"`
}

// RiskSummary aggregates a scored window.
type RiskSummary struct {
	TotalActors   int     `json:"total_actors"`
	FreshCount    int     `json:"fresh_count"`
	SleeperCount  int     `json:"sleeper_count"`
	FreshFraction float64 `json:"fresh_fraction"`
}

// RiskReport is the full output of ScoreWindow. Warnings carry events that
// were excluded for preceding their actor's creation; the rest of the window
// scores normally.
type RiskReport struct {
	SubjectID string                    `json:"subject_id"`
	Start     time.Time                 `json:"start"`
	End       time.Time                 `json:"end"`
	Records   []RiskRecord              `json:"records"`
	Summary   RiskSummary               `json:"summary"`
	Warnings  []domain.IntegrityWarning `json:"warnings,omitempty"`
}

// ScoreWindow classifies every actor event in [start, end) for the subject.
// Each actor is scored once, on its most suspicious event in the window.
// An empty window yields TotalActors 0 and FreshFraction 0.
func (e *Engine) ScoreWindow(ctx context.Context, subjectID string, start, end time.Time) (RiskReport, error) {
	report := RiskReport{SubjectID: subjectID, Start: start.UTC(), End: end.UTC()}
	if !end.After(start) {
		return report, nil
	}

	q := e.newQuery()
	events, err := e.store.EventsInWindow(ctx, subjectID, start, end)
	if err != nil {
		return RiskReport{}, err
	}

	// Spike-participation bonus applies when the window is a single
	// hour-aligned bucket flagged as a spike.
	spikeBonus := 0
	if end.Sub(start) == time.Hour && domain.CheckHourAligned(start) == nil {
		sr, err := q.spike(ctx, subjectID, start.UTC())
		if err != nil {
			return RiskReport{}, err
		}
		if sr.IsSpike {
			spikeBonus = scoreInSpike
		}
	}

	byActor := make(map[string]RiskRecord)
	for _, ev := range events {
		ent, err := q.entity(ctx, ev.ActorID)
		if err != nil {
			return RiskReport{}, err
		}
		age := ent.AgeAt(ev.OccurredAt)
		if age < 0 {
			report.Warnings = append(report.Warnings, domain.IntegrityWarning{
				ActorID:    ev.ActorID,
				OccurredAt: ev.OccurredAt,
				CreatedAt:  ent.CreatedAt,
			})
			continue
		}

		cls, err := q.classify(ctx, ev.ActorID, age)
		if err != nil {
			return RiskReport{}, err
		}
		total, err := q.actorTotal(ctx, ev.ActorID)
		if err != nil {
			return RiskReport{}, err
		}

		rec := RiskRecord{
			ActorID:           ev.ActorID,
			AccountAgeAtEvent: age,
			LifetimeEvents:    total,
			Classification:    cls,
			Score:             classScore(cls) + spikeBonus,
		}
		if prev, ok := byActor[ev.ActorID]; !ok || rec.Score > prev.Score {
			byActor[ev.ActorID] = rec
		}
	}

	report.Records = make([]RiskRecord, 0, len(byActor))
	for _, rec := range byActor {
		report.Records = append(report.Records, rec)
	}
	sort.Slice(report.Records, func(i, j int) bool {
		a, b := report.Records[i], report.Records[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.ActorID < b.ActorID
	})
	sort.Slice(report.Warnings, func(i, j int) bool {
		a, b := report.Warnings[i], report.Warnings[j]
		if a.ActorID != b.ActorID {
			return a.ActorID < b.ActorID
		}
		return a.OccurredAt.Before(b.OccurredAt)
	})

	for _, rec := range report.Records {
		switch rec.Classification {
		case ClassFreshAccount:
			report.Summary.FreshCount++
		case ClassSleeperPattern:
			report.Summary.SleeperCount++
		}
	}
	report.Summary.TotalActors = len(report.Records)
	if report.Summary.TotalActors > 0 {
		report.Summary.FreshFraction = float64(report.Summary.FreshCount) / float64(report.Summary.TotalActors)
	}
	return report, nil
}

// ActorProfile is a standalone risk lookup for one actor, with account age
// taken at a reference time rather than at a specific event.
type ActorProfile struct {
	ActorID        string         `json:"actor_id"`
	CreatedAt      time.Time      `json:"created_at"`
	AccountAge     time.Duration  `json:"account_age"`
	LifetimeEvents int64          `json:"total_lifetime_events"`
	Classification Classification `json:"classification"`
	Score          int            `json:"score"`
}

// Profile classifies a single actor as of asOf, outside any window. Unknown
// actors return domain.ErrNotFound.
func (e *Engine) Profile(ctx context.Context, actorID string, asOf time.Time) (ActorProfile, error) {
	q := e.newQuery()
	ent, err := q.entity(ctx, actorID)
	if err != nil {
		return ActorProfile{}, err
	}
	age := ent.AgeAt(asOf)
	cls, err := q.classify(ctx, actorID, age)
	if err != nil {
		return ActorProfile{}, err
	}
	total, err := q.actorTotal(ctx, actorID)
	if err != nil {
		return ActorProfile{}, err
	}
	return ActorProfile{
		ActorID:        ent.ID,
		CreatedAt:      ent.CreatedAt,
		AccountAge:     age,
		LifetimeEvents: total,
		Classification: cls,
		Score:          classScore(cls),
	}, nil
}

// classify applies the rules in strict order; first match wins, so an event
// can never be both fresh and sleeper.
func (q *query) classify(ctx context.Context, actorID string, age time.Duration) (Classification, error) {
	cfg := q.eng.cfg
	if age < cfg.FreshAge {
		return ClassFreshAccount, nil
	}
	if age > cfg.SleeperAge {
		total, err := q.actorTotal(ctx, actorID)
		if err != nil {
			return ClassNormal, err
		}
		if total < cfg.LowActivityMax {
			return ClassSleeperPattern, nil
		}
	}
	return ClassNormal, nil
}

func classScore(c Classification) int {
	switch c {
	case ClassFreshAccount:
		return scoreFresh
	case ClassSleeperPattern:
		return scoreSleeper
	default:
		return 0
	}
}
