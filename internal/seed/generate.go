// Package seed generates a synthetic engagement log for demos and testing:
// organic actors with archetype-shaped like curves, plus one injected bot
// attack. No ground-truth bot label is written anywhere; the attack is only
// discoverable through the forensic queries.
package seed

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

type Config struct {
	// Cohort sizes.
	OrganicActors int
	SleeperActors int
	FreshActors   int
	Subjects      int

	// Now anchors all relative times; injectable for tests.
	Now time.Time

	// Seed drives the PRNG so runs are reproducible.
	Seed int64
}

func DefaultConfig(now time.Time) Config {
	return Config{
		OrganicActors: 1000,
		SleeperActors: 300,
		FreshActors:   200,
		Subjects:      50,
		Now:           now.UTC(),
		Seed:          1,
	}
}

// Result is the generated dataset plus the injected attack's coordinates,
// so operators know where the demo anomaly lives.
type Result struct {
	Entities []domain.Entity
	Events   []domain.Event

	TargetSubject string
	AttackHour    time.Time
}

type archetype string

const (
	archViral  archetype = "viral"
	archFlop   archetype = "flop"
	archSteady archetype = "steady"
	archDead   archetype = "dead"
)

type subject struct {
	id       string
	uploaded time.Time
	arch     archetype
}

// Generate builds the dataset. The attack: every sleeper and fresh actor
// likes one steady subject within a 15-minute cluster starting at 14:00 UTC
// the day before Now.
func Generate(cfg Config) Result {
	rng := rand.New(rand.NewSource(cfg.Seed))
	now := cfg.Now.UTC()
	yesterday := now.Add(-24 * time.Hour)
	attackHour := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 14, 0, 0, 0, time.UTC)

	var res Result
	res.AttackHour = attackHour

	// Organic actors: created over roughly the last two years.
	accountEpoch := now.Add(-730 * 24 * time.Hour)
	organic := make([]string, 0, cfg.OrganicActors)
	for i := 0; i < cfg.OrganicActors; i++ {
		id := "user-" + uuid.NewString()
		created := accountEpoch.Add(time.Duration(rng.Intn(700*24)) * time.Hour)
		res.Entities = append(res.Entities, domain.Entity{ID: id, CreatedAt: created})
		organic = append(organic, id)
	}

	// Sleepers: old accounts (at least a year before the attack) that stay
	// inactive until it. Their only event will be the attack like.
	var bots []string
	for i := 0; i < cfg.SleeperActors; i++ {
		id := "user-" + uuid.NewString()
		created := accountEpoch.Add(time.Duration(rng.Intn(365*24)) * time.Hour)
		res.Entities = append(res.Entities, domain.Entity{ID: id, CreatedAt: created})
		bots = append(bots, id)
	}

	// Fresh: registered within the 24 hours before the attack, so account
	// age at like time is always under the fresh threshold.
	for i := 0; i < cfg.FreshActors; i++ {
		id := "user-" + uuid.NewString()
		created := attackHour.Add(-time.Duration(1+rng.Intn(24*60-1)) * time.Minute)
		res.Entities = append(res.Entities, domain.Entity{ID: id, CreatedAt: created})
		bots = append(bots, id)
	}

	// Subjects uploaded over the last six months. One steady subject is the
	// attack target.
	subjects := make([]subject, 0, cfg.Subjects)
	uploadEpoch := now.Add(-180 * 24 * time.Hour)
	targetIdx := cfg.Subjects / 2
	for i := 0; i < cfg.Subjects; i++ {
		arch := pickArchetype(rng)
		if i == targetIdx {
			arch = archSteady
		}
		subjects = append(subjects, subject{
			id:       "video-" + uuid.NewString(),
			uploaded: uploadEpoch.Add(time.Duration(rng.Intn(170*24)) * time.Hour),
			arch:     arch,
		})
	}
	res.TargetSubject = subjects[targetIdx].id

	// Organic likes, shaped by archetype.
	for _, sub := range subjects {
		daysLive := int(now.Sub(sub.uploaded).Hours() / 24)
		if daysLive <= 0 {
			continue
		}
		for i := 0; i < organicVolume(rng, sub.arch); i++ {
			actor := organic[rng.Intn(len(organic))]
			delayDays := organicDelayDays(rng, sub.arch, daysLive)
			at := sub.uploaded.Add(time.Duration(delayDays*24+rng.Intn(24)) * time.Hour).
				Add(time.Duration(rng.Intn(60)) * time.Minute)
			if at.After(now) {
				continue
			}
			res.Events = append(res.Events, domain.Event{ActorID: actor, SubjectID: sub.id, OccurredAt: at})
		}
	}

	// The attack: every bot likes the target within 15 minutes.
	for _, actor := range bots {
		at := attackHour.Add(time.Duration(rng.Intn(15*60)) * time.Second)
		res.Events = append(res.Events, domain.Event{ActorID: actor, SubjectID: res.TargetSubject, OccurredAt: at})
	}

	// Drop any like that precedes its actor's creation; the log must start
	// clean, integrity violations are for tests to inject deliberately.
	byID := make(map[string]time.Time, len(res.Entities))
	for _, ent := range res.Entities {
		byID[ent.ID] = ent.CreatedAt
	}
	kept := res.Events[:0]
	for _, ev := range res.Events {
		if !ev.OccurredAt.Before(byID[ev.ActorID]) {
			kept = append(kept, ev)
		}
	}
	res.Events = kept

	return res
}

func pickArchetype(rng *rand.Rand) archetype {
	// Weights from the demo dataset: steady and dead dominate.
	switch n := rng.Intn(100); {
	case n < 10:
		return archViral
	case n < 30:
		return archFlop
	case n < 70:
		return archSteady
	default:
		return archDead
	}
}

func organicVolume(rng *rand.Rand, arch archetype) int {
	switch arch {
	case archViral:
		return 500 + rng.Intn(1500)
	case archSteady:
		return 100 + rng.Intn(400)
	case archFlop:
		return 50 + rng.Intn(150)
	default:
		return rng.Intn(20)
	}
}

func organicDelayDays(rng *rand.Rand, arch archetype, daysLive int) int {
	var d int
	switch arch {
	case archViral:
		// Slow start, big hump, long tail: sum of two exponentials.
		d = int(5 * (rng.ExpFloat64() + rng.ExpFloat64()))
	case archFlop:
		// Front-loaded, dead after a few days.
		d = int(rng.ExpFloat64())
	case archSteady:
		d = rng.Intn(daysLive)
	default:
		d = rng.Intn(11)
	}
	if d > daysLive {
		d = daysLive
	}
	return d
}
