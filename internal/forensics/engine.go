package forensics

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// Engine is the read-only analytics core. It holds no mutable state between
// calls; every public operation is deterministic against a fixed store
// snapshot and safe for concurrent callers.
type Engine struct {
	store EventStore
	cfg   Config
	log   zerolog.Logger
}

// NewEngine validates the thresholds and wires the store dependency.
func NewEngine(store EventStore, cfg Config, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{store: store, cfg: cfg, log: log}, nil
}

// Config returns the engine's threshold configuration.
func (e *Engine) Config() Config { return e.cfg }

// query scopes memoization to a single logical request. The spike detector
// and risk scorer touch the same buckets and actors; memoizing here avoids
// redundant store scans without sharing state across concurrent calls.
type query struct {
	eng      *Engine
	buckets  map[bucketKey]int64
	entities map[string]domain.Entity
	totals   map[string]int64
}

type bucketKey struct {
	subjectID string
	hourStart time.Time
}

func (e *Engine) newQuery() *query {
	return &query{
		eng:      e,
		buckets:  make(map[bucketKey]int64),
		entities: make(map[string]domain.Entity),
		totals:   make(map[string]int64),
	}
}

// countBucket counts events in [hourStart, hourStart+1h).
func (q *query) countBucket(ctx context.Context, subjectID string, hourStart time.Time) (int64, error) {
	k := bucketKey{subjectID, hourStart}
	if n, ok := q.buckets[k]; ok {
		return n, nil
	}
	n, err := q.eng.store.CountEvents(ctx, subjectID, hourStart, hourStart.Add(time.Hour))
	if err != nil {
		return 0, err
	}
	q.buckets[k] = n
	return n, nil
}

func (q *query) entity(ctx context.Context, actorID string) (domain.Entity, error) {
	if ent, ok := q.entities[actorID]; ok {
		return ent, nil
	}
	ent, err := q.eng.store.GetEntity(ctx, actorID)
	if err != nil {
		return domain.Entity{}, err
	}
	q.entities[actorID] = ent
	return ent, nil
}

func (q *query) actorTotal(ctx context.Context, actorID string) (int64, error) {
	if n, ok := q.totals[actorID]; ok {
		return n, nil
	}
	n, err := q.eng.store.ActorEventCount(ctx, actorID)
	if err != nil {
		return 0, err
	}
	q.totals[actorID] = n
	return n, nil
}
