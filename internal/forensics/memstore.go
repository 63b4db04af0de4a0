package forensics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// MemStore is an in-memory EventStore for tests and local development.
// Writes are only used to stage fixtures; the core itself never writes.
type MemStore struct {
	mu       sync.RWMutex
	entities map[string]domain.Entity
	events   []domain.Event

	// FailWith, when set, makes every read fail with that error. Used to
	// exercise store-unavailable propagation.
	FailWith error
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entities: make(map[string]domain.Entity)}
}

// AddEntity registers an actor.
func (m *MemStore) AddEntity(id string, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[id] = domain.Entity{ID: id, CreatedAt: createdAt.UTC()}
}

// AddEvent appends an engagement event.
func (m *MemStore) AddEvent(actorID, subjectID string, occurredAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, domain.Event{
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: occurredAt.UTC(),
	})
}

func (m *MemStore) CountEvents(_ context.Context, subjectID string, start, end time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	var n int64
	for _, ev := range m.events {
		if ev.SubjectID == subjectID && inWindow(ev.OccurredAt, start, end) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) EventsInWindow(_ context.Context, subjectID string, start, end time.Time) ([]EventRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []EventRef
	for _, ev := range m.events {
		if ev.SubjectID == subjectID && inWindow(ev.OccurredAt, start, end) {
			out = append(out, EventRef{ActorID: ev.ActorID, OccurredAt: ev.OccurredAt})
		}
	}
	return out, nil
}

func (m *MemStore) AllWindowedCounts(_ context.Context, freshAge time.Duration, from, to *time.Time) ([]WindowedCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	type key struct {
		subject string
		hour    time.Time
	}
	counts := make(map[key]*WindowedCount)
	for _, ev := range m.events {
		if from != nil && ev.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && !ev.OccurredAt.Before(*to) {
			continue
		}
		k := key{ev.SubjectID, domain.TruncateHour(ev.OccurredAt)}
		wc := counts[k]
		if wc == nil {
			wc = &WindowedCount{SubjectID: k.subject, HourStart: k.hour}
			counts[k] = wc
		}
		wc.Count++
		// Events timestamped before their actor's creation are integrity
		// violations, not fresh activity.
		if ent, ok := m.entities[ev.ActorID]; ok {
			if age := ev.OccurredAt.Sub(ent.CreatedAt); age >= 0 && age < freshAge {
				wc.FreshCount++
			}
		}
	}
	out := make([]WindowedCount, 0, len(counts))
	for _, wc := range counts {
		out = append(out, *wc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID != out[j].SubjectID {
			return out[i].SubjectID < out[j].SubjectID
		}
		return out[i].HourStart.Before(out[j].HourStart)
	})
	return out, nil
}

func (m *MemStore) SubjectCounts(_ context.Context, subjectID string) ([]BucketCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	counts := make(map[time.Time]int64)
	for _, ev := range m.events {
		if ev.SubjectID == subjectID {
			counts[domain.TruncateHour(ev.OccurredAt)]++
		}
	}
	out := make([]BucketCount, 0, len(counts))
	for hour, n := range counts {
		out = append(out, BucketCount{HourStart: hour, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HourStart.Before(out[j].HourStart) })
	return out, nil
}

func (m *MemStore) SubjectStats(_ context.Context) ([]SubjectStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	stats := make(map[string]*SubjectStat)
	for _, ev := range m.events {
		st := stats[ev.SubjectID]
		if st == nil {
			st = &SubjectStat{SubjectID: ev.SubjectID, FirstEvent: ev.OccurredAt, LastEvent: ev.OccurredAt}
			stats[ev.SubjectID] = st
		}
		st.TotalEvents++
		if ev.OccurredAt.Before(st.FirstEvent) {
			st.FirstEvent = ev.OccurredAt
		}
		if ev.OccurredAt.After(st.LastEvent) {
			st.LastEvent = ev.OccurredAt
		}
	}
	out := make([]SubjectStat, 0, len(stats))
	for _, st := range stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalEvents != out[j].TotalEvents {
			return out[i].TotalEvents > out[j].TotalEvents
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out, nil
}

func (m *MemStore) GetEntity(_ context.Context, actorID string) (domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return domain.Entity{}, m.FailWith
	}
	ent, ok := m.entities[actorID]
	if !ok {
		return domain.Entity{}, domain.ErrNotFound
	}
	return ent, nil
}

func (m *MemStore) ActorEventCount(_ context.Context, actorID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	var n int64
	for _, ev := range m.events {
		if ev.ActorID == actorID {
			n++
		}
	}
	return n, nil
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
