package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/likewatch-dev/likewatch/internal/domain"
	"github.com/likewatch-dev/likewatch/internal/forensics"
)

// Store implements forensics.EventStore over Postgres. All windowing uses
// date_trunc('hour', occurred_at), so bucket boundaries align to the
// wall-clock hour regardless of query time.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store { return &Store{db: db} }

// storeErr tags an I/O failure so errors.Is(err, domain.ErrStoreUnavailable)
// holds, while keeping the pgx cause in the chain.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStoreUnavailable, err))
}

func (s *Store) CountEvents(ctx context.Context, subjectID string, start, end time.Time) (n int64, err error) {
	defer observe("count_events", time.Now(), &err)

	row := s.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM events WHERE subject_id = $1 AND occurred_at >= $2 AND occurred_at < $3`,
		subjectID, start, end)
	if err = row.Scan(&n); err != nil {
		return 0, storeErr("count events", err)
	}
	return n, nil
}

func (s *Store) EventsInWindow(ctx context.Context, subjectID string, start, end time.Time) (out []forensics.EventRef, err error) {
	defer observe("events_in_window", time.Now(), &err)

	rows, err := s.db.Pool.Query(ctx,
		`SELECT actor_id, occurred_at FROM events WHERE subject_id = $1 AND occurred_at >= $2 AND occurred_at < $3`,
		subjectID, start, end)
	if err != nil {
		return nil, storeErr("events in window", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref forensics.EventRef
		if err = rows.Scan(&ref.ActorID, &ref.OccurredAt); err != nil {
			return nil, storeErr("scan event", err)
		}
		out = append(out, ref)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("events in window", err)
	}
	return out, nil
}

func (s *Store) AllWindowedCounts(ctx context.Context, freshAge time.Duration, from, to *time.Time) (out []forensics.WindowedCount, err error) {
	defer observe("all_windowed_counts", time.Now(), &err)

	cond := ""
	args := []any{freshAge.Seconds()}
	if from != nil {
		args = append(args, *from)
		cond += fmt.Sprintf(" AND e.occurred_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		cond += fmt.Sprintf(" AND e.occurred_at < $%d", len(args))
	}

	sql := `
SELECT
  e.subject_id,
  date_trunc('hour', e.occurred_at) AS hour_start,
  count(*) AS total,
  count(*) FILTER (WHERE e.occurred_at >= en.created_at
                     AND extract(epoch FROM e.occurred_at - en.created_at) < $1) AS fresh
FROM events e
JOIN entities en ON en.id = e.actor_id
WHERE true` + cond + `
GROUP BY 1, 2
ORDER BY 1, 2`

	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("all windowed counts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var wc forensics.WindowedCount
		if err = rows.Scan(&wc.SubjectID, &wc.HourStart, &wc.Count, &wc.FreshCount); err != nil {
			return nil, storeErr("scan windowed count", err)
		}
		out = append(out, wc)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("all windowed counts", err)
	}
	return out, nil
}

func (s *Store) SubjectCounts(ctx context.Context, subjectID string) (out []forensics.BucketCount, err error) {
	defer observe("subject_counts", time.Now(), &err)

	rows, err := s.db.Pool.Query(ctx, `
SELECT date_trunc('hour', occurred_at) AS hour_start, count(*)
FROM events
WHERE subject_id = $1
GROUP BY 1
ORDER BY 1`, subjectID)
	if err != nil {
		return nil, storeErr("subject counts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bc forensics.BucketCount
		if err = rows.Scan(&bc.HourStart, &bc.Count); err != nil {
			return nil, storeErr("scan subject count", err)
		}
		out = append(out, bc)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("subject counts", err)
	}
	return out, nil
}

func (s *Store) SubjectStats(ctx context.Context) (out []forensics.SubjectStat, err error) {
	defer observe("subject_stats", time.Now(), &err)

	rows, err := s.db.Pool.Query(ctx, `
SELECT subject_id, count(*), min(occurred_at), max(occurred_at)
FROM events
GROUP BY 1
ORDER BY 2 DESC, 1`)
	if err != nil {
		return nil, storeErr("subject stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st forensics.SubjectStat
		if err = rows.Scan(&st.SubjectID, &st.TotalEvents, &st.FirstEvent, &st.LastEvent); err != nil {
			return nil, storeErr("scan subject stat", err)
		}
		out = append(out, st)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("subject stats", err)
	}
	return out, nil
}

func (s *Store) GetEntity(ctx context.Context, actorID string) (ent domain.Entity, err error) {
	defer observe("get_entity", time.Now(), &err)

	ent.ID = actorID
	row := s.db.Pool.QueryRow(ctx, `SELECT created_at FROM entities WHERE id = $1`, actorID)
	if err = row.Scan(&ent.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("entity %s: %w", actorID, domain.ErrNotFound)
			return domain.Entity{}, err
		}
		err = storeErr("get entity", err)
		return domain.Entity{}, err
	}
	return ent, nil
}

func (s *Store) ActorEventCount(ctx context.Context, actorID string) (n int64, err error) {
	defer observe("actor_event_count", time.Now(), &err)

	row := s.db.Pool.QueryRow(ctx, `SELECT count(*) FROM events WHERE actor_id = $1`, actorID)
	if err = row.Scan(&n); err != nil {
		return 0, storeErr("actor event count", err)
	}
	return n, nil
}
