package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/likewatch-dev/likewatch/internal/domain"
	"github.com/likewatch-dev/likewatch/internal/idempotency"
)

// Writer bulk-loads entities and events. Only the seed generator writes;
// the forensics core is strictly read-only.
type Writer struct {
	db *DB
}

func NewWriter(db *DB) *Writer { return &Writer{db: db} }

// batchSize keeps each INSERT under Postgres's 65535-parameter limit.
const batchSize = 1000

// InsertEntities inserts accounts with ON CONFLICT DO NOTHING so reseeding
// is idempotent.
func (w *Writer) InsertEntities(ctx context.Context, entities []domain.Entity) (int64, error) {
	var inserted int64
	for lo := 0; lo < len(entities); lo += batchSize {
		batch := entities[lo:min(lo+batchSize, len(entities))]
		placeholders := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*2)
		for i, ent := range batch {
			placeholders = append(placeholders, fmt.Sprintf("($%d,$%d)", i*2+1, i*2+2))
			args = append(args, ent.ID, ent.CreatedAt)
		}
		sql := "INSERT INTO entities (id, created_at) VALUES " +
			strings.Join(placeholders, ",") + " ON CONFLICT DO NOTHING"
		ct, err := w.db.Pool.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert entities: %w", err)
		}
		inserted += ct.RowsAffected()
	}
	return inserted, nil
}

// InsertEvents inserts engagement events, deduplicating on the derived
// event key.
func (w *Writer) InsertEvents(ctx context.Context, events []domain.Event) (int64, error) {
	var inserted int64
	for lo := 0; lo < len(events); lo += batchSize {
		batch := events[lo:min(lo+batchSize, len(events))]
		placeholders := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*4)
		for i, ev := range batch {
			placeholders = append(placeholders, fmt.Sprintf("($%d,$%d,$%d,$%d)", i*4+1, i*4+2, i*4+3, i*4+4))
			args = append(args,
				idempotency.DeriveEventKey(ev.ActorID, ev.SubjectID, ev.OccurredAt),
				ev.ActorID, ev.SubjectID, ev.OccurredAt)
		}
		sql := "INSERT INTO events (event_key, actor_id, subject_id, occurred_at) VALUES " +
			strings.Join(placeholders, ",") + " ON CONFLICT DO NOTHING"
		ct, err := w.db.Pool.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert events: %w", err)
		}
		inserted += ct.RowsAffected()
	}
	return inserted, nil
}

// Truncate empties both tables; used by the seed generator's --reset flag.
func (w *Writer) Truncate(ctx context.Context) error {
	if _, err := w.db.Pool.Exec(ctx, "TRUNCATE events, entities"); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
