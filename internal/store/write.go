package store

import (
	"context"
	"fmt"

	"github.com/roach88/adherence/internal/model"
)

// SaveDay replaces the day log stored for date.
func (s *Store) SaveDay(ctx context.Context, date string, log model.DayLog) error {
	data, err := marshalBlob("day log", log)
	if err != nil {
		return fmt.Errorf("save day %s: %w", date, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO day_logs (date, data, sealed, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			data = excluded.data,
			sealed = excluded.sealed,
			updated_at = excluded.updated_at
	`,
		date,
		data,
		boolToInt(log.Sealed),
		log.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("save day %s: %w", date, err)
	}
	return nil
}

// SaveSupport replaces the support log stored for date.
func (s *Store) SaveSupport(ctx context.Context, date string, log model.SupportLog) error {
	data, err := marshalBlob("support log", log)
	if err != nil {
		return fmt.Errorf("save support %s: %w", date, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO support_logs (date, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`,
		date,
		data,
		log.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("save support %s: %w", date, err)
	}
	return nil
}

// AppendSnapshot journals a snapshot. Uses ON CONFLICT(id) DO NOTHING, so
// re-appending the same snapshot is a no-op.
func (s *Store) AppendSnapshot(ctx context.Context, snap model.Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, seq, date, kind, action, payload, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		snap.ID,
		snap.Seq,
		snap.Date,
		snap.Kind,
		snap.Action,
		string(snap.Payload),
		snap.Hash,
	)
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

// Wipe deletes every day log and support log. The snapshot journal is
// cleared too: after a full reset there is nothing left to replicate.
func (s *Store) Wipe(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("wipe: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"day_logs", "support_logs", "snapshots"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wipe: commit: %w", err)
	}
	return nil
}
