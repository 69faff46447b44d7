package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/adherence/internal/model"
)

// LoadDay returns the day log for date. A missing or unparseable record
// yields an empty log; only query failures are returned as errors.
func (s *Store) LoadDay(ctx context.Context, date string) (model.DayLog, error) {
	data, found, err := s.loadBlob(ctx, "day_logs", date)
	if err != nil || !found {
		return model.NewDayLog(), err
	}
	log, err := unmarshalDayLog(data)
	if err != nil {
		s.logger.Warn("discarding unreadable record",
			"date", date,
			"kind", model.SnapshotDayLog,
			"error", err)
		return model.NewDayLog(), nil
	}
	return log, nil
}

// LoadSupport returns the support log for date, with the same missing and
// corrupt record policy as LoadDay.
func (s *Store) LoadSupport(ctx context.Context, date string) (model.SupportLog, error) {
	data, found, err := s.loadBlob(ctx, "support_logs", date)
	if err != nil || !found {
		return model.NewSupportLog(), err
	}
	log, err := unmarshalSupportLog(data)
	if err != nil {
		s.logger.Warn("discarding unreadable record",
			"date", date,
			"kind", model.SnapshotSupportLog,
			"error", err)
		return model.NewSupportLog(), nil
	}
	return log, nil
}

func (s *Store) loadBlob(ctx context.Context, table, date string) (string, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM "+table+" WHERE date = ?", date).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s %s: %w", table, date, err)
	}
	return data, true, nil
}

// CountSealed returns the number of sealed days.
func (s *Store) CountSealed(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM day_logs WHERE sealed = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sealed: %w", err)
	}
	return n, nil
}

// LastSnapshotSeq returns the highest journaled seq, or 0 for an empty journal.
func (s *Store) LastSnapshotSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM snapshots`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last snapshot seq: %w", err)
	}
	return seq.Int64, nil
}

// ListSnapshots returns the most recent limit snapshots in ascending seq
// order. A limit <= 0 returns the whole journal.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	query := `
		SELECT id, seq, date, kind, action, payload, hash FROM (
			SELECT id, seq, date, kind, action, payload, hash
			FROM snapshots
			ORDER BY seq DESC, id COLLATE BINARY DESC
			LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []model.Snapshot{}
	for rows.Next() {
		var snap model.Snapshot
		var payload string
		if err := rows.Scan(&snap.ID, &snap.Seq, &snap.Date, &snap.Kind, &snap.Action, &payload, &snap.Hash); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Payload = []byte(payload)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}
