package model

import (
	"encoding/json"
	"fmt"
)

// Snapshot kinds.
const (
	SnapshotDayLog     = "day_log"
	SnapshotSupportLog = "support_log"
	SnapshotReset      = "reset"
)

// Snapshot is an immutable copy of one committed record, handed to
// replication after the fact. Payload is canonical JSON; Hash is its content
// address. Nothing read back from a snapshot ever feeds scoring.
type Snapshot struct {
	ID      string          `json:"id"`
	Seq     int64           `json:"seq"`
	Date    string          `json:"date"`
	Kind    string          `json:"kind"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
	Hash    string          `json:"hash"`
}

// NewSnapshot encodes v canonically and stamps the result.
func NewSnapshot(id string, seq int64, date, kind, action string, v any) (Snapshot, error) {
	payload, err := CanonicalJSON(v)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s/%s: %w", date, kind, err)
	}
	hash, err := SnapshotHash(date, kind, payload)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ID:      id,
		Seq:     seq,
		Date:    date,
		Kind:    kind,
		Action:  action,
		Payload: payload,
		Hash:    hash,
	}, nil
}
