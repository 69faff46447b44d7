// Package store provides SQLite-backed persistence for per-date day logs,
// support logs and the replication snapshot journal.
//
// Logs are stored as JSON blobs keyed by biological date (YYYY-MM-DD). The
// store only offers read/write-by-date semantics; merging partial updates is
// the engine's job.
//
// # Corruption
//
// A blob that fails to parse is treated as "no record for this date": Load
// returns an empty log and the failure is logged as a warning. Availability
// wins over surfacing corruption.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Snapshot journal queries order by seq, never by timestamps.
package store
