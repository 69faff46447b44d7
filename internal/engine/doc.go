// Package engine implements the day state machine: the single owner of the
// active date's day log and support log.
//
// On activation of a date (startup, SetViewDate, or a biological-date
// rollover) the engine loads that date's logs, loads the two preceding
// support logs for the coffee cooldown, derives the protocol and scores it
// with isFinal = sealed.
//
// Every mutation command:
//  1. passes the stale-write guard (the command's date must equal the view
//     date; otherwise it is dropped and logged),
//  2. merges its change into a copy of the active record,
//  3. persists the copy,
//  4. swaps it in and rescores synchronously,
//  5. journals an immutable snapshot and queues it on the Outbox,
//  6. notifies observers outside the lock.
//
// A day moves between OPEN and SEALED only through Seal and Unseal. Sealing
// never checks completeness; that belongs to the caller.
//
// Snapshots are for replication only. Nothing read from the Outbox or the
// journal feeds back into scoring.
package engine
