// Package model defines the types shared by every layer of the adherence
// engine: the 30-day plan, the derived protocol, logged records and the
// compliance score.
//
// Records are plain values. Partial updates are applied through explicit
// per-record merge functions (MergeMeal, MergeSupport, MergeSleep) so that a
// field left unspecified by an update is always preserved.
//
// Canonical JSON (canonical.go) and content hashing (hash.go) are used for the
// immutable snapshots handed to replication consumers.
package model
