// Package clock resolves wall-clock time into the values the adherence engine
// keys its records by.
//
// The biological day ends at 03:00 local time, not at midnight: anything
// logged between 00:00 and 02:59 belongs to the previous calendar date.
//
// The package also carries Sequence, a monotonic logical counter used to
// order replication snapshots independently of wall time.
package clock
