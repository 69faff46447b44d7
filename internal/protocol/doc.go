// Package protocol derives, for a calendar date, the weighted requirements a
// user must satisfy, and loads the plan document those requirements come
// from.
//
// Derive is a pure, total function: dates outside the plan, unparsable dates
// and a missing plan all yield a nil protocol rather than an error.
//
// Plan documents (JSON or YAML) are validated against an embedded CUE schema
// before they are decoded.
package protocol
