// Package history reconstructs and audits the recorded transitions of one
// entity attribute.
//
// A Service reads the log once per call and derives three views from it:
// a replay (initial state, final state and the ordered transitions), a
// consistency validation (each record must start where the previous one
// ended) and frequency statistics. The derivations are also available as
// pure functions over a slice of records, so callers that already hold a
// history do not need a reader.
package history
