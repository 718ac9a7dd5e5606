// Package session implements conversational concurrency control. A Rule
// defines which events belong to the same ongoing interaction; the Registry
// owns the live set of sessions per rule and guarantees that at most one
// handler body executes inside a given session at a time - including across
// voluntary suspension points, where a body parks awaiting a follow-up
// event and resumes still holding exclusive access.
package session
