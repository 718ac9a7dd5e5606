// Package lifecycle provides the coarse process state gate the dispatcher
// consults before accepting events: initializing -> running <-> paused ->
// stopping -> stopped (terminal). Transitions are triggered by the
// surrounding application; hooks registered at bootstrap observe them.
package lifecycle
