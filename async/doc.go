// Package async provides the concurrency primitives the session engine is
// built from and that handler authors can reuse: a context-aware mutual
// exclusion lock, a writer-preference read/write controller, a counting
// semaphore, a cooldown gate, a timeout wrapper and cancellable deferred /
// scheduled execution.
//
// The primitives are pure building blocks with no knowledge of events or
// sessions. Every blocking operation takes a context.Context and returns
// early with the context's error on cancellation.
package async
