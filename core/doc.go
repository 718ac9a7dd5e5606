// Package core provides the foundational domain types and interfaces shared
// by the rest of wirebot. It defines:
//
//   - Events (immutable inbound occurrences: messages, requests, notices, meta)
//   - Actions (outbound effects produced by handler code)
//   - The Connector boundary that turns wire bytes into typed events and back
//   - Shared enumerations (event types, priority levels, user levels)
//
// The package intentionally keeps implementation concerns (dispatching,
// session management, concrete connectors) out of scope, exposing small
// interfaces so the surrounding packages and user code stay decoupled from
// any single protocol implementation.
package core
