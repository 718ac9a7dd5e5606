// Package dispatch implements the control loop at the center of wirebot:
// it consumes events from the connector, evaluates candidate handler
// registrations in priority order, runs each one's preprocessing pipeline,
// acquires the conversation session, and schedules the handler body as an
// isolated concurrent unit of work.
//
// The registration set is an immutable snapshot built at bootstrap; the
// dispatcher only reads it. Handler bodies never block intake: dispatch of
// the next event may begin before bodies triggered by the previous one
// complete, except where session exclusivity forces serialization within
// one conversation.
package dispatch
