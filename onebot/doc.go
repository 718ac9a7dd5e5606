// Package onebot implements a core.Connector speaking the OneBot v11
// forward-WebSocket protocol.
//
// The connector dials the protocol endpoint, decodes inbound JSON frames
// into typed core events, and correlates outbound actions with their
// responses through the echo field. A dropped connection is redialed with
// a configurable delay and retry bound.
package onebot
