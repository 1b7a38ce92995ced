// Package domain defines the core domain models for zpipe.
//
// Domain models are pure value objects without IO dependencies:
//
//   - Message: a decoded topic/payload pair received from the wire
//   - Errors: coded error definitions shared by every layer
//
// Error codes are grouped by area: CONF (configuration), TRAN (transport),
// LOG (record-log input) and FRAME (wire framing).
package domain
