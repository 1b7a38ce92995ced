// Package publish implements the flow-controlled publisher loop.
//
// A Publisher first replays a record log (text or binary) and then
// forwards interactive input lines. Replay is paced against the socket
// high-water-mark: after every HWM sends the loop pauses for a cool-down
// before continuing. Interactive input is not paced.
package publish
