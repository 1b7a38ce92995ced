// Package transport provides the pub/sub socket used by zpipe.
//
// Every logical message is two frames: a topic frame marked "more
// follows" and a payload frame. Socket hides which ZeroMQ binding
// carries them:
//
//   - libzmq: github.com/pebbe/zmq4 (cgo, requires -tags libzmq)
//   - zmtp:   github.com/go-zeromq/zmq4 (pure Go, always available)
//
// Backends register themselves in init; New selects one by name.
package transport
