// Package subscribe implements the frame decoder and printer.
//
// Each received message must be exactly two frames, topic then
// payload. Both are rendered with Display and printed as
//
//	[<n>] <topic> => <payload>
//
// to a file, or with the fixed marker [*] in place of the counter on
// the console. File output goes through a FlushWriter that flushes on a
// fixed interval from a background goroutine.
package subscribe
