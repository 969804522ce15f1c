// Package display defines the contract between the refresh scheduler and
// whatever draws the digits.
//
// A Sink receives one SetDigit call per digit position on every tick, in
// position order 0..5 (hour tens first, second ones last). Sinks that prefer
// to redraw a whole frame at once can also implement Flusher; Flush is
// called after position 5 has been pushed.
//
// Sinks are responsible for moving the update onto whichever goroutine owns
// their rendering state. The scheduler never waits on a sink beyond the
// SetDigit/Flush call itself, so implementations must not block.
//
// Implementations in this repository:
//   - terminal.Sink: bubbletea program drawing seven-segment glyphs
//   - web.Hub: websocket fan-out to browsers
//   - Multi: forwards every call to several sinks
package display
