// Package sink implements the terminal subscriber kinds of spec.md §4.2
// (ostream, file, pubsub) plus two enrichment sinks carried over from the
// rest of the retrieval pack (s3, websocket). Every sink shares the same
// shape: on each OnNext it serializes the payload and writes it to its
// destination, and it flushes/closes that destination exactly once on any
// terminal signal (spec.md §4.2, §7 "Sinks on receiving an error log and
// tear down").
package sink

import "log/slog"

// Encode renders a payload as bytes for a destination that only accepts
// byte streams (a file, a pub/sub channel, a websocket frame). Each sink
// constructor takes one of these so the same sink shape serves both the
// packet.Network and bot.Message payload types spec.md's pipeline (§4.5)
// routes to sinks.
type Encode[T any] func(T) ([]byte, error)

// logOrDefault mirrors the teacher's nil-logger-defaults-to-slog.Default
// convention (transport/nats.Connect, transport/ws.NewHub).
func logOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
