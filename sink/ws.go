package sink

import (
	"log/slog"
	"math"

	"github.com/satori-video/streams/stream"
)

// Broadcaster is the collaborator a websocket sink fans out encoded
// payloads through. transport/ws.Hub implements this.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// WS is a debug-dashboard sink: it encodes each item and broadcasts it to
// every connected websocket client via a Broadcaster, the same
// fire-and-forget delivery policy as PubSub (spec.md §7) since a live
// dashboard has no interest in retrying a dropped frame.
type WS[T any] struct {
	hub    Broadcaster
	encode Encode[T]
	logger *slog.Logger
}

// NewWS builds a WS sink broadcasting encoded items through hub.
func NewWS[T any](hub Broadcaster, encode Encode[T], logger *slog.Logger) *WS[T] {
	return &WS[T]{hub: hub, encode: encode, logger: logOrDefault(logger)}
}

func (s *WS[T]) OnSubscribe(sub stream.Subscription) { sub.Request(math.MaxInt64) }

func (s *WS[T]) OnNext(v T) {
	raw, err := s.encode(v)
	if err != nil {
		s.logger.Error("sink.ws: encode failed", "error", err)
		return
	}
	s.hub.Broadcast(raw)
}

func (s *WS[T]) OnError(err error) {
	s.logger.Error("sink.ws: stream terminated with error", "error", err)
}

func (s *WS[T]) OnComplete() {}
