package sink

import (
	"log/slog"
	"math"

	"github.com/satori-video/streams/metric"
	"github.com/satori-video/streams/stream"
)

// Publisher is the transport-agnostic collaborator a pubsub sink publishes
// encoded payloads to. transport/nats.Client implements this.
type Publisher interface {
	Publish(channel string, raw []byte) error
}

// PubSub is the pubsub sink of spec.md §4.2: it encodes each item and
// publishes it to channel, fire-and-forget. spec.md §7 is explicit that
// transport-publish failures are "logged but not injected back into the
// stream" for realtime sinks, so a publish error here never calls
// OnError/cancels upstream; it is simply logged and the sink keeps going.
type PubSub[T any] struct {
	pub     Publisher
	channel string
	encode  Encode[T]
	logger  *slog.Logger
	metrics *metric.Registry
}

// NewPubSub builds a PubSub sink publishing encoded items to channel on pub.
// metrics may be nil; when set, a failed Publish call is counted against
// SinkPublishErrors.
func NewPubSub[T any](pub Publisher, channel string, encode Encode[T], logger *slog.Logger, metrics *metric.Registry) *PubSub[T] {
	return &PubSub[T]{pub: pub, channel: channel, encode: encode, logger: logOrDefault(logger), metrics: metrics}
}

func (s *PubSub[T]) OnSubscribe(sub stream.Subscription) { sub.Request(math.MaxInt64) }

func (s *PubSub[T]) OnNext(v T) {
	raw, err := s.encode(v)
	if err != nil {
		s.logger.Error("sink.pubsub: encode failed", "channel", s.channel, "error", err)
		return
	}
	if err := s.pub.Publish(s.channel, raw); err != nil {
		s.logger.Warn("sink.pubsub: publish failed", "channel", s.channel, "error", err)
		if s.metrics != nil {
			s.metrics.SinkPublishErrors.WithLabelValues("pubsub").Inc()
		}
	}
}

func (s *PubSub[T]) OnError(err error) {
	s.logger.Error("sink.pubsub: stream terminated with error", "channel", s.channel, "error", err)
}

func (s *PubSub[T]) OnComplete() {}
