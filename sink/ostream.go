package sink

import (
	"bufio"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/satori-video/streams/stream"
)

// Ostream is the ostream sink of spec.md §4.2: a subscriber that encodes
// every item and writes it, newline-terminated, to an io.Writer it does not
// own (the caller supplies and closes the writer). It flushes on every
// terminal signal so a buffered destination (os.Stdout wrapped in a
// bufio.Writer, a pipe) never loses its tail.
type Ostream[T any] struct {
	w      *bufio.Writer
	encode Encode[T]
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewOstream builds an Ostream sink writing to w using encode to render
// each item.
func NewOstream[T any](w io.Writer, encode Encode[T], logger *slog.Logger) *Ostream[T] {
	return &Ostream[T]{w: bufio.NewWriter(w), encode: encode, logger: logOrDefault(logger)}
}

func (s *Ostream[T]) OnSubscribe(sub stream.Subscription) { sub.Request(math.MaxInt64) }

func (s *Ostream[T]) OnNext(v T) {
	raw, err := s.encode(v)
	if err != nil {
		s.logger.Error("sink.ostream: encode failed", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, err := s.w.Write(raw); err != nil {
		s.logger.Error("sink.ostream: write failed", "error", err)
		return
	}
	if err := s.w.WriteByte('\n'); err != nil {
		s.logger.Error("sink.ostream: write failed", "error", err)
	}
}

func (s *Ostream[T]) OnError(err error) {
	s.logger.Error("sink.ostream: stream terminated with error", "error", err)
	s.flush()
}

func (s *Ostream[T]) OnComplete() { s.flush() }

func (s *Ostream[T]) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if err := s.w.Flush(); err != nil {
		s.logger.Error("sink.ostream: flush failed", "error", err)
	}
}
