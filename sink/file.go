package sink

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/satori-video/streams/metric"
	"github.com/satori-video/streams/stream"
)

// File is the file sink of spec.md §4.2: it owns the destination file
// handle (opened for append, created if missing) and writes one
// newline-terminated encoded record per item, buffering writes in memory
// and flushing every FlushInterval or on any terminal signal, following the
// buffer-then-flush-on-a-timer shape of
// C360Studio-semstreams/output/file.Output, trimmed to this module's single
// in-process writer (the pipeline delivers items via stream.OnNext, not via
// a broker subscription the way the teacher's component does).
type File[T any] struct {
	f       *os.File
	encode  Encode[T]
	logger  *slog.Logger
	metrics *metric.Registry

	mu     sync.Mutex
	buf    [][]byte
	bufCap int
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

// FileOptions configures a File sink.
type FileOptions struct {
	// FlushInterval is how often the buffer is flushed to disk. Defaults to
	// one second.
	FlushInterval time.Duration
	// BufferSize bounds how many records are held before a flush is forced
	// early. Defaults to 100.
	BufferSize int
}

// NewFile opens path for append (creating it if necessary) and returns a
// File sink encoding each item with encode. metrics may be nil; when set, a
// failed write during flush is counted against SinkPublishErrors.
func NewFile[T any](path string, encode Encode[T], opts FileOptions, logger *slog.Logger, metrics *metric.Registry) (*File[T], error) {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 100
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink.file: open %s: %w", path, err)
	}
	fs := &File[T]{
		f:       f,
		encode:  encode,
		logger:  logOrDefault(logger),
		metrics: metrics,
		buf:     make([][]byte, 0, opts.BufferSize),
		bufCap:  opts.BufferSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go fs.flushLoop(opts.FlushInterval)
	return fs, nil
}

func (fs *File[T]) OnSubscribe(sub stream.Subscription) { sub.Request(math.MaxInt64) }

func (fs *File[T]) OnNext(v T) {
	raw, err := fs.encode(v)
	if err != nil {
		fs.logger.Error("sink.file: encode failed", "error", err)
		return
	}
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return
	}
	fs.buf = append(fs.buf, append(raw, '\n'))
	shouldFlush := len(fs.buf) >= fs.bufCap
	fs.mu.Unlock()
	if shouldFlush {
		fs.flush()
	}
}

func (fs *File[T]) OnError(err error) {
	fs.logger.Error("sink.file: stream terminated with error", "error", err)
	_ = fs.Close()
}

func (fs *File[T]) OnComplete() { _ = fs.Close() }

func (fs *File[T]) flushLoop(interval time.Duration) {
	defer close(fs.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-fs.stop:
			return
		case <-t.C:
			fs.flush()
		}
	}
}

func (fs *File[T]) flush() {
	fs.mu.Lock()
	if len(fs.buf) == 0 {
		fs.mu.Unlock()
		return
	}
	pending := fs.buf
	fs.buf = make([][]byte, 0, fs.bufCap)
	fs.mu.Unlock()

	for _, rec := range pending {
		if _, err := fs.f.Write(rec); err != nil {
			fs.logger.Error("sink.file: write failed", "error", err)
			if fs.metrics != nil {
				fs.metrics.SinkPublishErrors.WithLabelValues("file").Inc()
			}
		}
	}
}

// Close flushes any buffered records and closes the destination file. It is
// idempotent; the second call is a no-op.
func (fs *File[T]) Close() error {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return nil
	}
	fs.closed = true
	fs.mu.Unlock()

	close(fs.stop)
	<-fs.done
	fs.flush()
	return fs.f.Close()
}
