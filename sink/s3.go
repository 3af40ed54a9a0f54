package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/satori-video/streams/metric"
	"github.com/satori-video/streams/stream"
)

// S3Options configures an S3 sink, grounded on
// pithecene-io-quarry/quarry/lode.S3Config: bucket plus the
// endpoint/path-style overrides needed for S3-compatible providers.
type S3Options struct {
	Bucket       string
	Prefix       string
	UsePathStyle bool
	// BatchSize is how many encoded records are concatenated (newline
	// separated) into one uploaded object. Defaults to 100.
	BatchSize int
}

// S3 is an object-store sink: it batches encoded records and uploads each
// batch as one object under Prefix, keyed by upload sequence and wall-clock
// time, to an S3-compatible bucket. It exists to archive analysis/debug
// output the way a long-running bot run would want durable history beyond
// a single host's disk (SPEC_FULL.md §6).
type S3[T any] struct {
	client  *s3.Client
	opts    S3Options
	encode  Encode[T]
	clock   stream.Clock
	logger  *slog.Logger
	metrics *metric.Registry

	mu  sync.Mutex
	buf bytes.Buffer
	n   int
	seq int64
}

// NewS3 builds an S3 sink uploading batches of encoded items through client.
// metrics may be nil; when set, a failed upload is counted against
// SinkPublishErrors.
func NewS3[T any](client *s3.Client, opts S3Options, encode Encode[T], clock stream.Clock, logger *slog.Logger, metrics *metric.Registry) *S3[T] {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if clock == nil {
		clock = stream.SystemClock{}
	}
	return &S3[T]{client: client, opts: opts, encode: encode, clock: clock, logger: logOrDefault(logger), metrics: metrics}
}

func (s *S3[T]) OnSubscribe(sub stream.Subscription) { sub.Request(math.MaxInt64) }

func (s *S3[T]) OnNext(v T) {
	raw, err := s.encode(v)
	if err != nil {
		s.logger.Error("sink.s3: encode failed", "error", err)
		return
	}
	s.mu.Lock()
	s.buf.Write(raw)
	s.buf.WriteByte('\n')
	s.n++
	shouldUpload := s.n >= s.opts.BatchSize
	s.mu.Unlock()
	if shouldUpload {
		s.uploadBatch()
	}
}

func (s *S3[T]) OnError(err error) {
	s.logger.Error("sink.s3: stream terminated with error", "error", err)
	s.uploadBatch()
}

func (s *S3[T]) OnComplete() { s.uploadBatch() }

func (s *S3[T]) uploadBatch() {
	s.mu.Lock()
	if s.n == 0 {
		s.mu.Unlock()
		return
	}
	body := append([]byte(nil), s.buf.Bytes()...)
	s.buf.Reset()
	s.n = 0
	seq := s.seq
	s.seq++
	s.mu.Unlock()

	key := fmt.Sprintf("%s%d-%d.jsonl", s.opts.Prefix, s.clock.Now().UnixNano(), seq)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.opts.Bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		s.logger.Error("sink.s3: upload failed", "bucket", s.opts.Bucket, "key", key, "error", err)
		if s.metrics != nil {
			s.metrics.SinkPublishErrors.WithLabelValues("s3").Inc()
		}
	}
}
