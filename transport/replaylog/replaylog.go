// Package replaylog implements source.ReplayLog over a Redis list, so a
// recorded network-packet replay log can be shared across processes
// instead of living only on one machine's disk.
package replaylog

import (
	"context"
	"errors"
	"io"

	"github.com/redis/go-redis/v9"
)

// Log replays the Redis list named key in insertion order via RPUSH/LRANGE.
type Log struct {
	client *redis.Client
	key    string
	ctx    context.Context
	pos    int64
}

// New returns a Log reading from key on client.
func New(client *redis.Client, key string) *Log {
	return &Log{client: client, key: key, ctx: context.Background()}
}

// Append records a document for later replay.
func (l *Log) Append(raw []byte) error {
	return l.client.RPush(l.ctx, l.key, raw).Err()
}

func (l *Log) Next() ([]byte, error) {
	vals, err := l.client.LRange(l.ctx, l.key, l.pos, l.pos).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, io.EOF
	}
	l.pos++
	return []byte(vals[0]), nil
}

func (l *Log) SeekToStart() error {
	l.pos = 0
	return nil
}

// Close is a no-op: the underlying *redis.Client is owned by the caller and
// may be shared across multiple Logs.
func (l *Log) Close() error { return nil }

// ErrNotFound is returned by callers that look up a replay log key that was
// never recorded.
var ErrNotFound = errors.New("replaylog: key not found")
