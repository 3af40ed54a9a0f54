package replaylog_test

import (
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/satori-video/streams/transport/replaylog"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestLogAppendAndReplay(t *testing.T) {
	client := newTestClient(t)
	log := replaylog.New(client, "cam1.replay")

	if err := log.Append([]byte("one")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.Append([]byte("two")); err != nil {
		t.Fatalf("append: %v", err)
	}

	v1, err := log.Next()
	if err != nil || string(v1) != "one" {
		t.Fatalf("next 1: %q, %v", v1, err)
	}
	v2, err := log.Next()
	if err != nil || string(v2) != "two" {
		t.Fatalf("next 2: %q, %v", v2, err)
	}
	if _, err := log.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}

	if err := log.SeekToStart(); err != nil {
		t.Fatalf("seek: %v", err)
	}
	v1again, err := log.Next()
	if err != nil || string(v1again) != "one" {
		t.Fatalf("after seek: %q, %v", v1again, err)
	}
}
