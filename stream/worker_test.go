package stream_test

import (
	"errors"
	"testing"
	"time"

	"github.com/satori-video/streams/stream"
)

func TestWorkerPreservesOrderDespiteVaryingLatency(t *testing.T) {
	delays := map[int]time.Duration{
		0: 5 * time.Millisecond,
		1: 1 * time.Millisecond,
		2: 3 * time.Millisecond,
		3: 0,
	}
	got, err := collect(t, stream.Worker(stream.Of(0, 1, 2, 3), 4, func(v int) (int, error) {
		time.Sleep(delays[v])
		return v * 10, nil
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 10, 20, 30}
	if !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWorkerPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := collect(t, stream.Worker(stream.Of(1, 2, 3), 2, func(v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
