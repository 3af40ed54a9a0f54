package stream_test

import (
	"os"
	"testing"
	"time"

	"github.com/satori-video/streams/stream"
)

func TestSignalBreakReleasesWatcherOnNormalCompletion(t *testing.T) {
	src := &stream.FakeSignalSource{}
	brk := stream.SignalBreak(stream.Of(1, 2, 3), src, os.Interrupt)

	vs, err := collect(t, brk)
	if err != nil {
		t.Fatalf("expected completion, got error: %v", err)
	}
	if len(vs) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vs))
	}
	// no signal was ever fired; if watch's goroutine only exits on a signal,
	// it leaks here forever and the package's goleak.VerifyTestMain check
	// at the end of the run catches it.
}

func TestSignalBreakCompletesOnSignal(t *testing.T) {
	src := &stream.FakeSignalSource{}
	never := stream.Async[int, struct{}](
		func(obs stream.Observer[int]) struct{} { return struct{}{} },
		func(struct{}) {},
	)
	brk := stream.SignalBreak(never, src, os.Interrupt)

	done := make(chan error, 1)
	go func() {
		_, err := collect(t, brk)
		done <- err
	}()

	// give the watcher goroutine a moment to register before firing.
	time.Sleep(10 * time.Millisecond)
	src.Fire(os.Interrupt)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected completion, got error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for signal break to complete the stream")
	}
}
