package stream

import (
	"os"
	"os/signal"
	"sync"
)

// SignalSource notifies on delivery of any of a set of OS signals. The
// production implementation wraps os/signal.Notify; tests substitute a fake
// that can be triggered manually (see FakeSignalSource in fakes.go).
type SignalSource interface {
	// Notify arranges for ch to receive a value whenever one of sig fires,
	// and returns a function that stops the notification.
	Notify(ch chan<- os.Signal, sig ...os.Signal) (stop func())
}

// OSSignalSource is the production SignalSource backed by os/signal.
type OSSignalSource struct{}

func (OSSignalSource) Notify(ch chan<- os.Signal, sig ...os.Signal) func() {
	signal.Notify(ch, sig...)
	return func() { signal.Stop(ch) }
}

// SignalBreak completes the stream the first time src delivers one of sig,
// instead of erroring: a signal is a normal way for a long-running pipeline
// to be asked to stop, not a failure (spec.md §7). Items already in flight
// are still delivered; only generation of new items is cut off once the
// signal lands by cancelling upstream and then completing downstream.
func SignalBreak[T any](upstream Publisher[T], src SignalSource, sig ...os.Signal) Publisher[T] {
	return PublisherFunc[T](func(down Subscriber[T]) {
		sb := &signalBreakState[T]{down: down, done: make(chan struct{})}
		ch := make(chan os.Signal, 1)
		sb.stop = src.Notify(ch, sig...)
		go sb.watch(ch)
		upstream.Subscribe(&signalBreakSubscriber[T]{sb: sb})
	})
}

type signalBreakState[T any] struct {
	mu         sync.Mutex
	down       Subscriber[T]
	up         Subscription
	stop       func()
	done       chan struct{}
	terminated bool
}

// watch blocks until either a configured signal arrives or the stream
// terminates some other way (upstream completion/error, downstream cancel);
// without the done case, this goroutine would leak on every termination path
// that isn't a signal.
func (sb *signalBreakState[T]) watch(ch chan os.Signal) {
	select {
	case <-ch:
		sb.terminate(func() {
			if sb.up != nil {
				sb.up.Cancel()
			}
			sb.down.OnComplete()
		})
	case <-sb.done:
	}
}

func (sb *signalBreakState[T]) terminate(fn func()) {
	sb.mu.Lock()
	if sb.terminated {
		sb.mu.Unlock()
		return
	}
	sb.terminated = true
	sb.mu.Unlock()
	sb.stop()
	close(sb.done)
	fn()
}

type signalBreakSubscriber[T any] struct{ sb *signalBreakState[T] }

func (s *signalBreakSubscriber[T]) OnSubscribe(sub Subscription) {
	s.sb.mu.Lock()
	s.sb.up = sub
	s.sb.mu.Unlock()
	s.sb.down.OnSubscribe(&signalBreakSubscription[T]{sb: s.sb})
}

func (s *signalBreakSubscriber[T]) OnNext(v T) { s.sb.down.OnNext(v) }

func (s *signalBreakSubscriber[T]) OnError(err error) {
	s.sb.terminate(func() { s.sb.down.OnError(err) })
}

func (s *signalBreakSubscriber[T]) OnComplete() {
	s.sb.terminate(func() { s.sb.down.OnComplete() })
}

type signalBreakSubscription[T any] struct{ sb *signalBreakState[T] }

func (s *signalBreakSubscription[T]) Request(n int64) {
	s.sb.mu.Lock()
	up := s.sb.up
	s.sb.mu.Unlock()
	if up != nil {
		up.Request(n)
	}
}

func (s *signalBreakSubscription[T]) Cancel() {
	s.sb.terminate(func() {
		if s.sb.up != nil {
			s.sb.up.Cancel()
		}
	})
}
