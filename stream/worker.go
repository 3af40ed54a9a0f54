package stream

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Worker applies fn to upstream items across a pool of concurrency
// goroutines, but preserves upstream order downstream: item N is never
// delivered before item N-1 even though it may finish processing first.
// This is the threaded-worker operator of spec.md §4.2, handing CPU-bound
// per-frame work (e.g. decode) off a single dispatch goroutine while keeping
// the ordering guarantee the rest of the operator library assumes.
//
// If fn returns an error for any item, that error is forwarded downstream
// via OnError and no further items are processed; in-flight goroutines are
// allowed to finish (their results are discarded) before OnError fires, so
// the errgroup is always drained before its Wait returns.
func Worker[T, U any](upstream Publisher[T], concurrency int, fn func(T) (U, error)) Publisher[U] {
	if concurrency < 1 {
		concurrency = 1
	}
	return PublisherFunc[U](func(down Subscriber[U]) {
		w := &workerState[T, U]{
			down:        down,
			fn:          fn,
			concurrency: concurrency,
			pending:     make(map[int64]workerResult[U]),
		}
		down.OnSubscribe(&workerSubscription[T, U]{w: w})
		upstream.Subscribe(&workerUpstreamSubscriber[T, U]{w: w})
	})
}

type workerResult[U any] struct {
	ready bool
	val   U
	err   error
}

type workerState[T, U any] struct {
	mu sync.Mutex

	down        Subscriber[U]
	fn          func(T) (U, error)
	concurrency int

	upSub Subscription
	eg    errgroup.Group

	nextIn   int64 // sequence number assigned to the next upstream item
	nextOut  int64 // sequence number the downstream is waiting on
	inFlight int
	pending  map[int64]workerResult[U]

	demand       int64
	upstreamDone bool
	terminated   bool
}

func (w *workerState[T, U]) requestDownstream(n int64) {
	if n <= 0 {
		return
	}
	w.mu.Lock()
	if w.terminated {
		w.mu.Unlock()
		return
	}
	w.demand += n
	w.mu.Unlock()
	w.drainReady()
	w.fillPipeline()
	w.checkUpstreamComplete()
}

func (w *workerState[T, U]) fillPipeline() {
	w.mu.Lock()
	if w.terminated {
		w.mu.Unlock()
		return
	}
	room := w.concurrency - w.inFlight
	up := w.upSub
	done := w.upstreamDone
	w.mu.Unlock()
	if room > 0 && !done && up != nil {
		up.Request(int64(room))
	}
}

// drainReady emits consecutive completed results in sequence order while
// there is downstream demand.
func (w *workerState[T, U]) drainReady() {
	for {
		w.mu.Lock()
		if w.terminated {
			w.mu.Unlock()
			return
		}
		if w.demand <= 0 {
			w.mu.Unlock()
			return
		}
		res, ok := w.pending[w.nextOut]
		if !ok || !res.ready {
			w.mu.Unlock()
			return
		}
		delete(w.pending, w.nextOut)
		w.nextOut++
		w.demand--
		w.mu.Unlock()

		if res.err != nil {
			w.fail(res.err)
			return
		}
		w.down.OnNext(res.val)
	}
}

func (w *workerState[T, U]) dispatch(v T) {
	w.mu.Lock()
	seq := w.nextIn
	w.nextIn++
	w.inFlight++
	w.mu.Unlock()

	w.eg.Go(func() error {
		out, err := w.fn(v)
		w.mu.Lock()
		w.pending[seq] = workerResult[U]{ready: true, val: out, err: err}
		w.inFlight--
		w.mu.Unlock()
		w.drainReady()
		w.fillPipeline()
		w.checkUpstreamComplete()
		return nil
	})
}

func (w *workerState[T, U]) fail(err error) {
	w.mu.Lock()
	if w.terminated {
		w.mu.Unlock()
		return
	}
	w.terminated = true
	up := w.upSub
	w.mu.Unlock()
	if up != nil {
		up.Cancel()
	}
	w.down.OnError(err)
}

func (w *workerState[T, U]) complete() {
	w.mu.Lock()
	if w.terminated {
		w.mu.Unlock()
		return
	}
	w.terminated = true
	w.mu.Unlock()
	w.down.OnComplete()
}

func (w *workerState[T, U]) checkUpstreamComplete() {
	w.mu.Lock()
	done := w.upstreamDone && w.inFlight == 0 && len(w.pending) == 0
	w.mu.Unlock()
	if done {
		w.complete()
	}
}

func (w *workerState[T, U]) cancel() {
	w.mu.Lock()
	if w.terminated {
		w.mu.Unlock()
		return
	}
	w.terminated = true
	up := w.upSub
	w.mu.Unlock()
	if up != nil {
		up.Cancel()
	}
}

type workerSubscription[T, U any] struct{ w *workerState[T, U] }

func (s *workerSubscription[T, U]) Request(n int64) { s.w.requestDownstream(n) }
func (s *workerSubscription[T, U]) Cancel()         { s.w.cancel() }

type workerUpstreamSubscriber[T, U any] struct{ w *workerState[T, U] }

func (u *workerUpstreamSubscriber[T, U]) OnSubscribe(s Subscription) {
	u.w.upSub = s
	u.w.fillPipeline()
}

func (u *workerUpstreamSubscriber[T, U]) OnNext(v T) {
	u.w.dispatch(v)
}

func (u *workerUpstreamSubscriber[T, U]) OnError(err error) {
	u.w.fail(err)
}

func (u *workerUpstreamSubscriber[T, U]) OnComplete() {
	u.w.mu.Lock()
	u.w.upstreamDone = true
	u.w.mu.Unlock()
	u.w.checkUpstreamComplete()
}
