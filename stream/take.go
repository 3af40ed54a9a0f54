package stream

import "sync"

// Take forwards only the first n items from upstream, then completes
// downstream and cancels upstream. Take(n) >> Take(m) == Take(min(n, m)):
// each layer independently caps the count it forwards.
func Take[T any](upstream Publisher[T], n int64) Publisher[T] {
	return PublisherFunc[T](func(down Subscriber[T]) {
		upstream.Subscribe(&takeSubscriber[T]{down: down, remaining: n})
	})
}

// Head forwards only the first item from upstream. Head() == Take(1).
func Head[T any](upstream Publisher[T]) Publisher[T] {
	return Take(upstream, 1)
}

type takeSubscription[T any] struct {
	mu    sync.Mutex
	up    Subscription
	taken int64
	limit int64
	done  bool
}

func (t *takeSubscription[T]) Request(requested int64) {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	remaining := t.limit - t.taken
	t.mu.Unlock()
	if remaining <= 0 {
		return
	}
	if requested > remaining {
		requested = remaining
	}
	t.up.Request(requested)
}

func (t *takeSubscription[T]) Cancel() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	t.mu.Unlock()
	t.up.Cancel()
}

type takeSubscriber[T any] struct {
	down      Subscriber[T]
	remaining int64
	sub       *takeSubscription[T]
	guard     terminalGuard
}

func (t *takeSubscriber[T]) OnSubscribe(s Subscription) {
	if t.remaining <= 0 {
		s.Cancel()
		if t.guard.enter() {
			t.down.OnComplete()
		}
		return
	}
	t.sub = &takeSubscription[T]{up: s, limit: t.remaining}
	t.down.OnSubscribe(t.sub)
}

func (t *takeSubscriber[T]) OnNext(v T) {
	t.sub.mu.Lock()
	if t.sub.done {
		t.sub.mu.Unlock()
		return
	}
	t.sub.taken++
	reachedLimit := t.sub.taken >= t.sub.limit
	t.sub.mu.Unlock()

	t.down.OnNext(v)

	if reachedLimit && t.guard.enter() {
		t.sub.Cancel()
		t.down.OnComplete()
	}
}

func (t *takeSubscriber[T]) OnError(err error) {
	if t.guard.enter() {
		t.down.OnError(err)
	}
}

func (t *takeSubscriber[T]) OnComplete() {
	if t.guard.enter() {
		t.down.OnComplete()
	}
}
