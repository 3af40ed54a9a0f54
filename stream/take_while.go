package stream

// TakeWhile forwards items while pred holds; the first item for which pred
// is false is dropped and the stream completes without emitting it,
// cancelling upstream.
func TakeWhile[T any](upstream Publisher[T], pred func(T) bool) Publisher[T] {
	return PublisherFunc[T](func(down Subscriber[T]) {
		upstream.Subscribe(&takeWhileSubscriber[T]{down: down, pred: pred})
	})
}

type takeWhileSubscriber[T any] struct {
	down  Subscriber[T]
	pred  func(T) bool
	up    Subscription
	guard terminalGuard
}

func (t *takeWhileSubscriber[T]) OnSubscribe(s Subscription) {
	t.up = s
	t.down.OnSubscribe(s)
}

func (t *takeWhileSubscriber[T]) OnNext(v T) {
	if !t.pred(v) {
		if t.guard.enter() {
			t.up.Cancel()
			t.down.OnComplete()
		}
		return
	}
	t.down.OnNext(v)
}

func (t *takeWhileSubscriber[T]) OnError(err error) {
	if t.guard.enter() {
		t.down.OnError(err)
	}
}

func (t *takeWhileSubscriber[T]) OnComplete() {
	if t.guard.enter() {
		t.down.OnComplete()
	}
}
