package stream

// DoFinally invokes fn exactly once when the stream terminates for any
// reason: upstream completion, upstream error, or downstream cancel. fn
// should be idempotent-safe, but this operator guarantees it is invoked
// only once regardless of how many termination paths race.
func DoFinally[T any](upstream Publisher[T], fn func()) Publisher[T] {
	return PublisherFunc[T](func(down Subscriber[T]) {
		fz := newFinalizer(fn)
		upstream.Subscribe(&doFinallySubscriber[T]{down: down, fz: fz})
	})
}

type doFinallySubscriber[T any] struct {
	down Subscriber[T]
	fz   *finalizer
	up   Subscription
}

func (d *doFinallySubscriber[T]) OnSubscribe(s Subscription) {
	d.up = s
	d.down.OnSubscribe(&doFinallySubscription[T]{up: s, fz: d.fz})
}

func (d *doFinallySubscriber[T]) OnNext(v T) { d.down.OnNext(v) }

func (d *doFinallySubscriber[T]) OnError(err error) {
	d.fz.run()
	d.down.OnError(err)
}

func (d *doFinallySubscriber[T]) OnComplete() {
	d.fz.run()
	d.down.OnComplete()
}

type doFinallySubscription[T any] struct {
	up Subscription
	fz *finalizer
}

func (s *doFinallySubscription[T]) Request(n int64) { s.up.Request(n) }

func (s *doFinallySubscription[T]) Cancel() {
	s.fz.run()
	s.up.Cancel()
}
