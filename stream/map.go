package stream

// Map transforms each upstream item with fn, forwarding demand 1:1. If fn
// returns an error, the stream emits OnError and cancels upstream.
func Map[T, U any](upstream Publisher[T], fn func(T) (U, error)) Publisher[U] {
	return PublisherFunc[U](func(down Subscriber[U]) {
		upstream.Subscribe(&mapSubscriber[T, U]{down: down, fn: fn})
	})
}

type mapSubscriber[T, U any] struct {
	down  Subscriber[U]
	fn    func(T) (U, error)
	upSub Subscription
	guard terminalGuard
}

func (m *mapSubscriber[T, U]) OnSubscribe(s Subscription) {
	m.upSub = s
	m.down.OnSubscribe(s)
}

func (m *mapSubscriber[T, U]) OnNext(v T) {
	out, err := m.fn(v)
	if err != nil {
		if m.guard.enter() {
			m.upSub.Cancel()
			m.down.OnError(err)
		}
		return
	}
	m.down.OnNext(out)
}

func (m *mapSubscriber[T, U]) OnError(err error) {
	if m.guard.enter() {
		m.down.OnError(err)
	}
}

func (m *mapSubscriber[T, U]) OnComplete() {
	if m.guard.enter() {
		m.down.OnComplete()
	}
}
