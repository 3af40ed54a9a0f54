package stream

import "sync"

// FlatMap transforms each upstream item into a derived Publisher and
// forwards its items downstream, strictly sequentially: the next upstream
// item is only requested once the current derived publisher has completed
// (spec.md §4.2). Downstream demand is satisfied by pulling one upstream
// item when there is demand and nothing derived is currently draining, then
// draining the derived publisher under that demand.
func FlatMap[T, U any](upstream Publisher[T], fn func(T) Publisher[U]) Publisher[U] {
	return PublisherFunc[U](func(down Subscriber[U]) {
		st := &flatMapState[T, U]{down: down, fn: fn}
		upstream.Subscribe(&flatMapUpstreamSubscriber[T, U]{st: st})
	})
}

type flatMapState[T, U any] struct {
	mu sync.Mutex

	down Subscriber[U]
	fn   func(T) Publisher[U]

	upstreamSub Subscription
	derivedSub  Subscription
	demand      int64

	waitingUpstream bool
	active          bool
	upstreamDone    bool
	terminated      bool
}

func (st *flatMapState[T, U]) requestDownstream(n int64) {
	if n <= 0 {
		return
	}
	st.mu.Lock()
	if st.terminated {
		st.mu.Unlock()
		return
	}
	st.demand += n

	var derived Subscription
	if st.active {
		derived = st.derivedSub
	}
	needUpstream := !st.active && !st.waitingUpstream && !st.upstreamDone
	if needUpstream {
		st.waitingUpstream = true
	}
	st.mu.Unlock()

	if derived != nil {
		derived.Request(n)
	}
	if needUpstream {
		st.upstreamSub.Request(1)
	}
}

func (st *flatMapState[T, U]) cancel() {
	st.mu.Lock()
	if st.terminated {
		st.mu.Unlock()
		return
	}
	st.terminated = true
	derived := st.derivedSub
	st.mu.Unlock()
	if derived != nil {
		derived.Cancel()
	}
	st.upstreamSub.Cancel()
}

func (st *flatMapState[T, U]) terminalOnce() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.terminated {
		return false
	}
	st.terminated = true
	return true
}

type flatMapSubscription[T, U any] struct {
	st *flatMapState[T, U]
}

func (s *flatMapSubscription[T, U]) Request(n int64) { s.st.requestDownstream(n) }
func (s *flatMapSubscription[T, U]) Cancel()         { s.st.cancel() }

type flatMapUpstreamSubscriber[T, U any] struct {
	st *flatMapState[T, U]
}

func (u *flatMapUpstreamSubscriber[T, U]) OnSubscribe(s Subscription) {
	u.st.upstreamSub = s
	u.st.down.OnSubscribe(&flatMapSubscription[T, U]{st: u.st})
}

func (u *flatMapUpstreamSubscriber[T, U]) OnNext(v T) {
	st := u.st
	st.mu.Lock()
	st.waitingUpstream = false
	st.active = true
	st.mu.Unlock()

	derived := st.fn(v)
	derived.Subscribe(&flatMapDerivedSubscriber[T, U]{st: st})
}

func (u *flatMapUpstreamSubscriber[T, U]) OnError(err error) {
	if u.st.terminalOnce() {
		u.st.down.OnError(err)
	}
}

func (u *flatMapUpstreamSubscriber[T, U]) OnComplete() {
	st := u.st
	st.mu.Lock()
	st.upstreamDone = true
	active := st.active
	st.mu.Unlock()
	if !active {
		if st.terminalOnce() {
			st.down.OnComplete()
		}
	}
}

type flatMapDerivedSubscriber[T, U any] struct {
	st *flatMapState[T, U]
}

func (d *flatMapDerivedSubscriber[T, U]) OnSubscribe(s Subscription) {
	d.st.mu.Lock()
	d.st.derivedSub = s
	n := d.st.demand
	d.st.mu.Unlock()
	if n > 0 {
		s.Request(n)
	}
}

func (d *flatMapDerivedSubscriber[T, U]) OnNext(v U) {
	d.st.mu.Lock()
	d.st.demand--
	d.st.mu.Unlock()
	d.st.down.OnNext(v)
}

func (d *flatMapDerivedSubscriber[T, U]) OnError(err error) {
	if d.st.terminalOnce() {
		d.st.down.OnError(err)
	}
}

func (d *flatMapDerivedSubscriber[T, U]) OnComplete() {
	st := d.st
	st.mu.Lock()
	st.active = false
	st.derivedSub = nil
	needUpstream := st.demand > 0 && !st.upstreamDone && !st.waitingUpstream
	if needUpstream {
		st.waitingUpstream = true
	}
	upstreamDone := st.upstreamDone
	st.mu.Unlock()

	if needUpstream {
		st.upstreamSub.Request(1)
		return
	}
	if upstreamDone {
		if st.terminalOnce() {
			st.down.OnComplete()
		}
	}
}
