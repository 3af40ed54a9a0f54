package stream

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Overflow selects what happens when upstream produces items faster than
// Interval can release them and the internal buffer is full. spec.md §9
// leaves this as an open question ("implementers should either add bounded
// buffering with drop-oldest/drop-newest ... or apply backpressure"); this
// implementation resolves it by making the policy an explicit option.
type Overflow int

const (
	// OverflowBlock applies backpressure: upstream is not asked for more
	// until the buffer has room. This is the closest match to "no items
	// queue unboundedly" and is the default.
	OverflowBlock Overflow = iota
	// OverflowDropOldest discards the oldest buffered item to make room for
	// a new one, keeping the buffer fresh at the cost of completeness.
	OverflowDropOldest
	// OverflowDropNewest discards the incoming item, keeping the buffer's
	// existing contents.
	OverflowDropNewest
)

func (o Overflow) String() string {
	switch o {
	case OverflowDropOldest:
		return "drop_oldest"
	case OverflowDropNewest:
		return "drop_newest"
	default:
		return "block"
	}
}

// IntervalOptions configures Interval.
type IntervalOptions struct {
	// BufferSize bounds the number of items held between ticks. Defaults to
	// 1 if zero.
	BufferSize int
	// Overflow selects the policy applied when the buffer is full.
	Overflow Overflow
	// OnDrop, if set, is called synchronously whenever push drops an item
	// under Overflow's policy, so a caller can record it (e.g. a metrics
	// counter) without this package depending on any metrics library.
	OnDrop func(policy Overflow)
}

// Interval forwards one upstream item per tick of period, driven by a
// rate.Limiter (golang.org/x/time/rate). If upstream has nothing ready at a
// tick, the tick is simply skipped.
func Interval[T any](upstream Publisher[T], period time.Duration, opts IntervalOptions) Publisher[T] {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1
	}
	return PublisherFunc[T](func(down Subscriber[T]) {
		ctx, cancel := context.WithCancel(context.Background())
		iv := &intervalState[T]{
			down:    down,
			limiter: rate.NewLimiter(rate.Every(period), 1),
			buf:     make([]T, 0, opts.BufferSize),
			cap:     opts.BufferSize,
			policy:  opts.Overflow,
			onDrop:  opts.OnDrop,
			ctx:     ctx,
			cancel:  cancel,
		}
		down.OnSubscribe(&intervalSubscription[T]{iv: iv})
		upstream.Subscribe(&intervalUpstreamSubscriber[T]{iv: iv})
	})
}

type intervalState[T any] struct {
	mu      sync.Mutex
	down    Subscriber[T]
	limiter *rate.Limiter
	buf     []T
	cap     int
	policy  Overflow
	onDrop  func(policy Overflow)

	upSub      Subscription
	demand     int64
	terminated bool

	ctx    context.Context
	cancel context.CancelFunc
}

func (iv *intervalState[T]) request(n int64) {
	iv.mu.Lock()
	if iv.terminated {
		iv.mu.Unlock()
		return
	}
	iv.demand += n
	iv.mu.Unlock()
	go iv.pump()
	iv.refillUpstream()
}

func (iv *intervalState[T]) refillUpstream() {
	iv.mu.Lock()
	room := iv.cap - len(iv.buf)
	up := iv.upSub
	iv.mu.Unlock()
	if room > 0 && up != nil {
		up.Request(int64(room))
	}
}

// pump blocks on the rate limiter and releases one buffered item per tick
// until demand or buffered items run out.
func (iv *intervalState[T]) pump() {
	for {
		iv.mu.Lock()
		if iv.terminated || iv.demand <= 0 || len(iv.buf) == 0 {
			iv.mu.Unlock()
			return
		}
		iv.mu.Unlock()

		if err := iv.limiter.Wait(iv.ctx); err != nil {
			return
		}

		iv.mu.Lock()
		if iv.terminated || len(iv.buf) == 0 || iv.demand <= 0 {
			iv.mu.Unlock()
			continue
		}
		v := iv.buf[0]
		iv.buf = iv.buf[1:]
		iv.demand--
		iv.mu.Unlock()

		iv.down.OnNext(v)
		iv.refillUpstream()
	}
}

func (iv *intervalState[T]) push(v T) {
	iv.mu.Lock()
	if iv.terminated {
		iv.mu.Unlock()
		return
	}
	if len(iv.buf) >= iv.cap {
		switch iv.policy {
		case OverflowDropOldest:
			iv.buf = append(iv.buf[1:], v)
		case OverflowDropNewest:
			// leave buf untouched, drop v
		default: // OverflowBlock: upstream is only re-requested when there
			// is room, so this branch should not normally be reached; drop
			// defensively rather than grow unboundedly.
		}
		onDrop := iv.onDrop
		policy := iv.policy
		iv.mu.Unlock()
		if onDrop != nil {
			onDrop(policy)
		}
		return
	}
	iv.buf = append(iv.buf, v)
	iv.mu.Unlock()
	go iv.pump()
}

func (iv *intervalState[T]) terminate(fn func()) {
	iv.mu.Lock()
	if iv.terminated {
		iv.mu.Unlock()
		return
	}
	iv.terminated = true
	iv.mu.Unlock()
	iv.cancel()
	fn()
}

func (iv *intervalState[T]) cancelUpstream() {
	iv.terminate(func() {
		if iv.upSub != nil {
			iv.upSub.Cancel()
		}
	})
}

type intervalSubscription[T any] struct{ iv *intervalState[T] }

func (s *intervalSubscription[T]) Request(n int64) { s.iv.request(n) }
func (s *intervalSubscription[T]) Cancel()         { s.iv.cancelUpstream() }

type intervalUpstreamSubscriber[T any] struct{ iv *intervalState[T] }

func (u *intervalUpstreamSubscriber[T]) OnSubscribe(s Subscription) {
	u.iv.upSub = s
}

func (u *intervalUpstreamSubscriber[T]) OnNext(v T) { u.iv.push(v) }

func (u *intervalUpstreamSubscriber[T]) OnError(err error) {
	u.iv.terminate(func() { u.iv.down.OnError(err) })
}

func (u *intervalUpstreamSubscriber[T]) OnComplete() {
	u.iv.terminate(func() { u.iv.down.OnComplete() })
}
