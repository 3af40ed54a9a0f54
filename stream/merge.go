package stream

import "sync"

// Merge concatenates publishers sequentially: it subscribes to the first,
// and only subscribes to the next once the current one completes. This is
// NOT interleaving — spec.md §4.2 is explicit that this merge is sequential
// concatenation, not a fan-in.
func Merge[T any](publishers ...Publisher[T]) Publisher[T] {
	return PublisherFunc[T](func(down Subscriber[T]) {
		st := &mergeState[T]{down: down, pubs: publishers}
		down.OnSubscribe(&mergeSubscription[T]{st: st})
		st.advance()
	})
}

type mergeState[T any] struct {
	mu sync.Mutex

	down Subscriber[T]
	pubs []Publisher[T]
	idx  int

	current    Subscription
	demand     int64
	terminated bool
}

// advance subscribes to the next publisher in sequence, or completes
// downstream if the sequence is exhausted.
func (st *mergeState[T]) advance() {
	st.mu.Lock()
	if st.terminated {
		st.mu.Unlock()
		return
	}
	if st.idx >= len(st.pubs) {
		st.terminated = true
		st.mu.Unlock()
		st.down.OnComplete()
		return
	}
	p := st.pubs[st.idx]
	st.idx++
	st.mu.Unlock()
	p.Subscribe(&mergeChildSubscriber[T]{st: st})
}

func (st *mergeState[T]) requestDownstream(n int64) {
	if n <= 0 {
		return
	}
	st.mu.Lock()
	if st.terminated {
		st.mu.Unlock()
		return
	}
	st.demand += n
	cur := st.current
	st.mu.Unlock()
	if cur != nil {
		cur.Request(n)
	}
}

func (st *mergeState[T]) cancel() {
	st.mu.Lock()
	if st.terminated {
		st.mu.Unlock()
		return
	}
	st.terminated = true
	cur := st.current
	st.mu.Unlock()
	if cur != nil {
		cur.Cancel()
	}
}

type mergeSubscription[T any] struct{ st *mergeState[T] }

func (s *mergeSubscription[T]) Request(n int64) { s.st.requestDownstream(n) }
func (s *mergeSubscription[T]) Cancel()         { s.st.cancel() }

type mergeChildSubscriber[T any] struct{ st *mergeState[T] }

func (c *mergeChildSubscriber[T]) OnSubscribe(s Subscription) {
	c.st.mu.Lock()
	c.st.current = s
	n := c.st.demand
	c.st.mu.Unlock()
	if n > 0 {
		s.Request(n)
	}
}

func (c *mergeChildSubscriber[T]) OnNext(v T) {
	c.st.mu.Lock()
	c.st.demand--
	c.st.mu.Unlock()
	c.st.down.OnNext(v)
}

func (c *mergeChildSubscriber[T]) OnError(err error) {
	c.st.mu.Lock()
	if c.st.terminated {
		c.st.mu.Unlock()
		return
	}
	c.st.terminated = true
	c.st.mu.Unlock()
	c.st.down.OnError(err)
}

func (c *mergeChildSubscriber[T]) OnComplete() {
	c.st.mu.Lock()
	c.st.current = nil
	c.st.mu.Unlock()
	c.st.advance()
}
