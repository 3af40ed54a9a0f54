package stream

import "math"

// Process subscribes to p with unbounded demand, invoking onNext for every
// item, and returns a Deferred that resolves when the stream terminates:
// nil error on completion, the upstream error otherwise. It is the terminal
// operation most of the scenarios in spec.md §8 run a stream through (e.g.
// "empty<int>() |> process").
func Process[T any](p Publisher[T], onNext func(T)) *Deferred[struct{}] {
	d := NewDeferred[struct{}]()
	p.Subscribe(&processSubscriber[T]{onNext: onNext, d: d})
	return d
}

type processSubscriber[T any] struct {
	onNext func(T)
	d      *Deferred[struct{}]
}

func (p *processSubscriber[T]) OnSubscribe(s Subscription) {
	s.Request(math.MaxInt64)
}

func (p *processSubscriber[T]) OnNext(v T) { p.onNext(v) }

func (p *processSubscriber[T]) OnError(err error) { p.d.resolve(struct{}{}, err) }

func (p *processSubscriber[T]) OnComplete() { p.d.resolve(struct{}{}, nil) }
