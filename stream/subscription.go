// Package stream implements a generic, demand-driven publisher/subscriber
// runtime in the spirit of the Reactive Streams contract: non-blocking,
// backpressure-aware, error-terminal. See spec.md §4.1-§4.2 for the
// contract this package realizes, and doc.go for a tour of the operator
// library.
package stream

// Subscription is the capability a Publisher hands to a Subscriber on
// subscribe. It is single-owner: only the downstream Subscriber that
// received it may call Request or Cancel.
type Subscription interface {
	// Request asks the upstream for up to n more items. n must be positive;
	// implementations may treat a non-positive n as a no-op.
	Request(n int64)

	// Cancel terminally unsubscribes. After Cancel, the Subscriber that
	// owned this Subscription must not be invoked again.
	Cancel()
}

// Observer is the callback surface a stream delivers values and terminal
// signals through. After OnError or OnComplete, no further calls are legal.
// OnNext is only invoked while there is outstanding demand.
type Observer[T any] interface {
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Subscriber is an Observer that additionally receives its Subscription.
// A Subscriber is kept alive by its upstream until it receives a terminal
// signal or cancels.
type Subscriber[T any] interface {
	Observer[T]
	OnSubscribe(s Subscription)
}

// Publisher starts a new flow on Subscribe by delivering a Subscription to
// the given Subscriber. A Publisher is single-shot: Subscribe should be
// called at most once per instance, and implementations are free to assume
// this (operator chains consume their upstream Publisher).
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// PublisherFunc adapts a plain function into a Publisher.
type PublisherFunc[T any] func(s Subscriber[T])

// Subscribe implements Publisher.
func (f PublisherFunc[T]) Subscribe(s Subscriber[T]) { f(s) }
