package stream

// Empty creates a stream that completes immediately without emitting.
func Empty[T any]() Publisher[T] {
	return Stateful[T, struct{}](
		func() struct{} { return struct{}{} },
		func(_ struct{}, n int, obs Observer[T]) { obs.OnComplete() },
		nil,
	)
}

// Error creates a stream that fails immediately with err.
func Error[T any](err error) Publisher[T] {
	return Stateful[T, struct{}](
		func() struct{} { return struct{}{} },
		func(_ struct{}, n int, obs Observer[T]) { obs.OnError(err) },
		nil,
	)
}

// Of creates a stream of the given values, in order.
func Of[T any](values ...T) Publisher[T] {
	return Stateful[T, *int](
		func() *int { i := 0; return &i },
		func(i *int, n int, obs Observer[T]) {
			emitted := 0
			for emitted < n && *i < len(values) {
				obs.OnNext(values[*i])
				*i++
				emitted++
			}
			if *i >= len(values) {
				obs.OnComplete()
			}
		},
		nil,
	)
}

// Range creates a stream of the half-open integer sequence [from, to).
func Range(from, to int) Publisher[int] {
	return Stateful[int, *int](
		func() *int { v := from; return &v },
		func(cur *int, n int, obs Observer[int]) {
			emitted := 0
			for emitted < n && *cur < to {
				obs.OnNext(*cur)
				*cur++
				emitted++
			}
			if *cur >= to {
				obs.OnComplete()
			}
		},
		nil,
	)
}
