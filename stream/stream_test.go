package stream_test

import (
	"errors"
	"testing"

	"go.uber.org/goleak"

	"github.com/satori-video/streams/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collect[T any](t *testing.T, p stream.Publisher[T]) ([]T, error) {
	t.Helper()
	var out []T
	d := stream.Process[T](p, func(v T) { out = append(out, v) })
	_, err := d.Wait()
	return out, err
}

func TestEmpty(t *testing.T) {
	got, err := collect[int](t, stream.Empty[int]())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no items, got %v", got)
	}
}

func TestOf(t *testing.T) {
	got, err := collect(t, stream.Of(1, 2, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3}
	if !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRange(t *testing.T) {
	got, err := collect(t, stream.Range(5, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{5, 6, 7, 8, 9}
	if !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMapComposesWithItself(t *testing.T) {
	addOne := func(v int) (int, error) { return v + 1, nil }
	double := func(v int) (int, error) { return v * 2, nil }

	composed, err1 := collect(t, stream.Map(stream.Map(stream.Range(0, 4), addOne), double))
	direct, err2 := collect(t, stream.Map(stream.Range(0, 4), func(v int) (int, error) {
		return (v + 1) * 2, nil
	}))
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if !equalSlices(composed, direct) {
		t.Fatalf("map(g, map(f, s)) != map(g.f, s): %v vs %v", composed, direct)
	}
}

func TestMapPropagatesFnError(t *testing.T) {
	boom := errors.New("boom")
	_, err := collect(t, stream.Map(stream.Of(1, 2, 3), func(v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestFlatMapOrdering(t *testing.T) {
	got, err := collect(t, stream.FlatMap(stream.Range(0, 3), func(v int) stream.Publisher[int] {
		return stream.Of(v*10, v*10+1)
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 1, 10, 11, 20, 21}
	if !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTakeDoesNotReadUnboundedGeneratorToCompletion(t *testing.T) {
	generated := 0
	huge := stream.Stateful[int, *int](
		func() *int { v := 0; return &v },
		func(cur *int, n int, obs stream.Observer[int]) {
			emitted := 0
			for emitted < n {
				generated++
				obs.OnNext(*cur)
				*cur++
				emitted++
			}
		},
		nil,
	)
	got, err := collect(t, stream.Take(huge, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 1, 2, 3}
	if !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if generated > 4 {
		t.Fatalf("generator produced %d items, want at most 4", generated)
	}
}

func TestHeadIsTakeOne(t *testing.T) {
	got, err := collect(t, stream.Head[int](stream.Range(7, 100)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalSlices(got, []int{7}) {
		t.Fatalf("got %v, want [7]", got)
	}
}

func TestTakeWhile(t *testing.T) {
	got, err := collect(t, stream.TakeWhile(stream.Range(0, 10), func(v int) bool { return v < 4 }))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalSlices(got, []int{0, 1, 2, 3}) {
		t.Fatalf("got %v", got)
	}
}

func TestMergeIsSequentialNotInterleaved(t *testing.T) {
	got, err := collect(t, stream.Merge(stream.Of(1, 2), stream.Of(3, 4), stream.Of(5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4, 5}
	if !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDoFinallyFiresOnceOnError(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	_, err := collect(t, stream.DoFinally[int](stream.Error[int](boom), func() { calls++ }))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected do_finally exactly once, got %d", calls)
	}
}

func TestDoFinallyFiresOnceOnCancelViaHead(t *testing.T) {
	calls := 0
	finalized := stream.DoFinally[int](stream.Range(0, 1000000), func() { calls++ })
	got, err := collect(t, stream.Head[int](finalized))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalSlices(got, []int{0}) {
		t.Fatalf("got %v, want [0]", got)
	}
	if calls != 1 {
		t.Fatalf("expected do_finally exactly once, got %d", calls)
	}
}

func TestLiftAndPipeComposeOperators(t *testing.T) {
	addOne := stream.Lift(stream.Op[int, int](func(p stream.Publisher[int]) stream.Publisher[int] {
		return stream.Map(p, func(v int) (int, error) { return v + 1, nil })
	}))
	got, err := collect(t, stream.Pipe(stream.Range(0, 3), addOne))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalSlices(got, []int{1, 2, 3}) {
		t.Fatalf("got %v", got)
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
