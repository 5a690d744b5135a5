package citation

import "context"

// Future is the pending result of a submitted resolution.
type Future struct {
	done   chan struct{}
	answer Answer
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) settle(a Answer, err error) {
	f.answer, f.err = a, err
	close(f.done)
}

// Done is closed once the resolution has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the resolution settles or ctx ends. A ctx error only
// abandons the wait; the resolution still completes and is still audited.
func (f *Future) Wait(ctx context.Context) (Answer, error) {
	select {
	case <-f.done:
		return f.answer, f.err
	case <-ctx.Done():
		return Answer{}, ctx.Err()
	}
}

// Settled reports whether the resolution has completed.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
