package session

import (
	"context"
	"sync/atomic"
)

// Mutation runs a side-effecting request in the background and tracks how many
// of its calls are still unresolved.
type Mutation[In, Out any] struct {
	fn        func(ctx context.Context, in In) (Out, error)
	onSuccess func(ctx context.Context, out Out) error
	onError   func(err error)
	inFlight  atomic.Int64
}

// NewMutation builds a mutation around fn. onSuccess runs before the caller's
// continuation and may turn a successful response into a failure by returning an error.
func NewMutation[In, Out any](
	fn func(ctx context.Context, in In) (Out, error),
	onSuccess func(ctx context.Context, out Out) error,
	onError func(err error),
) *Mutation[In, Out] {
	return &Mutation[In, Out]{fn: fn, onSuccess: onSuccess, onError: onError}
}

// Mutate starts a call. Cancelling ctx aborts the underlying request.
// continuation is invoked once, after onSuccess, only when the call succeeds.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In, continuation func(Out)) *Call[Out] {
	call := &Call[Out]{done: make(chan struct{})}
	m.inFlight.Add(1)

	go func() {
		defer func() {
			m.inFlight.Add(-1)
			close(call.done)
		}()

		out, err := m.fn(ctx, in)
		if err == nil && m.onSuccess != nil {
			err = m.onSuccess(ctx, out)
		}
		if err != nil {
			if m.onError != nil {
				m.onError(err)
			}
			call.err = err
			return
		}

		call.out = out
		if continuation != nil {
			continuation(out)
		}
	}()

	return call
}

// IsLoading reports whether any call is unresolved
func (m *Mutation[In, Out]) IsLoading() bool {
	return m.inFlight.Load() > 0
}

// Call is the result handle of one Mutate invocation
type Call[Out any] struct {
	done chan struct{}
	out  Out
	err  error
}

// Done is closed once the call has resolved and all hooks have run
func (c *Call[Out]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call resolves or ctx ends. A ctx ending only stops the
// wait, the call itself keeps running under the context it was started with.
func (c *Call[Out]) Wait(ctx context.Context) (Out, error) {
	select {
	case <-c.done:
		return c.out, c.err
	case <-ctx.Done():
		var zero Out
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking; ok is false while unresolved
func (c *Call[Out]) Result() (out Out, err error, ok bool) {
	select {
	case <-c.done:
		return c.out, c.err, true
	default:
		var zero Out
		return zero, nil, false
	}
}
