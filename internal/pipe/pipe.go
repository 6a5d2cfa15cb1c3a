// Package pipe composes ordered processing steps into a single function.
//
// A pipeline threads one value through every step in declaration order:
//
//	inc := func(_ context.Context, n int) (int, error) { return n + 1, nil }
//	dbl := func(_ context.Context, n int) (int, error) { return n * 2, nil }
//	run := pipe.Compose(inc, dbl)
//	out, err := run(ctx, 5) // (5 + 1) * 2 = 12
//
// Steps run strictly one after another on the caller's goroutine. The first
// failing step stops the pipeline and its error is returned unchanged.
package pipe

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Step is one unit of processing. It receives the current value and returns
// the value handed to the next step. A non-nil error stops the pipeline.
type Step[T any] func(ctx context.Context, v T) (T, error)

// Func is a composed pipeline.
type Func[T any] func(ctx context.Context, initial T) (T, error)

// PanicError is returned in place of a step that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("step panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Compose returns a function that applies steps left to right. With no steps
// it returns the initial value unchanged. The step list is copied, so later
// changes to the caller's slice do not affect the pipeline.
//
// Compose panics if any step is nil.
func Compose[T any](steps ...Step[T]) Func[T] {
	fixed := make([]Step[T], len(steps))
	for i, s := range steps {
		if s == nil {
			panic(fmt.Sprintf("pipe: nil step at position %d", i))
		}
		fixed[i] = s
	}

	return func(ctx context.Context, initial T) (T, error) {
		v := initial
		for _, s := range fixed {
			next, err := call(ctx, s, v)
			if err != nil {
				var zero T
				return zero, err
			}
			v = next
		}
		return v, nil
	}
}

// call runs a single step, turning a panic into a *PanicError.
func call[T any](ctx context.Context, s Step[T], v T) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return s(ctx, v)
}
