// Package boundary contains failures raised while producing an output.
package boundary

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Boundary runs render operations and substitutes a fallback when one panics
// or fails. Once tripped it keeps returning the fallback until Reset.
type Boundary[T any] struct {
	name     string
	fallback func(err error) T
	logger   *slog.Logger

	mu  sync.Mutex
	err error
}

// New creates a Boundary. fallback builds the substitute output from the
// failure that tripped the boundary.
func New[T any](name string, fallback func(err error) T, logger *slog.Logger) *Boundary[T] {
	return &Boundary[T]{name: name, fallback: fallback, logger: logger}
}

// Render runs fn unless the boundary is already tripped. A panic or error
// from fn trips the boundary and the fallback is returned instead.
func (b *Boundary[T]) Render(fn func() (T, error)) (out T) {
	if err := b.Err(); err != nil {
		return b.fallback(err)
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			b.trip(err, debug.Stack())
			out = b.fallback(err)
		}
	}()

	out, err := fn()
	if err != nil {
		b.trip(err, nil)
		return b.fallback(err)
	}
	return out
}

// Err returns the failure that tripped the boundary, or nil
func (b *Boundary[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Reset clears the failure so the next Render runs again
func (b *Boundary[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = nil
}

func (b *Boundary[T]) trip(err error, stack []byte) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()

	attrs := []any{"boundary", b.name, "error", err}
	if stack != nil {
		attrs = append(attrs, "stack", string(stack))
	}
	b.logger.Error("render failed", attrs...)
}

// Guard runs fn once and recovers any panic into the fallback. It never
// trips a shared boundary, which suits per-request work.
func Guard[T any](name string, fn func() T, fallback func(err error) T, logger *slog.Logger) T {
	b := New(name, fallback, logger)
	return b.Render(func() (T, error) { return fn(), nil })
}
