package reactive

import (
	"errors"
	"slices"
)

// Source is the type-erased view of a signal. Templates and UseSignals use it
// to accept signals of any element type; a value is reactive exactly when it
// implements Source, which only signals do.
type Source interface {
	// ID returns the signal's unique identifier.
	ID() uint64

	// AnyValue returns the current value.
	AnyValue() any

	// Watch calls fn after every change until the returned cancel function
	// is called. Errors returned by fn are reported to the Set caller.
	Watch(fn func() error) (cancel func())
}

// subscriber is one entry in a signal's ordered subscriber list.
type subscriber[T any] struct {
	fn        func(T) error
	cancelled bool
}

// Signal is an observable value cell, the unit of reactive state.
//
// Set notifies every subscriber synchronously, in subscription order, before
// returning. A Set issued on a signal from inside its own notification pass is
// queued and applied after the pass completes, so subscribers never observe a
// partially notified value.
type Signal[T any] struct {
	id    uint64
	value T
	subs  []*subscriber[T]

	// notifying is true while a notification pass is in progress.
	notifying bool

	// queue holds values set re-entrantly during a pass, FIFO.
	queue []T

	// equal, when set, suppresses notification of unchanged values.
	equal func(a, b T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Get returns the most recently set value.
func (s *Signal[T]) Get() T {
	return s.value
}

// Peek is Get. Reads never subscribe in loom; it exists for readers coming
// from tracking-based APIs.
func (s *Signal[T]) Peek() T {
	return s.value
}

// AnyValue implements Source.
func (s *Signal[T]) AnyValue() any {
	return s.value
}

// WithEquals configures an equality function. When set, a Set with a value
// equal to the current one does not notify. Without it every Set notifies.
func (s *Signal[T]) WithEquals(fn func(a, b T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Set replaces the value and notifies every subscriber before returning.
//
// A subscriber that panics or fails does not stop the pass; the failures of
// every subscriber, including those of passes queued by re-entrant Sets, are
// joined and returned once all passes complete.
func (s *Signal[T]) Set(v T) error {
	if s.notifying {
		s.queue = append(s.queue, v)
		return nil
	}

	s.notifying = true
	defer func() { s.notifying = false }()

	var errs []error
	for {
		if s.equal == nil || !s.equal(s.value, v) {
			s.value = v
			errs = append(errs, s.notify(v)...)
		}
		if len(s.queue) == 0 {
			break
		}
		v = s.queue[0]
		s.queue = s.queue[1:]
	}
	return errors.Join(errs...)
}

// Update sets the value to fn(current).
func (s *Signal[T]) Update(fn func(T) T) error {
	return s.Set(fn(s.value))
}

// Subscribe calls fn with the new value after every change. Subscribers run
// in subscription order. The returned function cancels the subscription; a
// subscriber cancelled mid-pass is not called for the rest of that pass.
func (s *Signal[T]) Subscribe(fn func(T)) (cancel func()) {
	return s.subscribe(func(v T) error {
		fn(v)
		return nil
	})
}

// Watch implements Source.
func (s *Signal[T]) Watch(fn func() error) (cancel func()) {
	return s.subscribe(func(T) error { return fn() })
}

// SubscriberCount returns the number of live subscriptions.
func (s *Signal[T]) SubscriberCount() int {
	return len(s.subs)
}

func (s *Signal[T]) subscribe(fn func(T) error) func() {
	sub := &subscriber[T]{fn: fn}
	s.subs = append(s.subs, sub)
	return func() {
		if sub.cancelled {
			return
		}
		sub.cancelled = true
		if i := slices.Index(s.subs, sub); i >= 0 {
			s.subs = slices.Delete(s.subs, i, i+1)
		}
	}
}

// notify runs one notification pass over a snapshot of the subscribers.
func (s *Signal[T]) notify(v T) []error {
	subs := slices.Clone(s.subs)

	var errs []error
	for _, sub := range subs {
		if sub.cancelled {
			continue
		}
		fn := sub.fn
		if err := recoverInto(func() error { return fn(v) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

var _ Source = (*Signal[int])(nil)
