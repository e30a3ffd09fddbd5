package reactive

// Lifecycle is the result of WithLifecycle: the value produced by the setup
// function and the scope that owns everything it created.
type Lifecycle[T any] struct {
	Value T
	Scope *Scope
}

// Uninit tears down the scope and everything nested in it. Calling it more
// than once runs each cleanup exactly once.
func (l Lifecycle[T]) Uninit() error {
	if l.Scope == nil {
		return nil
	}
	return l.Scope.Dispose()
}

// WithLifecycle pushes a new scope, runs fn inside it, pops the scope and
// returns fn's result together with the scope. Nested inside another scope,
// the new scope is a child of it, so the parent's teardown cascades.
//
// If fn panics, the half-built scope is disposed and the panic re-raised.
func WithLifecycle[T any](rt *Runtime, fn func() T) Lifecycle[T] {
	var value T
	scope, _ := rt.Fork(rt.CurrentScope(), func() error {
		value = fn()
		return nil
	})
	return Lifecycle[T]{Value: value, Scope: scope}
}

// WithLifecycleErr is WithLifecycle for setup functions that can fail. On
// error the scope is disposed and the error returned.
func WithLifecycleErr[T any](rt *Runtime, fn func() (T, error)) (Lifecycle[T], error) {
	var value T
	scope, err := rt.Fork(rt.CurrentScope(), func() error {
		var err error
		value, err = fn()
		return err
	})
	if err != nil {
		return Lifecycle[T]{}, err
	}
	return Lifecycle[T]{Value: value, Scope: scope}, nil
}

// UseCleanup registers fn on the current scope. Calling it with no active
// scope panics with E101.
func UseCleanup(rt *Runtime, fn func()) {
	s := rt.CurrentScope()
	if s == nil {
		misuse("E101", "wrap the setup code in reactive.WithLifecycle")
	}
	s.OnCleanup(fn)
}
