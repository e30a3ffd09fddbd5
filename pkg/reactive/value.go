package reactive

// Reactive is either a static value or a signal, normalized once at API
// boundaries so callers never need to ask which one they hold.
type Reactive[T any] struct {
	static T
	src    Source
	read   func() T
}

// Static wraps a plain value.
func Static[T any](v T) Reactive[T] {
	return Reactive[T]{static: v}
}

// Dynamic wraps a signal. A nil signal yields the zero static value.
func Dynamic[T any](s *Signal[T]) Reactive[T] {
	if s == nil {
		return Reactive[T]{}
	}
	return Reactive[T]{src: s, read: s.Get}
}

// Lift normalizes an untyped value: any Source (or Reactive) becomes dynamic,
// everything else static.
func Lift(v any) Reactive[any] {
	switch x := v.(type) {
	case lifter:
		return x.lift()
	case Source:
		return Reactive[any]{src: x, read: x.AnyValue}
	default:
		return Static(v)
	}
}

// From converts v into a Reactive[T] when v is a T, a *Signal[T] or a
// Reactive[T].
func From[T any](v any) (Reactive[T], bool) {
	switch x := v.(type) {
	case Reactive[T]:
		return x, true
	case *Signal[T]:
		return Dynamic(x), true
	case T:
		return Static(x), true
	default:
		return Reactive[T]{}, false
	}
}

// Get returns the current value.
func (r Reactive[T]) Get() T {
	if r.read != nil {
		return r.read()
	}
	return r.static
}

// IsDynamic reports whether the value is backed by a signal.
func (r Reactive[T]) IsDynamic() bool {
	return r.src != nil
}

// Source returns the backing signal, or nil for static values.
func (r Reactive[T]) Source() Source {
	return r.src
}

type lifter interface {
	lift() Reactive[any]
}

func (r Reactive[T]) lift() Reactive[any] {
	if r.src == nil {
		return Static[any](r.static)
	}
	read := r.read
	return Reactive[any]{src: r.src, read: func() any { return read() }}
}

// Bind writes the current value with write and, for dynamic values, writes
// again after every change for the lifetime of the current scope. Binding a
// dynamic value with no active scope panics with E102.
func Bind[T any](rt *Runtime, r Reactive[T], write func(T) error) error {
	var owner *Scope
	if r.IsDynamic() {
		owner = rt.RequireScope("Bind")
	}
	if err := write(r.Get()); err != nil {
		return err
	}
	if owner == nil {
		return nil
	}
	j := rt.newJob("bind", func() error { return write(r.Get()) })
	rt.watchAll(owner, j, []Source{r.src})
	return nil
}
