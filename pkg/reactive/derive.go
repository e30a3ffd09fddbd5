package reactive

// Use returns a derived signal whose value is fn(src.Get()), recomputed on
// every change of src.
//
// The derivation belongs to the current scope: once the scope is disposed it
// unsubscribes from src and never recomputes again. Calling Use with no
// active scope panics with E102. A panic in fn reaches the Set call that
// triggered the recomputation as an error.
func Use[S, T any](rt *Runtime, src *Signal[S], fn func(S) T) *Signal[T] {
	owner := rt.RequireScope("Use")
	out := NewSignal(fn(src.Get()))
	rt.derive(owner, []Source{src}, func() error {
		return out.Set(fn(src.Get()))
	})
	return out
}

// Use2 derives a signal from two sources.
func Use2[A, B, T any](rt *Runtime, a *Signal[A], b *Signal[B], fn func(A, B) T) *Signal[T] {
	owner := rt.RequireScope("Use2")
	out := NewSignal(fn(a.Get(), b.Get()))
	rt.derive(owner, []Source{a, b}, func() error {
		return out.Set(fn(a.Get(), b.Get()))
	})
	return out
}

// UseSignals derives a signal from any number of sources of any type. fn
// receives the current values in the order the sources were given. A source
// listed twice is watched once.
func UseSignals[T any](rt *Runtime, sources []Source, fn func(values []any) T) *Signal[T] {
	owner := rt.RequireScope("UseSignals")
	read := func() []any {
		values := make([]any, len(sources))
		for i, src := range sources {
			values[i] = src.AnyValue()
		}
		return values
	}
	out := NewSignal(fn(read()))
	rt.derive(owner, sources, func() error {
		return out.Set(fn(read()))
	})
	return out
}

// derive subscribes recompute to every source for the lifetime of owner.
func (rt *Runtime) derive(owner *Scope, sources []Source, recompute func() error) {
	j := rt.newJob("derive", recompute)
	rt.watchAll(owner, j, sources)
}

// watchAll schedules j on every change of sources until owner is disposed.
func (rt *Runtime) watchAll(owner *Scope, j *job, sources []Source) {
	seen := make(map[uint64]bool, len(sources))
	cancels := make([]func(), 0, len(sources))
	for _, src := range sources {
		if src == nil || seen[src.ID()] {
			continue
		}
		seen[src.ID()] = true
		cancels = append(cancels, src.Watch(func() error {
			return rt.schedule(j)
		}))
	}
	owner.OnCleanup(func() {
		j.disposed = true
		for _, cancel := range cancels {
			cancel()
		}
	})
}

// Watch runs fn after every change of any source for the lifetime of the
// current scope. It is the building block for bindings and rendering
// combinators; fn's errors are reported to the Set caller.
func Watch(rt *Runtime, kind string, sources []Source, fn func() error) {
	owner := rt.RequireScope("Watch")
	rt.watchAll(owner, rt.newJob(kind, fn), sources)
}
