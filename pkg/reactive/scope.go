package reactive

import "errors"

// Scope is a lifecycle scope: the container of teardown callbacks tied to a
// component's or mounted subtree's attachment lifetime.
//
// Scopes form a tree mirroring the component tree. Disposing a scope disposes
// its children first, last-created first, and then runs its own cleanups in
// reverse registration order. Disposal happens at most once.
type Scope struct {
	id uint64
	rt *Runtime

	// parent is the scope that was current when this one was created.
	// nil for root scopes.
	parent *Scope

	// children are scopes created while this one was current (or forked
	// from it), in creation order.
	children []*Scope

	// cleanups run LIFO on disposal.
	cleanups []func()

	disposed bool
}

func newScope(rt *Runtime, parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		rt:     rt,
		parent: parent,
	}
	if parent != nil && !parent.disposed {
		parent.children = append(parent.children, s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Active reports whether the scope has not been disposed yet.
func (s *Scope) Active() bool {
	return !s.disposed
}

// Children returns a copy of the live child scopes.
func (s *Scope) Children() []*Scope {
	return append([]*Scope(nil), s.children...)
}

// OnCleanup registers fn to run when the scope is disposed. On an already
// disposed scope fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// removeChild detaches child from this scope's children.
func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Dispose tears the scope down: children first (bottom-up, last created
// first), then this scope's cleanups in reverse registration order. A
// panicking cleanup does not stop the others; every recovered panic is
// returned, joined. Calling Dispose again is a no-op.
func (s *Scope) Dispose() error {
	if s.disposed {
		return nil
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	var errs []error

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Dispose(); err != nil {
			errs = append(errs, err)
		}
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		fn := cleanups[i]
		err := recoverInto(func() error {
			fn()
			return nil
		})
		if err != nil {
			s.rt.logger.Warn("cleanup panicked", "scope", s.id, "error", err)
			errs = append(errs, err)
		}
	}

	s.rt.observer.ScopeDisposed(len(cleanups))
	s.rt.logger.Debug("scope disposed", "scope", s.id, "cleanups", len(cleanups))

	return errors.Join(errs...)
}
