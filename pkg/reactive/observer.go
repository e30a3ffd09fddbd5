package reactive

// Observer receives runtime events. Implementations must be cheap: they are
// called synchronously on the runtime goroutine.
type Observer interface {
	// ScopeDisposed is called once per disposed scope with the number of
	// cleanups it ran.
	ScopeDisposed(cleanups int)

	// JobRan is called each time a derivation or binding re-runs.
	JobRan(kind string)

	// NotificationFailed is called for every failed derivation or binding
	// and every panicking dispatched callback. A failure that cascades
	// through derived signals is reported once. Plain Subscribe callbacks are
	// not runtime jobs; their failures are only returned by Set.
	NotificationFailed(err error)

	// Reconciled reports the DOM work done by a rendering combinator.
	Reconciled(kind string, created, moved, removed int)

	// ComponentCreated is called after a component initializer succeeds.
	ComponentCreated(name string)

	// DispatchDropped is called when Dispatch discards a callback.
	DispatchDropped()
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ScopeDisposed(int)                {}
func (NopObserver) JobRan(string)                    {}
func (NopObserver) NotificationFailed(error)         {}
func (NopObserver) Reconciled(string, int, int, int) {}
func (NopObserver) ComponentCreated(string)          {}
func (NopObserver) DispatchDropped()                 {}

var _ Observer = NopObserver{}
