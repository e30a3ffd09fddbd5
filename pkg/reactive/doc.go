// Package reactive provides the reactive core of loom: signals, derivations,
// lifecycle scopes and dynamically scoped contexts.
//
// # Runtime
//
// All reactive state is coordinated by a Runtime, which is threaded through
// every construction call instead of living in package globals. The Runtime
// owns the stack of active lifecycle scopes, the per-Context value stacks, the
// batch queue and the dispatch loop:
//
//	rt := reactive.NewRuntime()
//	go rt.Run(ctx)
//
// A Runtime is single-threaded. Setup code, signal writes and notifications
// all run on one goroutine; other goroutines hand work over with Dispatch.
//
// # Signals and Derivations
//
//	count := reactive.NewSignal(0)
//	doubled := reactive.Use(rt, count, func(n int) int { return n * 2 })
//	count.Set(3) // doubled.Get() == 6
//
// Dependencies are always explicit: a derivation recomputes when one of the
// signals it was given changes, never because something was read.
//
// # Lifecycle
//
// Derivations, bindings and cleanups belong to the scope that was active when
// they were created. Disposing the scope cancels every subscription it owns:
//
//	lc := reactive.WithLifecycle(rt, func() *dom.Node {
//	    reactive.UseCleanup(rt, func() { ticker.Stop() })
//	    return view
//	})
//	defer lc.Uninit()
//
// # Context
//
//	var Theme = reactive.NewContext[string]("theme")
//
//	reactive.Provide(rt, Theme, "dark", func() *dom.Node {
//	    return button(rt) // Theme.Get(rt) == "dark" anywhere in here
//	})
package reactive
