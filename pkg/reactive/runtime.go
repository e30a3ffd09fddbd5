package reactive

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	loomerr "github.com/vango-dev/loom/internal/errors"
)

// TracerName is the instrumentation name used when no tracer is configured.
const TracerName = "github.com/vango-dev/loom"

// DefaultQueueSize is the default capacity of the dispatch queue.
const DefaultQueueSize = 256

// Runtime is the explicit render context shared by everything built on one
// document. It holds the stack of active lifecycle scopes, the value stacks
// of every Context, the batch queue and the dispatch loop.
//
// A Runtime is not safe for concurrent use. Only Dispatch, Call and Close
// may be called from other goroutines.
type Runtime struct {
	// scopes is the stack of scopes entered during synchronous setup.
	scopes []*Scope

	// contexts maps a Context ID to its stack of provided values.
	contexts map[uint64][]any

	// batchDepth tracks nested Batch calls.
	batchDepth int

	// pending accumulates jobs scheduled while batching, deduplicated.
	pending []*job

	// running is the depth of jobs currently executing. Only the outermost
	// job reports failures, so a cascade is counted once.
	running int

	dispatchCh chan func()
	done       chan struct{}
	closeOnce  sync.Once
	closed     atomic.Bool

	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
	debug    bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithTracer sets the tracer used for component construction and
// reconciliation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(rt *Runtime) {
		if tracer != nil {
			rt.tracer = tracer
		}
	}
}

// WithObserver sets the runtime event observer.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithQueueSize sets the capacity of the dispatch queue.
func WithQueueSize(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.dispatchCh = make(chan func(), n)
		}
	}
}

// WithDebug enables per-job debug logging.
func WithDebug(debug bool) Option {
	return func(rt *Runtime) {
		rt.debug = debug
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		contexts:   make(map[uint64][]any),
		dispatchCh: make(chan func(), DefaultQueueSize),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "reactive"),
		tracer:     otel.Tracer(TracerName),
		observer:   NopObserver{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Tracer returns the runtime tracer.
func (rt *Runtime) Tracer() trace.Tracer {
	return rt.tracer
}

// Observer returns the runtime observer.
func (rt *Runtime) Observer() Observer {
	return rt.observer
}

// Debug reports whether debug logging is enabled.
func (rt *Runtime) Debug() bool {
	return rt.debug
}

// =============================================================================
// Scope stack
// =============================================================================

// CurrentScope returns the innermost active scope, or nil.
func (rt *Runtime) CurrentScope() *Scope {
	if len(rt.scopes) == 0 {
		return nil
	}
	return rt.scopes[len(rt.scopes)-1]
}

// PushScope creates a child of the current scope (a root scope when none is
// active) and makes it current.
func (rt *Runtime) PushScope() *Scope {
	s := newScope(rt, rt.CurrentScope())
	rt.scopes = append(rt.scopes, s)
	return s
}

// PopScope removes s from the top of the stack. Popping anything other than
// the innermost scope panics with E104.
func (rt *Runtime) PopScope(s *Scope) {
	if rt.CurrentScope() != s {
		misuse("E104", "pair every PushScope with a PopScope of the same scope")
	}
	rt.scopes = rt.scopes[:len(rt.scopes)-1]
}

// unwind pops s and anything left above it. Used on panic paths where the
// stack may have been left unbalanced.
func (rt *Runtime) unwind(s *Scope) {
	for i := len(rt.scopes) - 1; i >= 0; i-- {
		if rt.scopes[i] == s {
			rt.scopes = rt.scopes[:i]
			return
		}
	}
}

// Fork creates a child of parent, makes it current while fn runs, then pops
// it. If fn fails or panics, the new scope is disposed before the error or
// panic reaches the caller. A nil parent creates a root scope.
//
// Fork is how subtrees are mounted from notification callbacks, where the
// setup-time scope stack is gone.
func (rt *Runtime) Fork(parent *Scope, fn func() error) (scope *Scope, err error) {
	s := newScope(rt, parent)
	rt.scopes = append(rt.scopes, s)

	completed := false
	defer func() {
		rt.unwind(s)
		if completed {
			return
		}
		if derr := s.Dispose(); derr != nil {
			if err != nil {
				err = errors.Join(err, derr)
			} else {
				rt.logger.Warn("cleanup failed while unwinding scope", "scope", s.id, "error", derr)
			}
		}
	}()

	if err := fn(); err != nil {
		return nil, err
	}
	completed = true
	return s, nil
}

// RequireScope returns the current scope or panics with E102. op names the
// operation in the panic's suggestion.
func (rt *Runtime) RequireScope(op string) *Scope {
	s := rt.CurrentScope()
	if s == nil {
		misuse("E102", op+" must be called inside WithLifecycle, a component initializer or a render callback")
	}
	return s
}

// =============================================================================
// Jobs and batching
// =============================================================================

// job is a re-runnable unit of reactive work: a derivation recomputation or
// a binding write.
type job struct {
	id       uint64
	kind     string
	run      func() error
	queued   bool
	disposed bool
}

func (rt *Runtime) newJob(kind string, run func() error) *job {
	return &job{id: nextID(), kind: kind, run: run}
}

// schedule runs j now, or queues it once when batching.
func (rt *Runtime) schedule(j *job) error {
	if j.disposed {
		return nil
	}
	if rt.batchDepth > 0 {
		if !j.queued {
			j.queued = true
			rt.pending = append(rt.pending, j)
		}
		return nil
	}
	rt.ran(j)
	rt.running++
	err := recoverInto(j.run)
	rt.running--
	if err != nil && rt.running == 0 {
		rt.observer.NotificationFailed(err)
	}
	return err
}

func (rt *Runtime) ran(j *job) {
	rt.observer.JobRan(j.kind)
	if rt.debug {
		rt.logger.Debug("job ran", "job", j.id, "kind", j.kind)
	}
}

// Batch runs fn and defers every derivation and binding it triggers until fn
// returns. Each deferred job runs once, in first-scheduled order, however many
// of its sources changed. Batches nest; only the outermost flushes.
//
// The errors of the flushed jobs are joined and returned.
//
// If fn panics, the jobs it scheduled are discarded with the outermost batch
// and the panic continues.
func (rt *Runtime) Batch(fn func()) error {
	rt.batchDepth++
	func() {
		completed := false
		defer func() {
			rt.batchDepth--
			if !completed && rt.batchDepth == 0 {
				rt.discardPending()
			}
		}()
		fn()
		completed = true
	}()

	if rt.batchDepth > 0 {
		return nil
	}
	return rt.flush()
}

// flush runs pending jobs until none remain.
func (rt *Runtime) flush() error {
	var errs []error
	for len(rt.pending) > 0 {
		jobs := rt.pending
		rt.pending = nil
		for _, j := range jobs {
			j.queued = false
			if j.disposed {
				continue
			}
			rt.ran(j)
			rt.running++
			err := recoverInto(j.run)
			rt.running--
			if err != nil {
				rt.observer.NotificationFailed(err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// discardPending drops the jobs of an abandoned batch.
func (rt *Runtime) discardPending() {
	for _, j := range rt.pending {
		j.queued = false
	}
	if len(rt.pending) > 0 {
		rt.logger.Debug("batch abandoned", "jobs", len(rt.pending))
	}
	rt.pending = nil
}

// errClosed is returned when work is submitted to a closed runtime.
func errClosed() error {
	return loomerr.New("E105")
}
