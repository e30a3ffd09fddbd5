package reactive

import "context"

// Dispatch queues fn to run on the runtime loop. It is safe to call from any
// goroutine and is the only correct way to touch signals from asynchronous
// work:
//
//	go func() {
//	    user, err := fetchUser(ctx, id)
//	    rt.Dispatch(func() {
//	        if err != nil {
//	            errSignal.Set(err)
//	            return
//	        }
//	        userSignal.Set(user)
//	    })
//	}()
//
// Dispatch never blocks. It returns false when the runtime is closed or the
// queue is full, in which case fn is discarded.
func (rt *Runtime) Dispatch(fn func()) bool {
	if rt.closed.Load() {
		return false
	}
	select {
	case rt.dispatchCh <- fn:
		return true
	case <-rt.done:
		return false
	default:
		rt.logger.Warn("dispatch queue full, discarding callback")
		rt.observer.DispatchDropped()
		return false
	}
}

// Call runs fn on the runtime loop and waits for its result.
func (rt *Runtime) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !rt.Dispatch(func() { result <- recoverInto(fn) }) {
		return errClosed()
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-rt.done:
		return errClosed()
	}
}

// Run processes dispatched callbacks until ctx is cancelled or Close is
// called. Callbacks run one at a time, to completion.
func (rt *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-rt.dispatchCh:
			rt.execute(fn)
		case <-ctx.Done():
			return ctx.Err()
		case <-rt.done:
			return nil
		}
	}
}

// execute runs a dispatched callback with panic recovery.
func (rt *Runtime) execute(fn func()) {
	err := recoverInto(func() error {
		fn()
		return nil
	})
	if err != nil {
		rt.logger.Error("dispatched callback panicked", "error", err)
		rt.observer.NotificationFailed(err)
	}
}

// Close stops the loop and rejects further dispatches.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		rt.closed.Store(true)
		close(rt.done)
	})
}

// Closed reports whether Close has been called.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}
