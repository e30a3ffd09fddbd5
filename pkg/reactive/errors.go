package reactive

import (
	"fmt"
	"runtime/debug"

	loomerr "github.com/vango-dev/loom/internal/errors"
)

// PanicError is a recovered panic from a subscriber, cleanup or dispatched
// callback. It is returned to whoever triggered the work.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// recoverInto runs fn, turning a panic into a *PanicError.
func recoverInto(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return fn()
}

// misuse panics with a coded lifecycle error.
func misuse(code, suggestion string) {
	panic(loomerr.New(code).WithSuggestion(suggestion))
}
