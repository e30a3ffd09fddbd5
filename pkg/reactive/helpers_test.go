package reactive

import (
	"io"
	"log/slog"
	"testing"

	loomerr "github.com/vango-dev/loom/internal/errors"
)

func newTestRuntime() *Runtime {
	return NewRuntime(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func expectPanicCode(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %s, got none", code)
		}
		err, ok := r.(error)
		if !ok || !loomerr.HasCode(err, code) {
			t.Fatalf("expected panic with %s, got %v", code, r)
		}
	}()
	fn()
}
