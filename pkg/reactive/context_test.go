package reactive

import "testing"

func TestContextProvideAndGet(t *testing.T) {
	rt := newTestRuntime()
	theme := NewContext[string]("theme")

	got := Provide(rt, theme, "dark", func() string {
		return theme.Get(rt)
	})
	if got != "dark" {
		t.Errorf("Get() = %q, want dark", got)
	}
}

func TestContextNestingAndRestore(t *testing.T) {
	rt := newTestRuntime()
	theme := NewContext[string]("theme")

	var seen []string
	theme.Run(rt, "outer", func() {
		seen = append(seen, theme.Get(rt))
		theme.Run(rt, "inner", func() {
			seen = append(seen, deepRead(rt, theme))
		})
		seen = append(seen, theme.Get(rt))
	})

	want := []string{"outer", "inner", "outer"}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
	if _, ok := theme.Lookup(rt); ok {
		t.Error("value should not be visible after Provide returns")
	}
}

func deepRead(rt *Runtime, c *Context[string]) string {
	return func() string { return c.Get(rt) }()
}

func TestContextRestoredOnPanic(t *testing.T) {
	rt := newTestRuntime()
	theme := NewContext[string]("theme")

	theme.Run(rt, "outer", func() {
		func() {
			defer func() { recover() }()
			theme.Run(rt, "inner", func() { panic("boom") })
		}()
		if theme.Get(rt) != "outer" {
			t.Errorf("Get() = %q after panic, want outer", theme.Get(rt))
		}
	})
}

func TestContextGetOutsideProvidePanics(t *testing.T) {
	rt := newTestRuntime()
	theme := NewContext[string]("theme")
	expectPanicCode(t, "E103", func() { theme.Get(rt) })
}

func TestContextNotVisibleToLaterCalls(t *testing.T) {
	rt := newTestRuntime()
	user := NewContext[int]("user")

	var later func() (int, bool)
	user.Run(rt, 7, func() {
		later = func() (int, bool) { return user.Lookup(rt) }
	})

	if _, ok := later(); ok {
		t.Error("a closure called after Provide returned must not see the value")
	}
}

func TestContextsAreIndependent(t *testing.T) {
	rt := newTestRuntime()
	a := NewContext[string]("a")
	b := NewContext[string]("b")

	a.Run(rt, "x", func() {
		if _, ok := b.Lookup(rt); ok {
			t.Error("b should not see a's value")
		}
	})
}

func TestContextNilInterfaceValue(t *testing.T) {
	rt := newTestRuntime()
	errCtx := NewContext[error]("err")

	errCtx.Run(rt, nil, func() {
		v, ok := errCtx.Lookup(rt)
		if !ok || v != nil {
			t.Errorf("Lookup() = %v, %v; want nil, true", v, ok)
		}
	})
}
