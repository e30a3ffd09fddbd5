package reactive

import (
	"errors"
	"testing"
)

func TestReactiveStatic(t *testing.T) {
	r := Static(5)
	if r.Get() != 5 || r.IsDynamic() || r.Source() != nil {
		t.Errorf("unexpected static reactive: %+v", r)
	}
}

func TestReactiveDynamicFollowsSignal(t *testing.T) {
	s := NewSignal("a")
	r := Dynamic(s)
	if !r.IsDynamic() || r.Source() == nil || r.Source().ID() != s.ID() {
		t.Fatal("Dynamic should be backed by the signal")
	}
	s.Set("b")
	if r.Get() != "b" {
		t.Errorf("Get() = %q, want b", r.Get())
	}
}

func TestReactiveDynamicNilSignal(t *testing.T) {
	var s *Signal[int]
	r := Dynamic(s)
	if r.IsDynamic() || r.Get() != 0 {
		t.Error("nil signal should yield the zero static value")
	}
}

func TestLiftDistinguishesByIdentity(t *testing.T) {
	s := NewSignal(3)

	if Lift(3).IsDynamic() {
		t.Error("plain value should lift to static")
	}
	dyn := Lift(s)
	if !dyn.IsDynamic() || dyn.Get() != any(3) {
		t.Errorf("signal should lift to dynamic, got %+v", dyn)
	}
	if !Lift(Dynamic(s)).IsDynamic() {
		t.Error("dynamic reactive should stay dynamic")
	}
	if Lift(Static("x")).Get() != any("x") {
		t.Error("static reactive should keep its value")
	}
}

func TestFrom(t *testing.T) {
	s := NewSignal(1)

	r, ok := From[int](s)
	if !ok || !r.IsDynamic() {
		t.Error("From(*Signal[int]) should be dynamic")
	}
	r, ok = From[int](7)
	if !ok || r.IsDynamic() || r.Get() != 7 {
		t.Error("From(int) should be static")
	}
	r, ok = From[int](Dynamic(s))
	if !ok || !r.IsDynamic() {
		t.Error("From(Reactive[int]) should pass through")
	}
	if _, ok := From[int]("nope"); ok {
		t.Error("From should reject mismatched types")
	}
}

func TestBindStaticWritesOnce(t *testing.T) {
	rt := newTestRuntime()
	var writes []int

	// Static values need no scope.
	err := Bind(rt, Static(4), func(v int) error {
		writes = append(writes, v)
		return nil
	})
	if err != nil || len(writes) != 1 || writes[0] != 4 {
		t.Errorf("writes = %v, err = %v", writes, err)
	}
}

func TestBindDynamicRewritesUntilTeardown(t *testing.T) {
	rt := newTestRuntime()
	s := NewSignal(1)
	var writes []int

	lc := WithLifecycle(rt, func() error {
		return Bind(rt, Dynamic(s), func(v int) error {
			writes = append(writes, v)
			return nil
		})
	})
	if lc.Value != nil {
		t.Fatal(lc.Value)
	}

	s.Set(2)
	lc.Uninit()
	s.Set(3)

	if len(writes) != 2 || writes[0] != 1 || writes[1] != 2 {
		t.Errorf("writes = %v, want [1 2]", writes)
	}
	if s.SubscriberCount() != 0 {
		t.Errorf("binding should unsubscribe on teardown")
	}
}

func TestBindDynamicWithoutScopePanics(t *testing.T) {
	rt := newTestRuntime()
	expectPanicCode(t, "E102", func() {
		Bind(rt, Dynamic(NewSignal(0)), func(int) error { return nil })
	})
}

func TestBindWriteErrorReachesSetter(t *testing.T) {
	rt := newTestRuntime()
	s := NewSignal(0)
	boom := errors.New("write failed")

	WithLifecycle(rt, func() error {
		return Bind(rt, Dynamic(s), func(v int) error {
			if v < 0 {
				return boom
			}
			return nil
		})
	})

	if err := s.Set(-1); !errors.Is(err, boom) {
		t.Errorf("Set() = %v, want %v", err, boom)
	}
}
