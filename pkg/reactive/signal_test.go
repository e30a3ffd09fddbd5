package reactive

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestSignalGetReturnsInitial(t *testing.T) {
	s := NewSignal("hello")
	if s.Get() != "hello" {
		t.Errorf("Get() = %q, want %q", s.Get(), "hello")
	}
	if s.Peek() != "hello" {
		t.Errorf("Peek() = %q, want %q", s.Peek(), "hello")
	}
	if s.AnyValue() != any("hello") {
		t.Errorf("AnyValue() = %v", s.AnyValue())
	}
}

func TestSignalIdentity(t *testing.T) {
	a := NewSignal(1)
	b := NewSignal(1)
	if a.ID() == b.ID() {
		t.Error("distinct signals must have distinct IDs")
	}
	if a == b {
		t.Error("distinct signals must not be equal")
	}
}

func TestSignalSetNotifiesInOrder(t *testing.T) {
	s := NewSignal(0)

	var events []string
	s.Subscribe(func(v int) { events = append(events, fmt.Sprintf("first:%d", v)) })
	s.Subscribe(func(v int) { events = append(events, fmt.Sprintf("second:%d", v)) })

	if err := s.Set(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(2); err != nil {
		t.Fatal(err)
	}

	want := []string{"first:1", "second:1", "first:2", "second:2"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if s.Get() != 2 {
		t.Errorf("Get() = %d, want 2", s.Get())
	}
}

func TestSignalSetSameValueStillNotifies(t *testing.T) {
	s := NewSignal(5)
	calls := 0
	s.Subscribe(func(int) { calls++ })

	s.Set(5)
	s.Set(5)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSignalWithEqualsShortCircuits(t *testing.T) {
	s := NewSignal(5).WithEquals(func(a, b int) bool { return a == b })
	calls := 0
	s.Subscribe(func(int) { calls++ })

	s.Set(5)
	s.Set(6)
	s.Set(6)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSignalUnsubscribe(t *testing.T) {
	s := NewSignal(0)
	calls := 0
	cancel := s.Subscribe(func(int) { calls++ })

	s.Set(1)
	cancel()
	cancel()
	s.Set(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", s.SubscriberCount())
	}
}

func TestSignalCancelDuringPass(t *testing.T) {
	s := NewSignal(0)

	var cancelSecond func()
	secondCalls := 0
	s.Subscribe(func(int) { cancelSecond() })
	cancelSecond = s.Subscribe(func(int) { secondCalls++ })

	s.Set(1)

	if secondCalls != 0 {
		t.Errorf("cancelled subscriber ran %d times", secondCalls)
	}
}

func TestSignalReentrantSetIsQueued(t *testing.T) {
	s := NewSignal(0)

	var events []string
	s.Subscribe(func(v int) {
		events = append(events, fmt.Sprintf("a:%d", v))
		if v == 1 {
			s.Set(2)
			// The nested set has not been applied yet.
			events = append(events, fmt.Sprintf("a-after-set:%d", s.Get()))
		}
	})
	s.Subscribe(func(v int) {
		events = append(events, fmt.Sprintf("b:%d", v))
	})

	if err := s.Set(1); err != nil {
		t.Fatal(err)
	}

	want := []string{"a:1", "a-after-set:1", "b:1", "a:2", "b:2"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if s.Get() != 2 {
		t.Errorf("Get() = %d, want 2", s.Get())
	}
}

func TestSignalReentrantSetsAreFIFO(t *testing.T) {
	s := NewSignal(0)

	var seen []int
	s.Subscribe(func(v int) {
		seen = append(seen, v)
		if v == 1 {
			s.Set(2)
			s.Set(3)
		}
	})

	s.Set(1)

	if !reflect.DeepEqual(seen, []int{1, 2, 3}) {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
}

func TestSignalSubscriberPanicIsIsolated(t *testing.T) {
	s := NewSignal(0)

	s.Subscribe(func(int) { panic("boom") })
	secondRan := false
	s.Subscribe(func(int) { secondRan = true })

	err := s.Set(1)
	if err == nil {
		t.Fatal("expected an error from the panicking subscriber")
	}
	if !secondRan {
		t.Error("second subscriber should still run")
	}

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	if pe.Value != "boom" {
		t.Errorf("panic value = %v, want boom", pe.Value)
	}
	if len(pe.Stack) == 0 {
		t.Error("panic error should carry a stack")
	}
}

func TestSignalErrorsAreAggregated(t *testing.T) {
	s := NewSignal(0)
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	s.Watch(func() error { return errA })
	s.Watch(func() error { return errB })

	err := s.Set(1)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both errors, got %v", err)
	}

	// The signal stays usable after a failing pass.
	if s.Get() != 1 {
		t.Errorf("Get() = %d, want 1", s.Get())
	}
}

func TestSignalQueuedPassErrorsReachOuterCaller(t *testing.T) {
	s := NewSignal(0)
	errTwo := errors.New("two")
	s.Watch(func() error {
		if s.Get() == 1 {
			s.Set(2)
		}
		if s.Get() == 2 {
			return errTwo
		}
		return nil
	})

	if err := s.Set(1); !errors.Is(err, errTwo) {
		t.Errorf("Set(1) error = %v, want %v", err, errTwo)
	}
}

func TestSignalUpdate(t *testing.T) {
	s := NewSignal(10)
	s.Update(func(n int) int { return n + 5 })
	if s.Get() != 15 {
		t.Errorf("Get() = %d, want 15", s.Get())
	}
}

func TestSignalSubscribeDuringPassWaitsForNextPass(t *testing.T) {
	s := NewSignal(0)
	lateCalls := 0
	subscribed := false
	s.Subscribe(func(int) {
		if !subscribed {
			subscribed = true
			s.Subscribe(func(int) { lateCalls++ })
		}
	})

	s.Set(1)
	if lateCalls != 0 {
		t.Errorf("late subscriber ran in the pass it was added in")
	}
	s.Set(2)
	if lateCalls != 1 {
		t.Errorf("lateCalls = %d, want 1", lateCalls)
	}
}
