package fluxion

import (
	"fmt"
	"reflect"
	"testing"
)

func TestCreateRootDisposalOrder(t *testing.T) {
	rt := New()

	var order []string
	dispose := CreateRoot(rt, func(dispose func()) {
		CreateEffect(rt, func() {
			OnCleanup(rt, func() { order = append(order, "effect-cleanup") })
		})
		OnCleanup(rt, func() { order = append(order, "root-1") })
		OnCleanup(rt, func() { order = append(order, "root-2") })
	})

	dispose()

	// Children tear down before the root's own cleanups; cleanups run in
	// reverse registration order.
	want := []string{"effect-cleanup", "root-2", "root-1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected disposal order %v, got %v", want, order)
	}
}

func TestRootDisposeIdempotent(t *testing.T) {
	rt := New()

	cleanups := 0
	dispose := CreateRoot(rt, func(dispose func()) {
		OnCleanup(rt, func() { cleanups++ })
	})

	dispose()
	dispose()
	dispose()

	if cleanups != 1 {
		t.Errorf("expected cleanups exactly once, got %d", cleanups)
	}
}

func TestRootDisposeDetachesEffects(t *testing.T) {
	rt := New()
	s := CreateSignal(rt, 0)

	runs := 0
	dispose := CreateRoot(rt, func(func()) {
		CreateEffect(rt, func() {
			s.Get()
			runs++
		})
	})

	s.Set(1)
	if runs != 2 {
		t.Fatalf("expected 2 runs before dispose, got %d", runs)
	}

	dispose()
	s.Set(2)
	if runs != 2 {
		t.Errorf("expected no runs after dispose, got %d", runs)
	}
	if len(s.core.observers) != 0 {
		t.Errorf("expected observer list empty after dispose, got %d", len(s.core.observers))
	}
}

func TestOnCleanupRunsBeforeEachRerun(t *testing.T) {
	rt := New()
	s := CreateSignal(rt, 0)

	var order []string
	CreateEffect(rt, func() {
		v := s.Get()
		OnCleanup(rt, func() { order = append(order, fmt.Sprintf("cleanup-%d", v)) })
		order = append(order, fmt.Sprintf("run-%d", v))
	})

	s.Set(1)
	s.Set(2)

	want := []string{"run-0", "cleanup-0", "run-1", "cleanup-1", "run-2"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestOnCleanupOutsideOwnerIsDropped(t *testing.T) {
	rt := New()
	// Must not panic; the callback simply never runs.
	OnCleanup(rt, func() { t.Error("cleanup without an owner must never run") })

	s := CreateSignal(rt, 0)
	s.Set(1)
}

func TestNestedRootNotDisposedByOuter(t *testing.T) {
	rt := New()
	s := CreateSignal(rt, 0)

	innerRuns := 0
	var disposeInner func()
	disposeOuter := CreateRoot(rt, func(func()) {
		disposeInner = CreateRoot(rt, func(func()) {
			CreateEffect(rt, func() {
				s.Get()
				innerRuns++
			})
		})
	})

	disposeOuter()
	s.Set(1)
	if innerRuns != 2 {
		t.Errorf("expected inner root to survive outer dispose, got %d runs", innerRuns)
	}

	disposeInner()
	s.Set(2)
	if innerRuns != 2 {
		t.Errorf("expected inner root disposed, got %d runs", innerRuns)
	}
}

func TestRunWithOwner(t *testing.T) {
	rt := New()
	s := CreateSignal(rt, 0)

	var owner *Owner
	dispose := CreateRoot(rt, func(func()) {
		owner = CurrentOwner(rt)
	})
	if owner == nil {
		t.Fatal("expected a current owner inside the root")
	}

	runs := 0
	RunWithOwner(rt, owner, func() {
		CreateEffect(rt, func() {
			s.Get()
			runs++
		})
	})
	if runs != 1 {
		t.Fatalf("expected adopted effect to run, got %d", runs)
	}

	s.Set(1)
	if runs != 2 {
		t.Fatalf("expected adopted effect to rerun, got %d", runs)
	}

	// The adopted effect belongs to the root and dies with it.
	dispose()
	s.Set(2)
	if runs != 2 {
		t.Errorf("expected adopted effect disposed with root, got %d runs", runs)
	}
}

func TestCurrentOwnerNilAtTopLevel(t *testing.T) {
	rt := New()
	if CurrentOwner(rt) != nil {
		t.Error("expected no owner at top level")
	}

	var inside *Owner
	CreateEffect(rt, func() {
		inside = CurrentOwner(rt)
	})
	if inside == nil {
		t.Error("expected an owner inside an effect")
	}
}

func TestCleanupReadsDoNotLeakIntoListener(t *testing.T) {
	rt := New()
	tracked := CreateSignal(rt, 0)
	probed := CreateSignal(rt, 0)

	runs := 0
	CreateEffect(rt, func() {
		tracked.Get()
		OnCleanup(rt, func() {
			// Runs during the next rerun's teardown; this read must not
			// become a dependency of the effect.
			probed.Get()
		})
		runs++
	})

	tracked.Set(1)
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}

	probed.Set(1)
	if runs != 2 {
		t.Errorf("expected cleanup read not to subscribe, got %d runs", runs)
	}
}
