package reactest

import (
	"errors"
	"testing"

	"github.com/vango-dev/fluxion/pkg/fluxion"
)

func TestRecorderCapturesUpdates(t *testing.T) {
	rt := fluxion.New()
	count := fluxion.CreateSignal(rt, 0)

	rec := Record(rt, count.Get)
	count.Set(1)
	count.Set(2)

	rec.ExpectValues(t, 0, 1, 2)
	rec.ExpectLast(t, 2)
	rec.ExpectRuns(t, 3)
}

func TestRecorderStopDetaches(t *testing.T) {
	rt := fluxion.New()
	count := fluxion.CreateSignal(rt, 0)

	rec := Record(rt, count.Get)
	rec.Stop()
	count.Set(1)

	rec.ExpectValues(t, 0)
}

func TestRecorderReset(t *testing.T) {
	rt := fluxion.New()
	count := fluxion.CreateSignal(rt, 0)

	rec := Record(rt, count.Get)
	rec.Reset()
	count.Set(7)

	rec.ExpectValues(t, 7)
	if rec.Len() != 1 {
		t.Errorf("expected 1 value after reset, got %d", rec.Len())
	}
}

func TestBuilderCaptureErrors(t *testing.T) {
	var errs []error
	rt := NewRuntime().CaptureErrors(&errs).Build()

	boom := errors.New("boom")
	trigger := fluxion.CreateSignal(rt, 0)
	fluxion.CreateEffect(rt, func() {
		if trigger.Get() > 0 {
			panic(boom)
		}
	})
	trigger.Set(1)

	if len(errs) != 1 {
		t.Fatalf("expected 1 captured error, got %d", len(errs))
	}
	if !errors.Is(errs[0], boom) {
		t.Errorf("captured error does not wrap the panic value: %v", errs[0])
	}
}

func TestBuilderMaxFlushPasses(t *testing.T) {
	rt := NewRuntime().MaxFlushPasses(5).Build()
	count := fluxion.CreateSignal(rt, 0)

	defer func() {
		rfe, ok := recover().(*fluxion.RunawayFlushError)
		if !ok {
			t.Fatal("expected runaway flush panic")
		}
		if rfe.Passes != 5 {
			t.Errorf("expected pass cap 5, got %d", rfe.Passes)
		}
	}()
	fluxion.CreateEffect(rt, func() {
		count.Set(count.Get() + 1)
	})
}

func TestCountFlushes(t *testing.T) {
	rt := fluxion.New()
	fc := CountFlushes(rt)

	count := fluxion.CreateSignal(rt, 0)
	double := fluxion.CreateMemo(rt, func() int { return count.Get() * 2 })
	fluxion.CreateEffect(rt, func() { double.Get() })

	count.Set(1)
	count.Set(2)

	fc.ExpectFlushes(t, 2)
	if fc.UpdateRuns() != 2 {
		t.Errorf("expected 2 update runs, got %d", fc.UpdateRuns())
	}
	if fc.EffectRuns() != 2 {
		t.Errorf("expected 2 effect runs, got %d", fc.EffectRuns())
	}
}
