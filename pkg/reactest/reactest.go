// Package reactest provides helpers for testing code built on fluxion:
// a fluent runtime builder, a value recorder, and flush counters with
// assertion helpers.
package reactest

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/vango-dev/fluxion/pkg/fluxion"
)

// Builder allows fluent construction of test runtimes.
type Builder struct {
	opts []fluxion.Option
}

// NewRuntime creates a runtime builder for testing.
//
// Example:
//
//	var errs []error
//	rt := reactest.NewRuntime().
//	    CaptureErrors(&errs).
//	    MaxFlushPasses(50).
//	    Build()
func NewRuntime() *Builder {
	return &Builder{}
}

// CaptureErrors routes handled computation errors into errs instead of
// panicking the flush.
//
// Example:
//
//	rt := reactest.NewRuntime().CaptureErrors(&errs).Build()
func (b *Builder) CaptureErrors(errs *[]error) *Builder {
	b.opts = append(b.opts, fluxion.WithErrorHandler(func(err error) {
		*errs = append(*errs, err)
	}))
	return b
}

// MaxFlushPasses caps the cascade passes a single flush may take.
// A low cap makes runaway feedback loops fail fast in tests.
func (b *Builder) MaxFlushPasses(n int) *Builder {
	b.opts = append(b.opts, fluxion.WithMaxFlushPasses(n))
	return b
}

// Options appends raw runtime options.
func (b *Builder) Options(opts ...fluxion.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build returns the final runtime for use in tests.
func (b *Builder) Build() *fluxion.Runtime {
	return fluxion.New(b.opts...)
}

// Recorder captures every value an effect observes from a source.
type Recorder[T any] struct {
	comp *fluxion.Computation
	got  []T
}

// Record starts an effect that calls source and appends each result to
// the recorder. The first capture happens immediately; later captures
// happen whenever a tracked dependency of source changes.
//
// Example:
//
//	count := fluxion.CreateSignal(rt, 0)
//	rec := reactest.Record(rt, count.Get)
//	count.Set(1)
//	rec.ExpectValues(t, 0, 1)
func Record[T any](rt *fluxion.Runtime, source func() T) *Recorder[T] {
	r := &Recorder[T]{}
	r.comp = fluxion.CreateEffect(rt, func() {
		r.got = append(r.got, source())
	})
	return r
}

// Values returns the captured values in observation order. The slice is
// the recorder's backing store; do not mutate it.
func (r *Recorder[T]) Values() []T {
	return r.got
}

// Len returns the number of captured values.
func (r *Recorder[T]) Len() int {
	return len(r.got)
}

// Reset discards captured values without detaching the effect.
func (r *Recorder[T]) Reset() {
	r.got = r.got[:0]
}

// Stop detaches the recording effect. Further writes are not captured.
func (r *Recorder[T]) Stop() {
	r.comp.Dispose()
}

// ExpectValues asserts the recorder captured exactly want, in order.
//
// Example:
//
//	rec.ExpectValues(t, 0, 1, 2)
func (r *Recorder[T]) ExpectValues(t *testing.T, want ...T) {
	t.Helper()
	if len(r.got) != len(want) {
		t.Errorf("expected %d captured values, got %d:\n%s", len(want), len(r.got), formatValues(r.got))
		return
	}
	for i := range want {
		if !reflect.DeepEqual(r.got[i], want[i]) {
			t.Errorf("captured value %d: expected %v, got %v", i, want[i], r.got[i])
		}
	}
}

// ExpectLast asserts the most recently captured value.
//
// Example:
//
//	rec.ExpectLast(t, 42)
func (r *Recorder[T]) ExpectLast(t *testing.T, want T) {
	t.Helper()
	if len(r.got) == 0 {
		t.Errorf("expected last value %v, captured nothing", want)
		return
	}
	if got := r.got[len(r.got)-1]; !reflect.DeepEqual(got, want) {
		t.Errorf("expected last value %v, got %v", want, got)
	}
}

// ExpectRuns asserts how many times the recording effect ran.
func (r *Recorder[T]) ExpectRuns(t *testing.T, want int) {
	t.Helper()
	if len(r.got) != want {
		t.Errorf("expected %d runs, got %d:\n%s", want, len(r.got), formatValues(r.got))
	}
}

// FlushCounter tallies flush activity on a runtime.
type FlushCounter struct {
	flushes int
	updates int
	effects int
}

// CountFlushes registers hooks on rt and returns a counter that tallies
// every subsequent flush. Counting starts at registration; flushes that
// completed earlier are not included.
//
// Example:
//
//	fc := reactest.CountFlushes(rt)
//	count.Set(1)
//	fc.ExpectFlushes(t, 1)
func CountFlushes(rt *fluxion.Runtime) *FlushCounter {
	fc := &FlushCounter{}
	rt.AddHooks(fluxion.Hooks{
		FlushCompleted: func(ev fluxion.FlushEvent) {
			fc.flushes++
			fc.updates += ev.UpdateRuns
			fc.effects += ev.EffectRuns
		},
	})
	return fc
}

// Flushes returns the number of completed flushes.
func (c *FlushCounter) Flushes() int { return c.flushes }

// UpdateRuns returns the total memo and computed executions observed.
func (c *FlushCounter) UpdateRuns() int { return c.updates }

// EffectRuns returns the total effect executions observed.
func (c *FlushCounter) EffectRuns() int { return c.effects }

// ExpectFlushes asserts the number of completed flushes.
//
// Example:
//
//	fc.ExpectFlushes(t, 2)
func (c *FlushCounter) ExpectFlushes(t *testing.T, want int) {
	t.Helper()
	if c.flushes != want {
		t.Errorf("expected %d flushes, got %d", want, c.flushes)
	}
}

// formatValues renders captured values for failure messages.
func formatValues[T any](vals []T) string {
	return truncate(fmt.Sprintf("%v", vals), 500)
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
