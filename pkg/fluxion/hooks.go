package fluxion

import "time"

// ComputationEvent describes a computation at creation time.
type ComputationEvent struct {
	// ID is the computation's unique identifier.
	ID uint64

	// Kind is "memo", "computed", or "effect".
	Kind string

	// Owned reports whether the computation was created under an owner.
	// Unowned computations are never disposed automatically.
	Owned bool
}

// FlushEvent summarizes one completed flush.
type FlushEvent struct {
	// Seq increments once per flush on the Runtime.
	Seq uint64

	// Duration is the wall time from first mark to quiescence.
	Duration time.Duration

	// Passes counts effect passes the flush needed to stabilize.
	Passes int

	// UpdateRuns counts memo and computed executions.
	UpdateRuns int

	// EffectRuns counts effect executions.
	EffectRuns int

	// TransitionCommitted reports whether a transition committed during
	// this flush.
	TransitionCommitted bool
}

// Hooks observe runtime activity without participating in it. Hook
// callbacks run synchronously on the runtime goroutine and must not
// read or write reactive state.
type Hooks struct {
	// ComputationCreated fires after a memo, computed, or effect is
	// created and attached to its owner.
	ComputationCreated func(ComputationEvent)

	// FlushCompleted fires after an outermost flush reaches quiescence.
	FlushCompleted func(FlushEvent)
}

// AddHooks registers an additional Hooks set. Multiple sets fire in
// registration order.
func (rt *Runtime) AddHooks(h Hooks) {
	rt.hooks = append(rt.hooks, h)
}

func (rt *Runtime) emitComputationCreated(c *computation) {
	if len(rt.hooks) == 0 {
		return
	}
	ev := ComputationEvent{
		ID:    c.core.id,
		Kind:  c.kind.String(),
		Owned: c.owner.parent != nil,
	}
	for _, h := range rt.hooks {
		if h.ComputationCreated != nil {
			h.ComputationCreated(ev)
		}
	}
}

func (rt *Runtime) beginFlush() {
	rt.flushPasses = 0
	rt.statUpdates = 0
	rt.statEffects = 0
	rt.flushCommitted = false
	if len(rt.hooks) > 0 || Debug.LogFlushes {
		rt.flushStart = time.Now()
	}
}

func (rt *Runtime) finishFlush() {
	rt.flushSeq++
	if len(rt.hooks) == 0 && !Debug.LogFlushes {
		return
	}
	ev := FlushEvent{
		Seq:                 rt.flushSeq,
		Duration:            time.Since(rt.flushStart),
		Passes:              rt.flushPasses,
		UpdateRuns:          rt.statUpdates,
		EffectRuns:          rt.statEffects,
		TransitionCommitted: rt.flushCommitted,
	}
	if Debug.LogFlushes {
		debugLogger().Debug("fluxion: flush complete",
			"seq", ev.Seq,
			"passes", ev.Passes,
			"updates", ev.UpdateRuns,
			"effects", ev.EffectRuns,
			"duration", ev.Duration,
			"transition", ev.TransitionCommitted,
		)
	}
	for _, h := range rt.hooks {
		if h.FlushCompleted != nil {
			h.FlushCompleted(ev)
		}
	}
}
