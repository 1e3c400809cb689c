package fluxion

import (
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

// transition double-buffers a batch of graph work. While it runs,
// writes land in shadow slots (signalCore.tValue, computation.tState)
// and the committed graph stays fully readable; commit publishes every
// shadow atomically from the reader's point of view.
type transition struct {
	// sources is every core holding a shadow value.
	sources mapset.Set[*signalCore]

	// shadowed is every computation whose tState was touched. Commit
	// copies tState over state for exactly these nodes; abort resets
	// them.
	shadowed mapset.Set[*computation]

	// disposed collects nodes disposed while the transition ran. They
	// keep operating in the committed world until commit tears them
	// down.
	disposed mapset.Set[*computation]

	// effects are deferred effect runs, queued when the transition
	// parked instead of committing.
	effects []*computation

	// gates counts outstanding release functions from GateTransition.
	// The only field touched from other goroutines.
	gates atomic.Int64

	// running is true while transition work is executing on the runtime
	// goroutine, making shadow state readable.
	running bool

	// done closes when the transition settles (commit or abort).
	done chan struct{}
}

func newTransition() *transition {
	return &transition{
		sources:  mapset.NewThreadUnsafeSet[*signalCore](),
		shadowed: mapset.NewThreadUnsafeSet[*computation](),
		disposed: mapset.NewThreadUnsafeSet[*computation](),
		done:     make(chan struct{}),
	}
}

func (rt *Runtime) transitionRunning() bool {
	return rt.transition != nil && rt.transition.running
}

type transitionOutcome int

const (
	transitionIdle transitionOutcome = iota
	transitionParked
	transitionCommitted
)

// transitionStep is called once per flush loop iteration while a
// transition exists. With no gates outstanding it commits. If the
// transition is still running it parks: deferred effects move to the
// transition, the pending flag flips on, and urgent work proceeds
// against the committed graph.
func (rt *Runtime) transitionStep(t *transition) transitionOutcome {
	if t.gates.Load() == 0 {
		rt.commitTransition(t)
		return transitionCommitted
	}
	if t.running {
		t.running = false
		t.effects = append(t.effects, rt.effects...)
		rt.effects = rt.effects[:0]
		rt.setPending(true)
		return transitionParked
	}
	return transitionIdle
}

// commitTransition publishes the shadow world: shadow values become
// committed values (swapping in shadow-created children), shadow states
// become committed states, deferred disposals execute, and the deferred
// effects already sit on the live queue for the passes that follow.
func (rt *Runtime) commitTransition(t *transition) {
	rt.transition = nil
	rt.effects = append(rt.effects, t.effects...)
	t.effects = nil
	rt.runUpdates(func() {
		for _, core := range t.sources.ToSlice() {
			core.value = core.tValue
			core.tValue = nil
			if c := core.comp; c != nil {
				for i := len(c.owner.owned) - 1; i >= 0; i-- {
					rt.disposeNow(c.owner.owned[i])
				}
				c.owner.owned = c.tOwned
				c.tOwned = nil
			}
		}
		for _, c := range t.shadowed.ToSlice() {
			c.state = c.tState
			c.tState = stateClean
		}
		for _, d := range t.disposed.ToSlice() {
			rt.disposeNow(d)
		}
		rt.setPending(false)
	})
	rt.flushCommitted = true
}

// abortTransition discards the shadow world after a panic escaped the
// transition body. Shadow values and states reset; deferred disposals
// still execute, matching what commit would have torn down.
func (rt *Runtime) abortTransition(t *transition) {
	rt.transition = nil
	t.running = false
	for _, core := range t.sources.ToSlice() {
		core.tValue = nil
	}
	for _, c := range t.shadowed.ToSlice() {
		c.tState = stateClean
		if c.tOwned != nil {
			for i := len(c.tOwned) - 1; i >= 0; i-- {
				rt.disposeNow(c.tOwned[i])
			}
			c.tOwned = nil
		}
	}
	for _, d := range t.disposed.ToSlice() {
		rt.disposeNow(d)
	}
	t.effects = nil
	close(t.done)
}

func (rt *Runtime) setPending(v bool) {
	rt.writeCore(rt.pendingCore, v)
}

// TransitionPending reports whether a transition is parked waiting on
// gates. It reads a signal: effects and memos calling it re-run when
// the flag flips.
func (rt *Runtime) TransitionPending() bool {
	return coerce[bool](rt.readCore(rt.pendingCore, true))
}

// StartTransition runs fn inside a transition. Writes made during fn
// (and during the re-runs they trigger) build a shadow version of the
// graph; reads from inside the transition see shadow values while reads
// from outside keep seeing committed values. With no gates registered
// the transition commits before StartTransition returns; otherwise it
// parks, effects stay deferred, and commit happens after the last gate
// releases. The returned channel closes when the transition settles:
//
//	done := fluxion.StartTransition(rt, func() {
//	    query.Set(q)
//	})
//
// Calling StartTransition while a transition is parked joins the
// pending transition. A panic out of fn aborts an ungated transition,
// discarding its shadow state, and re-panics.
func StartTransition(rt *Runtime, fn func()) <-chan struct{} {
	rt.checkAffinity()
	if t := rt.transition; t != nil && t.running {
		fn()
		return t.done
	}
	t := rt.transition
	if t == nil {
		t = newTransition()
		rt.transition = t
	}
	t.running = true
	defer func() {
		if r := recover(); r != nil {
			if rt.transition == t && t.gates.Load() == 0 {
				rt.abortTransition(t)
			}
			panic(r)
		}
	}()
	rt.runUpdates(fn)
	return t.done
}

// GateTransition holds the current transition open across asynchronous
// work. The returned release function is idempotent and is the one
// runtime entry point safe to call from another goroutine; when the
// last gate releases, commit is scheduled through the Runtime's
// scheduler hook. Without an active transition the release function is
// a no-op:
//
//	fluxion.StartTransition(rt, func() {
//	    release := rt.GateTransition()
//	    go func() {
//	        rows := fetch(query.Peek())
//	        loop.Post(func() { results.Set(rows); release() })
//	    }()
//	})
func (rt *Runtime) GateTransition() func() {
	t := rt.transition
	if t == nil {
		return func() {}
	}
	t.gates.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			if t.gates.Add(-1) == 0 {
				rt.schedule(func() { rt.settleTransition(t) })
			}
		})
	}
}

// settleTransition attempts commit after the last gate released. An
// empty flush is enough: completeUpdates sees the gateless transition
// and commits it.
func (rt *Runtime) settleTransition(t *transition) {
	if rt.transition != t || t.running {
		return
	}
	rt.runUpdates(func() {})
}
