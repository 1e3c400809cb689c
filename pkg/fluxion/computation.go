package fluxion

import (
	"runtime/debug"
)

// nodeState tracks how out of date a computation is.
type nodeState uint8

const (
	// stateClean means the value is current.
	stateClean nodeState = iota

	// stateStale means a direct source changed; the node must re-run.
	stateStale

	// statePending means an upstream memo might have changed; whether
	// this node must re-run is unknown until the upstream resolves.
	statePending
)

func (s nodeState) String() string {
	switch s {
	case stateClean:
		return "clean"
	case stateStale:
		return "stale"
	case statePending:
		return "pending"
	default:
		return "invalid"
	}
}

// nodeKind discriminates the three computation flavors. Memos and
// computeds drain on the update queue, effects on the effect queue.
type nodeKind uint8

const (
	kindMemo nodeKind = iota
	kindComputed
	kindEffect
)

func (k nodeKind) String() string {
	switch k {
	case kindMemo:
		return "memo"
	case kindComputed:
		return "computed"
	case kindEffect:
		return "effect"
	default:
		return "invalid"
	}
}

// computation is a reactive node that re-runs when its tracked sources
// change. sources and sourceSlots mirror signalCore.observers and
// observerSlots from the other side of each edge. The embedded core
// carries the output cell (meaningful for memos, scratch for the rest)
// and the owner field carries the node's position in the ownership tree.
type computation struct {
	core signalCore

	// fn computes the next value from the previous one. nil after the
	// node is torn down.
	fn func(prev any) any

	kind  nodeKind
	state nodeState

	// tState shadows state while a transition is running. stateClean
	// doubles as "untouched"; the transition's shadowed set records
	// which nodes actually hold a shadow state.
	tState nodeState

	// updatedAt is the execCount stamp of the last completed run, -1
	// before the first run.
	updatedAt int

	sources     []*signalCore
	sourceSlots []int

	owner Owner

	// tOwned collects children created by a shadow re-run inside a
	// running transition. It replaces owner.owned at commit.
	tOwned []*computation

	disposed bool
}

// pure reports whether the node drains on the update queue.
func (c *computation) pure() bool {
	return c.kind != kindEffect
}

// stateOf reads a node's effective state: the shadow state while a
// transition is running, the committed state otherwise.
func (rt *Runtime) stateOf(c *computation) nodeState {
	if rt.transitionRunning() {
		return c.tState
	}
	return c.state
}

// setState writes a node's effective state, recording shadow touches in
// the running transition so commit and abort can restore them.
func (rt *Runtime) setState(c *computation, s nodeState) {
	if rt.transitionRunning() {
		c.tState = s
		rt.transition.shadowed.Add(c)
		return
	}
	c.state = s
}

// createComputation allocates a node and attaches it to the current
// owner. Shadow re-runs of pure nodes collect children in tOwned so the
// committed tree stays intact until the transition commits.
func (rt *Runtime) createComputation(kind nodeKind, fn func(prev any) any, initial any, st nodeState) *computation {
	c := &computation{
		fn:        fn,
		kind:      kind,
		state:     st,
		updatedAt: -1,
	}
	c.core = signalCore{id: nextID(), rt: rt, value: initial}
	if kind == kindMemo {
		c.core.comp = c
		c.core.eq = defaultEquals
	}
	c.owner.comp = c
	if o := rt.owner; o != nil {
		c.owner.parent = o
		if rt.transitionRunning() && o.comp != nil && o.comp.pure() {
			o.comp.tOwned = append(o.comp.tOwned, c)
		} else {
			o.owned = append(o.owned, c)
		}
	}
	rt.emitComputationCreated(c)
	return c
}

// updateComputation re-runs a node: tear down its previous edges and
// children, run fn with the node installed as listener and owner, then
// restore the previous context. Restoration happens on the way out of a
// panic too, so an error left behind by user code never leaks a stale
// listener.
func (rt *Runtime) updateComputation(node *computation) {
	if node.fn == nil || node.disposed {
		return
	}
	rt.cleanNode(node)
	prevOwner, prevListener := rt.owner, rt.listener
	rt.owner, rt.listener = &node.owner, node
	defer func() {
		rt.owner, rt.listener = prevOwner, prevListener
	}()
	prev := node.core.value
	if t := rt.transition; t != nil && t.running && t.sources.Contains(&node.core) {
		prev = node.core.tValue
	}
	rt.runComputation(node, prev, rt.execCount)
}

// runComputation invokes the node's function and stores its result. A
// memo result goes through writeCore so equality gating and observer
// marking apply; effects and computeds store directly. A recovered
// panic detaches whatever partial edges the failed run registered and
// re-marks pure nodes stale so the next read retries.
func (rt *Runtime) runComputation(node *computation, prev any, time int) {
	if Debug.LogComputations {
		debugLogger().Debug("fluxion: run",
			"kind", node.kind.String(),
			"id", node.core.id,
			"state", rt.stateOf(node).String(),
		)
	}
	if node.pure() {
		rt.statUpdates++
	} else {
		rt.statEffects++
	}
	next, err := rt.invoke(node, prev)
	if err != nil {
		rt.cleanNode(node)
		if node.pure() {
			rt.setState(node, stateStale)
		}
		node.updatedAt = time + 1
		rt.raiseError(err)
		return
	}
	if node.updatedAt <= time {
		if node.updatedAt >= 0 && node.kind == kindMemo {
			rt.writeCore(&node.core, next)
		} else if t := rt.transition; t != nil && t.running && node.pure() {
			// First run inside a running transition: the result is a
			// transition write and stays in the shadow slot until commit.
			t.sources.Add(&node.core)
			node.core.tValue = next
		} else {
			// First run of a memo, or an effect/computed result: store
			// directly, observers cannot predate this value.
			node.core.value = next
		}
		node.updatedAt = time
	}
}

func (rt *Runtime) invoke(node *computation, prev any) (next any, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case *RunawayFlushError:
				// Fatal: aborts the whole flush, never handled here.
				panic(v)
			case *ComputationPanicError:
				// Already wrapped at an inner boundary; this node still
				// needs its own edge cleanup.
				err = v
			default:
				err = &ComputationPanicError{
					ID:    node.core.id,
					Kind:  node.kind.String(),
					Value: r,
					Stack: debug.Stack(),
				}
			}
		}
	}()
	return node.fn(prev), nil
}

// cleanNode detaches the node from all its sources, disposes its
// children, and runs its cleanups in reverse order. Each source edge is
// unlinked in O(1): pop this side, swap-and-pop the observer side, and
// patch the moved observer's back index.
func (rt *Runtime) cleanNode(node *computation) {
	for len(node.sources) > 0 {
		last := len(node.sources) - 1
		source := node.sources[last]
		index := node.sourceSlots[last]
		node.sources[last] = nil
		node.sources = node.sources[:last]
		node.sourceSlots = node.sourceSlots[:last]
		n := len(source.observers) - 1
		if n < 0 {
			continue
		}
		moved := source.observers[n]
		movedSlot := source.observerSlots[n]
		source.observers[n] = nil
		source.observers = source.observers[:n]
		source.observerSlots = source.observerSlots[:n]
		if index < n {
			moved.sourceSlots[movedSlot] = index
			source.observers[index] = moved
			source.observerSlots[index] = movedSlot
		}
	}
	if rt.transitionRunning() && node.pure() {
		// Shadow re-run: children from the previous shadow run die, the
		// committed children survive until commit swaps them out.
		for i := len(node.tOwned) - 1; i >= 0; i-- {
			rt.disposeNow(node.tOwned[i])
		}
		node.tOwned = nil
	} else {
		if node.tOwned != nil {
			for i := len(node.tOwned) - 1; i >= 0; i-- {
				rt.disposeNow(node.tOwned[i])
			}
			node.tOwned = nil
		}
		for i := len(node.owner.owned) - 1; i >= 0; i-- {
			rt.disposeNow(node.owner.owned[i])
		}
		node.owner.owned = nil
	}
	if len(node.owner.cleanups) > 0 {
		prev := rt.listener
		rt.listener = nil
		for i := len(node.owner.cleanups) - 1; i >= 0; i-- {
			node.owner.cleanups[i]()
		}
		rt.listener = prev
		node.owner.cleanups = nil
	}
	rt.setState(node, stateClean)
}

// disposeComputation is the public disposal path. Inside a running
// transition the node keeps operating in the committed world and is
// recorded for disposal at commit; otherwise it is torn down now.
// Disposal is idempotent.
func (rt *Runtime) disposeComputation(c *computation) {
	if c == nil || c.disposed {
		return
	}
	if t := rt.transition; t != nil && t.running {
		t.disposed.Add(c)
		c.tState = stateClean
		t.shadowed.Add(c)
		return
	}
	rt.disposeNow(c)
}

func (rt *Runtime) disposeNow(c *computation) {
	if c.disposed {
		return
	}
	rt.cleanNode(c)
	c.disposed = true
}

// Computation is the handle returned for effects and computeds.
type Computation struct {
	node *computation
}

// ID returns the computation's unique identifier, matching the ID seen
// by hooks.
func (c *Computation) ID() uint64 {
	return c.node.core.id
}

// Dispose detaches the computation from all sources, disposes owned
// children, and runs cleanups. Subsequent source changes no longer
// re-run it. Calling Dispose again is a no-op. Inside a running
// transition the teardown is deferred to the transition commit.
func (c *Computation) Dispose() {
	c.node.core.rt.disposeComputation(c.node)
}
