package fluxion

// runUpdates is the single entry point for graph work. If an update
// collection is already active the work joins it; otherwise a new
// collection starts and, unless an enclosing flush owns the effect
// queue, this call becomes the outermost flush and drains everything
// before returning.
func (rt *Runtime) runUpdates(fn func()) {
	if rt.updates != nil {
		fn()
		return
	}
	wait := rt.effects != nil
	if !wait {
		rt.effects = make([]*computation, 0, 8)
		rt.beginFlush()
	}
	rt.updates = make([]*computation, 0, 8)
	rt.execCount++
	func() {
		defer func() {
			rt.updates = nil
			if !wait {
				rt.effects = nil
			}
		}()
		fn()
		rt.completeUpdates(wait)
	}()
	if !wait {
		rt.finishFlush()
	}
}

// completeUpdates drains the update queue, then, for the outermost
// flush, alternates transition settlement and effect passes until the
// graph is quiescent. Each effect pass may queue new updates and
// effects; the pass counter bounds the loop.
func (rt *Runtime) completeUpdates(wait bool) {
	if rt.updates != nil {
		rt.runQueue()
		rt.updates = nil
	}
	if wait {
		return
	}
	var resolved []chan struct{}
	defer func() {
		for _, ch := range resolved {
			close(ch)
		}
	}()
	for {
		if t := rt.transition; t != nil {
			if rt.transitionStep(t) == transitionCommitted {
				resolved = append(resolved, t.done)
			}
		}
		if len(rt.effects) == 0 {
			return
		}
		rt.flushPasses++
		if rt.flushPasses > rt.maxFlushPasses {
			panic(&RunawayFlushError{Passes: rt.maxFlushPasses})
		}
		queue := rt.effects
		rt.effects = make([]*computation, 0, len(queue))
		rt.updates = make([]*computation, 0, 8)
		rt.execCount++
		rt.runEffects(queue)
		rt.runQueue()
		rt.updates = nil
	}
}

// runQueue drains rt.updates to a fixed point. The slice is read through
// the field, not a local copy: runTop can append while we drain and the
// append may reallocate the backing array.
func (rt *Runtime) runQueue() {
	for i := 0; i < len(rt.updates); i++ {
		rt.runTop(rt.updates[i])
	}
}

func (rt *Runtime) runEffects(queue []*computation) {
	for _, e := range queue {
		if e.disposed {
			continue
		}
		rt.runTop(e)
	}
}

// runTop re-runs node if it is still out of date, resolving stale owner
// ancestors first so a node never runs under an owner that is itself
// about to re-run (which would immediately dispose it again).
func (rt *Runtime) runTop(node *computation) {
	switch rt.stateOf(node) {
	case stateClean:
		return
	case statePending:
		rt.lookUpstream(node, nil)
		return
	}
	tr := rt.transitionRunning()
	ancestors := []*computation{node}
	for o := node.owner.parent; o != nil; o = o.parent {
		c := o.comp
		if c == nil {
			continue
		}
		if c.updatedAt >= rt.execCount {
			break
		}
		if tr && rt.transition.disposed.Contains(c) {
			return
		}
		if rt.stateOf(c) != stateClean {
			ancestors = append(ancestors, c)
		}
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		n := ancestors[i]
		if tr {
			// An ancestor run above may have disposed this branch in the
			// shadow world; re-walk the chain up to the last processed
			// ancestor before touching n.
			var stop *Owner
			if i+1 < len(ancestors) {
				stop = &ancestors[i+1].owner
			}
			for o := n.owner.parent; o != nil && o != stop; o = o.parent {
				if o.comp != nil && rt.transition.disposed.Contains(o.comp) {
					return
				}
			}
		}
		switch rt.stateOf(n) {
		case stateStale:
			rt.updateComputation(n)
		case statePending:
			saved := rt.updates
			rt.updates = nil
			rt.runUpdates(func() { rt.lookUpstream(n, ancestors[0]) })
			rt.updates = saved
		}
	}
}

// lookUpstream resolves a pending node: visit its memo sources, re-run
// the stale ones, recurse into the pending ones. If every upstream memo
// settles to an equal value the node itself settles clean without
// running. ignore skips the node runTop is already descending through.
func (rt *Runtime) lookUpstream(node *computation, ignore *computation) {
	rt.setState(node, stateClean)
	for _, src := range node.sources {
		c := src.comp
		if c == nil || c.fn == nil {
			continue
		}
		switch rt.stateOf(c) {
		case stateStale:
			if c != ignore && c.updatedAt < rt.execCount {
				rt.runTop(c)
			}
		case statePending:
			rt.lookUpstream(c, ignore)
		}
	}
}

// markDownstream marks everything downstream of a memo pending. Only
// clean nodes are marked and enqueued: anything already stale or
// pending is queued already.
func (rt *Runtime) markDownstream(core *signalCore) {
	for _, o := range core.observers {
		if rt.stateOf(o) != stateClean {
			continue
		}
		rt.setState(o, statePending)
		if o.pure() {
			rt.updates = append(rt.updates, o)
		} else {
			rt.effects = append(rt.effects, o)
		}
		if o.kind == kindMemo {
			rt.markDownstream(&o.core)
		}
	}
}
