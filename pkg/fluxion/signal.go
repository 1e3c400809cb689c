package fluxion

// signalCore is the type-erased reactive cell shared by signals and
// memos. observers and observerSlots are parallel slices: observerSlots[i]
// is the index of this core inside observers[i].sources, so either side
// of an edge can unlink it in O(1) with a swap-and-pop.
type signalCore struct {
	id uint64
	rt *Runtime

	// value is the committed value. tValue shadows it while a transition
	// holds this core in its source set.
	value  any
	tValue any

	eq func(prev, next any) bool

	observers     []*computation
	observerSlots []int

	// comp is set when this core is a memo's output cell. Readers use it
	// to resolve a stale memo before taking its value.
	comp *computation
}

// trackEdge links the current listener to core. Consecutive reads of the
// same core inside one computation add a single edge.
func (rt *Runtime) trackEdge(core *signalCore) {
	l := rt.listener
	if n := len(l.sources); n > 0 && l.sources[n-1] == core {
		return
	}
	sSlot := len(core.observers)
	l.sources = append(l.sources, core)
	l.sourceSlots = append(l.sourceSlots, sSlot)
	core.observers = append(core.observers, l)
	core.observerSlots = append(core.observerSlots, len(l.sources)-1)
}

// readCore returns the core's current value, after bringing a non-clean
// memo cell up to date. When track is set and a listener is running, a
// dependency edge is recorded.
func (rt *Runtime) readCore(core *signalCore, track bool) any {
	rt.checkAffinity()
	if c := core.comp; c != nil && c.fn != nil {
		switch rt.stateOf(c) {
		case stateStale:
			rt.updateComputation(c)
		case statePending:
			// A pending memo needs its upstream resolved outside the
			// queue that is currently draining.
			saved := rt.updates
			rt.updates = nil
			rt.runUpdates(func() { rt.lookUpstream(c, nil) })
			rt.updates = saved
		}
	}
	if track && rt.listener != nil {
		rt.trackEdge(core)
	}
	if t := rt.transition; t != nil && t.running && t.sources.Contains(core) {
		return core.tValue
	}
	return core.value
}

// writeCore installs next as the core's value and marks its observers.
// Inside a running transition the write lands in the shadow slot instead
// and the committed value stays untouched.
func (rt *Runtime) writeCore(core *signalCore, next any) {
	rt.checkAffinity()
	current := core.value
	if t := rt.transition; t != nil && t.running && t.sources.Contains(core) {
		current = core.tValue
	}
	if core.eq != nil && core.eq(current, next) {
		return
	}
	if t := rt.transition; t != nil {
		if t.running || (core.comp == nil && t.sources.Contains(core)) {
			t.sources.Add(core)
			core.tValue = next
		}
		if !t.running {
			core.value = next
		}
	} else {
		core.value = next
	}
	if len(core.observers) == 0 {
		return
	}
	rt.runUpdates(func() {
		for _, o := range core.observers {
			if rt.transitionRunning() && rt.transition.disposed.Contains(o) {
				continue
			}
			if rt.stateOf(o) == stateClean {
				if o.pure() {
					rt.updates = append(rt.updates, o)
				} else {
					rt.effects = append(rt.effects, o)
				}
				if o.kind == kindMemo {
					rt.markDownstream(&o.core)
				}
			}
			rt.setState(o, stateStale)
		}
	})
}

// Signal is a reactive value cell. Create one with CreateSignal; the
// zero value is not usable.
type Signal[T any] struct {
	core *signalCore
}

// CreateSignal creates a signal holding initial. Writes that compare
// equal to the current value (see defaultEquals) do not propagate;
// change the comparison with WithEquals.
//
//	count := fluxion.CreateSignal(rt, 0)
//	name := fluxion.CreateSignal(rt, "Ada")
func CreateSignal[T any](rt *Runtime, initial T) *Signal[T] {
	return &Signal[T]{core: &signalCore{
		id:    nextID(),
		rt:    rt,
		value: initial,
		eq:    defaultEquals,
	}}
}

// WithEquals replaces the signal's equality function and returns the
// signal for chaining. A nil eq restores the default:
//
//	pos := fluxion.CreateSignal(rt, 0.0).WithEquals(func(a, b float64) bool {
//	    return math.Abs(a-b) < 1e-9
//	})
func (s *Signal[T]) WithEquals(eq func(prev, next T) bool) *Signal[T] {
	if eq == nil {
		s.core.eq = defaultEquals
	} else {
		s.core.eq = func(prev, next any) bool {
			p, _ := prev.(T)
			n, _ := next.(T)
			return eq(p, n)
		}
	}
	return s
}

// Get returns the current value. Called inside a memo, computed, or
// effect it subscribes that computation to this signal.
func (s *Signal[T]) Get() T {
	return coerce[T](s.core.rt.readCore(s.core, true))
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return coerce[T](s.core.rt.readCore(s.core, false))
}

// Set writes a new value. If the value changed per the signal's equality
// function, observers re-run before Set returns unless a batch or
// transition is active.
func (s *Signal[T]) Set(next T) {
	s.core.rt.writeCore(s.core, next)
}

// Update writes the result of fn applied to the current value. Inside a
// running transition the current value is the shadow value, so chained
// updates compose within the transition:
//
//	count.Update(func(n int) int { return n + 1 })
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.Peek()))
}

// coerce unwraps a type-erased cell value. A nil cell value yields the
// zero value rather than a failed type assertion.
func coerce[T any](v any) T {
	t, _ := v.(T)
	return t
}
