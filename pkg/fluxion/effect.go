package fluxion

// CreateEffect creates an effect that runs fn now (or at the end of the
// current flush, if one is active) and again whenever a tracked source
// changes. Effects drain after all memo and computed updates of the
// same flush, so fn always observes a settled graph:
//
//	fluxion.CreateEffect(rt, func() {
//	    log.Printf("user = %s", user.Get())
//	})
//
// The returned handle detaches the effect; effects created under an
// owner are also disposed with it.
func CreateEffect(rt *Runtime, fn func()) *Computation {
	rt.checkAffinity()
	c := rt.createComputation(kindEffect, func(any) any {
		fn()
		return nil
	}, nil, stateStale)
	if rt.effects != nil {
		rt.effects = append(rt.effects, c)
	} else {
		rt.updateComputation(c)
	}
	return &Computation{node: c}
}

// CreateComputed creates an eager computation: like an effect it exists
// for its side effects, but it drains on the update queue, before any
// effect of the same flush. Use it to push derived state into other
// signals; effects that read those signals then see the final value:
//
//	fluxion.CreateComputed(rt, func() {
//	    total.Set(price.Get() * quantity.Get())
//	})
func CreateComputed(rt *Runtime, fn func()) *Computation {
	rt.checkAffinity()
	c := rt.createComputation(kindComputed, func(any) any {
		fn()
		return nil
	}, nil, stateStale)
	rt.updateComputation(c)
	return &Computation{node: c}
}

// OnMount runs fn once, untracked, after the current flush settles. It
// is an effect with no dependencies: nothing fn reads subscribes it.
func OnMount(rt *Runtime, fn func()) {
	CreateEffect(rt, func() {
		Untracked(rt, fn)
	})
}
