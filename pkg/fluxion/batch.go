package fluxion

// Batch runs fn collecting all signal writes into one flush. Observers
// see the graph after every write in fn has landed, and each affected
// computation runs at most once per flush pass no matter how many of
// its sources changed:
//
//	fluxion.Batch(rt, func() {
//	    first.Set("Grace")
//	    last.Set("Hopper")
//	})
//
// Batches nest; only the outermost flushes.
func Batch(rt *Runtime, fn func()) {
	rt.checkAffinity()
	rt.runUpdates(fn)
}

// BatchValue is Batch for functions with a result:
//
//	total := fluxion.BatchValue(rt, func() int {
//	    quantity.Set(3)
//	    return quantity.Get() * price.Get()
//	})
func BatchValue[T any](rt *Runtime, fn func() T) T {
	rt.checkAffinity()
	var out T
	rt.runUpdates(func() { out = fn() })
	return out
}

// Untrack runs fn with dependency tracking suspended and returns its
// result. Reads inside fn do not subscribe the current computation:
//
//	fluxion.CreateEffect(rt, func() {
//	    id := user.Get()
//	    stamp := fluxion.Untrack(rt, clock.Get)
//	    log.Printf("user %d at %d", id, stamp)
//	})
func Untrack[T any](rt *Runtime, fn func() T) T {
	prev := rt.listener
	rt.listener = nil
	defer func() { rt.listener = prev }()
	return fn()
}

// Untracked is Untrack for functions with no result.
func Untracked(rt *Runtime, fn func()) {
	prev := rt.listener
	rt.listener = nil
	defer func() { rt.listener = prev }()
	fn()
}
