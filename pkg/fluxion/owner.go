package fluxion

// Owner is a node in the ownership tree. Every computation is an owner
// (of the computations and cleanups created during its run); roots
// created by CreateRoot are owners with no computation attached.
type Owner struct {
	parent   *Owner
	owned    []*computation
	cleanups []func()

	// comp points back to the computation this owner belongs to; nil for
	// roots.
	comp *computation

	disposed bool
}

// CreateRoot establishes an unowned scope for a reactive subgraph and
// runs fn inside it. Computations created during fn (and during any
// later re-run of those computations) attach to the root, so the whole
// subgraph tears down with one dispose call. The dispose function is
// both passed to fn and returned:
//
//	dispose := fluxion.CreateRoot(rt, func(dispose func()) {
//	    fluxion.CreateEffect(rt, func() { render(view.Get()) })
//	})
//	defer dispose()
//
// The root is not owned by any enclosing scope; disposing an outer root
// does not dispose roots created under it.
func CreateRoot(rt *Runtime, fn func(dispose func())) func() {
	rt.checkAffinity()
	root := &Owner{parent: rt.owner}
	dispose := func() {
		prev := rt.listener
		rt.listener = nil
		defer func() { rt.listener = prev }()
		rt.disposeOwner(root)
	}
	prevOwner, prevListener := rt.owner, rt.listener
	rt.owner, rt.listener = root, nil
	defer func() {
		rt.owner, rt.listener = prevOwner, prevListener
	}()
	rt.runUpdates(func() { fn(dispose) })
	return dispose
}

// disposeOwner tears down a root: children in reverse creation order,
// then cleanups in reverse registration order. Idempotent.
func (rt *Runtime) disposeOwner(o *Owner) {
	if o.disposed {
		return
	}
	o.disposed = true
	for i := len(o.owned) - 1; i >= 0; i-- {
		rt.disposeComputation(o.owned[i])
	}
	o.owned = nil
	for i := len(o.cleanups) - 1; i >= 0; i-- {
		o.cleanups[i]()
	}
	o.cleanups = nil
}

// OnCleanup registers fn with the current owner. It runs when the owner
// is disposed or, for computations, immediately before each re-run, in
// reverse registration order. Outside any owner the callback can never
// fire and is dropped with a debug log.
func OnCleanup(rt *Runtime, fn func()) {
	if fn == nil {
		return
	}
	if o := rt.owner; o != nil {
		o.cleanups = append(o.cleanups, fn)
		return
	}
	debugLogger().Debug("fluxion: OnCleanup outside a root or computation; callback will never run")
}

// CurrentOwner returns the owner new computations would attach to, or
// nil outside any scope. Capture it when handing work to code that runs
// later under RunWithOwner.
func CurrentOwner(rt *Runtime) *Owner {
	return rt.owner
}

// RunWithOwner runs fn with o installed as the current owner and no
// listener, so computations created inside attach to o instead of the
// scope that happens to be executing:
//
//	owner := fluxion.CurrentOwner(rt)
//	later = func() {
//	    fluxion.RunWithOwner(rt, owner, func() {
//	        fluxion.CreateEffect(rt, func() { ... })
//	    })
//	}
func RunWithOwner(rt *Runtime, o *Owner, fn func()) {
	prevOwner, prevListener := rt.owner, rt.listener
	rt.owner, rt.listener = o, nil
	defer func() {
		rt.owner, rt.listener = prevOwner, prevListener
	}()
	rt.runUpdates(fn)
}
