package fluxion

// Memo is a cached derived value. It re-runs only when a tracked source
// changed, and its observers re-run only when the new result differs
// per the memo's equality function.
type Memo[T any] struct {
	node *computation
}

// CreateMemo creates a memo from fn and computes its initial value
// immediately, under the current owner and with dependency tracking:
//
//	full := fluxion.CreateMemo(rt, func() string {
//	    return first.Get() + " " + last.Get()
//	})
//
// A memo whose recomputed value equals the previous one stops
// propagation: downstream nodes marked on its behalf settle back to
// clean without re-running.
func CreateMemo[T any](rt *Runtime, fn func() T) *Memo[T] {
	rt.checkAffinity()
	c := rt.createComputation(kindMemo, func(any) any { return fn() }, nil, stateClean)
	rt.updateComputation(c)
	return &Memo[T]{node: c}
}

// WithEquals replaces the memo's equality function and returns the memo
// for chaining. A nil eq restores the default. Use Never to make every
// recomputation propagate.
func (m *Memo[T]) WithEquals(eq func(prev, next T) bool) *Memo[T] {
	if eq == nil {
		m.node.core.eq = defaultEquals
	} else {
		m.node.core.eq = func(prev, next any) bool {
			p, _ := prev.(T)
			n, _ := next.(T)
			return eq(p, n)
		}
	}
	return m
}

// Get returns the memo's value, recomputing it first if a dependency
// changed. Called inside a computation it subscribes that computation
// to the memo.
func (m *Memo[T]) Get() T {
	return coerce[T](m.node.core.rt.readCore(&m.node.core, true))
}

// Peek returns the memo's value without subscribing. The value is still
// brought up to date first.
func (m *Memo[T]) Peek() T {
	return coerce[T](m.node.core.rt.readCore(&m.node.core, false))
}

// Dispose permanently stops the memo. See Computation.Dispose.
func (m *Memo[T]) Dispose() {
	m.node.core.rt.disposeComputation(m.node)
}
