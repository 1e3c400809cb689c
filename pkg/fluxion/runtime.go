package fluxion

import "time"

// DefaultMaxFlushPasses bounds how many effect passes a single flush may
// take before the runtime declares it runaway and panics with
// *RunawayFlushError. Override per Runtime with WithMaxFlushPasses.
const DefaultMaxFlushPasses = 100000

// Runtime owns one reactive graph: its signals, computations, scheduler
// queues, and transition state. Runtimes are independent; state created
// on one never interacts with another. A Runtime and everything created
// on it must be used from a single goroutine (see the package
// documentation for the one exception).
type Runtime struct {
	// listener is the computation currently executing, if any. Signal
	// reads register dependency edges against it.
	listener *computation

	// owner is the owner new computations and cleanups attach to.
	owner *Owner

	// updates and effects are the two flush queues. A nil updates slice
	// means no update collection is active; a nil effects slice means no
	// flush is active. Writes outside a flush start one.
	updates []*computation
	effects []*computation

	// execCount stamps computation runs so one flush pass never runs the
	// same node twice.
	execCount int

	flushPasses    int
	maxFlushPasses int

	transition  *transition
	pendingCore *signalCore

	onError  func(error)
	schedule func(resume func())
	hooks    []Hooks

	flushSeq       uint64
	statUpdates    int
	statEffects    int
	flushStart     time.Time
	flushCommitted bool

	// gid pins the runtime to a goroutine under Debug.EnforceAffinity.
	gid int64
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithErrorHandler routes errors recovered from user computations to h
// instead of panicking. After h returns, the flush continues with the
// remaining queued work; the failed node keeps serving its previous
// value until a dependency changes again. Cycle and runaway errors are
// never routed to h.
func WithErrorHandler(h func(error)) Option {
	return func(rt *Runtime) {
		rt.onError = h
	}
}

// WithMaxFlushPasses overrides DefaultMaxFlushPasses. Values below 1
// are ignored.
func WithMaxFlushPasses(n int) Option {
	return func(rt *Runtime) {
		if n >= 1 {
			rt.maxFlushPasses = n
		}
	}
}

// WithScheduler installs the hook that resumes a gated transition after
// its last gate releases. The default invokes resume inline on the
// releasing goroutine; single-threaded hosts typically post resume to
// their event loop instead:
//
//	rt := fluxion.New(fluxion.WithScheduler(func(resume func()) {
//	    loop.Post(resume)
//	}))
func WithScheduler(s func(resume func())) Option {
	return func(rt *Runtime) {
		if s != nil {
			rt.schedule = s
		}
	}
}

// WithHooks registers observer hooks at construction. Equivalent to
// calling AddHooks afterwards.
func WithHooks(h Hooks) Option {
	return func(rt *Runtime) {
		rt.hooks = append(rt.hooks, h)
	}
}

// New creates an empty Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		maxFlushPasses: DefaultMaxFlushPasses,
		schedule:       func(resume func()) { resume() },
	}
	rt.pendingCore = &signalCore{
		id:    nextID(),
		rt:    rt,
		value: false,
		eq:    defaultEquals,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// raiseError reports an error recovered from a user computation. With
// no handler configured the error propagates as a panic.
func (rt *Runtime) raiseError(err error) {
	if rt.onError != nil {
		rt.onError(err)
		return
	}
	panic(err)
}
