// Package fluxion is a fine-grained reactive runtime: signals drive
// automatic, minimal re-execution of derived computations (memos and
// effects) through a dependency graph that is tracked at run time.
// Reading a signal inside a computation subscribes that computation to
// the signal's changes; nothing is diffed and nothing is polled.
//
// All reactive state belongs to a Runtime. Constructors take the Runtime
// explicitly, so independent graphs never share scheduler state:
//
//	rt := fluxion.New()
//	count := fluxion.CreateSignal(rt, 0)
//	value := count.Get()  // read (subscribes the current listener)
//	count.Set(5)          // write (marks observers, flushes)
//	count.Update(func(n int) int { return n + 1 })
//
// # Memos
//
// Memo[T] is a cached derived computation. It recomputes only when a
// tracked source changed, and it notifies its own observers only when
// the recomputed value differs per its equality function:
//
//	doubled := fluxion.CreateMemo(rt, func() int { return count.Get() * 2 })
//	value := doubled.Get()
//
// # Effects
//
// Effects run side effects when their tracked sources change. Memo
// recomputation for a write batch always completes before any effect of
// that batch runs, so an effect never observes a half-updated memo chain:
//
//	fluxion.CreateEffect(rt, func() {
//	    fmt.Println("count is", count.Get())
//	})
//
// # Ownership
//
// Computations form an ownership tree rooted at CreateRoot. Disposing a
// root disposes every computation created under it, children first, and
// runs OnCleanup callbacks in reverse registration order:
//
//	dispose := fluxion.CreateRoot(rt, func(dispose func()) {
//	    fluxion.CreateEffect(rt, func() { ... })
//	    fluxion.OnCleanup(rt, func() { ... })
//	})
//	dispose()
//
// # Batching
//
// Multiple writes can be grouped so the graph flushes once:
//
//	fluxion.Batch(rt, func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//
// # Transitions
//
// StartTransition computes a batch of writes against shadow values that
// stay invisible to ordinary reads until the transition commits. Commit
// waits for any gates registered through Runtime.GateTransition, making
// it the integration point for asynchronous work:
//
//	done := fluxion.StartTransition(rt, func() {
//	    page.Set(next)
//	})
//	<-done
//
// # Threading
//
// A Runtime is confined to one goroutine. The only goroutine-safe entry
// point is the release function returned by Runtime.GateTransition; the
// last release hands a resume callback to the scheduler hook configured
// with WithScheduler (inline by default). Set Debug.EnforceAffinity
// during development to panic on cross-goroutine use.
package fluxion
