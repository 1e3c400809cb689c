package fluxion

import "fmt"

// ComputationPanicError wraps a panic raised by user code running inside
// a memo, computed, or effect. The runtime recovers the panic at the
// computation boundary, detaches the failed node's partial dependency
// edges, and then reports the error through the Runtime's error handler
// (or re-panics with this error when no handler is configured).
type ComputationPanicError struct {
	// ID identifies the computation that panicked.
	ID uint64

	// Kind is the computation kind: "memo", "computed", or "effect".
	Kind string

	// Value is the original panic value.
	Value any

	// Stack is the stack trace captured at recovery.
	Stack []byte
}

func (e *ComputationPanicError) Error() string {
	return fmt.Sprintf("fluxion: panic in %s %d: %v", e.Kind, e.ID, e.Value)
}

// Unwrap exposes the panic value when it was itself an error, so
// errors.Is and errors.As see through the recovery.
func (e *ComputationPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RunawayFlushError is the panic value raised when a single flush fails
// to stabilize within the Runtime's pass bound (see WithMaxFlushPasses).
// It almost always means an effect writes a signal that re-triggers the
// same effect. Runaway flushes are never routed to the error handler:
// the flush is aborted and the panic propagates to the caller that
// started it.
type RunawayFlushError struct {
	// Passes is the bound that was exceeded.
	Passes int
}

func (e *RunawayFlushError) Error() string {
	return fmt.Sprintf("fluxion: flush did not stabilize after %d passes; an effect is likely writing its own sources", e.Passes)
}
