package fluxion

import "sync/atomic"

// globalIDCounter provides unique IDs for signals and computations.
var globalIDCounter uint64

// nextID returns a process-wide unique identifier.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
