package fluxion

import (
	"fmt"
	"log/slog"

	"github.com/petermattis/goid"
)

// DebugConfig controls development-time diagnostics. All switches are
// off in the zero value, which is what production builds should use.
type DebugConfig struct {
	// LogFlushes logs one line per completed flush with pass and run
	// counts.
	LogFlushes bool

	// LogComputations logs every computation execution. Extremely
	// verbose; intended for stepping through small graphs.
	LogComputations bool

	// EnforceAffinity panics when a Runtime is used from a goroutine
	// other than the one that first used it. Catches accidental
	// cross-goroutine access that would otherwise corrupt the graph
	// silently.
	EnforceAffinity bool

	// Logger receives debug output. Defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Debug is the active debug configuration, shared by all Runtimes.
var Debug DebugConfig

func debugLogger() *slog.Logger {
	if Debug.Logger != nil {
		return Debug.Logger
	}
	return slog.Default()
}

// checkAffinity pins the runtime to the first goroutine that uses it.
// Only active under Debug.EnforceAffinity.
func (rt *Runtime) checkAffinity() {
	if !Debug.EnforceAffinity {
		return
	}
	g := goid.Get()
	if rt.gid == 0 {
		rt.gid = g
		return
	}
	if g != rt.gid {
		panic(fmt.Sprintf("fluxion: runtime owned by goroutine %d used from goroutine %d", rt.gid, g))
	}
}
