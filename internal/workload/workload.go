// Package workload builds synthetic reactive graphs with known shapes.
// The bench and demo commands drive them; stress tests reuse them to
// exercise propagation under load.
package workload

import (
	"fmt"

	"github.com/vango-dev/fluxion/pkg/fluxion"
)

// Graph is a constructed reactive graph with a single write entry point.
// All computations live under one root owner so Dispose tears the whole
// graph down at once.
type Graph struct {
	// Name describes the shape and its parameters, e.g. "grid 10*100".
	Name string

	src     *fluxion.Signal[int]
	dispose func()

	nodes      int
	effectRuns int
	sink       int
}

// Step advances the source signal once and flushes the graph.
func (g *Graph) Step() {
	g.src.Update(func(n int) int { return n + 1 })
}

// Nodes returns the number of reactive nodes in the graph, counting the
// source signal, every memo, and every terminal effect.
func (g *Graph) Nodes() int { return g.nodes }

// EffectRuns returns how many times terminal effects have run, including
// their initial run at construction.
func (g *Graph) EffectRuns() int { return g.effectRuns }

// Sink returns the value most recently observed by a terminal effect.
func (g *Graph) Sink() int { return g.sink }

// Dispose tears the graph down. Steps after disposal do not propagate.
func (g *Graph) Dispose() { g.dispose() }

// Chain builds a linear graph: one source feeding depth memos in series,
// each adding one, with a single terminal effect. Propagation cost grows
// with depth but every step is a straight line.
func Chain(rt *fluxion.Runtime, depth int) *Graph {
	g := &Graph{Name: fmt.Sprintf("chain depth=%d", depth)}
	g.dispose = fluxion.CreateRoot(rt, func(func()) {
		g.src = fluxion.CreateSignal(rt, 0)
		read := g.src.Get
		for i := 0; i < depth; i++ {
			prev := read
			read = fluxion.CreateMemo(rt, func() int { return prev() + 1 }).Get
		}
		last := read
		fluxion.CreateEffect(rt, func() {
			g.sink = last()
			g.effectRuns++
		})
	})
	g.nodes = 1 + depth + 1
	return g
}

// Diamond builds a fan-out/fan-in graph: one source, width parallel
// memos, one joining memo, one terminal effect. The join reads every
// arm, so each step exercises the pending resolution path; the terminal
// effect must observe exactly one settled value per step.
func Diamond(rt *fluxion.Runtime, width int) *Graph {
	g := &Graph{Name: fmt.Sprintf("diamond width=%d", width)}
	g.dispose = fluxion.CreateRoot(rt, func(func()) {
		g.src = fluxion.CreateSignal(rt, 1)
		arms := make([]*fluxion.Memo[int], width)
		for i := range arms {
			scale := i + 1
			arms[i] = fluxion.CreateMemo(rt, func() int { return g.src.Get() * scale })
		}
		join := fluxion.CreateMemo(rt, func() int {
			sum := 0
			for _, arm := range arms {
				sum += arm.Get()
			}
			return sum
		})
		fluxion.CreateEffect(rt, func() {
			g.sink = join.Get()
			g.effectRuns++
		})
	})
	g.nodes = 1 + width + 1 + 1
	return g
}

// Grid builds the classic w*h propagate shape: w independent chains of
// h memos hanging off one shared source, each chain ending in its own
// effect. One step re-runs every node in the grid.
func Grid(rt *fluxion.Runtime, w, h int) *Graph {
	g := &Graph{Name: fmt.Sprintf("grid %d*%d", w, h)}
	g.dispose = fluxion.CreateRoot(rt, func(func()) {
		g.src = fluxion.CreateSignal(rt, 0)
		for i := 0; i < w; i++ {
			read := g.src.Get
			for j := 0; j < h; j++ {
				prev := read
				read = fluxion.CreateMemo(rt, func() int { return prev() + 1 }).Get
			}
			last := read
			fluxion.CreateEffect(rt, func() {
				g.sink = last()
				g.effectRuns++
			})
		}
	})
	g.nodes = 1 + w*h + w
	return g
}

// Build constructs a graph by shape name. Width parameterizes diamond
// and grid; depth parameterizes chain and grid.
func Build(rt *fluxion.Runtime, shape string, width, depth int) (*Graph, error) {
	switch shape {
	case "chain":
		return Chain(rt, depth), nil
	case "diamond":
		return Diamond(rt, width), nil
	case "grid":
		return Grid(rt, width, depth), nil
	default:
		return nil, fmt.Errorf("workload: unknown shape %q (want chain, diamond, or grid)", shape)
	}
}
