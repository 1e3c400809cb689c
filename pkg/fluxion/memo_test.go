package fluxion

import (
	"reflect"
	"testing"
)

func TestMemoBasic(t *testing.T) {
	rt := New()
	count := CreateSignal(rt, 2)

	runs := 0
	doubled := CreateMemo(rt, func() int {
		runs++
		return count.Get() * 2
	})

	if doubled.Get() != 4 {
		t.Errorf("expected initial memo value 4, got %d", doubled.Get())
	}
	if runs != 1 {
		t.Errorf("expected memo to compute once at creation, got %d runs", runs)
	}

	doubled.Get()
	doubled.Get()
	if runs != 1 {
		t.Errorf("expected cached reads, got %d runs", runs)
	}

	count.Set(5)
	if doubled.Get() != 10 {
		t.Errorf("expected memo value 10, got %d", doubled.Get())
	}
	if runs != 2 {
		t.Errorf("expected exactly one recomputation, got %d runs", runs)
	}
}

func TestMemoDiamondGlitchFree(t *testing.T) {
	rt := New()
	a := CreateSignal(rt, 1)
	b := CreateMemo(rt, func() int { return a.Get() + 1 })
	c := CreateMemo(rt, func() int { return a.Get() * 2 })

	var lines [][2]int
	CreateEffect(rt, func() {
		lines = append(lines, [2]int{b.Get(), c.Get()})
	})

	if len(lines) != 1 || lines[0] != [2]int{2, 2} {
		t.Fatalf("expected initial line (2,2), got %v", lines)
	}

	a.Set(5)

	if len(lines) != 2 {
		t.Fatalf("expected exactly one line per write, got %v", lines)
	}
	if lines[1] != [2]int{6, 10} {
		t.Errorf("expected consistent line (6,10), got %v", lines[1])
	}
}

func TestMemoLazinessStopsPropagation(t *testing.T) {
	rt := New()
	n := CreateSignal(rt, 1)

	parity := CreateMemo(rt, func() string {
		if n.Get()%2 == 0 {
			return "even"
		}
		return "odd"
	})

	renderRuns := 0
	render := CreateMemo(rt, func() string {
		renderRuns++
		return "(" + parity.Get() + ")"
	})

	effectRuns := 0
	CreateEffect(rt, func() {
		render.Get()
		effectRuns++
	})

	// 1 -> 3 keeps parity "odd": nothing downstream may re-run.
	n.Set(3)
	if renderRuns != 1 {
		t.Errorf("expected render memo untouched by equal upstream, got %d runs", renderRuns)
	}
	if effectRuns != 1 {
		t.Errorf("expected effect untouched by equal upstream, got %d runs", effectRuns)
	}

	n.Set(2)
	if render.Get() != "(even)" {
		t.Errorf("expected render to recompute, got %q", render.Get())
	}
	if renderRuns != 2 || effectRuns != 2 {
		t.Errorf("expected one downstream rerun, got render=%d effect=%d", renderRuns, effectRuns)
	}
}

func TestMemoDiamondPartialChange(t *testing.T) {
	rt := New()
	n := CreateSignal(rt, 1)
	low := CreateMemo(rt, func() int { return n.Get() % 10 })
	high := CreateMemo(rt, func() int { return n.Get() / 10 })

	var lines [][2]int
	CreateEffect(rt, func() {
		lines = append(lines, [2]int{low.Get(), high.Get()})
	})

	// 1 -> 11 changes only the high digit; the effect still runs exactly
	// once and sees both memos settled.
	n.Set(11)

	want := [][2]int{{1, 0}, {1, 1}}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("expected lines %v, got %v", want, lines)
	}
}

func TestMemoChainRunsEachNodeOnce(t *testing.T) {
	rt := New()
	s := CreateSignal(rt, 0)

	const depth = 5
	runs := make([]int, depth)
	memos := make([]*Memo[int], depth)
	for i := 0; i < depth; i++ {
		i := i
		if i == 0 {
			memos[i] = CreateMemo(rt, func() int {
				runs[i]++
				return s.Get() + 1
			})
			continue
		}
		prev := memos[i-1]
		memos[i] = CreateMemo(rt, func() int {
			runs[i]++
			return prev.Get() + 1
		})
	}

	effectRuns := 0
	CreateEffect(rt, func() {
		memos[depth-1].Get()
		effectRuns++
	})

	s.Set(10)

	for i, r := range runs {
		if r != 2 {
			t.Errorf("memo %d: expected 2 runs (initial + one update), got %d", i, r)
		}
	}
	if effectRuns != 2 {
		t.Errorf("expected 2 effect runs, got %d", effectRuns)
	}
	if memos[depth-1].Get() != 15 {
		t.Errorf("expected chain value 15, got %d", memos[depth-1].Get())
	}
}

func TestMemoDynamicDependencies(t *testing.T) {
	rt := New()
	useFirst := CreateSignal(rt, true)
	a := CreateSignal(rt, "a")
	b := CreateSignal(rt, "b")

	runs := 0
	pick := CreateMemo(rt, func() string {
		runs++
		if useFirst.Get() {
			return a.Get()
		}
		return b.Get()
	})

	if pick.Get() != "a" || runs != 1 {
		t.Fatalf("expected initial pick %q with 1 run, got %q with %d", "a", pick.Get(), runs)
	}

	// b is not tracked while useFirst is true.
	b.Set("B")
	if runs != 1 {
		t.Errorf("expected untracked write to be ignored, got %d runs", runs)
	}

	useFirst.Set(false)
	if pick.Get() != "B" || runs != 2 {
		t.Errorf("expected pick to follow branch switch, got %q with %d runs", pick.Get(), runs)
	}

	// a is no longer tracked after the switch.
	a.Set("A")
	if runs != 2 {
		t.Errorf("expected stale branch write to be ignored, got %d runs", runs)
	}

	b.Set("BB")
	if pick.Get() != "BB" || runs != 3 {
		t.Errorf("expected pick to track new branch, got %q with %d runs", pick.Get(), runs)
	}
}

func TestMemoPeekResolvesWithoutSubscribing(t *testing.T) {
	rt := New()
	count := CreateSignal(rt, 2)
	doubled := CreateMemo(rt, func() int { return count.Get() * 2 })

	runs := 0
	CreateEffect(rt, func() {
		runs++
		doubled.Peek()
	})

	count.Set(5)
	if runs != 1 {
		t.Errorf("expected no rerun from peeked memo, got %d runs", runs)
	}
	if doubled.Peek() != 10 {
		t.Errorf("expected peek to resolve stale memo to 10, got %d", doubled.Peek())
	}
}

func TestMemoWithEquals(t *testing.T) {
	rt := New()
	n := CreateSignal(rt, 0)

	// The comparator absorbs recomputations that stay within 10 of the
	// last published value, so the memo's output moves in coarse steps.
	coarse := CreateMemo(rt, func() int {
		return n.Get()
	}).WithEquals(func(prev, next int) bool {
		d := next - prev
		if d < 0 {
			d = -d
		}
		return d < 10
	})

	var seen []int
	CreateEffect(rt, func() {
		seen = append(seen, coarse.Get())
	})

	n.Set(5)
	if len(seen) != 1 {
		t.Errorf("expected small recomputation absorbed, got %v", seen)
	}
	if coarse.Get() != 0 {
		t.Errorf("expected published value to stay 0, got %d", coarse.Get())
	}

	n.Set(50)
	want := []int{0, 50}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}

func TestMemoNeverEqualsForcesPropagation(t *testing.T) {
	rt := New()
	n := CreateSignal(rt, 1)
	same := CreateMemo(rt, func() int {
		n.Get()
		return 7
	}).WithEquals(Never[int])

	effectRuns := 0
	CreateEffect(rt, func() {
		same.Get()
		effectRuns++
	})

	n.Set(2)
	if effectRuns != 2 {
		t.Errorf("expected Never comparator to force propagation, got %d runs", effectRuns)
	}
}

func TestMemoDisposeServesLastValue(t *testing.T) {
	rt := New()
	count := CreateSignal(rt, 3)
	runs := 0
	tripled := CreateMemo(rt, func() int {
		runs++
		return count.Get() * 3
	})

	if tripled.Get() != 9 {
		t.Fatalf("expected 9, got %d", tripled.Get())
	}

	tripled.Dispose()
	tripled.Dispose()

	count.Set(10)
	if tripled.Get() != 9 {
		t.Errorf("expected disposed memo to keep last value 9, got %d", tripled.Get())
	}
	if runs != 1 {
		t.Errorf("expected no recomputation after dispose, got %d runs", runs)
	}
	if len(count.core.observers) != 0 {
		t.Errorf("expected disposed memo detached from source, got %d observers", len(count.core.observers))
	}
}
