package fluxion

import (
	"testing"
)

// Benchmark tests for the reactive engine.
// Target performance:
// - Signal.Get() (no tracking): < 10 ns
// - Signal.Set() (10 observers): < 2 µs
// - Memo.Get() (cached): < 15 ns
// - Batch (100 writes): < 20 µs

func BenchmarkSignalGetNoTracking(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 42)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s.Get()
	}
}

func BenchmarkSignalPeek(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 42)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s.Peek()
	}
}

func BenchmarkSignalSetNoObservers(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 0)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Set(i)
	}
}

func BenchmarkSignalSet1Observer(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 0)
	CreateEffect(rt, func() {
		_ = s.Get()
	})
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Set(i)
	}
}

func BenchmarkSignalSet10Observers(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 0)

	for i := 0; i < 10; i++ {
		CreateEffect(rt, func() {
			_ = s.Get()
		})
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Set(i)
	}
}

func BenchmarkSignalSet100Observers(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 0)

	for i := 0; i < 100; i++ {
		CreateEffect(rt, func() {
			_ = s.Get()
		})
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Set(i)
	}
}

func BenchmarkSignalUpdate(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 0)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Update(func(n int) int { return n + 1 })
	}
}

func BenchmarkMemoGetCached(b *testing.B) {
	rt := New()
	count := CreateSignal(rt, 42)
	m := CreateMemo(rt, func() int { return count.Get() * 2 })

	// Prime the cache
	_ = m.Get()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = m.Get()
	}
}

func BenchmarkMemoRecompute(b *testing.B) {
	rt := New()
	count := CreateSignal(rt, 0)
	m := CreateMemo(rt, func() int { return count.Get() * 2 })

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		count.Set(i)
		_ = m.Get()
	}
}

func BenchmarkMemoChain5(b *testing.B) {
	rt := New()
	a := CreateSignal(rt, 0)
	m1 := CreateMemo(rt, func() int { return a.Get() * 2 })
	m2 := CreateMemo(rt, func() int { return m1.Get() * 2 })
	m3 := CreateMemo(rt, func() int { return m2.Get() * 2 })
	m4 := CreateMemo(rt, func() int { return m3.Get() * 2 })
	m5 := CreateMemo(rt, func() int { return m4.Get() * 2 })

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		a.Set(i)
		_ = m5.Get()
	}
}

func BenchmarkDiamondFlush(b *testing.B) {
	rt := New()
	src := CreateSignal(rt, 0)
	left := CreateMemo(rt, func() int { return src.Get() * 2 })
	right := CreateMemo(rt, func() int { return src.Get() + 10 })
	CreateEffect(rt, func() {
		_ = left.Get() + right.Get()
	})

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		src.Set(i)
	}
}

func BenchmarkBatch10Writes(b *testing.B) {
	rt := New()
	signals := make([]*Signal[int], 10)
	for i := range signals {
		signals[i] = CreateSignal(rt, 0)
	}

	CreateEffect(rt, func() {
		for _, s := range signals {
			_ = s.Get()
		}
	})

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Batch(rt, func() {
			for j, s := range signals {
				s.Set(i*10 + j)
			}
		})
	}
}

func BenchmarkBatch100Writes(b *testing.B) {
	rt := New()
	signals := make([]*Signal[int], 100)
	for i := range signals {
		signals[i] = CreateSignal(rt, 0)
	}

	CreateEffect(rt, func() {
		for _, s := range signals {
			_ = s.Get()
		}
	})

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Batch(rt, func() {
			for j, s := range signals {
				s.Set(i*100 + j)
			}
		})
	}
}

func BenchmarkEffectCreation(b *testing.B) {
	rt := New()
	count := CreateSignal(rt, 0)

	dispose := CreateRoot(rt, func(func()) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			CreateEffect(rt, func() {
				_ = count.Get()
			})
		}
	})
	dispose()
}

func BenchmarkTransitionCommit(b *testing.B) {
	rt := New()
	s := CreateSignal(rt, 0)
	CreateEffect(rt, func() {
		_ = s.Get()
	})

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		StartTransition(rt, func() {
			s.Set(i)
		})
	}
}

// BenchmarkRealisticGraph simulates a small application graph:
// 5 signals, 3 derived memos, 1 effect, batched interaction writes.
func BenchmarkRealisticGraph(b *testing.B) {
	rt := New()

	firstName := CreateSignal(rt, "John")
	lastName := CreateSignal(rt, "Doe")
	age := CreateSignal(rt, 30)
	email := CreateSignal(rt, "john@example.com")
	active := CreateSignal(rt, true)

	fullName := CreateMemo(rt, func() string {
		return firstName.Get() + " " + lastName.Get()
	})
	isAdult := CreateMemo(rt, func() bool {
		return age.Get() >= 18
	})
	canContact := CreateMemo(rt, func() bool {
		return active.Get() && len(email.Get()) > 0
	})

	CreateEffect(rt, func() {
		_ = fullName.Get()
		_ = isAdult.Get()
		_ = canContact.Get()
	})

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		// Simulate user interaction
		Batch(rt, func() {
			firstName.Set("Jane")
			lastName.Set("Smith")
		})

		age.Set(25 + i%2)
		active.Set(i%2 == 0)

		_ = fullName.Get()
		_ = isAdult.Get()
		_ = canContact.Get()
	}
}
