//go:build test

package mem

import (
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bastiangx/unjumble/pkg/dictionary"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var testQueries = []string{
	"trace", "tellers", "listen", "garden", "stone", "planet",
	"computer", "developer", "international", "abcdefghij",
	"qwertyuiop", "zz", "a", "eeeeeeee",
}

// generatedIndex builds an index over a fixed pseudo-random word list.
func generatedIndex(t *testing.T, strategy index.Strategy) *index.Index {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 11))
	const letters = "etaoinshrdlcumwfgypbvkjxqz"
	words := make([]string, 0, 20000)
	for len(words) < cap(words) {
		n := 2 + rng.IntN(8)
		b := make([]byte, n)
		for i := range b {
			// Skew toward common letters so queries find something.
			b[i] = letters[min(rng.IntN(len(letters)), rng.IntN(len(letters)))]
		}
		words = append(words, string(b))
	}
	opts := index.DefaultOptions()
	opts.Strategy = strategy
	idx, stats := index.Build([]dictionary.Source{dictionary.NewMemorySource("generated", words...)}, opts)
	if stats.Entries == 0 {
		t.Fatal("generated index is empty")
	}
	return idx
}

func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{100, 500, 1000}

	for _, strategy := range []index.Strategy{index.StrategyScan, index.StrategyTrie} {
		idx := generatedIndex(t, strategy)
		for _, iterCount := range iterations {
			t.Run(fmt.Sprintf("%s_iterations_%d", strategy, iterCount), func(t *testing.T) {
				runBasicMemoryTest(t, idx, iterCount)
			})
		}
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 400},
		{workers: 2, iterationsPerWorker: 200},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}

	idx := generatedIndex(t, index.StrategyTrie)
	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, idx, config.workers, config.iterationsPerWorker)
		})
	}
}

func TestMemoryStabilityLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}
	runLongRunMemoryTest(t, generatedIndex(t, index.StrategyTrie), 50, 200)
}

func runBasicMemoryTest(t *testing.T, idx *index.Index, iterations int) {
	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	for i := 0; i < iterations; i++ {
		for _, q := range testQueries {
			if _, err := idx.QueryWord(q); err != nil {
				t.Fatalf("query %q failed: %v", q, err)
			}
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	totalOps := iterations * len(testQueries)
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		iterations, totalOps, memDelta, memPerOp, goroutineDelta)

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runConcurrentMemoryTest(t *testing.T, idx *index.Index, workers, iterationsPerWorker int) {
	memFile, err := os.Create("concurrent_memory.prof")
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer func() {
		memFile.Close()
		os.Remove("concurrent_memory.prof")
	}()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	var totalOps atomic.Int64
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, q := range testQueries {
					idx.QueryWord(q)
					totalOps.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	memPerOp := float64(memDelta) / float64(totalOps.Load())

	t.Logf("workers=%d iter_per_worker=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		workers, iterationsPerWorker, totalOps.Load(), memDelta, memPerOp, goroutineDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}
	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 3 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runLongRunMemoryTest(t *testing.T, idx *index.Index, cycles, opsPerCycle int) {
	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	totalOps := 0
	maxMemDelta := int64(0)

	for cycle := 0; cycle < cycles; cycle++ {
		for op := 0; op < opsPerCycle; op++ {
			idx.QueryWord(testQueries[op%len(testQueries)])
			totalOps++
		}

		if cycle%10 == 0 {
			var m runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&m)
			memDelta := int64(m.Alloc) - int64(baseline.Alloc)
			maxMemDelta = max(maxMemDelta, memDelta)
			t.Logf("cycle=%d ops=%d mem_delta=%d bytes goroutine_delta=%d",
				cycle, totalOps, memDelta, runtime.NumGoroutine()-baselineGoroutines)
		}
		time.Sleep(5 * time.Millisecond)
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	finalMemDelta := int64(final.Alloc) - int64(baseline.Alloc)
	finalGoroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	finalMemPerOp := float64(finalMemDelta) / float64(totalOps)

	t.Logf("final_summary: cycles=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d max_mem_delta=%d",
		cycles, totalOps, finalMemDelta, finalMemPerOp, finalGoroutineDelta, maxMemDelta)

	if finalMemPerOp > 500 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", finalMemPerOp)
	}
	if finalGoroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", finalGoroutineDelta)
	}
	if maxMemDelta > 10*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxMemDelta)
	}
}
