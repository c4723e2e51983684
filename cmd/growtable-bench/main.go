// main.go: a small CLI stress/benchmark driver for growtable
//
// The Go analogue of the original project's commandline-driven benchmark
// mains: spin up N goroutines, each with its own Handle, hammering the
// table with a mix of inserts and finds, and report aggregate
// throughput once every goroutine finishes its share of ops.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nilgrove/growtable"
)

func main() {
	threads := flag.Int("threads", 4, "number of concurrent Handles")
	ops := flag.Int("ops", 1_000_000, "total operations across all threads")
	initialCapacity := flag.Int("initial-capacity", growtable.DefaultInitialCapacity, "initial base table capacity")
	probeWindow := flag.Int("probe-window", growtable.DefaultProbeWindow, "linear probe window")
	deamortized := flag.Bool("deamortized", false, "use the in-place growth variant instead of the replacement variant")
	readRatio := flag.Float64("read-ratio", 0.8, "fraction of operations that are Find calls")
	flag.Parse()

	if *threads <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "threads and ops must be positive")
		os.Exit(1)
	}

	if *deamortized {
		runDeamortized(*threads, *ops, *initialCapacity, *probeWindow, *readRatio)
		return
	}
	runReplacement(*threads, *ops, *initialCapacity, *probeWindow, *readRatio)
}

func runReplacement(threads, ops, initialCapacity, probeWindow int, readRatio float64) {
	cfg := growtable.DefaultConfig()
	cfg.InitialCapacity = initialCapacity
	cfg.ProbeWindow = probeWindow

	gt, err := growtable.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "growtable.New:", err)
		os.Exit(1)
	}

	perThread := ops / threads
	var completed int64
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(threads)
	for t := 0; t < threads; t++ {
		go func(seed int64) {
			defer wg.Done()
			h := gt.GetHandle()
			defer h.Close()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < perThread; i++ {
				key := uint64(r.Intn(perThread*threads)) + 1
				if r.Float64() < readRatio {
					h.Find(key)
				} else {
					h.Insert(key, key)
				}
				atomic.AddInt64(&completed, 1)
			}
		}(int64(t) + 1)
	}
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("replacement variant: %d ops in %s (%.0f ops/sec), final capacity %d, elements %d\n",
		completed, elapsed, float64(completed)/elapsed.Seconds(), gt.CapacityUnsafe(), gt.ElementCountApprox())
}

func runDeamortized(threads, ops, initialCapacity, probeWindow int, readRatio float64) {
	dt := growtable.NewDeamortizedTable(uint64(initialCapacity)<<8, uint64(initialCapacity), growtable.DefaultHasher(), probeWindow)

	perThread := ops / threads
	var completed int64
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(threads)
	for t := 0; t < threads; t++ {
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < perThread; i++ {
				key := uint64(r.Intn(perThread*threads)) + 1
				if r.Float64() < readRatio {
					dt.Find(key)
				} else {
					dt.Insert(key, key)
				}
				atomic.AddInt64(&completed, 1)
			}
		}(int64(t) + 1)
	}
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("deamortized variant: %d ops in %s (%.0f ops/sec)\n",
		completed, elapsed, float64(completed)/elapsed.Seconds())
}
