// throughput_test.go: concurrent throughput benchmarks for growtable under
// Zipf-distributed key access, adapted from the teacher's benchmark
// harness (ZipfGenerator, workload ratio constants) but driving a GrowTable
// instead of comparing third-party cache libraries — there is no
// competitor to benchmark against here, only growtable's own replacement
// and deamortized growth variants.
package benchmarks

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nilgrove/growtable"
)

const (
	smallKeySpace  = 1_000
	mediumKeySpace = 100_000
	largeKeySpace  = 1_000_000

	writeHeavy = 0.1
	balanced   = 0.5
	readHeavy  = 0.9
)

// ZipfGenerator produces keys following a Zipf distribution, simulating
// workloads where a small set of keys accounts for most traffic.
type ZipfGenerator struct {
	zipf *rand.Zipf
}

// NewZipfGenerator builds a generator over [0, imax]. s must be > 1.0.
func NewZipfGenerator(s, v float64, imax uint64) *ZipfGenerator {
	if imax < 1 {
		imax = 1
	}
	if s <= 1.0 {
		s = 1.01
	}
	if v < 1.0 {
		v = 1.0
	}
	r := rand.New(rand.NewSource(1))
	zipf := rand.NewZipf(r, s, v, imax)
	if zipf == nil {
		panic(fmt.Sprintf("failed to create Zipf generator: s=%f, v=%f, imax=%d", s, v, imax))
	}
	return &ZipfGenerator{zipf: zipf}
}

// Next returns the next key in the distribution, offset by 1 to avoid
// growtable's reserved EmptyKey sentinel.
func (z *ZipfGenerator) Next() uint64 {
	return z.zipf.Uint64() + 1
}

func prefillTable(b *testing.B, gt *growtable.GrowTable, keySpace uint64) {
	h := gt.GetHandle()
	defer h.Close()
	for k := uint64(1); k <= keySpace; k++ {
		h.Insert(k, k)
	}
	_ = b
}

func runWorkload(b *testing.B, keySpace uint64, readRatio float64, parallelism int) {
	cfg := growtable.DefaultConfig()
	gt, err := growtable.New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	prefillTable(b, gt, keySpace)

	var ops int64
	b.ResetTimer()
	b.SetParallelism(parallelism)
	b.RunParallel(func(pb *testing.PB) {
		h := gt.GetHandle()
		defer h.Close()
		gen := NewZipfGenerator(1.3, 1.0, keySpace-1)
		r := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			key := gen.Next()
			if r.Float64() < readRatio {
				h.Find(key)
			} else {
				h.Insert(key, key)
			}
			atomic.AddInt64(&ops, 1)
		}
	})
	b.ReportMetric(float64(atomic.LoadInt64(&ops))/b.Elapsed().Seconds(), "ops/s")
}

func BenchmarkThroughputReadHeavy(b *testing.B) {
	runWorkload(b, mediumKeySpace, readHeavy, 0)
}

func BenchmarkThroughputBalanced(b *testing.B) {
	runWorkload(b, mediumKeySpace, balanced, 0)
}

func BenchmarkThroughputWriteHeavy(b *testing.B) {
	runWorkload(b, mediumKeySpace, writeHeavy, 0)
}

func BenchmarkThroughputLargeKeySpace(b *testing.B) {
	runWorkload(b, largeKeySpace, balanced, 0)
}

// BenchmarkGrowthStorm measures throughput while a table is repeatedly
// forced through growth steps, by starting at a deliberately undersized
// initial capacity for the key space being inserted.
func BenchmarkGrowthStorm(b *testing.B) {
	cfg := growtable.DefaultConfig()
	cfg.InitialCapacity = 64
	gt, err := growtable.New(cfg)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	var wg sync.WaitGroup
	const goroutines = 8
	perGoroutine := uint64(b.N/goroutines + 1)
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(base uint64) {
			defer wg.Done()
			h := gt.GetHandle()
			defer h.Close()
			for i := uint64(1); i <= perGoroutine; i++ {
				h.Insert(base*perGoroutine+i, i)
			}
		}(uint64(g))
	}
	wg.Wait()
}

func BenchmarkDeamortizedInsert(b *testing.B) {
	dt := growtable.NewDeamortizedTable(1<<24, smallKeySpace, growtable.DefaultHasher(), growtable.DefaultProbeWindow)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dt.Insert(uint64(i)+1, uint64(i))
		if i%1000 == 0 && dt.CanGrow() {
			dt.GrowStep()
		}
	}
}
