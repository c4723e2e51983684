// growtable.go: the growth orchestrator
//
// GrowTable owns the single logical table as a chain of BaseTable
// generations: current always points at the newest generation Handles
// should operate on; older generations are retired once no helper is still
// migrating out of them. Growth itself is cooperative — any Handle whose
// local counters cross the fill threshold can trigger it, any Handle that
// observes an in-progress growth can help finish it, and exactly one Handle
// (the "closer") publishes the new generation and retires the old one.
// Grounded in grow_table.h's GrowTableData and
// strategies/estrat_async.hpp's global_data_type/local_data_type.
package growtable

import (
	"sync"
	"sync/atomic"

	timecache "github.com/agilira/go-timecache"
)

// GrowTable is the facade applications construct once per logical map.
// All concurrent access goes through per-goroutine Handles obtained via
// GetHandle.
type GrowTable struct {
	config Config

	epoch   atomic.Uint64
	current atomic.Pointer[BaseTable]

	// nHelpers counts Handles currently inside migrate(): the closer
	// waits for this to reach zero before publishing the new generation.
	nHelpers atomic.Int64

	// elements and dummies are the approximate global counters Handles
	// flush their local deltas into; dummies counts tombstones pending
	// subtraction at the next growth step, mirroring the reference
	// design's treatment of deleted-but-not-yet-reclaimed slots.
	elements atomic.Int64
	dummies  atomic.Int64

	reclaimer Reclaimer

	handles      sync.Map // handleID uint64 -> *Handle
	nextHandleID atomic.Uint64
}

// New constructs a GrowTable. The returned error is non-nil only when cfg
// carries an explicitly supplied Hasher that fails its degeneracy probe.
func New(cfg Config) (*GrowTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	capacity := computeCapacity(uint64(cfg.InitialCapacity))
	bt := newBaseTable(capacity, 0, cfg.Hasher, cfg.ProbeWindow)
	gt := &GrowTable{config: cfg}
	gt.current.Store(bt)
	return gt, nil
}

// GetHandle returns a new per-goroutine Handle. Handles are not safe for
// concurrent use by multiple goroutines; each goroutine that touches the
// table should hold its own.
func (gt *GrowTable) GetHandle() *Handle {
	id := gt.nextHandleID.Add(1)
	h := &Handle{gt: gt, id: id, CreatedAt: timecache.CachedTimeNano()}
	h.load()
	gt.handles.Store(id, h)
	return h
}

func (gt *GrowTable) dropHandle(id uint64) {
	gt.handles.Delete(id)
}

// loadCurrent returns the current generation, acquired (protection count
// incremented). Callers must release() it when done. Spins through the
// brief window where a closer has unlinked the old table but not yet
// published the new one.
func (gt *GrowTable) loadCurrent() *BaseTable {
	var b backoff
	for {
		if bt := gt.current.Load(); bt != nil {
			bt.acquire()
			if gt.current.Load() == bt {
				return bt
			}
			bt.release()
		}
		b.wait()
	}
}

// ElementCountApprox returns the global approximate element count as of
// the last flush from any Handle, in O(1). It can lag behind
// ElementCountUnsafe by up to Config.FlushThreshold operations per live
// Handle, but never blocks and never walks the handle registry.
func (gt *GrowTable) ElementCountApprox() int64 {
	total := gt.elements.Load() - gt.dummies.Load()
	if total < 0 {
		return 0
	}
	return total
}

// ElementCountUnsafe walks every live Handle's flushed-in counters plus the
// unflushed local deltas it can observe right now, and returns an
// approximate element count. It is "unsafe" because concurrent inserts and
// deletes on other handles can make the result stale the instant it is
// returned; it never blocks and never locks.
func (gt *GrowTable) ElementCountUnsafe() int64 {
	total := gt.elements.Load() - gt.dummies.Load()
	gt.handles.Range(func(_, v interface{}) bool {
		h := v.(*Handle)
		total += h.localInserted.Load() - h.localDeleted.Load()
		return true
	})
	if total < 0 {
		return 0
	}
	return total
}

// CapacityUnsafe returns the slot capacity of the current generation.
func (gt *GrowTable) CapacityUnsafe() uint64 {
	bt := gt.current.Load()
	if bt == nil {
		return 0
	}
	return bt.capacity
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// startGrow creates a successor generation sized for the current
// approximate element count and tries to publish it as table.next. Safe to
// call redundantly: only the first caller's successor survives.
func (gt *GrowTable) startGrow(table *BaseTable) {
	inserted := uint64(max64(gt.elements.Load(), 0))
	dummies := uint64(max64(gt.dummies.Load(), 0))
	nextCapacity := growResize(table.capacity, inserted, dummies)
	successor := newBaseTable(nextCapacity, table.version+1, gt.config.Hasher, gt.config.ProbeWindow)

	if !table.next.CompareAndSwap(nil, successor) {
		return // another handle already started this generation's successor
	}
	gt.config.MetricsCollector.RecordGrowStart(table.capacity, successor.capacity)
	gt.config.Logger.Info("growtable: growth started",
		"from_capacity", table.capacity, "to_capacity", successor.capacity, "version", successor.version)
}

// growResize mirrors BaseCircular::resize: double capacity once the live
// fraction crosses 30% (0.6/2 in the reference design's comment), otherwise
// keep the same capacity. The 30% threshold is fixed; the configured fill
// ratio does not affect it.
func growResize(current, inserted, deleted uint64) uint64 {
	n := current
	if inserted < deleted {
		return n
	}
	fillRate := float64(inserted-deleted) / float64(current)
	if fillRate > 0.3 {
		n <<= 1
	}
	return n
}

// migrate is the entry point a Handle calls to participate in an
// in-progress growth: it migrates blocks of table into its successor until
// the source is drained, then waits for every other helper to finish
// before the closer publishes the successor. Returns the successor table,
// already acquired on the caller's behalf with the caller's own protection
// on table released — endGrow's Retire call spins until table's protection
// count drains to zero, and that can never happen while the very call
// stack doing the spinning still holds one of the refs being waited on.
// Returns nil if table has no successor published in table.next; such
// callers should fall back to Handle.load. A caller arriving after the
// step was already closed out finds the block cursor exhausted, migrates
// nothing, and still gets the successor back.
func (gt *GrowTable) migrate(table *BaseTable) *BaseTable {
	gt.nHelpers.Add(1)

	successor := table.next.Load()
	if successor == nil {
		gt.nHelpers.Add(-1)
		// No successor to migrate into; spin until current moves off
		// table.
		var b backoff
		for gt.current.Load() == table {
			b.wait()
		}
		return nil
	}

	start := timecache.CachedTimeNano()
	migrated := blockwiseMigrate(table, successor, uint64(gt.config.MigrationBlockSize))

	gt.nHelpers.Add(-1)
	gt.config.MetricsCollector.RecordMigrationBlock(timecache.CachedTimeNano()-start, migrated)

	successor.acquire()
	table.release()

	gt.endGrow(table)
	return successor
}

// endGrow waits for all helpers to drain, then races to become the closer:
// the single handle that publishes the successor generation and retires
// table. Every other helper's call becomes a no-op once the closer wins.
func (gt *GrowTable) endGrow(table *BaseTable) {
	start := timecache.CachedTimeNano()
	var b backoff
	for gt.nHelpers.Load() != 0 {
		b.wait()
	}

	successor := table.next.Load()
	if successor == nil {
		return // already closed by someone else
	}

	cur := table
	if !gt.current.CompareAndSwap(cur, nil) {
		return // someone else is closing this generation
	}

	retiredDummies := gt.dummies.Swap(0)
	gt.elements.Add(-retiredDummies)

	gt.epoch.Store(successor.version)
	gt.current.Store(successor)

	gt.config.Logger.Info("growtable: growth finished",
		"capacity", successor.capacity, "version", successor.version)
	gt.config.MetricsCollector.RecordGrowEnd(timecache.CachedTimeNano()-start, uint64(max64(gt.elements.Load(), 0)))

	gt.reclaimer.Retire(table, func(bt *BaseTable) {
		gt.config.MetricsCollector.RecordReclaim(bt.capacity)
		gt.config.Logger.Debug("growtable: generation reclaimed", "capacity", bt.capacity, "version", bt.version)
	})
}
