// handle.go: per-goroutine access point into a GrowTable
//
// A Handle caches the current BaseTable generation and a local, unlocked
// tally of inserts/deletes since its last flush into GrowTable's global
// approximate counters. Handles are not safe for concurrent use by more
// than one goroutine — get one per goroutine (or pool and reuse them) the
// way the reference design expects one GrowTableHandle per thread.
// Grounded in grow_table.h's GrowTableHandle and the LocalCount it carries.
package growtable

import (
	"sync/atomic"

	timecache "github.com/agilira/go-timecache"
)

// Handle is a per-goroutine view into a GrowTable.
type Handle struct {
	gt *GrowTable
	id uint64

	table   *BaseTable
	version uint64

	// CreatedAt is the cached-clock timestamp (nanoseconds, see
	// go-timecache) this Handle was obtained at. LastGrowSeenAt is updated
	// every time the Handle observes and adopts a newer generation,
	// whether by triggering, helping, or merely noticing growth. Both are
	// diagnostic only — nothing in the package reads them back.
	CreatedAt      int64
	LastGrowSeenAt int64

	// Local counters, flushed into gt.elements/gt.dummies once localOps
	// crosses Config.FlushThreshold. localInserted/localDeleted are read
	// from other goroutines by GrowTable.ElementCountUnsafe, hence atomic;
	// localVersion/localOps are touched only by this Handle's owner.
	localVersion  uint64
	localOps      int
	localInserted atomic.Int64
	localDeleted  atomic.Int64

	closed bool
}

func (h *Handle) load() {
	if h.table != nil {
		h.table.release()
	}
	bt := h.gt.loadCurrent()
	h.table = bt
	h.version = bt.version
	h.LastGrowSeenAt = timecache.CachedTimeNano()
}

// ensureCurrent refreshes the cached generation if GrowTable has published
// a newer one since this Handle last looked.
func (h *Handle) ensureCurrent() *BaseTable {
	if h.gt.epoch.Load() > h.version {
		h.load()
	}
	return h.table
}

// grow publishes (or joins publishing) a successor generation for the
// table this Handle currently sees full, migrates blocks of it, and waits
// out the closer protocol before adopting the successor as its own.
func (h *Handle) grow() {
	h.gt.startGrow(h.table)
	h.advance(h.gt.migrate(h.table))
}

// helpGrow joins a growth step already started by another Handle.
func (h *Handle) helpGrow() {
	h.advance(h.gt.migrate(h.table))
}

// advance adopts successor as this Handle's cached generation, taking over
// the protection ref migrate already acquired on its behalf. A nil
// successor means migrate found no successor published on the table, so
// fall back to a fresh load of whatever is current.
func (h *Handle) advance(successor *BaseTable) {
	if successor == nil {
		h.load()
		return
	}
	h.table = successor
	h.version = successor.version
	h.LastGrowSeenAt = timecache.CachedTimeNano()
}

func (h *Handle) incInserted(version uint64) {
	if h.localVersion == version {
		h.localInserted.Add(1)
		h.localOps++
	} else {
		h.localVersion = version
		h.localInserted.Store(1)
		h.localDeleted.Store(0)
		h.localOps = 1
	}
	if h.localOps > h.gt.config.FlushThreshold {
		h.flush()
	}
}

func (h *Handle) incDeleted(version uint64) {
	if h.localVersion == version {
		h.localDeleted.Add(1)
		h.localOps++
	} else {
		h.localVersion = version
		h.localInserted.Store(0)
		h.localDeleted.Store(1)
		h.localOps = 1
	}
	if h.localOps > h.gt.config.FlushThreshold {
		h.flush()
	}
}

// flush pushes this Handle's local tally into the global approximate
// counters and triggers a growth step if the fill ratio is now exceeded.
func (h *Handle) flush() {
	inserted := h.localInserted.Load()
	deleted := h.localDeleted.Load()

	dummies := h.gt.dummies.Add(deleted)
	total := h.gt.elements.Add(inserted) - dummies

	h.localInserted.Store(0)
	h.localDeleted.Store(0)
	h.localOps = 0

	if float64(total) > float64(h.table.capacity)*h.gt.config.maxFillRatio() {
		h.grow()
	}
}

// checkOpen panics with a structured ErrCodeHandleClosed error if h has
// already been closed or moved. Every public Handle method calls this
// first: using a Handle after Close/Move is a programming error, not a
// recoverable outcome the table needs to defend against with a bool.
func (h *Handle) checkOpen() {
	if h.closed {
		panic(NewErrHandleClosed(h.id))
	}
}

// Insert places (key, value) if key is absent. Reports whether it inserted
// a new entry (false means key was already present and is unchanged).
func (h *Handle) Insert(key, value uint64) bool {
	h.checkOpen()
	start := timecache.CachedTimeNano()
	for {
		table := h.ensureCurrent()
		code, _ := table.Insert(key, value)
		switch code {
		case ReturnSuccessInsert:
			h.incInserted(table.version)
			h.gt.config.MetricsCollector.RecordInsert(timecache.CachedTimeNano()-start, true)
			return true
		case ReturnAlreadyUsed:
			h.gt.config.MetricsCollector.RecordInsert(timecache.CachedTimeNano()-start, false)
			return false
		case ReturnFull:
			h.grow()
		case ReturnInvalid:
			h.helpGrow()
		}
	}
}

// Update applies f to the value stored for key, if present. Reports
// whether key was found.
func (h *Handle) Update(key uint64, f func(uint64) uint64) (newValue uint64, updated bool) {
	h.checkOpen()
	start := timecache.CachedTimeNano()
	for {
		table := h.ensureCurrent()
		code, nv := table.Update(key, f)
		switch code {
		case ReturnSuccessUpdate:
			h.gt.config.MetricsCollector.RecordUpdate(timecache.CachedTimeNano()-start, true)
			return nv, true
		case ReturnNotFound:
			h.gt.config.MetricsCollector.RecordUpdate(timecache.CachedTimeNano()-start, false)
			return 0, false
		case ReturnInvalid:
			h.helpGrow()
		}
	}
}

// UpdateUnsafe is Update without the CAS retry loop on the value write;
// only safe when the caller externally serializes writers to key.
func (h *Handle) UpdateUnsafe(key uint64, f func(uint64) uint64) (newValue uint64, updated bool) {
	h.checkOpen()
	start := timecache.CachedTimeNano()
	for {
		table := h.ensureCurrent()
		code, nv := table.UpdateUnsafe(key, f)
		switch code {
		case ReturnSuccessUpdate:
			h.gt.config.MetricsCollector.RecordUpdate(timecache.CachedTimeNano()-start, true)
			return nv, true
		case ReturnNotFound:
			h.gt.config.MetricsCollector.RecordUpdate(timecache.CachedTimeNano()-start, false)
			return 0, false
		case ReturnInvalid:
			h.helpGrow()
		}
	}
}

// InsertOrUpdate inserts d if key is absent, otherwise applies f to the
// current value. Reports whether the key was newly inserted.
func (h *Handle) InsertOrUpdate(key, d uint64, f func(uint64) uint64) (value uint64, inserted bool) {
	h.checkOpen()
	start := timecache.CachedTimeNano()
	for {
		table := h.ensureCurrent()
		code, v := table.InsertOrUpdate(key, d, f)
		switch code {
		case ReturnSuccessInsert:
			h.incInserted(table.version)
			h.gt.config.MetricsCollector.RecordInsert(timecache.CachedTimeNano()-start, true)
			return v, true
		case ReturnSuccessUpdate:
			h.gt.config.MetricsCollector.RecordUpdate(timecache.CachedTimeNano()-start, true)
			return v, false
		case ReturnFull:
			h.grow()
		case ReturnInvalid:
			h.helpGrow()
		}
	}
}

// InsertOrUpdateUnsafe is InsertOrUpdate whose update path skips the CAS
// retry loop; only safe when the caller externally serializes writers to
// key.
func (h *Handle) InsertOrUpdateUnsafe(key, d uint64, f func(uint64) uint64) (value uint64, inserted bool) {
	h.checkOpen()
	start := timecache.CachedTimeNano()
	for {
		table := h.ensureCurrent()
		code, v := table.InsertOrUpdateUnsafe(key, d, f)
		switch code {
		case ReturnSuccessInsert:
			h.incInserted(table.version)
			h.gt.config.MetricsCollector.RecordInsert(timecache.CachedTimeNano()-start, true)
			return v, true
		case ReturnSuccessUpdate:
			h.gt.config.MetricsCollector.RecordUpdate(timecache.CachedTimeNano()-start, true)
			return v, false
		case ReturnFull:
			h.grow()
		case ReturnInvalid:
			h.helpGrow()
		}
	}
}

// Erase removes key. Reports whether it was present.
func (h *Handle) Erase(key uint64) bool {
	h.checkOpen()
	start := timecache.CachedTimeNano()
	for {
		table := h.ensureCurrent()
		code := table.Erase(key)
		switch code {
		case ReturnSuccessDelete:
			h.incDeleted(table.version)
			h.gt.config.MetricsCollector.RecordDelete(timecache.CachedTimeNano()-start, true)
			return true
		case ReturnNotFound:
			h.gt.config.MetricsCollector.RecordDelete(timecache.CachedTimeNano()-start, false)
			return false
		case ReturnInvalid:
			h.helpGrow()
		}
	}
}

// Find looks up key and returns an Iterator over the result. The iterator
// stays usable across later growth steps via Refresh, which re-finds the
// same key by value rather than by slot address once this Handle observes
// a newer generation.
func (h *Handle) Find(key uint64) *Iterator {
	h.checkOpen()
	start := timecache.CachedTimeNano()
	table := h.ensureCurrent()
	value, ok := table.Find(key)
	h.gt.config.MetricsCollector.RecordFind(timecache.CachedTimeNano()-start, ok)
	return &Iterator{
		handle:  h,
		key:     key,
		value:   value,
		version: table.version,
		valid:   ok,
	}
}

// GetOrInsert returns the value for key, inserting zero if absent. Mirrors
// the reference design's subscript operator, which is defined as insert
// with a default-constructed value.
func (h *Handle) GetOrInsert(key uint64) uint64 {
	it := h.Find(key)
	if it.Valid() {
		return it.Value()
	}
	h.Insert(key, 0)
	return 0
}

// Close flushes this Handle's unflushed local counters into the global
// totals, releases its reference to its cached generation and removes it
// from the GrowTable's handle registry. A closed Handle must not be used
// again.
func (h *Handle) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.gt.dummies.Add(h.localDeleted.Swap(0))
	h.gt.elements.Add(h.localInserted.Swap(0))
	h.localOps = 0
	if h.table != nil {
		h.table.release()
		h.table = nil
	}
	h.gt.dropHandle(h.id)
}

// Move transfers ownership of this Handle's cached generation and local
// counters to a new Handle value, for handing off work to another
// goroutine the way the reference design's GrowTableHandle move
// constructor hands a handle from one thread to another. After Move, h is
// closed and must not be used again; the returned Handle takes its place
// in the grow table's handle registry.
func (h *Handle) Move() *Handle {
	h.checkOpen()

	moved := &Handle{
		gt:             h.gt,
		id:             h.id,
		table:          h.table,
		version:        h.version,
		localVersion:   h.localVersion,
		localOps:       h.localOps,
		CreatedAt:      h.CreatedAt,
		LastGrowSeenAt: h.LastGrowSeenAt,
	}
	moved.localInserted.Store(h.localInserted.Load())
	moved.localDeleted.Store(h.localDeleted.Load())

	h.gt.handles.Store(h.id, moved)

	h.closed = true
	h.table = nil // ownership transferred; Close on h must not release it

	return moved
}
