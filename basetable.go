// basetable.go: the fixed-capacity lock-free base table
//
// A BaseTable is a flat array of Slots addressed by linear probing. It never
// resizes itself; GrowTable decides when a BaseTable is full and replaces it
// with a larger one via the migration protocol in migration.go. Every
// operation here is grounded in the reference design's BaseCircular
// (original_source/data-structures/circular.h): the probe loop shape, the
// isMarked/isEmpty/isDeleted branch order, and the retry-in-place-on-CAS-
// failure discipline are all carried over, adapted to this port's Slot state
// machine.
package growtable

import "sync/atomic"

// BaseTable is a single fixed-capacity slot array plus the bookkeeping
// migration needs to claim and hand off blocks of it.
type BaseTable struct {
	slots      []Slot
	capacity   uint64
	bitmask    uint64
	rightShift uint
	probeWindow uint64
	version    uint64
	hasher     Hasher

	// currentCopyBlock is the fetch-add cursor migration helpers use to
	// claim disjoint [s, e) ranges of this table to copy out of.
	currentCopyBlock atomic.Uint64

	// next is set exactly once, by whichever Handle wins the race to
	// start a growth step, to the successor table migration copies into.
	// A nil next means this table is not (yet) being replaced.
	next atomic.Pointer[BaseTable]

	// refs is this table's protection count: the number of Handles
	// currently holding a reference to it. Reclaimer.Retire spins until
	// this reaches zero before treating the table as reclaimed.
	refs atomic.Int64
}

// acquire increments the protection count and returns bt, mirroring the
// reference design's protect(). Every Handle that caches bt must acquire it
// before reading from it and release it when done or when moving to a
// newer table.
func (bt *BaseTable) acquire() *BaseTable {
	bt.refs.Add(1)
	return bt
}

// release decrements the protection count, mirroring unprotect().
func (bt *BaseTable) release() {
	bt.refs.Add(-1)
}

// minTableCapacity is the floor below which compute capacity never goes,
// matching the reference design's 4096-slot minimum.
const minTableCapacity = 4096

// fillPercentCeiling mirrors the reference design's MiSt=200: a table is
// sized so a desired element count occupies at most 50% of it
// (desired*100/200 == desired/2) before the fixed capacity is even reached.
const fillPercentCeiling = 200

// computeCapacity rounds a desired element count up to a power-of-two slot
// count, reserving headroom so the desired count fills at most 1/(MiSt/100).
func computeCapacity(desired uint64) uint64 {
	cap := uint64(minTableCapacity)
	for cap < desired*(fillPercentCeiling/100) {
		cap <<= 1
	}
	return cap
}

// computeRightShift returns the shift that reduces a Hasher's full-width
// digest down to log2(capacity) significant bits.
func computeRightShift(capacity uint64) uint {
	logSize := uint(0)
	for c := capacity; c > 1; c >>= 1 {
		logSize++
	}
	return significantDigits - logSize
}

// newBaseTable allocates a BaseTable with the given capacity (already
// rounded to a power of two by the caller) and version stamp.
func newBaseTable(capacity uint64, version uint64, hasher Hasher, probeWindow int) *BaseTable {
	bt := &BaseTable{
		slots:       make([]Slot, capacity),
		capacity:    capacity,
		bitmask:     capacity - 1,
		rightShift:  computeRightShift(capacity),
		probeWindow: uint64(probeWindow),
		version:     version,
		hasher:      hasher,
	}
	return bt
}

func (bt *BaseTable) home(k uint64) uint64 {
	return bt.hasher.Hash(k) >> bt.rightShift
}

// Insert places (k, v) if k is absent. Returns ReturnSuccessInsert,
// ReturnAlreadyUsed (with the existing value), ReturnFull (probe window
// exhausted), or ReturnInvalid (table is being migrated; retry on the
// successor).
func (bt *BaseTable) Insert(k, v uint64) (code ReturnCode, existing uint64) {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		idx := i & bt.bitmask
		slot := &bt.slots[idx]
		sn := slot.load()
		switch {
		case sn.isMarked():
			return ReturnInvalid, 0
		case sn.compareKey(k):
			return ReturnAlreadyUsed, sn.value
		case sn.isEmpty():
			if slot.casInsertEmpty(k, v) {
				return ReturnSuccessInsert, v
			}
			i-- // slot changed underneath us; re-examine the same position
		case sn.isDeleted():
			// tombstone: keep probing past it
		default:
			i-- // pending: a concurrent writer is mid-transition, retry
		}
	}
	return ReturnFull, 0
}

// Update applies f to the current value of k if present, publishing the
// result. Returns ReturnSuccessUpdate, ReturnNotFound, or ReturnInvalid.
func (bt *BaseTable) Update(k uint64, f func(uint64) uint64) (code ReturnCode, newValue uint64) {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		idx := i & bt.bitmask
		slot := &bt.slots[idx]
		sn := slot.load()
		switch {
		case sn.isMarked():
			return ReturnInvalid, 0
		case sn.compareKey(k):
			if nv, ok := slot.atomicUpdate(k, f); ok {
				return ReturnSuccessUpdate, nv
			}
			i--
		case sn.isEmpty():
			return ReturnNotFound, 0
		case sn.isDeleted():
		default:
			i--
		}
	}
	return ReturnNotFound, 0
}

// UpdateUnsafe is Update via a plain store instead of a CAS loop, for
// callers that externally serialize writers to k.
func (bt *BaseTable) UpdateUnsafe(k uint64, f func(uint64) uint64) (code ReturnCode, newValue uint64) {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		idx := i & bt.bitmask
		slot := &bt.slots[idx]
		sn := slot.load()
		switch {
		case sn.isMarked():
			return ReturnInvalid, 0
		case sn.compareKey(k):
			if nv, ok := slot.nonAtomicUpdate(k, f); ok {
				return ReturnSuccessUpdate, nv
			}
			i--
		case sn.isEmpty():
			return ReturnNotFound, 0
		case sn.isDeleted():
		default:
			i--
		}
	}
	return ReturnNotFound, 0
}

// InsertOrUpdate inserts d if k is absent, otherwise applies f to the
// current value. Returns ReturnSuccessInsert, ReturnSuccessUpdate,
// ReturnFull, or ReturnInvalid.
func (bt *BaseTable) InsertOrUpdate(k, d uint64, f func(uint64) uint64) (code ReturnCode, value uint64) {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		idx := i & bt.bitmask
		slot := &bt.slots[idx]
		sn := slot.load()
		switch {
		case sn.isMarked():
			return ReturnInvalid, 0
		case sn.compareKey(k):
			if nv, ok := slot.atomicUpdate(k, f); ok {
				return ReturnSuccessUpdate, nv
			}
			i--
		case sn.isEmpty():
			if slot.casInsertEmpty(k, d) {
				return ReturnSuccessInsert, d
			}
			i--
		case sn.isDeleted():
		default:
			i--
		}
	}
	return ReturnFull, 0
}

// InsertOrUpdateUnsafe is InsertOrUpdate via a plain store on the update
// path, for callers that externally serialize writers to k.
func (bt *BaseTable) InsertOrUpdateUnsafe(k, d uint64, f func(uint64) uint64) (code ReturnCode, value uint64) {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		idx := i & bt.bitmask
		slot := &bt.slots[idx]
		sn := slot.load()
		switch {
		case sn.isMarked():
			return ReturnInvalid, 0
		case sn.compareKey(k):
			if nv, ok := slot.nonAtomicUpdate(k, f); ok {
				return ReturnSuccessUpdate, nv
			}
			i--
		case sn.isEmpty():
			if slot.casInsertEmpty(k, d) {
				return ReturnSuccessInsert, d
			}
			i--
		case sn.isDeleted():
		default:
			i--
		}
	}
	return ReturnFull, 0
}

// Erase tombstones the slot holding k. Returns ReturnSuccessDelete,
// ReturnNotFound, or ReturnInvalid.
func (bt *BaseTable) Erase(k uint64) ReturnCode {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		idx := i & bt.bitmask
		slot := &bt.slots[idx]
		sn := slot.load()
		switch {
		case sn.isMarked():
			return ReturnInvalid
		case sn.compareKey(k):
			if slot.atomicDelete(k) {
				return ReturnSuccessDelete
			}
			i--
		case sn.isEmpty():
			return ReturnNotFound
		case sn.isDeleted():
		default:
			i--
		}
	}
	return ReturnNotFound
}

// Find returns the value stored for k, if present. A marked slot still
// compares by key: Find is lock-free and never blocks on migration, so it
// may observe a mid-migration table and must still answer from whatever
// snapshot it reads.
func (bt *BaseTable) Find(k uint64) (value uint64, found bool) {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		sn := bt.slots[i&bt.bitmask].load()
		if sn.compareKey(k) {
			return sn.value, true
		}
		if sn.isEmpty() {
			return 0, false
		}
	}
	return 0, false
}

// insertUnsafeEntry places (k, v) into the first empty slot on its probe
// sequence with no CAS. Valid only when the caller holds exclusive write
// ownership of this table's region, i.e. a migration target that nothing
// else can observe yet.
func (bt *BaseTable) insertUnsafeEntry(k, v uint64) {
	home := bt.home(k)
	for i := home; i < home+bt.probeWindow; i++ {
		idx := i & bt.bitmask
		if bt.slots[idx].load().isEmpty() {
			bt.slots[idx].insertUnsafe(k, v)
			return
		}
	}
	panic("growtable: migration target has no empty slot for insertUnsafe (undersized successor)")
}

// migrateRange marks and copies slots [s, e) of bt into target, extending
// past e as needed so the cut never splits a probe sequence: migration only
// stops at a slot it can observe as empty. Returns the number of live
// entries copied. Grounded directly in BaseCircular::migrate.
func (bt *BaseTable) migrateRange(target *BaseTable, s, e uint64) uint64 {
	var n uint64

	shift := uint(0)
	for target.capacity > (bt.capacity << shift) {
		shift++
	}

	// Scan forward from s to find a clean cut point: the first slot we
	// can mark as empty. Slots before it belong to the previous block's
	// trailing scan, so the region we pre-fill below starts there.
	i := s
	var curr slotSnapshot
	for i < e {
		curr = bt.slots[i].load()
		if curr.isEmpty() {
			if bt.slots[i].atomicMark(curr) {
				break
			}
			continue // lost the mark race, re-read the same slot
		}
		i++
	}

	for j := i << shift; j < e<<shift; j++ {
		target.slots[j].reset()
	}

	for i < e {
		curr = bt.slots[i].load()
		if !bt.slots[i].atomicMark(curr) {
			continue // lost the mark race, retry this slot
		}
		if !curr.isEmpty() && !curr.isDeleted() {
			target.insertUnsafeEntry(curr.key, curr.value)
			n++
		}
		i++
	}

	// Keep going past e, slot by slot, until we land on one we can mark
	// as empty: that slot's probe sequence cannot continue into territory
	// this block already swept, so it is safe to stop there. A position
	// already marked by the next block's own scan (its clean-cut scan or
	// its primary [s, e) range) is territory that block already owns —
	// it either already copied that slot's content into target or will,
	// so we must neither reset target's image cells there nor copy the
	// slot's content ourselves; either would double- (or un-) insert the
	// key that block is responsible for.
	for {
		pos := i & bt.bitmask
		curr = bt.slots[pos].load()
		alreadyMarked := curr.isMarked()

		if !bt.slots[pos].atomicMark(curr) {
			continue // retry this position
		}
		if alreadyMarked {
			break // the next block already claimed this position
		}

		tPos := pos << shift
		for j := uint64(0); j < uint64(1)<<shift; j++ {
			target.slots[tPos+j].reset()
		}

		nonEmpty := !curr.isEmpty()
		if nonEmpty && !curr.isDeleted() {
			target.insertUnsafeEntry(curr.key, curr.value)
			n++
		}
		i++
		if !nonEmpty {
			break
		}
	}

	return n
}
