// deamortized.go: in-place growth, an advanced alternative to GrowTable
//
// spec.md §4.6 describes an optional mode that grows within a pre-allocated
// maximum arena instead of replacing the base table: GrowStep extends the
// live region by doubling it, marks the slots whose home bit is about to
// change, and rehashes only the ones that now belong beyond the old
// bitmask. There is no successor table to retire, so reclaim.go plays no
// part here.
//
// This mode trades the replacement variant's safety for a narrower
// concurrency contract, carried over from the reference design's two
// competing growth strategies (estrat_async.hpp vs. the in-place
// counterpart spec.md's Open Question discusses): Find, Insert and Erase
// may run concurrently with each other, but none of them may run
// concurrently with GrowStep, and GrowStep itself is NOT safe to call from
// more than one goroutine at a time. Callers that want the full replacement-variant
// concurrency guarantees (any Handle may trigger or help growth) should
// use GrowTable instead; this type exists for the workloads described in
// spec.md's Open Question where growth is driven by a single dedicated
// goroutine and in-place doubling's lower migration cost matters more than
// multi-writer growth.
package growtable

import "sync/atomic"

// DeamortizedTable is a base table that grows in place within a
// pre-allocated arena of maxCapacity slots, rather than being replaced.
type DeamortizedTable struct {
	slots       []Slot
	maxCapacity uint64

	liveCapacity atomic.Uint64
	rightShift   atomic.Uint32

	hasher      Hasher
	probeWindow uint64
}

// NewDeamortizedTable preallocates an arena of maxCapacity slots (rounded
// up to a power of two) and starts with initialCapacity of it live.
func NewDeamortizedTable(maxCapacity, initialCapacity uint64, hasher Hasher, probeWindow int) *DeamortizedTable {
	max := computeCapacity(maxCapacity)
	live := computeCapacity(initialCapacity)
	if live > max {
		live = max
	}
	dt := &DeamortizedTable{
		slots:       make([]Slot, max),
		maxCapacity: max,
		hasher:      hasher,
		probeWindow: uint64(probeWindow),
	}
	dt.liveCapacity.Store(live)
	dt.rightShift.Store(uint32(computeRightShift(live)))
	return dt
}

func (dt *DeamortizedTable) bitmask() uint64 {
	return dt.liveCapacity.Load() - 1
}

func (dt *DeamortizedTable) home(k uint64) uint64 {
	return dt.hasher.Hash(k) >> uint(dt.rightShift.Load())
}

// Find, Insert, Update, InsertOrUpdate and Erase mirror BaseTable's
// operations exactly, scoped to the currently-live region. A GrowStep
// running concurrently with these is the one combination this mode does
// not make safe; see the package comment above.

func (dt *DeamortizedTable) Find(k uint64) (value uint64, found bool) {
	home, mask := dt.home(k), dt.bitmask()
	probeEnd := home + dt.probeWindow
	for i := home; i < probeEnd; i++ {
		sn := dt.slots[i&mask].load()
		if sn.compareKey(k) {
			return sn.value, true
		}
		if sn.isEmpty() {
			return 0, false
		}
	}
	return 0, false
}

func (dt *DeamortizedTable) Insert(k, v uint64) ReturnCode {
	home, mask := dt.home(k), dt.bitmask()
	probeEnd := home + dt.probeWindow
	for i := home; i < probeEnd; i++ {
		idx := i & mask
		slot := &dt.slots[idx]
		sn := slot.load()
		switch {
		case sn.isMarked():
			return ReturnInvalid
		case sn.compareKey(k):
			return ReturnAlreadyUsed
		case sn.isEmpty():
			if slot.casInsertEmpty(k, v) {
				return ReturnSuccessInsert
			}
			i--
		case sn.isDeleted():
		default:
			i--
		}
	}
	return ReturnFull
}

func (dt *DeamortizedTable) Erase(k uint64) ReturnCode {
	home, mask := dt.home(k), dt.bitmask()
	probeEnd := home + dt.probeWindow
	for i := home; i < probeEnd; i++ {
		idx := i & mask
		slot := &dt.slots[idx]
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

// insertUnsafe places (k, v) into the first empty slot on its probe
// sequence starting at home, with no CAS. Used only by GrowStep's rehash,
// which holds exclusive write access to the extended region. home must be
// computed by the caller under the new right shift — dt.home(k) would
// still read the pre-GrowStep shift until the store at the end of
// GrowStep, landing relocated keys at their old home instead of their new
// one.
func (dt *DeamortizedTable) insertUnsafe(home, k, v, mask uint64) {
	for i := home; i < home+dt.probeWindow; i++ {
		idx := i & mask
		if dt.slots[idx].load().isEmpty() {
			dt.slots[idx].insertUnsafe(k, v)
			return
		}
	}
	panic("growtable: deamortized rehash found no empty slot in extended region")
}

// CanGrow reports whether the arena has unused headroom to double into.
func (dt *DeamortizedTable) CanGrow() bool {
	return dt.liveCapacity.Load() < dt.maxCapacity
}

// GrowStep doubles the live region and rehashes the upper half of the
// previously-live slots: any live entry there whose home, recomputed under
// the new (one-bit-wider) right shift, now falls in the newly opened
// region is relocated; everything else is left untouched and unmarked in
// place. Must not be called concurrently with another GrowStep on the
// same table, and must not be called once CanGrow is false.
func (dt *DeamortizedTable) GrowStep() {
	oldCapacity := dt.liveCapacity.Load()
	newCapacity := oldCapacity << 1
	if newCapacity > dt.maxCapacity {
		newCapacity = dt.maxCapacity
	}
	newRightShift := computeRightShift(newCapacity)
	newMask := newCapacity - 1

	for i := oldCapacity; i < newCapacity; i++ {
		dt.slots[i].reset()
	}

	tailStart := oldCapacity / 2
	for i := tailStart; i < oldCapacity; i++ {
		slot := &dt.slots[i]
		for {
			sn := slot.load()
			if !slot.atomicMark(sn) {
				continue // lost the mark race, re-read and retry
			}
			if sn.isLive() {
				newHome := dt.hasher.Hash(sn.key) >> uint(newRightShift)
				if newHome&newMask >= oldCapacity {
					dt.insertUnsafe(newHome, sn.key, sn.value, newMask)
					slot.reset()
				} else {
					slot.unmark(slotLive)
				}
			} else if sn.isDeleted() {
				slot.unmark(slotDeleted)
			} else {
				slot.unmark(slotEmpty)
			}
			break
		}
	}

	dt.rightShift.Store(uint32(newRightShift))
	dt.liveCapacity.Store(newCapacity)
}
