// slot.go: the atomic per-slot state machine
//
// A Slot is a fixed-size cell encoding a (key, value) pair plus a status.
// The reference design CASes a single wide word holding key+value+flags;
// Go has no portable CAS wider than a machine word, so transitions that
// touch more than one field here claim the slot first by CASing state into
// slotPending (mirroring the teacher's entry.valid claim-then-populate
// pattern), write key/value with plain atomic stores, then publish the
// terminal state with a release store. That store is the publication
// barrier: no reader observes a partially-written key/value, because no
// reader treats a pending slot as live.
package growtable

import "sync/atomic"

type slotState int32

const (
	slotEmpty slotState = iota
	slotPending
	slotLive
	slotDeleted
	slotMarked
)

// Reserved key sentinels. Neither may be used as a user key.
const (
	EmptyKey   uint64 = 0
	DeletedKey uint64 = ^uint64(0)
)

// Slot is one cell of a BaseTable's slot array.
type Slot struct {
	state atomic.Int32
	key   atomic.Uint64
	value atomic.Uint64
}

// slotSnapshot is a point-in-time read of a Slot, used by probing loops that
// need to re-check the same fields they branched on.
type slotSnapshot struct {
	state slotState
	key   uint64
	value uint64
}

func (s *Slot) load() slotSnapshot {
	return slotSnapshot{
		state: slotState(s.state.Load()),
		key:   s.key.Load(),
		value: s.value.Load(),
	}
}

func (sn slotSnapshot) isEmpty() bool   { return sn.state == slotEmpty }
func (sn slotSnapshot) isDeleted() bool { return sn.state == slotDeleted }
func (sn slotSnapshot) isMarked() bool  { return sn.state == slotMarked }
func (sn slotSnapshot) isLive() bool    { return sn.state == slotLive }

// compareKey reports whether this snapshot holds key k in a live or marked
// slot. Marked slots still compare by key so lookups can answer from a
// frozen snapshot; deleted slots (tombstones) never match, so probing
// continues past them.
func (sn slotSnapshot) compareKey(k uint64) bool {
	return (sn.state == slotLive || sn.state == slotMarked) && sn.key == k
}

// tryClaim attempts to CAS state from `from` to slotPending, the exclusive
// claim used before any multi-field write. Returns false if another writer
// is already mutating or the state has moved on.
func (s *Slot) tryClaim(from slotState) bool {
	return s.state.CompareAndSwap(int32(from), int32(slotPending))
}

// publish writes key and value and releases the claim by storing the
// terminal state.
func (s *Slot) publish(key, value uint64, terminal slotState) {
	s.key.Store(key)
	s.value.Store(value)
	s.state.Store(int32(terminal))
}

// casInsertEmpty claims an empty slot and publishes (k, v) as slotLive.
// Returns true on success; false if the slot was no longer empty (caller
// should re-read and retry or move on, per the probing loop).
func (s *Slot) casInsertEmpty(k, v uint64) bool {
	if !s.tryClaim(slotEmpty) {
		return false
	}
	s.publish(k, v, slotLive)
	return true
}

// atomicUpdate repeatedly applies f to the current value of a live slot
// holding key k, publishing the result, until it succeeds or the slot
// changes key or becomes marked. Returns the new value and whether it
// succeeded.
func (s *Slot) atomicUpdate(k uint64, f func(cur uint64) uint64) (newValue uint64, ok bool) {
	for {
		sn := s.load()
		if sn.isMarked() {
			return 0, false
		}
		if !sn.compareKey(k) || !sn.isLive() {
			return 0, false
		}
		nv := f(sn.value)
		if !s.state.CompareAndSwap(int32(slotLive), int32(slotPending)) {
			continue // lost race to a concurrent writer; re-read and retry
		}
		// Re-validate the key hasn't changed between load and claim; it
		// cannot, since live slots never change key, but guard anyway.
		if s.key.Load() != k {
			s.state.Store(int32(slotLive))
			continue
		}
		s.value.Store(nv)
		s.state.Store(int32(slotLive))
		return nv, true
	}
}

// nonAtomicUpdate is update_unsafe: the combining function's result is
// written with a plain store rather than going through the pending-claim
// CAS loop, for callers that externally serialize writers to this key.
func (s *Slot) nonAtomicUpdate(k uint64, f func(cur uint64) uint64) (newValue uint64, ok bool) {
	sn := s.load()
	if sn.isMarked() || !sn.compareKey(k) || !sn.isLive() {
		return 0, false
	}
	nv := f(sn.value)
	s.value.Store(nv)
	return nv, true
}

// atomicDelete transitions a live slot holding key k to slotDeleted,
// preserving the key as a tombstone marker. Returns false if the slot was
// marked, didn't hold k, or a concurrent writer won the claim race (caller
// retries the probe position).
func (s *Slot) atomicDelete(k uint64) bool {
	sn := s.load()
	if sn.isMarked() || !sn.compareKey(k) || !sn.isLive() {
		return false
	}
	if !s.state.CompareAndSwap(int32(slotLive), int32(slotPending)) {
		return false
	}
	s.state.Store(int32(slotDeleted))
	return true
}

// atomicMark freezes the slot during migration, preserving whatever
// snapshot it held. Returns false if the slot already changed underneath
// the caller (the caller re-reads and retries, per the migration
// algorithm). Marking is idempotent: a slot that is already marked
// succeeds trivially.
func (s *Slot) atomicMark(expect slotSnapshot) bool {
	if expect.isMarked() {
		return true
	}
	switch expect.state {
	case slotEmpty, slotLive, slotDeleted:
		return s.state.CompareAndSwap(int32(expect.state), int32(slotMarked))
	default:
		return false
	}
}

// unmark clears the marked bit, restoring the slot to `to`. Used only by
// the deamortized variant's in-place rehash (spec §4.6); the replacement
// variant never calls this.
func (s *Slot) unmark(to slotState) {
	s.state.Store(int32(to))
}

// reset reinitializes a slot to empty with zeroed key/value. Used to
// pre-fill a successor table's image region before migration writes into
// it (spec §4.2 step 2).
func (s *Slot) reset() {
	s.state.Store(int32(slotEmpty))
	s.key.Store(0)
	s.value.Store(0)
}

// insertUnsafe writes (k, v) directly into an empty slot with no CAS. Only
// valid when the caller has exclusive ownership of the target region
// (migration writing into a freshly pre-filled successor).
func (s *Slot) insertUnsafe(k, v uint64) {
	s.key.Store(k)
	s.value.Store(v)
	s.state.Store(int32(slotLive))
}
