// reclaim.go: deferred reclamation of retired base tables
//
// Go's garbage collector frees memory once nothing references it, so there
// is no literal free() to guard the way the reference design's hazard
// pointer / counting scheme (allocator/counting_pointer.h) does. What still
// must be upheld is the ordering invariant: a table that has been retired
// (unlinked from GrowTable's current pointer) must not be treated as live
// by any in-flight operation, and onReclaimed must not fire while a helper
// is still migrating out of it. Reclaimer enforces that ordering using the
// protection counts BaseTable.acquire/release already maintain.
package growtable

// Reclaimer waits out in-flight references to a retired BaseTable before
// invoking a caller-supplied cleanup hook. It holds no state of its own;
// the protection count lives on the BaseTable being retired.
type Reclaimer struct{}

// Retire spins (with backoff) until bt's protection count reaches zero,
// then calls onReclaimed. Callers must have already unlinked bt from any
// path new operations could acquire it through before calling Retire.
func (Reclaimer) Retire(bt *BaseTable, onReclaimed func(*BaseTable)) {
	var b backoff
	for bt.refs.Load() != 0 {
		b.wait()
	}
	if onReclaimed != nil {
		onReclaimed(bt)
	}
}
