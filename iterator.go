// iterator.go: result handles that survive concurrent growth
//
// A growth step can relocate any entry to a new slot address, so an
// Iterator here is never a pointer into a BaseTable the way the reference
// design's base_iterator.h is. Instead it snapshots (key, value, version);
// Refresh notices the Handle's generation has moved on and re-finds the
// key from scratch, exactly the strategy grow_iterator.h's
// ReferenceGrowT::base_refresh_ptr uses to survive a migration.
package growtable

// Iterator is the result of Handle.Find. It remains meaningful across
// later growth steps: call Refresh before reading Value if the table may
// have grown since the Iterator was created.
type Iterator struct {
	handle  *Handle
	key     uint64
	value   uint64
	version uint64
	valid   bool
}

// Valid reports whether key was present as of the last successful lookup
// or Refresh.
func (it *Iterator) Valid() bool { return it.valid }

// Key returns the key this Iterator was created for.
func (it *Iterator) Key() uint64 { return it.key }

// Value returns the value observed as of the last successful lookup or
// Refresh. Its result is meaningless if Valid is false.
func (it *Iterator) Value() uint64 { return it.value }

// Refresh re-validates the Iterator against the Handle's current
// generation. If the Handle has not moved on since this Iterator was
// created, Refresh is a no-op and returns the cached validity. Otherwise
// it re-finds the key by value, since the entry may have relocated during
// a migration the Handle has since observed.
func (it *Iterator) Refresh() bool {
	if !it.valid {
		return false
	}
	if it.handle.version == it.version {
		return true
	}
	table := it.handle.ensureCurrent()
	value, ok := table.Find(it.key)
	it.version = table.version
	it.value = value
	it.valid = ok
	return ok
}
