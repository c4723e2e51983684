// Package growtable provides a concurrent, growable, open-addressed hash
// map for 64-bit integer keys and values.
//
// # Overview
//
// growtable targets many-thread workloads dominated by point lookups,
// insertions, updates, and removals, where the defining problem is online
// resizing: the table grows without stopping readers or writers, and
// migration cost is amortized across many operations instead of paid by
// one caller.
//
// The table is built from three cooperating pieces:
//
//   - BaseTable: a fixed-capacity, open-addressed, linear-probing slot
//     array with lock-free insert/update/erase/find and a per-slot marking
//     bit used during migration.
//   - GrowTable: the orchestrator that holds the current BaseTable
//     generation, coordinates growth (any Handle may trigger or help
//     migrate), and safely retires the old generation once nothing
//     references it.
//   - Handle: a per-goroutine entry point that caches the current
//     generation, maintains local insert/delete counters flushed
//     periodically into global totals, and returns Iterators whose
//     Refresh survives a growth step.
//
// # Quick start
//
//	gt, err := growtable.New(growtable.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h := gt.GetHandle()
//	defer h.Close()
//
//	h.Insert(1, 100)
//	it := h.Find(1)
//	if it.Valid() {
//	    fmt.Println(it.Value())
//	}
//
// # Concurrency
//
// Get one Handle per goroutine; a Handle is not safe for concurrent use by
// more than one goroutine at a time. GrowTable itself may be shared freely
// — GetHandle is the only method meant to be called from many goroutines
// against the same GrowTable.
//
// # Reserved keys
//
// EmptyKey (0) and DeletedKey (all bits set) are reserved sentinels and
// must not be used as user keys; Config.Validate does not currently
// enforce this, so callers are responsible for avoiding them.
package growtable
