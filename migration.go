// migration.go: block-wise parallel migration between base tables
//
// Any number of Handles may help migrate a growing table concurrently: each
// claims a disjoint block of the source table via fetch-add on
// currentCopyBlock, migrates it with BaseTable.migrateRange, and loops until
// the source is exhausted. Grounded in estrat_async.hpp's
// local_data_type::blockwise_migrate.
package growtable

// blockwiseMigrate claims and migrates successive blocks of source into
// target until source is exhausted, returning the total number of live
// entries copied by this call (other concurrent helpers may also be
// migrating blocks of the same source).
func blockwiseMigrate(source, target *BaseTable, blockSize uint64) uint64 {
	var total uint64
	for {
		start := source.currentCopyBlock.Add(blockSize) - blockSize
		if start >= source.capacity {
			return total
		}
		end := start + blockSize
		if end > source.capacity {
			end = source.capacity
		}
		total += source.migrateRange(target, start, end)
	}
}
