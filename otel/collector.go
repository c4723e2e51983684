// collector.go: growtable.MetricsCollector implemented over OpenTelemetry
// instruments. Grounded in the core module's interfaces.go contract and the
// teacher's otel/collector.go (meter setup, functional options, compile-time
// interface check), rebound from per-cache hit/miss/eviction metrics to
// growtable's find/insert/update/delete/grow/migration/reclaim events.
package otel

import (
	"context"
	"errors"

	"github.com/nilgrove/growtable"
	"go.opentelemetry.io/otel/metric"
)

// Collector implements growtable.MetricsCollector using OpenTelemetry.
//
// All instruments are thread-safe; Collector adds no locking of its own.
type Collector struct {
	findLatency   metric.Int64Histogram
	insertLatency metric.Int64Histogram
	updateLatency metric.Int64Histogram
	deleteLatency metric.Int64Histogram
	growLatency   metric.Int64Histogram
	migrateBlock  metric.Int64Histogram

	findHits    metric.Int64Counter
	findMisses  metric.Int64Counter
	inserts     metric.Int64Counter
	duplicates  metric.Int64Counter
	updates     metric.Int64Counter
	notFound    metric.Int64Counter
	deletes     metric.Int64Counter
	growStarts  metric.Int64Counter
	migrated    metric.Int64Counter
	reclaims    metric.Int64Counter
}

// Options configures Collector.
type Options struct {
	// MeterName is the OpenTelemetry meter name. Default: the module path.
	MeterName string
}

// Option is a functional option for New.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful when instrumenting more
// than one GrowTable from the same process.
func WithMeterName(name string) Option {
	return func(o *Options) { o.MeterName = name }
}

// New builds a Collector from an OpenTelemetry MeterProvider.
func New(provider metric.MeterProvider, opts ...Option) (*Collector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}
	options := Options{MeterName: "github.com/nilgrove/growtable"}
	for _, opt := range opts {
		opt(&options)
	}
	meter := provider.Meter(options.MeterName)

	c := &Collector{}
	var err error

	if c.findLatency, err = meter.Int64Histogram("growtable_find_latency_ns",
		metric.WithDescription("Latency of Find operations"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.insertLatency, err = meter.Int64Histogram("growtable_insert_latency_ns",
		metric.WithDescription("Latency of Insert operations"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.updateLatency, err = meter.Int64Histogram("growtable_update_latency_ns",
		metric.WithDescription("Latency of Update/InsertOrUpdate operations"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.deleteLatency, err = meter.Int64Histogram("growtable_delete_latency_ns",
		metric.WithDescription("Latency of Erase operations"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.growLatency, err = meter.Int64Histogram("growtable_grow_latency_ns",
		metric.WithDescription("Wall time a growth step took to close"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.migrateBlock, err = meter.Int64Histogram("growtable_migration_block_latency_ns",
		metric.WithDescription("Latency of one migration helper's block"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}

	if c.findHits, err = meter.Int64Counter("growtable_find_hits_total"); err != nil {
		return nil, err
	}
	if c.findMisses, err = meter.Int64Counter("growtable_find_misses_total"); err != nil {
		return nil, err
	}
	if c.inserts, err = meter.Int64Counter("growtable_inserts_total"); err != nil {
		return nil, err
	}
	if c.duplicates, err = meter.Int64Counter("growtable_insert_duplicates_total"); err != nil {
		return nil, err
	}
	if c.updates, err = meter.Int64Counter("growtable_updates_total"); err != nil {
		return nil, err
	}
	if c.notFound, err = meter.Int64Counter("growtable_update_not_found_total"); err != nil {
		return nil, err
	}
	if c.deletes, err = meter.Int64Counter("growtable_deletes_total"); err != nil {
		return nil, err
	}
	if c.growStarts, err = meter.Int64Counter("growtable_grow_starts_total"); err != nil {
		return nil, err
	}
	if c.migrated, err = meter.Int64Counter("growtable_migrated_entries_total"); err != nil {
		return nil, err
	}
	if c.reclaims, err = meter.Int64Counter("growtable_reclaims_total"); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Collector) RecordFind(latencyNanos int64, hit bool) {
	ctx := context.Background()
	c.findLatency.Record(ctx, latencyNanos)
	if hit {
		c.findHits.Add(ctx, 1)
	} else {
		c.findMisses.Add(ctx, 1)
	}
}

func (c *Collector) RecordInsert(latencyNanos int64, inserted bool) {
	ctx := context.Background()
	c.insertLatency.Record(ctx, latencyNanos)
	if inserted {
		c.inserts.Add(ctx, 1)
	} else {
		c.duplicates.Add(ctx, 1)
	}
}

func (c *Collector) RecordUpdate(latencyNanos int64, updated bool) {
	ctx := context.Background()
	c.updateLatency.Record(ctx, latencyNanos)
	if updated {
		c.updates.Add(ctx, 1)
	} else {
		c.notFound.Add(ctx, 1)
	}
}

func (c *Collector) RecordDelete(latencyNanos int64, deleted bool) {
	ctx := context.Background()
	c.deleteLatency.Record(ctx, latencyNanos)
	if deleted {
		c.deletes.Add(ctx, 1)
	}
}

func (c *Collector) RecordGrowStart(fromCapacity, toCapacity uint64) {
	c.growStarts.Add(context.Background(), 1)
	_ = fromCapacity
	_ = toCapacity
}

func (c *Collector) RecordGrowEnd(latencyNanos int64, elementCount uint64) {
	ctx := context.Background()
	c.growLatency.Record(ctx, latencyNanos)
	_ = elementCount
}

func (c *Collector) RecordMigrationBlock(latencyNanos int64, migratedEntries uint64) {
	ctx := context.Background()
	c.migrateBlock.Record(ctx, latencyNanos)
	c.migrated.Add(ctx, int64(migratedEntries))
}

func (c *Collector) RecordReclaim(capacity uint64) {
	c.reclaims.Add(context.Background(), 1)
	_ = capacity
}

var _ growtable.MetricsCollector = (*Collector)(nil)
