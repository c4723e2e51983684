package otel

import (
	"testing"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewRejectsNilProvider(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected an error for a nil MeterProvider")
	}
}

func TestNewBuildsAllInstruments(t *testing.T) {
	c, err := New(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	// A noop provider's instruments are safe to call but record nothing;
	// this exercises every Record method without a real exporter.
	c.RecordFind(100, true)
	c.RecordFind(100, false)
	c.RecordInsert(50, true)
	c.RecordInsert(50, false)
	c.RecordUpdate(75, true)
	c.RecordUpdate(75, false)
	c.RecordDelete(60, true)
	c.RecordGrowStart(4096, 8192)
	c.RecordGrowEnd(1000, 2000)
	c.RecordMigrationBlock(10, 128)
	c.RecordReclaim(4096)
}

func TestWithMeterName(t *testing.T) {
	c, err := New(noop.NewMeterProvider(), WithMeterName("custom"))
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("expected a non-nil collector")
	}
}
