package growtable

import "testing"

func TestDeamortizedInsertFindErase(t *testing.T) {
	dt := NewDeamortizedTable(1<<16, 1<<12, DefaultHasher(), DefaultProbeWindow)

	if code := dt.Insert(1, 111); code != ReturnSuccessInsert {
		t.Fatalf("Insert = %v", code)
	}
	if v, ok := dt.Find(1); !ok || v != 111 {
		t.Fatalf("Find = %d, %v", v, ok)
	}
	if code := dt.Erase(1); code != ReturnSuccessDelete {
		t.Fatalf("Erase = %v", code)
	}
	if _, ok := dt.Find(1); ok {
		t.Fatal("Find should miss after Erase")
	}
}

func TestDeamortizedGrowStepPreservesEntries(t *testing.T) {
	dt := NewDeamortizedTable(1<<16, 1<<12, DefaultHasher(), DefaultProbeWindow)

	for k := uint64(1); k <= 1000; k++ {
		if code := dt.Insert(k, k*2); code != ReturnSuccessInsert {
			t.Fatalf("Insert(%d) = %v", k, code)
		}
	}
	if !dt.CanGrow() {
		t.Fatal("table should have headroom to grow")
	}
	before := dt.liveCapacity.Load()
	dt.GrowStep()
	if dt.liveCapacity.Load() != before*2 {
		t.Fatalf("liveCapacity after GrowStep = %d, want %d", dt.liveCapacity.Load(), before*2)
	}
	for k := uint64(1); k <= 1000; k++ {
		v, ok := dt.Find(k)
		if !ok || v != k*2 {
			t.Fatalf("Find(%d) after GrowStep = %d, %v", k, v, ok)
		}
	}
}

func TestDeamortizedCanGrowStopsAtMax(t *testing.T) {
	dt := NewDeamortizedTable(minTableCapacity, minTableCapacity, DefaultHasher(), DefaultProbeWindow)
	if dt.CanGrow() {
		t.Fatal("table already at max capacity should report CanGrow false")
	}
}
