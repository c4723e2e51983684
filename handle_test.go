package growtable

import "testing"

func TestHandleMoveTransfersState(t *testing.T) {
	gt, _ := New(DefaultConfig())
	h := gt.GetHandle()
	h.Insert(1, 100)

	moved := h.Move()
	defer moved.Close()

	if it := moved.Find(1); !it.Valid() || it.Value() != 100 {
		t.Fatalf("moved handle lost state: valid=%v value=%d", it.Valid(), it.Value())
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic: source handle must be closed after Move")
		}
	}()
	h.Insert(2, 200)
}

func TestHandleUpdateUnsafe(t *testing.T) {
	gt, _ := New(DefaultConfig())
	h := gt.GetHandle()
	defer h.Close()

	h.Insert(5, 1)
	nv, ok := h.UpdateUnsafe(5, func(v uint64) uint64 { return v + 9 })
	if !ok || nv != 10 {
		t.Fatalf("UpdateUnsafe = %d, %v", nv, ok)
	}
}

func TestHandleDiagnosticTimestamps(t *testing.T) {
	gt, _ := New(DefaultConfig())
	h := gt.GetHandle()
	defer h.Close()

	if h.CreatedAt == 0 {
		t.Fatal("CreatedAt not set by GetHandle")
	}
	if h.LastGrowSeenAt == 0 {
		t.Fatal("LastGrowSeenAt not set by initial load")
	}

	moved := h.Move()
	defer moved.Close()
	if moved.CreatedAt == 0 || moved.LastGrowSeenAt == 0 {
		t.Fatal("Move did not carry over diagnostic timestamps")
	}
}

func TestHandleInsertOrUpdateUnsafe(t *testing.T) {
	gt, _ := New(DefaultConfig())
	h := gt.GetHandle()
	defer h.Close()

	v, inserted := h.InsertOrUpdateUnsafe(6, 3, func(old uint64) uint64 { return old + 1 })
	if !inserted || v != 3 {
		t.Fatalf("first InsertOrUpdateUnsafe = %d, %v", v, inserted)
	}
	v, inserted = h.InsertOrUpdateUnsafe(6, 3, func(old uint64) uint64 { return old + 1 })
	if inserted || v != 4 {
		t.Fatalf("second InsertOrUpdateUnsafe = %d, %v", v, inserted)
	}
}
