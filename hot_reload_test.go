package growtable

import "testing"

func TestParseConfigNestedSection(t *testing.T) {
	hc := &HotConfig{}
	base := DefaultConfig()

	data := map[string]interface{}{
		"growtable": map[string]interface{}{
			"max_fill_numerator":   float64(3),
			"max_fill_denominator": float64(4),
			"flush_threshold":      float64(128),
		},
	}
	got := hc.parseConfig(data, base)
	if got.MaxFillNumerator != 3 || got.MaxFillDenominator != 4 {
		t.Fatalf("fill ratio = %d/%d", got.MaxFillNumerator, got.MaxFillDenominator)
	}
	if got.FlushThreshold != 128 {
		t.Fatalf("FlushThreshold = %d", got.FlushThreshold)
	}
}

func TestParseConfigFlatSection(t *testing.T) {
	hc := &HotConfig{}
	base := DefaultConfig()

	data := map[string]interface{}{"flush_threshold": 256}
	got := hc.parseConfig(data, base)
	if got.FlushThreshold != 256 {
		t.Fatalf("FlushThreshold = %d, want 256", got.FlushThreshold)
	}
}

func TestParseConfigRejectsInvalidFillRatio(t *testing.T) {
	hc := &HotConfig{}
	base := DefaultConfig()

	data := map[string]interface{}{
		"growtable": map[string]interface{}{
			"max_fill_numerator":   float64(5),
			"max_fill_denominator": float64(2),
		},
	}
	got := hc.parseConfig(data, base)
	if got.MaxFillNumerator != base.MaxFillNumerator || got.MaxFillDenominator != base.MaxFillDenominator {
		t.Fatal("an invalid numerator/denominator pair should fall back to base")
	}
}

func TestParseConfigIgnoresUnrelatedDocument(t *testing.T) {
	hc := &HotConfig{}
	base := DefaultConfig()

	got := hc.parseConfig(map[string]interface{}{"unrelated": "value"}, base)
	if got != base {
		t.Fatal("a document with no recognized keys should leave config unchanged")
	}
}

func TestApplyChangesUpdatesLiveConfig(t *testing.T) {
	gt, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	hc := &HotConfig{gt: gt}

	old := gt.config
	updated := old
	updated.FlushThreshold = 999
	hc.applyChanges(old, updated)

	if gt.config.FlushThreshold != 999 {
		t.Fatalf("FlushThreshold = %d, want 999", gt.config.FlushThreshold)
	}
}
