// hot_reload.go: dynamic reload of operational tunables via Argus
package growtable

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig watches a configuration file and applies changes to a
// GrowTable's operational tunables — MaxFillNumerator/Denominator and
// FlushThreshold — without rebuilding the table. Structural fields
// (InitialCapacity, ProbeWindow, MigrationBlockSize, Hasher) are fixed at
// construction and never hot-reloaded.
type HotConfig struct {
	gt      *GrowTable
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  Config

	// OnReload is called after configuration is successfully reloaded.
	// Must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger is not read by HotConfig: reload events are always logged
	// through gt's configured Logger.
	Logger Logger
}

// NewHotConfig starts watching opts.ConfigPath for changes to gt's
// operational tunables.
//
// Supported configuration keys (nested under a "growtable" section, or at
// the document root):
//   - growtable.max_fill_numerator (int)
//   - growtable.max_fill_denominator (int)
//   - growtable.flush_threshold (int)
func NewHotConfig(gt *GrowTable, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = gt.config.Logger
	}

	hc := &HotConfig{
		gt:       gt,
		OnReload: opts.OnReload,
		config:   gt.config,
	}

	argusConfig := argus.Config{PollInterval: opts.PollInterval}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher
	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the last-applied configuration.
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

func (hc *HotConfig) handleConfigChange(data map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(data, oldConfig)
	hc.config = newConfig
	hc.mu.Unlock()

	hc.applyChanges(oldConfig, newConfig)

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseConfig extracts the reloadable subset of Config from watched data,
// starting from base so any key absent from the file keeps its current
// value.
func (hc *HotConfig) parseConfig(data map[string]interface{}, base Config) Config {
	config := base

	section, ok := data["growtable"].(map[string]interface{})
	if !ok {
		_, hasThreshold := data["flush_threshold"]
		_, hasNumerator := data["max_fill_numerator"]
		_, hasDenominator := data["max_fill_denominator"]
		if hasThreshold || hasNumerator || hasDenominator {
			section = data
		} else {
			return config
		}
	}

	if n, ok := parsePositiveInt(section["max_fill_numerator"]); ok {
		config.MaxFillNumerator = n
	}
	if d, ok := parsePositiveInt(section["max_fill_denominator"]); ok {
		config.MaxFillDenominator = d
	}
	if config.MaxFillNumerator <= 0 || config.MaxFillDenominator <= 0 || config.MaxFillNumerator >= config.MaxFillDenominator {
		config.MaxFillNumerator = base.MaxFillNumerator
		config.MaxFillDenominator = base.MaxFillDenominator
	}
	if t, ok := parsePositiveInt(section["flush_threshold"]); ok {
		config.FlushThreshold = t
	}

	return config
}

// applyChanges pushes the reloaded operational tunables onto the live
// GrowTable. Structural fields in new are ignored even if present in the
// file: only the fields NewHotConfig documents as reloadable ever reach
// here, because parseConfig never touches anything else.
func (hc *HotConfig) applyChanges(old, new Config) {
	if new.MaxFillNumerator == old.MaxFillNumerator && new.MaxFillDenominator == old.MaxFillDenominator && new.FlushThreshold == old.FlushThreshold {
		return
	}
	hc.gt.config.Logger.Info("growtable: operational config reloaded",
		"max_fill_numerator", new.MaxFillNumerator,
		"max_fill_denominator", new.MaxFillDenominator,
		"flush_threshold", new.FlushThreshold)
	hc.gt.config.MaxFillNumerator = new.MaxFillNumerator
	hc.gt.config.MaxFillDenominator = new.MaxFillDenominator
	hc.gt.config.FlushThreshold = new.FlushThreshold
}
