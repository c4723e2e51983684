// config.go: configuration for GrowTable
package growtable

// Config holds construction-time and operational parameters for a GrowTable.
//
// InitialCapacity, ProbeWindow, MigrationBlockSize and Hasher are
// structural: they are fixed for the lifetime of the table (rebuilding
// with a different value requires constructing a new GrowTable).
// MaxFillNumerator/Denominator and FlushThreshold are operational tunables
// that MAY be changed at runtime via HotConfig without rebuilding the table.
type Config struct {
	// InitialCapacity is the element count the first base table is sized
	// for: its slot count is the smallest power of two that is at least
	// 4096 and at least twice InitialCapacity. Default: DefaultInitialCapacity.
	InitialCapacity int

	// ProbeWindow (MaDis in the reference design) bounds how many slots a
	// probe sequence may examine before giving up with ReturnFull.
	// Default: DefaultProbeWindow.
	ProbeWindow int

	// MaxFillNumerator / MaxFillDenominator express the fill ratio
	// (inserted-deleted)/capacity that triggers a growth step, as a
	// fraction. Default: 1/2 (the amortized/replacement variant's
	// threshold from the reference design).
	MaxFillNumerator   int
	MaxFillDenominator int

	// FlushThreshold is how many local insert/delete events a Handle
	// accumulates before flushing into the global approximate counters
	// (and possibly triggering growth). Default: DefaultFlushThreshold.
	FlushThreshold int

	// MigrationBlockSize is the number of slots claimed per fetch-add by a
	// migration helper. Default: DefaultMigrationBlockSize.
	MigrationBlockSize int

	// Hasher produces the 64-bit digest used to place keys. Default:
	// DefaultHasher().
	Hasher Hasher

	// Logger receives diagnostic events (growth, migration, reclamation).
	// Default: NoOpLogger{}.
	Logger Logger

	// MetricsCollector receives observability events. Default:
	// NoOpMetricsCollector{}.
	MetricsCollector MetricsCollector
}

// Defaults for Config fields.
const (
	DefaultInitialCapacity    = 1 << 12
	DefaultProbeWindow        = 128
	DefaultMaxFillNumerator   = 1
	DefaultMaxFillDenominator = 2
	DefaultFlushThreshold     = 64
	DefaultMigrationBlockSize = 4096
)

// Validate normalizes invalid configuration values to defaults in place.
// It never returns a validation error for structural fields (matching the
// convention that Config is "always constructible"); NewErrInvalidHasher is
// the one exception, returned only when an explicitly supplied Hasher fails
// a cheap degeneracy probe.
func (c *Config) Validate() error {
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = DefaultInitialCapacity
	}
	if c.ProbeWindow <= 0 {
		c.ProbeWindow = DefaultProbeWindow
	}
	if c.MaxFillNumerator <= 0 || c.MaxFillDenominator <= 0 || c.MaxFillNumerator >= c.MaxFillDenominator {
		c.MaxFillNumerator = DefaultMaxFillNumerator
		c.MaxFillDenominator = DefaultMaxFillDenominator
	}
	if c.FlushThreshold <= 0 {
		c.FlushThreshold = DefaultFlushThreshold
	}
	if c.MigrationBlockSize <= 0 {
		c.MigrationBlockSize = DefaultMigrationBlockSize
	}
	if c.Hasher == nil {
		c.Hasher = DefaultHasher()
	} else if !probeHasher(c.Hasher) {
		return NewErrInvalidHasher()
	}
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}
	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		InitialCapacity:    DefaultInitialCapacity,
		ProbeWindow:        DefaultProbeWindow,
		MaxFillNumerator:   DefaultMaxFillNumerator,
		MaxFillDenominator: DefaultMaxFillDenominator,
		FlushThreshold:     DefaultFlushThreshold,
		MigrationBlockSize: DefaultMigrationBlockSize,
		Hasher:             DefaultHasher(),
		Logger:             NoOpLogger{},
		MetricsCollector:   NoOpMetricsCollector{},
	}
}

// maxFillRatio returns the configured fill ratio as a float64.
func (c *Config) maxFillRatio() float64 {
	return float64(c.MaxFillNumerator) / float64(c.MaxFillDenominator)
}
