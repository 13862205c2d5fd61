package progression

import "time"

// #region constants

// MaxLevel is the highest progression level.
const MaxLevel = 7

// #endregion constants

// #region flag

// Flag is a sticky boolean session condition. Once set it stays set until
// teardown.
type Flag string

// FlagDualSignal marks the rare correlation of a sensor band crossing and a
// recognized pointer gesture inside one synchronicity span.
const FlagDualSignal Flag = "dual-signal"

// #endregion flag

// #region config

// Config holds the level-advancement ladder.
type Config struct {
	// Ladder[i] is the smoothed confidence required to advance to level i+1.
	// Must contain exactly MaxLevel entries, non-decreasing.
	Ladder []float64 `yaml:"ladder"`
}

// DefaultConfig returns the default advancement ladder.
func DefaultConfig() Config {
	return Config{Ladder: []float64{0.15, 0.3, 0.45, 0.6, 0.72, 0.82, 0.9}}
}

// #endregion config

// #region snapshot

// Snapshot is a read-only copy of the session state handed to consumers.
// Successive snapshots from one session always carry non-decreasing levels
// and grow-only discovery sets.
type Snapshot struct {
	SessionID          string
	Level              int
	Discoveries        []string // sorted
	SynchronicityCount int
	Flags              []string // sorted
	TakenAt            time.Time
}

// Has reports whether the snapshot contains the discovery.
func (s Snapshot) Has(id string) bool {
	for _, d := range s.Discoveries {
		if d == id {
			return true
		}
	}
	return false
}

// #endregion snapshot
