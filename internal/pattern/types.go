package pattern

import "time"

// #region pattern

// Pattern names a recognizable gesture.
type Pattern string

const (
	PatternLoop        Pattern = "pointer_loop"
	PatternBurst       Pattern = "click_burst"
	PatternKeySequence Pattern = "key_sequence"
	PatternLandmark    Pattern = "scroll_landmark"
)

// #endregion pattern

// #region match

// Match reports one recognized gesture. Detectors may re-report the same
// physical gesture on consecutive samples; at-most-once semantics belong to
// the discovery registry, not here.
type Match struct {
	Pattern Pattern
	Detail  string // pattern-specific: sequence text, landmark name, burst length
	At      time.Time
}

// #endregion match

// #region configs

// LoopConfig tunes the closed-loop detector.
type LoopConfig struct {
	MinPoints        int     `yaml:"min_points"`
	MinHorizontalSep float64 `yaml:"min_horizontal_sep"` // px between half-window centroids
	MaxVerticalSep   float64 `yaml:"max_vertical_sep"`   // px between half-window centroids
}

// BurstConfig tunes the burst-click detector.
type BurstConfig struct {
	Length    int     `yaml:"length"`     // clicks needed to fire
	MaxGapMil float64 `yaml:"max_gap_ms"` // max latency between consecutive clicks
}

// Landmark is one configured scroll landmark in percent of depth.
type Landmark struct {
	Name      string  `yaml:"name"`
	Percent   float64 `yaml:"percent"`
	Tolerance float64 `yaml:"tolerance"`
}

// DefaultLoopConfig returns the tuning used by the engine unless configured.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{MinPoints: 30, MinHorizontalSep: 100, MaxVerticalSep: 50}
}

// DefaultBurstConfig returns the tuning used by the engine unless configured.
func DefaultBurstConfig() BurstConfig {
	return BurstConfig{Length: 7, MaxGapMil: 500}
}

// #endregion configs
