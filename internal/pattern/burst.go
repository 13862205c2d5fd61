package pattern

import (
	"fmt"
	"time"
)

// #region burst

// BurstDetector tracks inter-click latency and fires when a configured number
// of consecutive clicks each arrive within the latency threshold of the
// previous one. The run resets whenever the threshold is exceeded.
type BurstDetector struct {
	cfg   BurstConfig
	count int
	last  time.Time
}

// NewBurstDetector creates a burst detector.
func NewBurstDetector(cfg BurstConfig) *BurstDetector {
	if cfg.Length < 2 {
		cfg.Length = 2
	}
	return &BurstDetector{cfg: cfg}
}

// Observe records one click and reports whether it completes a burst.
// After firing, the run restarts so a sustained burst fires once per Length.
func (d *BurstDetector) Observe(at time.Time) (Match, bool) {
	gap := time.Duration(d.cfg.MaxGapMil * float64(time.Millisecond))
	if d.count == 0 || at.Sub(d.last) > gap {
		d.count = 1
	} else {
		d.count++
	}
	d.last = at

	if d.count < d.cfg.Length {
		return Match{}, false
	}
	d.count = 0
	return Match{
		Pattern: PatternBurst,
		Detail:  fmt.Sprintf("burst length %d", d.cfg.Length),
		At:      at,
	}, true
}

// Run returns the current consecutive-click count.
func (d *BurstDetector) Run() int { return d.count }

// #endregion burst
