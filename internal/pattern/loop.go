package pattern

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

// #region loop

// DetectLoop recognizes a closed figure-eight-like path: the window is split
// into two halves whose centroids form two horizontally separated, vertically
// aligned lobes. Stateless; runs in O(len(points)).
func DetectLoop(points []signal.Pointer, cfg LoopConfig) (Match, bool) {
	if len(points) < cfg.MinPoints {
		return Match{}, false
	}

	mid := len(points) / 2
	x1, y1 := centroid(points[:mid])
	x2, y2 := centroid(points[mid:])

	dx := math.Abs(x2 - x1)
	dy := math.Abs(y2 - y1)
	if dx < cfg.MinHorizontalSep || dy > cfg.MaxVerticalSep {
		return Match{}, false
	}

	return Match{
		Pattern: PatternLoop,
		Detail:  fmt.Sprintf("lobes dx=%.0f dy=%.0f", dx, dy),
		At:      points[len(points)-1].Time,
	}, true
}

func centroid(points []signal.Pointer) (float64, float64) {
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return sx / n, sy / n
}

// #endregion loop
