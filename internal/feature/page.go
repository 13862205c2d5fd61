package feature

import (
	"time"

	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

// #region scroll

// ExtractScroll normalizes the latest scroll reading to a depth in [0, 1].
// Documents no taller than the viewport report full depth.
func ExtractScroll(latest signal.Scroll, ok bool) ScrollFeatures {
	if !ok {
		return ScrollFeatures{}
	}
	scrollable := latest.DocHeight - latest.ViewportHeight
	if scrollable <= 0 {
		return ScrollFeatures{Depth: 1}
	}
	depth := latest.Offset / scrollable
	if depth < 0 {
		depth = 0
	}
	if depth > 1 {
		depth = 1
	}
	return ScrollFeatures{Depth: depth}
}

// #endregion scroll

// #region sensor

// ExtractSensor passes through the latest reading per channel and marks the
// configured bands those readings fall into. Channels that never produced a
// sample simply do not appear.
func ExtractSensor(latest map[signal.Channel]signal.Sensor, bands []SensorBand) SensorFeatures {
	out := SensorFeatures{Latest: make(map[signal.Channel]float64, len(latest))}
	for ch, s := range latest {
		out.Latest[ch] = s.Value
	}
	for _, b := range bands {
		v, present := out.Latest[b.Channel]
		if present && b.Contains(v) {
			out.Crossed = append(out.Crossed, b.Name)
		}
	}
	return out
}

// #endregion sensor

// #region timing

// ExtractTiming computes elapsed session time and the trailing interaction
// count. interactions must be the timestamp window of discrete events
// (clicks, keys, external triggers).
func ExtractTiming(sessionStart, now time.Time, interactions *signal.Window[signal.Trigger], cfg Config) TimingFeatures {
	f := TimingFeatures{}
	if now.After(sessionStart) {
		f.ElapsedSeconds = now.Sub(sessionStart).Seconds()
	}
	if interactions != nil {
		cutoff := now.Add(-time.Duration(cfg.RecentWindowSeconds * float64(time.Second)))
		f.RecentInteractions = interactions.CountSince(cutoff)
	}
	return f
}

// #endregion timing
