package feature

import (
	"math"

	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

// #region pointer

// ExtractPointer reduces a time-ordered pointer window to kinematic features.
// Fewer than 3 samples yields the neutral zero vector. Cost is O(len(samples)).
func ExtractPointer(samples []signal.Pointer, cfg Config) PointerFeatures {
	if len(samples) < 3 {
		return PointerFeatures{SampleCount: len(samples)}
	}

	velocities := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time.Sub(samples[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		dx := samples[i].X - samples[i-1].X
		dy := samples[i].Y - samples[i-1].Y
		velocities = append(velocities, math.Hypot(dx, dy)/dt)
	}
	if len(velocities) < 2 {
		return PointerFeatures{SampleCount: len(samples)}
	}

	meanV := mean(velocities)

	var accelSum float64
	for i := 1; i < len(velocities); i++ {
		accelSum += math.Abs(velocities[i] - velocities[i-1])
	}
	meanA := accelSum / float64(len(velocities)-1)

	jerkiness := stddev(velocities, meanV) / (meanV + cfg.Epsilon)

	return PointerFeatures{
		MeanVelocity: meanV,
		MeanAccel:    meanA,
		Jerkiness:    jerkiness,
		DwellSeconds: dwellSeconds(samples, cfg.DwellRadiusPx),
		SampleCount:  len(samples),
	}
}

// #endregion pointer

// #region dwell

// dwellSeconds measures how long the pointer has stayed within radius of its
// latest position, scanning newest-first.
func dwellSeconds(samples []signal.Pointer, radius float64) float64 {
	last := samples[len(samples)-1]
	start := last.Time
	for i := len(samples) - 2; i >= 0; i-- {
		if math.Hypot(samples[i].X-last.X, samples[i].Y-last.Y) > radius {
			break
		}
		start = samples[i].Time
	}
	return last.Time.Sub(start).Seconds()
}

// #endregion dwell

// #region helpers

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func stddev(vs []float64, mean float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var variance float64
	for _, v := range vs {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(vs)))
}

// #endregion helpers
