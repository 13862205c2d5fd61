package feature

import (
	"math"
	"testing"
	"time"

	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

func pointerPath(base time.Time, step time.Duration, xs ...float64) []signal.Pointer {
	out := make([]signal.Pointer, len(xs))
	for i, x := range xs {
		out[i] = signal.Pointer{X: x, Y: 0, Time: base.Add(time.Duration(i) * step)}
	}
	return out
}

func TestExtractPointerNeutralOnShortWindow(t *testing.T) {
	cfg := DefaultConfig()
	base := time.Unix(1000, 0)

	for n := 0; n <= 2; n++ {
		samples := pointerPath(base, 100*time.Millisecond, make([]float64, n)...)
		got := ExtractPointer(samples, cfg)
		if got.MeanVelocity != 0 || got.Jerkiness != 0 || got.DwellSeconds != 0 {
			t.Fatalf("%d samples: expected neutral vector, got %+v", n, got)
		}
		if got.SampleCount != n {
			t.Fatalf("expected sample count %d, got %d", n, got.SampleCount)
		}
	}
}

func TestExtractPointerConstantVelocity(t *testing.T) {
	cfg := DefaultConfig()
	base := time.Unix(1000, 0)
	// 100px every 100ms = 1000 px/s, zero acceleration, zero jerkiness.
	samples := pointerPath(base, 100*time.Millisecond, 0, 100, 200, 300, 400)

	got := ExtractPointer(samples, cfg)
	if math.Abs(got.MeanVelocity-1000) > 1 {
		t.Fatalf("expected mean velocity ~1000, got %.2f", got.MeanVelocity)
	}
	if got.MeanAccel > 1e-6 {
		t.Fatalf("expected zero acceleration, got %.6f", got.MeanAccel)
	}
	if got.Jerkiness > 1e-6 {
		t.Fatalf("expected zero jerkiness, got %.6f", got.Jerkiness)
	}
}

func TestExtractPointerJerkyMotion(t *testing.T) {
	cfg := DefaultConfig()
	base := time.Unix(1000, 0)
	// Alternating fast and slow segments.
	samples := pointerPath(base, 100*time.Millisecond, 0, 200, 210, 400, 410, 600)

	got := ExtractPointer(samples, cfg)
	if got.Jerkiness <= 0.5 {
		t.Fatalf("expected high jerkiness for alternating speeds, got %.4f", got.Jerkiness)
	}
	if got.MeanAccel <= 0 {
		t.Fatalf("expected nonzero acceleration, got %.4f", got.MeanAccel)
	}
}

func TestExtractPointerDwell(t *testing.T) {
	cfg := DefaultConfig()
	base := time.Unix(1000, 0)
	samples := []signal.Pointer{
		{X: 0, Y: 0, Time: base},
		{X: 300, Y: 0, Time: base.Add(1 * time.Second)},
		{X: 302, Y: 1, Time: base.Add(2 * time.Second)},
		{X: 301, Y: 2, Time: base.Add(3 * time.Second)},
		{X: 303, Y: 0, Time: base.Add(4 * time.Second)},
	}
	got := ExtractPointer(samples, cfg)
	// Pointer has been within the dwell radius of (303, 0) since t=1s.
	if got.DwellSeconds < 2.9 || got.DwellSeconds > 3.1 {
		t.Fatalf("expected ~3s dwell, got %.2f", got.DwellSeconds)
	}
}

func TestExtractScrollDepth(t *testing.T) {
	s := signal.Scroll{Offset: 500, DocHeight: 2000, ViewportHeight: 1000}
	got := ExtractScroll(s, true)
	if math.Abs(got.Depth-0.5) > 1e-9 {
		t.Fatalf("expected depth 0.5, got %.4f", got.Depth)
	}
}

func TestExtractScrollGuards(t *testing.T) {
	// Document shorter than viewport: no scrollable distance, full depth.
	flat := signal.Scroll{Offset: 0, DocHeight: 500, ViewportHeight: 1000}
	if got := ExtractScroll(flat, true); got.Depth != 1 {
		t.Fatalf("expected depth 1 for unscrollable page, got %.4f", got.Depth)
	}
	// Overscroll clamps to 1.
	over := signal.Scroll{Offset: 5000, DocHeight: 2000, ViewportHeight: 1000}
	if got := ExtractScroll(over, true); got.Depth != 1 {
		t.Fatalf("expected clamped depth 1, got %.4f", got.Depth)
	}
	// No reading yet: neutral zero.
	if got := ExtractScroll(signal.Scroll{}, false); got.Depth != 0 {
		t.Fatalf("expected neutral depth 0, got %.4f", got.Depth)
	}
}

func TestExtractSensorBands(t *testing.T) {
	cfg := DefaultConfig()
	latest := map[signal.Channel]signal.Sensor{
		signal.ChannelIlluminance: {Channel: signal.ChannelIlluminance, Value: 5},
		signal.ChannelBattery:     {Channel: signal.ChannelBattery, Value: 0.9},
	}
	got := ExtractSensor(latest, cfg.SensorBands)
	if got.Latest[signal.ChannelIlluminance] != 5 {
		t.Fatalf("expected illuminance pass-through, got %+v", got.Latest)
	}
	if len(got.Crossed) != 1 || got.Crossed[0] != "dark" {
		t.Fatalf("expected only the dark band crossed, got %v", got.Crossed)
	}
}

func TestExtractSensorAbsentChannelIsNeutral(t *testing.T) {
	cfg := DefaultConfig()
	got := ExtractSensor(map[signal.Channel]signal.Sensor{}, cfg.SensorBands)
	if len(got.Crossed) != 0 || len(got.Latest) != 0 {
		t.Fatalf("expected neutral sensor features, got %+v", got)
	}
}

func TestExtractTiming(t *testing.T) {
	cfg := DefaultConfig()
	start := time.Unix(1000, 0)
	now := start.Add(90 * time.Second)

	// Interactions at -20s, -16s, -12s, -8s, -4s, -0s relative to now.
	interactions := signal.NewWindow[signal.Trigger](32)
	for i := 5; i >= 0; i-- {
		interactions.Push(signal.Trigger{Name: "click", Time: now.Add(-time.Duration(i*4) * time.Second)})
	}

	got := ExtractTiming(start, now, interactions, cfg)
	if math.Abs(got.ElapsedSeconds-90) > 1e-9 {
		t.Fatalf("expected 90s elapsed, got %.2f", got.ElapsedSeconds)
	}
	// RecentWindowSeconds=15 covers the events at -12s, -8s, -4s, -0s.
	if got.RecentInteractions != 4 {
		t.Fatalf("expected 4 recent interactions, got %d", got.RecentInteractions)
	}
}

func TestExtractTimingNilWindow(t *testing.T) {
	cfg := DefaultConfig()
	start := time.Unix(1000, 0)
	got := ExtractTiming(start, start, nil, cfg)
	if got.ElapsedSeconds != 0 || got.RecentInteractions != 0 {
		t.Fatalf("expected neutral timing, got %+v", got)
	}
}
