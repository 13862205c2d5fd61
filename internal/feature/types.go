package feature

import "github.com/danielpatrickdp/engagement-engine/internal/signal"

// #region config

// Config holds tuning knobs for feature extraction.
type Config struct {
	DwellRadiusPx       float64      `yaml:"dwell_radius_px"`       // radius around the latest position counted as dwelling
	Epsilon             float64      `yaml:"epsilon"`               // division guard for jerkiness
	RecentWindowSeconds float64      `yaml:"recent_window_seconds"` // trailing span for interaction counting
	SensorBands         []SensorBand `yaml:"sensor_bands"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DwellRadiusPx:       12,
		Epsilon:             1e-6,
		RecentWindowSeconds: 15,
		SensorBands: []SensorBand{
			{Name: "dark", Channel: signal.ChannelIlluminance, Max: 10},
			{Name: "dim", Channel: signal.ChannelIlluminance, Min: 10, Max: 50},
			{Name: "blinding", Channel: signal.ChannelIlluminance, Min: 10000, Max: maxBand},
			{Name: "low-battery", Channel: signal.ChannelBattery, Max: 0.15},
		},
	}
}

// maxBand is the open upper bound for bands with no configured Max.
const maxBand = 1e18

// #endregion config

// #region sensor-band

// SensorBand is a configured value range on one sensor channel.
// A band with Max == 0 is treated as open-ended above Min.
type SensorBand struct {
	Name    string         `yaml:"name"`
	Channel signal.Channel `yaml:"channel"`
	Min     float64        `yaml:"min"`
	Max     float64        `yaml:"max"`
}

// Contains reports whether v falls inside the band.
func (b SensorBand) Contains(v float64) bool {
	upper := b.Max
	if upper == 0 {
		upper = maxBand
	}
	return v >= b.Min && v < upper
}

// #endregion sensor-band

// #region vectors

// PointerFeatures summarizes pointer kinematics over the current window.
// The zero value is the neutral vector used when the window is too short.
type PointerFeatures struct {
	MeanVelocity float64 // px/s
	MeanAccel    float64 // px/s^2, first difference of velocity
	Jerkiness    float64 // stddev(velocity) / (mean(velocity)+epsilon)
	DwellSeconds float64 // time spent within DwellRadiusPx of the latest position
	SampleCount  int
}

// ScrollFeatures summarizes scroll position.
type ScrollFeatures struct {
	Depth float64 // [0, 1]
}

// SensorFeatures carries the latest reading per channel plus crossed bands.
type SensorFeatures struct {
	Latest  map[signal.Channel]float64
	Crossed []string // names of bands the latest readings fall into
}

// TimingFeatures summarizes session timing.
type TimingFeatures struct {
	ElapsedSeconds     float64
	RecentInteractions int
}

// Set is the combined feature input to the classifier.
type Set struct {
	Pointer PointerFeatures
	Scroll  ScrollFeatures
	Sensor  SensorFeatures
	Timing  TimingFeatures
}

// #endregion vectors
