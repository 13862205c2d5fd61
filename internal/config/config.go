// Package config loads the engine's configuration tables: classification
// thresholds, the level ladder, detector tuning, and the discovery descriptor
// table. Everything numeric or narrative lives here as data, not code.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/engagement-engine/internal/classify"
	"github.com/danielpatrickdp/engagement-engine/internal/discovery"
	"github.com/danielpatrickdp/engagement-engine/internal/feature"
	"github.com/danielpatrickdp/engagement-engine/internal/feedback"
	"github.com/danielpatrickdp/engagement-engine/internal/pattern"
	"github.com/danielpatrickdp/engagement-engine/internal/progression"
)

// #region config

// Config is the full engine configuration, loaded once at startup.
type Config struct {
	Session     SessionConfig          `yaml:"session"`
	Features    feature.Config         `yaml:"features"`
	Classifier  classify.Config        `yaml:"classifier"`
	Progression progression.Config     `yaml:"progression"`
	Detectors   DetectorConfig         `yaml:"detectors"`
	Registry    discovery.Config       `yaml:"registry"`
	Discoveries []discovery.Descriptor `yaml:"discoveries"`
}

// SessionConfig holds engine-level tuning.
type SessionConfig struct {
	TickSeconds       float64 `yaml:"tick_seconds"`       // classification cadence
	PointerWindow     int     `yaml:"pointer_window"`     // pointer ring capacity
	InteractionWindow int     `yaml:"interaction_window"` // interaction ring capacity
	InputBuffer       int     `yaml:"input_buffer"`       // inbound sample queue
	SubscriberBuffer  int     `yaml:"subscriber_buffer"`  // bus channel capacity
}

// DetectorConfig groups pattern detector tuning.
type DetectorConfig struct {
	Loop         pattern.LoopConfig  `yaml:"loop"`
	Burst        pattern.BurstConfig `yaml:"burst"`
	KeySequences []string            `yaml:"key_sequences"`
	Landmarks    []pattern.Landmark  `yaml:"landmarks"`
}

// #endregion config

// #region defaults

// Default returns a complete configuration with the stock tables.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			TickSeconds:       1,
			PointerWindow:     50,
			InteractionWindow: 64,
			InputBuffer:       256,
			SubscriberBuffer:  32,
		},
		Features:    feature.DefaultConfig(),
		Classifier:  classify.DefaultConfig(),
		Progression: progression.DefaultConfig(),
		Detectors: DetectorConfig{
			Loop:  pattern.DefaultLoopConfig(),
			Burst: pattern.DefaultBurstConfig(),
			KeySequences: []string{"lumen"},
			Landmarks: []pattern.Landmark{
				{Name: "golden", Percent: 61.8, Tolerance: 1},
				{Name: "bottom", Percent: 100, Tolerance: 1},
			},
		},
		Registry: discovery.DefaultConfig(),
		Discoveries: []discovery.Descriptor{
			{ID: "loop-gesture", RequiredLevel: 1, Trigger: discovery.TriggerPointerLoop,
				Feedback: feedback.Payload{Message: "the circle closes", ToneHz: 432, Reveal: "loop-sigil"}},
			{ID: "burst-click", RequiredLevel: 1, Trigger: discovery.TriggerClickBurst,
				Feedback: feedback.Payload{Message: "seven knocks", ToneHz: 528, Reveal: "burst-glyph"}},
			{ID: "scroll-golden", RequiredLevel: 0, Trigger: discovery.TriggerScrollLandmark, Param: "golden",
				Feedback: feedback.Payload{Message: "the golden section", Reveal: "ratio-band"}},
			{ID: "scroll-bottom", RequiredLevel: 0, Trigger: discovery.TriggerScrollLandmark, Param: "bottom",
				Feedback: feedback.Payload{Message: "the floor", Reveal: "footer-glow"}},
			{ID: "spoken-word", RequiredLevel: 2, Trigger: discovery.TriggerKeySequence, Param: "lumen",
				Feedback: feedback.Payload{Message: "you said the word", ToneHz: 639, Reveal: "word-halo"}},
			{ID: "patient-hover", RequiredLevel: 2, Trigger: discovery.TriggerHover,
				Feedback: feedback.Payload{Message: "stillness noticed", Reveal: "hover-ring"}},
			{ID: "named-key", RequiredLevel: 3, Trigger: discovery.TriggerKeyword, Param: "threshold",
				Feedback: feedback.Payload{Message: "a key turned", ToneHz: 741, Reveal: "keyhole"}},
		},
	}
}

// #endregion defaults

// #region load

// Load reads a YAML file over the defaults. Missing fields keep their default
// values; the merged result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the merged configuration. Descriptor validation proper
// happens again in the registry; this catches the structural problems early
// with file-level context.
func (c *Config) Validate() error {
	if c.Session.TickSeconds <= 0 {
		return fmt.Errorf("session.tick_seconds must be positive")
	}
	if c.Session.PointerWindow < 2 {
		return fmt.Errorf("session.pointer_window must be at least 2")
	}
	if len(c.Progression.Ladder) != progression.MaxLevel {
		return fmt.Errorf("progression.ladder must have %d entries", progression.MaxLevel)
	}
	seen := make(map[string]bool, len(c.Discoveries))
	for _, d := range c.Discoveries {
		if d.ID == "" {
			return fmt.Errorf("discovery with empty id")
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate discovery id %q", d.ID)
		}
		seen[d.ID] = true
		if d.RequiredLevel < 0 || d.RequiredLevel > progression.MaxLevel {
			return fmt.Errorf("discovery %q: required_level %d outside 0..%d",
				d.ID, d.RequiredLevel, progression.MaxLevel)
		}
	}
	return nil
}

// #endregion load
