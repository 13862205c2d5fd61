package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/engagement-engine/internal/config"
	"github.com/danielpatrickdp/engagement-engine/internal/discovery"
	"github.com/danielpatrickdp/engagement-engine/internal/feedback"
	"github.com/danielpatrickdp/engagement-engine/internal/pattern"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a recorded
// behavioral timeline plus the expected observable outcome.
type Fixture struct {
	Description string         `json:"description"`
	Config      FixtureConfig  `json:"config"`
	Timeline    []FixtureEvent `json:"timeline"`
	Expected    Expectation    `json:"expected"`
}

// FixtureConfig overrides a subset of the engine configuration. Zero-valued
// fields keep the defaults.
type FixtureConfig struct {
	TickSeconds  float64            `json:"tick_seconds"`
	Ladder       []float64          `json:"ladder"`
	KeySequences []string           `json:"key_sequences"`
	Landmarks    []FixtureLandmark  `json:"landmarks"`
	Discoveries  []FixtureDiscovery `json:"discoveries"`
}

// FixtureLandmark mirrors pattern.Landmark with JSON tags.
type FixtureLandmark struct {
	Name      string  `json:"name"`
	Percent   float64 `json:"percent"`
	Tolerance float64 `json:"tolerance"`
}

// FixtureDiscovery mirrors discovery.Descriptor with JSON tags.
type FixtureDiscovery struct {
	ID            string  `json:"id"`
	RequiredLevel int     `json:"required_level"`
	Trigger       string  `json:"trigger"`
	Param         string  `json:"param"`
	Message       string  `json:"message"`
	ToneHz        float64 `json:"tone_hz"`
	Reveal        string  `json:"reveal"`
}

// FixtureEvent is one timeline entry. AtMillis is the offset from session
// start; Kind selects which of the remaining fields matter.
type FixtureEvent struct {
	AtMillis int64  `json:"at_millis"`
	Kind     string `json:"kind"` // pointer|click|key|scroll|sensor|trigger

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	Rune string `json:"rune,omitempty"`

	Offset         float64 `json:"offset,omitempty"`
	DocHeight      float64 `json:"doc_height,omitempty"`
	ViewportHeight float64 `json:"viewport_height,omitempty"`

	Channel string  `json:"channel,omitempty"`
	Value   float64 `json:"value,omitempty"`

	Source string `json:"source,omitempty"`
	Name   string `json:"name,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Expectation captures the observable outcome the timeline should produce.
type Expectation struct {
	FinalLevel    int      `json:"final_level"`
	Unlocks       []string `json:"unlocks"`
	Flags         []string `json:"flags"`
	MinConfidence float64  `json:"min_confidence"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToConfig applies the fixture's overrides to a default engine configuration.
func (fc *FixtureConfig) ToConfig() *config.Config {
	cfg := config.Default()
	if fc.TickSeconds > 0 {
		cfg.Session.TickSeconds = fc.TickSeconds
	}
	if len(fc.Ladder) > 0 {
		cfg.Progression.Ladder = fc.Ladder
	}
	if len(fc.KeySequences) > 0 {
		cfg.Detectors.KeySequences = fc.KeySequences
	}
	if len(fc.Landmarks) > 0 {
		lms := make([]pattern.Landmark, 0, len(fc.Landmarks))
		for _, lm := range fc.Landmarks {
			lms = append(lms, pattern.Landmark{
				Name: lm.Name, Percent: lm.Percent, Tolerance: lm.Tolerance,
			})
		}
		cfg.Detectors.Landmarks = lms
	}
	if len(fc.Discoveries) > 0 {
		ds := make([]discovery.Descriptor, 0, len(fc.Discoveries))
		for _, d := range fc.Discoveries {
			ds = append(ds, discovery.Descriptor{
				ID:            d.ID,
				RequiredLevel: d.RequiredLevel,
				Trigger:       discovery.TriggerKind(d.Trigger),
				Param:         d.Param,
				Feedback: feedback.Payload{
					Message: d.Message, ToneHz: d.ToneHz, Reveal: d.Reveal,
				},
			})
		}
		cfg.Discoveries = ds
	}
	return cfg
}

// #endregion fixture-loader
