package discovery

import "github.com/danielpatrickdp/engagement-engine/internal/feedback"

// #region trigger-kind

// TriggerKind names the condition class that can unlock a discovery.
type TriggerKind string

const (
	TriggerPointerLoop    TriggerKind = "pointer_loop"
	TriggerClickBurst     TriggerKind = "click_burst"
	TriggerKeySequence    TriggerKind = "key_sequence"
	TriggerScrollLandmark TriggerKind = "scroll_landmark"
	TriggerKeyword        TriggerKind = "keyword"
	TriggerHover          TriggerKind = "hover"
	TriggerLevel          TriggerKind = "level"
	TriggerManual         TriggerKind = "manual"
)

var knownTriggers = map[TriggerKind]bool{
	TriggerPointerLoop:    true,
	TriggerClickBurst:     true,
	TriggerKeySequence:    true,
	TriggerScrollLandmark: true,
	TriggerKeyword:        true,
	TriggerHover:          true,
	TriggerLevel:          true,
	TriggerManual:         true,
}

// #endregion trigger-kind

// #region descriptor

// Descriptor is the static configuration of one unlockable discovery.
// Loaded once at startup, immutable thereafter.
type Descriptor struct {
	ID            string           `yaml:"id"`
	RequiredLevel int              `yaml:"required_level"`
	Trigger       TriggerKind      `yaml:"trigger"`
	// Param narrows the trigger: the key-sequence or keyword text, the
	// landmark name, or the hovered element id. Empty matches any detail.
	Param    string           `yaml:"param"`
	Feedback feedback.Payload `yaml:"feedback"`
}

// #endregion descriptor

// #region config

// Config holds registry tuning.
type Config struct {
	// SynchronicitySpanSeconds is the span within which two unlocks count as
	// a synchronicity.
	SynchronicitySpanSeconds float64 `yaml:"synchronicity_span_seconds"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{SynchronicitySpanSeconds: 10}
}

// #endregion config
