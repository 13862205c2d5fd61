package classify

import (
	"github.com/danielpatrickdp/engagement-engine/internal/feature"
)

// #region classifier

// Classifier turns the combined feature set into an engagement estimate.
// Confidence is smoothed against the previous estimate; the label is not.
// Call Classify once per evaluation tick, never per sample.
type Classifier struct {
	config Config
	prev   *Estimate
}

// NewClassifier creates a classifier.
func NewClassifier(config Config) *Classifier {
	return &Classifier{config: config}
}

// Classify evaluates the prioritized rules and returns the smoothed estimate.
func (c *Classifier) Classify(f feature.Set) Estimate {
	raw, label, contributing := c.raw(f)

	confidence := raw
	if c.prev != nil {
		confidence = c.config.Smoothing*c.prev.Confidence + (1-c.config.Smoothing)*raw
	}
	confidence = clamp(confidence)

	est := Estimate{Confidence: confidence, Label: label, Contributing: contributing}
	c.prev = &est
	return est
}

// Reset clears the smoothing history.
func (c *Classifier) Reset() { c.prev = nil }

// #endregion classifier

// #region rules

// raw evaluates the threshold predicates in fixed priority order, first match
// wins: committed, interested, engaged, seeking, casual. The committed rule
// is checked first because its predicate strictly contains the interested
// rule's.
func (c *Classifier) raw(f feature.Set) (float64, Label, []string) {
	elapsed := f.Timing.ElapsedSeconds
	depth := f.Scroll.Depth

	// Sustained session, read deep, pointer still moving.
	if elapsed >= c.config.CommittedAfterSeconds &&
		depth >= c.config.HighScrollDepth &&
		f.Pointer.MeanVelocity >= c.config.MinPointerVelocity {
		return c.config.CommittedConfidence, LabelCommitted,
			[]string{"elapsed", "scroll_depth", "pointer_velocity"}
	}

	// Long session with real scroll depth: confidence scales with duration.
	if elapsed >= c.config.LongElapsedSeconds && depth >= c.config.HighScrollDepth {
		span := c.config.CommittedAfterSeconds - c.config.LongElapsedSeconds
		frac := 1.0
		if span > 0 {
			frac = (elapsed - c.config.LongElapsedSeconds) / span
		}
		conf := c.config.InterestedBaseConfidence +
			frac*(c.config.InterestedMaxConfidence-c.config.InterestedBaseConfidence)
		if conf > c.config.InterestedMaxConfidence {
			conf = c.config.InterestedMaxConfidence
		}
		return conf, LabelInterested, []string{"elapsed", "scroll_depth"}
	}

	// Many interactions in a short span.
	if f.Timing.RecentInteractions >= c.config.ManyInteractions &&
		elapsed >= c.config.ModerateElapsedSeconds {
		return c.config.EngagedConfidence, LabelEngaged,
			[]string{"recent_interactions", "elapsed"}
	}

	// Deep scroll alone.
	if depth >= c.config.VeryHighScrollDepth {
		return c.config.SeekingConfidence, LabelSeeking, []string{"scroll_depth"}
	}

	return c.config.CasualConfidence, LabelCasual, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion rules
