package classify

// #region label

// Label is the categorical intent assigned to the current engagement.
type Label string

const (
	LabelCasual     Label = "casual"
	LabelInterested Label = "interested"
	LabelEngaged    Label = "engaged"
	LabelSeeking    Label = "seeking"
	LabelCommitted  Label = "committed"
)

// #endregion label

// #region estimate

// Estimate is the classifier output for one evaluation tick.
type Estimate struct {
	Confidence   float64 // [0, 1], EMA-smoothed
	Label        Label   // not smoothed
	Contributing []string
}

// #endregion estimate

// #region config

// Config holds classification thresholds. All values are configuration data;
// the rule ordering is fixed in the classifier.
type Config struct {
	Smoothing float64 `yaml:"smoothing"` // weight of the previous confidence in the EMA

	LongElapsedSeconds     float64 `yaml:"long_elapsed_seconds"`     // rule: interested
	HighScrollDepth        float64 `yaml:"high_scroll_depth"`        // rule: interested/committed
	ManyInteractions       int     `yaml:"many_interactions"`        // rule: engaged
	ModerateElapsedSeconds float64 `yaml:"moderate_elapsed_seconds"` // rule: engaged
	VeryHighScrollDepth    float64 `yaml:"very_high_scroll_depth"`   // rule: seeking
	CommittedAfterSeconds  float64 `yaml:"committed_after_seconds"`  // rule: committed
	MinPointerVelocity     float64 `yaml:"min_pointer_velocity"`     // rule: committed, px/s

	InterestedBaseConfidence float64 `yaml:"interested_base_confidence"`
	InterestedMaxConfidence  float64 `yaml:"interested_max_confidence"`
	EngagedConfidence        float64 `yaml:"engaged_confidence"`
	SeekingConfidence        float64 `yaml:"seeking_confidence"`
	CommittedConfidence      float64 `yaml:"committed_confidence"`
	CasualConfidence         float64 `yaml:"casual_confidence"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Smoothing:                0.9,
		LongElapsedSeconds:       45,
		HighScrollDepth:          0.5,
		ManyInteractions:         8,
		ModerateElapsedSeconds:   20,
		VeryHighScrollDepth:      0.9,
		CommittedAfterSeconds:    120,
		MinPointerVelocity:       5,
		InterestedBaseConfidence: 0.4,
		InterestedMaxConfidence:  0.8,
		EngagedConfidence:        0.7,
		SeekingConfidence:        0.6,
		CommittedConfidence:      0.9,
		CasualConfidence:         0.1,
	}
}

// #endregion config
