package replay

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielpatrickdp/engagement-engine/internal/classify"
	"github.com/danielpatrickdp/engagement-engine/internal/engine"
	"github.com/danielpatrickdp/engagement-engine/internal/progression"
	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

// #region types

// Result captures the observable state right after one timeline event.
type Result struct {
	Event    FixtureEvent
	Level    int
	Unlocked []string // discoveries newly unlocked by this event
}

// Summary aggregates a full replay run.
type Summary struct {
	TotalEvents   int
	Ticks         int
	Unlocks       []string // all unlocks in order
	FinalSnapshot progression.Snapshot
	FinalEstimate classify.Estimate
}

// #endregion types

// #region run

// Run replays a fixture timeline through a synchronously driven engine on a
// fake clock. Classification ticks fire at the configured cadence between
// events, exactly as the async ticker would. Deterministic: the same fixture
// always produces the same summary.
func Run(f *Fixture) (*Summary, []Result, error) {
	cfg := f.Config.ToConfig()
	clock := clockwork.NewFakeClock()
	eng, err := engine.New(cfg, engine.WithClock(clock))
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	defer eng.Close()
	unlocks := eng.SubscribeUnlocks()

	interval := time.Duration(cfg.Session.TickSeconds * float64(time.Second))
	start := clock.Now()
	elapsed := time.Duration(0)
	nextTick := interval
	summary := &Summary{TotalEvents: len(f.Timeline)}
	results := make([]Result, 0, len(f.Timeline))

	var prevMillis int64
	for i, e := range f.Timeline {
		if e.AtMillis < prevMillis {
			return nil, nil, fmt.Errorf("timeline event %d: at_millis %d before previous event %d",
				i, e.AtMillis, prevMillis)
		}
		prevMillis = e.AtMillis
		target := time.Duration(e.AtMillis) * time.Millisecond

		// Fire any classification ticks that fall before this event.
		for nextTick <= target {
			clock.Advance(nextTick - elapsed)
			elapsed = nextTick
			eng.Tick()
			summary.Ticks++
			nextTick += interval
		}
		clock.Advance(target - elapsed)
		elapsed = target

		sample, err := toSample(e, start.Add(target))
		if err != nil {
			return nil, nil, fmt.Errorf("timeline event %d: %w", i, err)
		}
		eng.Process(sample)

		res := Result{Event: e, Level: eng.Snapshot().Level}
		for len(unlocks) > 0 {
			n := <-unlocks
			res.Unlocked = append(res.Unlocked, n.Discovery)
			summary.Unlocks = append(summary.Unlocks, n.Discovery)
		}
		results = append(results, res)
	}

	// One trailing tick so classification reflects the complete timeline.
	clock.Advance(nextTick - elapsed)
	eng.Tick()
	summary.Ticks++
	for len(unlocks) > 0 {
		n := <-unlocks
		summary.Unlocks = append(summary.Unlocks, n.Discovery)
	}

	summary.FinalSnapshot = eng.Snapshot()
	summary.FinalEstimate = eng.Estimate()
	return summary, results, nil
}

// toSample converts a fixture event to its signal variant.
func toSample(e FixtureEvent, at time.Time) (signal.Sample, error) {
	switch e.Kind {
	case "pointer":
		return signal.Pointer{X: e.X, Y: e.Y, Time: at}, nil
	case "click":
		return signal.Click{X: e.X, Y: e.Y, Time: at}, nil
	case "key":
		if e.Rune == "" {
			return nil, fmt.Errorf("key event has no rune")
		}
		return signal.Key{Rune: []rune(e.Rune)[0], Time: at}, nil
	case "scroll":
		return signal.Scroll{
			Offset: e.Offset, DocHeight: e.DocHeight,
			ViewportHeight: e.ViewportHeight, Time: at,
		}, nil
	case "sensor":
		return signal.Sensor{
			Channel: signal.Channel(e.Channel), Value: e.Value, Time: at,
		}, nil
	case "trigger":
		return signal.Trigger{
			Source: e.Source, Name: e.Name, Detail: e.Detail,
			Value: e.Value, Time: at,
		}, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

// #endregion run

// #region check

// Check compares a summary against the fixture's expectation and returns one
// message per mismatch. Empty means the replay matched.
func (s *Summary) Check(exp Expectation) []string {
	var mismatches []string

	if s.FinalSnapshot.Level != exp.FinalLevel {
		mismatches = append(mismatches,
			fmt.Sprintf("final level: got %d, want %d", s.FinalSnapshot.Level, exp.FinalLevel))
	}
	for _, id := range exp.Unlocks {
		if !contains(s.Unlocks, id) {
			mismatches = append(mismatches, fmt.Sprintf("missing unlock %q", id))
		}
	}
	for _, f := range exp.Flags {
		if !contains(s.FinalSnapshot.Flags, f) {
			mismatches = append(mismatches, fmt.Sprintf("missing flag %q", f))
		}
	}
	if exp.MinConfidence > 0 && s.FinalEstimate.Confidence < exp.MinConfidence {
		mismatches = append(mismatches,
			fmt.Sprintf("confidence: got %.3f, want >= %.3f", s.FinalEstimate.Confidence, exp.MinConfidence))
	}
	return mismatches
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// #endregion check
