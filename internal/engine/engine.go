// Package engine wires the signal pipeline together: windows, detectors,
// classifier, progression state, discovery registry, and feedback dispatch.
// All mutation happens on a single logic goroutine; UI consumers interact
// only through non-blocking snapshots and subscriptions.
package engine

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/engagement-engine/internal/bus"
	"github.com/danielpatrickdp/engagement-engine/internal/classify"
	"github.com/danielpatrickdp/engagement-engine/internal/config"
	"github.com/danielpatrickdp/engagement-engine/internal/discovery"
	"github.com/danielpatrickdp/engagement-engine/internal/feature"
	"github.com/danielpatrickdp/engagement-engine/internal/feedback"
	"github.com/danielpatrickdp/engagement-engine/internal/pattern"
	"github.com/danielpatrickdp/engagement-engine/internal/progression"
	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

// #region state-change

// StateChange pairs a progression snapshot with the estimate that produced
// it. Published on every observable state transition.
type StateChange struct {
	Snapshot progression.Snapshot
	Estimate classify.Estimate
}

// #endregion state-change

// #region engine

// Engine is the top-level controller for one session.
//
// Two driving modes exist: Start launches the logic goroutine fed by Offer
// and the classification ticker; alternatively a single caller may drive the
// engine synchronously through Process and Tick (the replay harness and the
// simulator do this). The modes must not be mixed.
type Engine struct {
	cfg   *config.Config
	log   *zap.Logger
	clock clockwork.Clock

	state      *progression.State
	classifier *classify.Classifier
	registry   *discovery.Registry
	dispatcher *feedback.Dispatcher
	audioSink  feedback.AudioSink

	stateBus  *bus.Bus[StateChange]
	unlockBus *bus.Bus[feedback.Notification]

	pointer      *signal.Window[signal.Pointer]
	interactions *signal.Window[signal.Trigger]
	scrollLatest signal.Scroll
	scrollSeen   bool
	sensorLatest map[signal.Channel]signal.Sensor

	burst        *pattern.BurstDetector
	keySequences []*pattern.KeySequenceDetector
	landmarks    *pattern.LandmarkDetector

	lastGestureAt time.Time
	lastSensorAt  time.Time
	lastEstimate  classify.Estimate

	latest  atomic.Pointer[StateChange]
	in      chan signal.Sample
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	closed  bool
	closeMu sync.Mutex
}

// Option customizes engine construction.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option { return func(e *Engine) { e.log = log } }

// WithClock injects a clock; tests and the replay harness pass a fake.
func WithClock(c clockwork.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithAudioSink sets the audio cue sink for feedback dispatch.
func WithAudioSink(s feedback.AudioSink) Option {
	return func(e *Engine) { e.audioSink = s }
}

// New constructs a fully wired engine for a fresh session. Configuration
// problems surface here, never during steady-state operation.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:          cfg,
		log:          zap.NewNop(),
		clock:        clockwork.NewRealClock(),
		sensorLatest: make(map[signal.Channel]signal.Sensor),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	now := e.clock.Now()
	state, err := progression.NewState(cfg.Progression, now)
	if err != nil {
		return nil, err
	}
	e.state = state
	e.classifier = classify.NewClassifier(cfg.Classifier)

	e.stateBus = bus.New[StateChange](cfg.Session.SubscriberBuffer)
	e.unlockBus = bus.New[feedback.Notification](cfg.Session.SubscriberBuffer)
	e.dispatcher = feedback.NewDispatcher(e.unlockBus, e.audioSink, e.log)

	registry, err := discovery.NewRegistry(cfg.Registry, cfg.Discoveries, state, e.dispatcher, e.log)
	if err != nil {
		return nil, err
	}
	e.registry = registry

	e.pointer = signal.NewWindow[signal.Pointer](cfg.Session.PointerWindow)
	e.interactions = signal.NewWindow[signal.Trigger](cfg.Session.InteractionWindow)
	e.burst = pattern.NewBurstDetector(cfg.Detectors.Burst)
	for _, target := range cfg.Detectors.KeySequences {
		e.keySequences = append(e.keySequences, pattern.NewKeySequenceDetector(target))
	}
	e.landmarks = pattern.NewLandmarkDetector(cfg.Detectors.Landmarks)

	e.in = make(chan signal.Sample, cfg.Session.InputBuffer)

	initial := StateChange{Snapshot: state.Snapshot(now)}
	e.latest.Store(&initial)
	return e, nil
}

// #endregion engine

// #region lifecycle

// Start launches the logic goroutine and the classification ticker.
func (e *Engine) Start() {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	e.wg.Add(1)
	go e.run()
}

// Close stops the ticker and logic goroutine, then closes all subscriber
// channels. Safe to call more than once; nothing fires after Close returns.
func (e *Engine) Close() error {
	e.closeMu.Lock()
	if e.closed {
		e.closeMu.Unlock()
		return nil
	}
	e.closed = true
	close(e.done)
	e.closeMu.Unlock()

	e.wg.Wait()
	e.stateBus.Close()
	e.unlockBus.Close()
	return nil
}

func (e *Engine) run() {
	defer e.wg.Done()
	interval := time.Duration(e.cfg.Session.TickSeconds * float64(time.Second))
	ticker := e.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case s := <-e.in:
			e.Process(s)
		case <-ticker.Chan():
			e.Tick()
		}
	}
}

// #endregion lifecycle

// #region intake

// Offer enqueues a sample for the logic goroutine without blocking. A full
// queue drops the sample; high-frequency sources are expected to tolerate
// loss. Returns false when dropped or after Close.
func (e *Engine) Offer(s signal.Sample) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.in <- s:
		return true
	default:
		return false
	}
}

// Process handles one sample immediately. Only the logic goroutine (async
// mode) or the single driving caller (sync mode) may call this.
func (e *Engine) Process(s signal.Sample) {
	now := s.At()
	switch v := s.(type) {
	case signal.Pointer:
		e.pointer.Push(v)
		if m, ok := pattern.DetectLoop(e.pointer.Samples(), e.cfg.Detectors.Loop); ok {
			e.onGesture(m)
		}
	case signal.Click:
		e.noteInteraction("click", v.Time)
		if m, ok := e.burst.Observe(v.Time); ok {
			e.onGesture(m)
		}
	case signal.Key:
		e.noteInteraction("key", v.Time)
		for _, d := range e.keySequences {
			if m, ok := d.Observe(v.Rune, v.Time); ok {
				e.registry.UnlockByTrigger(discovery.TriggerKeySequence, m.Detail, "keyboard", m.At)
			}
		}
	case signal.Scroll:
		e.scrollLatest = v
		e.scrollSeen = true
		depth := feature.ExtractScroll(v, true).Depth
		for _, m := range e.landmarks.Observe(depth, v.Time) {
			e.registry.UnlockByTrigger(discovery.TriggerScrollLandmark, m.Detail, "scroll", m.At)
		}
	case signal.Sensor:
		e.sensorLatest[v.Channel] = v
		for _, b := range e.cfg.Features.SensorBands {
			if b.Channel == v.Channel && b.Contains(v.Value) {
				e.lastSensorAt = v.Time
				e.checkDualSignal(v.Time)
				break
			}
		}
	case signal.Trigger:
		e.noteInteraction(v.Name, v.Time)
		switch v.Name {
		case "hover":
			e.registry.UnlockByTrigger(discovery.TriggerHover, v.Detail, v.Source, v.Time)
		case "keyword":
			e.registry.UnlockByTrigger(discovery.TriggerKeyword, v.Detail, v.Source, v.Time)
		}
	}
	e.maybePublish(now)
}

func (e *Engine) noteInteraction(name string, at time.Time) {
	e.interactions.Push(signal.Trigger{Name: name, Time: at})
}

// onGesture routes a recognized pointer gesture to the registry and feeds the
// dual-signal correlation.
func (e *Engine) onGesture(m pattern.Match) {
	kind := discovery.TriggerPointerLoop
	source := "pointer"
	if m.Pattern == pattern.PatternBurst {
		kind = discovery.TriggerClickBurst
		source = "click"
	}
	e.registry.UnlockByTrigger(kind, "", source, m.At)
	e.lastGestureAt = m.At
	e.checkDualSignal(m.At)
}

// checkDualSignal sets the sticky dual-signal flag when a sensor band
// crossing and a recognized gesture land inside one synchronicity span.
func (e *Engine) checkDualSignal(at time.Time) {
	if e.lastGestureAt.IsZero() || e.lastSensorAt.IsZero() {
		return
	}
	span := time.Duration(e.cfg.Registry.SynchronicitySpanSeconds * float64(time.Second))
	delta := e.lastGestureAt.Sub(e.lastSensorAt)
	if delta < 0 {
		delta = -delta
	}
	if delta <= span {
		e.state.SetFlag(progression.FlagDualSignal, at)
	}
}

// #endregion intake

// #region tick

// Tick runs one classification evaluation: extract features, classify,
// advance the level by at most one step, publish on change. Runs at the
// configured cadence in async mode.
func (e *Engine) Tick() {
	now := e.clock.Now()

	set := feature.Set{
		Pointer: feature.ExtractPointer(e.pointer.Samples(), e.cfg.Features),
		Scroll:  feature.ExtractScroll(e.scrollLatest, e.scrollSeen),
		Sensor:  feature.ExtractSensor(e.sensorLatest, e.cfg.Features.SensorBands),
		Timing:  feature.ExtractTiming(e.state.StartedAt(), now, e.interactions, e.cfg.Features),
	}

	est := e.classifier.Classify(set)
	e.lastEstimate = est

	if level, advanced := e.state.Advance(est.Confidence); advanced {
		e.log.Info("level advanced",
			zap.Int("level", level),
			zap.Float64("confidence", est.Confidence),
			zap.String("label", string(est.Label)))
		e.registry.UnlockByTrigger(discovery.TriggerLevel, strconv.Itoa(level), "level", now)
	}

	e.maybePublish(now)
}

// maybePublish stores the current snapshot and estimate for pollers, and
// emits a state change only when the observable state differs from the last
// published snapshot.
func (e *Engine) maybePublish(now time.Time) {
	snap := e.state.Snapshot(now)
	prev := e.latest.Load()
	change := StateChange{Snapshot: snap, Estimate: e.lastEstimate}
	e.latest.Store(&change)
	if prev != nil && snapshotsEqual(prev.Snapshot, snap) {
		return
	}
	e.stateBus.Publish(change)
}

func snapshotsEqual(a, b progression.Snapshot) bool {
	return a.Level == b.Level &&
		len(a.Discoveries) == len(b.Discoveries) &&
		a.SynchronicityCount == b.SynchronicityCount &&
		len(a.Flags) == len(b.Flags)
}

// #endregion tick

// #region consumer-surface

// Snapshot returns the latest observable state. Values seen through repeated
// calls are monotonic for the session.
func (e *Engine) Snapshot() progression.Snapshot {
	return e.latest.Load().Snapshot
}

// Estimate returns the most recent engagement estimate.
func (e *Engine) Estimate() classify.Estimate {
	return e.latest.Load().Estimate
}

// SubscribeState returns a channel of state changes. Slow consumers drop.
func (e *Engine) SubscribeState() <-chan StateChange {
	return e.stateBus.Subscribe()
}

// SubscribeUnlocks returns a channel receiving each unlock exactly once.
func (e *Engine) SubscribeUnlocks() <-chan feedback.Notification {
	return e.unlockBus.Subscribe()
}

// ReportHover reports that a consumer surface observed a sustained hover.
func (e *Engine) ReportHover(source, elementID string, d time.Duration) bool {
	return e.Offer(signal.Trigger{
		Source: source, Name: "hover", Detail: elementID,
		Value: d.Seconds(), Time: e.clock.Now(),
	})
}

// ReportKeyword reports that a consumer surface recognized a keyword entry.
func (e *Engine) ReportKeyword(source, word string) bool {
	return e.Offer(signal.Trigger{
		Source: source, Name: "keyword", Detail: word, Time: e.clock.Now(),
	})
}

// #endregion consumer-surface
