// Package feedback turns successful discovery unlocks into one-time
// notifications for UI consumers. Dispatch is fire-and-forget: failures are
// logged and swallowed, never surfaced to the state machine.
package feedback

import (
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/engagement-engine/internal/bus"
)

// #region payload

// Payload is the static feedback configured on a discovery descriptor.
type Payload struct {
	Message string  `yaml:"message"`
	ToneHz  float64 `yaml:"tone_hz"` // 0 means no audio cue
	Reveal  string  `yaml:"reveal"`  // identifier of the visual layer to reveal
}

// Notification is one delivered unlock event.
type Notification struct {
	Discovery string
	Payload   Payload
	Level     int // level at the time of unlock
	Source    string
	At        time.Time
}

// #endregion payload

// #region audio

// AudioSink plays a short audio cue. Implementations may fail (host audio
// policy); the dispatcher absorbs those failures.
type AudioSink interface {
	PlayTone(hz float64, d time.Duration) error
}

// NopSink discards audio cues.
type NopSink struct{}

func (NopSink) PlayTone(float64, time.Duration) error { return nil }

// #endregion audio

// #region dispatcher

// Dispatcher delivers unlock notifications exactly once per unlock: once on
// the bus for visual consumers, once to the audio sink.
type Dispatcher struct {
	unlocks *bus.Bus[Notification]
	audio   AudioSink
	log     *zap.Logger
}

// NewDispatcher creates a dispatcher. audio may be nil.
func NewDispatcher(unlocks *bus.Bus[Notification], audio AudioSink, log *zap.Logger) *Dispatcher {
	if audio == nil {
		audio = NopSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{unlocks: unlocks, audio: audio, log: log}
}

// Dispatch performs the side effects for one successful unlock. It never
// blocks and never returns an error: a failed audio cue or a full subscriber
// does not roll back the unlock.
func (d *Dispatcher) Dispatch(n Notification) {
	if n.Payload.ToneHz > 0 {
		if err := d.audio.PlayTone(n.Payload.ToneHz, 300*time.Millisecond); err != nil {
			d.log.Warn("audio cue failed",
				zap.String("discovery", n.Discovery),
				zap.Float64("tone_hz", n.Payload.ToneHz),
				zap.Error(err))
		}
	}
	d.unlocks.Publish(n)
	d.log.Info("discovery unlocked",
		zap.String("discovery", n.Discovery),
		zap.Int("level", n.Level),
		zap.String("source", n.Source))
}

// #endregion dispatcher
