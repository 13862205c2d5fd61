package signal

import "time"

// #region kind

// Kind discriminates the signal sample variants.
type Kind string

const (
	KindPointer Kind = "pointer"
	KindScroll  Kind = "scroll"
	KindClick   Kind = "click"
	KindKey     Kind = "key"
	KindSensor  Kind = "sensor"
	KindTrigger Kind = "trigger"
)

// #endregion kind

// #region sample

// Sample is one timestamped reading from a signal source.
// Each variant is immutable once produced.
type Sample interface {
	SampleKind() Kind
	At() time.Time
}

// #endregion sample

// #region pointer

// Pointer is a single pointer-position reading in page coordinates.
type Pointer struct {
	X    float64
	Y    float64
	Time time.Time
}

func (p Pointer) SampleKind() Kind { return KindPointer }
func (p Pointer) At() time.Time    { return p.Time }

// #endregion pointer

// #region scroll

// Scroll is a scroll-position reading. DocHeight and ViewportHeight let the
// extractor normalize depth without knowing the document.
type Scroll struct {
	Offset         float64
	DocHeight      float64
	ViewportHeight float64
	Time           time.Time
}

func (s Scroll) SampleKind() Kind { return KindScroll }
func (s Scroll) At() time.Time    { return s.Time }

// #endregion scroll

// #region click

// Click is a discrete activation event (mouse button, tap).
type Click struct {
	X    float64
	Y    float64
	Time time.Time
}

func (c Click) SampleKind() Kind { return KindClick }
func (c Click) At() time.Time    { return c.Time }

// #endregion click

// #region key

// Key is a single keystroke.
type Key struct {
	Rune rune
	Time time.Time
}

func (k Key) SampleKind() Kind { return KindKey }
func (k Key) At() time.Time    { return k.Time }

// #endregion key

// #region sensor

// Channel names an ambient device sensor feed.
type Channel string

const (
	ChannelIlluminance Channel = "illuminance"
	ChannelOrientation Channel = "orientation"
	ChannelBattery     Channel = "battery"
	ChannelNetwork     Channel = "network"
	ChannelConcurrency Channel = "concurrency"
)

// Sensor is one ambient sensor reading. A source that never initializes
// (permission denied, API missing) simply never produces these.
type Sensor struct {
	Channel Channel
	Value   float64
	Time    time.Time
}

func (s Sensor) SampleKind() Kind { return KindSensor }
func (s Sensor) At() time.Time    { return s.Time }

// #endregion sensor

// #region trigger

// Trigger is a discrete event reported by an external collaborator that the
// engine cannot observe directly (hover dwell, keyword entry, coarse session
// metrics). Source identifies the reporting surface; Detail carries the
// event-specific payload (keyword text, hovered element id).
type Trigger struct {
	Source string
	Name   string
	Detail string
	Value  float64
	Time   time.Time
}

func (t Trigger) SampleKind() Kind { return KindTrigger }
func (t Trigger) At() time.Time    { return t.Time }

// #endregion trigger
