package pattern

import (
	"strings"
	"time"
	"unicode"
)

// #region key-sequence

// KeySequenceDetector matches keystrokes against a fixed target using a
// rolling buffer of the last len(target) runes. Matching is case-insensitive.
type KeySequenceDetector struct {
	target []rune
	buf    []rune
}

// NewKeySequenceDetector creates a detector for the given target string.
// Empty targets never match.
func NewKeySequenceDetector(target string) *KeySequenceDetector {
	return &KeySequenceDetector{
		target: []rune(strings.ToLower(target)),
		buf:    make([]rune, 0, len(target)),
	}
}

// Target returns the sequence this detector matches.
func (d *KeySequenceDetector) Target() string { return string(d.target) }

// Observe records one keystroke and reports whether the buffer now equals
// the target.
func (d *KeySequenceDetector) Observe(r rune, at time.Time) (Match, bool) {
	if len(d.target) == 0 {
		return Match{}, false
	}
	if len(d.buf) == len(d.target) {
		copy(d.buf, d.buf[1:])
		d.buf = d.buf[:len(d.buf)-1]
	}
	d.buf = append(d.buf, unicode.ToLower(r))

	if len(d.buf) != len(d.target) {
		return Match{}, false
	}
	for i, r := range d.buf {
		if r != d.target[i] {
			return Match{}, false
		}
	}
	return Match{Pattern: PatternKeySequence, Detail: string(d.target), At: at}, true
}

// #endregion key-sequence

// #region landmark

// LandmarkDetector reports scroll landmarks whose configured percentage is
// within tolerance of the observed depth. It is stateless: a landmark fires
// every time the depth passes through its tolerance window, and the
// discovery registry keeps each unlock at-most-once.
type LandmarkDetector struct {
	landmarks []Landmark
}

// NewLandmarkDetector creates a detector over the configured landmarks.
func NewLandmarkDetector(landmarks []Landmark) *LandmarkDetector {
	return &LandmarkDetector{landmarks: landmarks}
}

// Observe checks a depth reading (in [0,1]) against all landmarks and returns
// a match per landmark currently within tolerance.
func (d *LandmarkDetector) Observe(depth float64, at time.Time) []Match {
	pct := depth * 100
	var out []Match
	for _, lm := range d.landmarks {
		tol := lm.Tolerance
		if tol <= 0 {
			tol = 1
		}
		if pct >= lm.Percent-tol && pct <= lm.Percent+tol {
			out = append(out, Match{Pattern: PatternLandmark, Detail: lm.Name, At: at})
		}
	}
	return out
}

// #endregion landmark
