// Command replay runs a recorded behavioral timeline through the engine on a
// fake clock and compares the outcome against the fixture's expectations.
// Exits non-zero when the replay does not match.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/engagement-engine/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	jsonOut := flag.Bool("json", false, "output summary as JSON instead of text")
	verbose := flag.Bool("verbose", false, "print per-event results")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--json] [--verbose]")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	summary, results, err := replay.Run(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		printJSON(f, summary)
	} else {
		printText(f, summary, results, *verbose)
	}

	if mismatches := summary.Check(f.Expected); len(mismatches) > 0 {
		fmt.Fprintln(os.Stderr, "MISMATCH:")
		for _, m := range mismatches {
			fmt.Fprintf(os.Stderr, "  %s\n", m)
		}
		os.Exit(1)
	}
}

// #endregion main

// #region output

type jsonSummary struct {
	Description string   `json:"description"`
	TotalEvents int      `json:"total_events"`
	Ticks       int      `json:"ticks"`
	FinalLevel  int      `json:"final_level"`
	Label       string   `json:"label"`
	Confidence  float64  `json:"confidence"`
	Unlocks     []string `json:"unlocks"`
	Flags       []string `json:"flags"`
}

func printJSON(f *replay.Fixture, s *replay.Summary) {
	out := jsonSummary{
		Description: f.Description,
		TotalEvents: s.TotalEvents,
		Ticks:       s.Ticks,
		FinalLevel:  s.FinalSnapshot.Level,
		Label:       string(s.FinalEstimate.Label),
		Confidence:  s.FinalEstimate.Confidence,
		Unlocks:     s.Unlocks,
		Flags:       s.FinalSnapshot.Flags,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

func printText(f *replay.Fixture, s *replay.Summary, results []replay.Result, verbose bool) {
	if f.Description != "" {
		fmt.Println(f.Description)
	}
	if verbose {
		for i, r := range results {
			line := fmt.Sprintf("%4d  %6dms  %-8s level=%d", i, r.Event.AtMillis, r.Event.Kind, r.Level)
			if len(r.Unlocked) > 0 {
				line += "  unlocked " + strings.Join(r.Unlocked, ", ")
			}
			fmt.Println(line)
		}
	}
	fmt.Printf("events=%d ticks=%d level=%d label=%s confidence=%.3f\n",
		s.TotalEvents, s.Ticks, s.FinalSnapshot.Level,
		s.FinalEstimate.Label, s.FinalEstimate.Confidence)
	if len(s.Unlocks) > 0 {
		fmt.Printf("unlocks: %s\n", strings.Join(s.Unlocks, ", "))
	}
	if len(s.FinalSnapshot.Flags) > 0 {
		fmt.Printf("flags: %s\n", strings.Join(s.FinalSnapshot.Flags, ", "))
	}
}

// #endregion output
