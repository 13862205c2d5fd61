package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/engagement-engine/internal/progression"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
session:
  tick_seconds: 0.5
classifier:
  committed_after_seconds: 60
detectors:
  burst:
    length: 5
    max_gap_ms: 400
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.TickSeconds != 0.5 {
		t.Fatalf("tick override lost: %v", cfg.Session.TickSeconds)
	}
	if cfg.Classifier.CommittedAfterSeconds != 60 {
		t.Fatalf("classifier override lost: %v", cfg.Classifier.CommittedAfterSeconds)
	}
	if cfg.Detectors.Burst.Length != 5 {
		t.Fatalf("burst override lost: %+v", cfg.Detectors.Burst)
	}
	// Untouched sections keep their defaults.
	if len(cfg.Progression.Ladder) != progression.MaxLevel {
		t.Fatalf("defaults lost for ladder: %v", cfg.Progression.Ladder)
	}
	if len(cfg.Discoveries) == 0 {
		t.Fatal("defaults lost for discoveries")
	}
}

func TestLoadReplacesDiscoveryTable(t *testing.T) {
	path := writeConfig(t, `
discoveries:
  - id: only-one
    required_level: 0
    trigger: manual
    feedback:
      message: hello
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Discoveries) != 1 || cfg.Discoveries[0].ID != "only-one" {
		t.Fatalf("expected replaced table, got %+v", cfg.Discoveries)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"zero tick": `
session:
  tick_seconds: 0
`,
		"bad required level": `
discoveries:
  - id: too-high
    required_level: 99
    trigger: manual
`,
		"duplicate ids": `
discoveries:
  - id: twin
    trigger: manual
  - id: twin
    trigger: manual
`,
		"short ladder": `
progression:
  ladder: [0.5]
`,
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
