package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario.Kind != KindMotor {
		t.Errorf("expected kind motor, got %s", cfg.Scenario.Kind)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset(KindMotor, "converge")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Scenario.TargetVelocity != 5 {
		t.Errorf("expected target 5, got %f", cfg.Scenario.TargetVelocity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}

	cfg.Steps = 999
	if again := GetPreset(KindMotor, "converge"); again.Steps == 999 {
		t.Error("GetPreset returned a shared pointer")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset(KindMotor, "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "converge"); cfg != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestAllPresetsValid(t *testing.T) {
	for kind := range Presets {
		for _, name := range ListPresets(kind) {
			if err := GetPreset(kind, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", kind, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets(KindMotor)
	if len(presets) == 0 {
		t.Error("expected presets for motor")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, ErrInvalidDt},
		{"zero steps", func(c *Config) { c.Steps = 0 }, ErrInvalidSteps},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }, ErrInvalidIterations},
		{"unknown kind", func(c *Config) { c.Scenario.Kind = "rope" }, ErrInvalidScenario},
		{"negative force", func(c *Config) { c.Scenario.MaximumForce = -1 }, ErrInvalidScenario},
		{"servo without spring", func(c *Config) {
			c.Scenario.Kind = KindServo
			c.Scenario.SpringFrequency = 0
		}, ErrInvalidScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := GetPreset(KindServo, "spin-up")
	cfg.Workers = 3
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("steps: 10\nscenario:\n  kind: chain\n  pairs: 4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Steps != 10 || cfg.Scenario.Kind != KindChain || cfg.Scenario.Pairs != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Iterations != DefaultIterations || cfg.Scenario.TargetVelocity != DefaultTarget {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidDt) {
		t.Errorf("expected ErrInvalidDt, got %v", err)
	}
}
