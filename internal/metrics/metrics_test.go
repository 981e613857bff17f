package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse/internal/bodies"
	"github.com/san-kum/impulse/internal/config"
	"github.com/san-kum/impulse/internal/sim"
	"github.com/san-kum/impulse/internal/wide"
)

func run(t *testing.T, kind, preset string, steps int) *sim.Result {
	t.Helper()
	cfg := config.GetPreset(kind, preset)
	cfg.Steps = steps
	scene, err := sim.BuildScene(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	s := sim.New(scene)
	for _, m := range Default(cfg.Dt) {
		s.AddMetric(m)
	}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return result
}

func TestSaturatedPreset(t *testing.T) {
	result := run(t, config.KindMotor, "saturated", 5)
	if got := result.Metrics["saturation"]; got != 1 {
		t.Errorf("saturation = %f, want 1", got)
	}
	if got := result.Metrics["stability"]; got != 1 {
		t.Errorf("stability = %f, want 1", got)
	}
}

func TestConvergePresetUnsaturated(t *testing.T) {
	result := run(t, config.KindMotor, "converge", 1)
	if got := result.Metrics["saturation"]; got != 0 {
		t.Errorf("saturation = %f, want 0", got)
	}
	if got := result.Metrics["residual"]; got > 1e-3 {
		t.Errorf("residual = %f, want ~0", got)
	}
	if got := result.Metrics["impulse_effort"]; math.Abs(got-2.5) > 1e-4 {
		t.Errorf("impulse effort = %f, want 2.5", got)
	}
}

func TestMomentumConservedBetweenDynamicBodies(t *testing.T) {
	result := run(t, config.KindMotor, "soft", 10)
	if got := result.Metrics["momentum_drift"]; got > 1e-3 {
		t.Errorf("momentum drift = %f, want ~0", got)
	}
}

func TestStabilityThreshold(t *testing.T) {
	cfg := config.GetPreset(config.KindMotor, "converge")
	scene, err := sim.BuildScene(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStability(1)
	if err := scene.Solver.Step(float32(cfg.Dt)); err != nil {
		t.Fatal(err)
	}
	s.Observe(scene, 0)
	if s.Value() != 0 {
		t.Errorf("stability = %f, want 0 after exceeding threshold", s.Value())
	}
	s.Reset()
	if s.Value() != 1 {
		t.Errorf("stability after reset = %f, want 1", s.Value())
	}
}

func TestStabilityAcrossBundles(t *testing.T) {
	store := bodies.NewStore(wide.Width + 2)
	for i := 0; i < wide.Width+2; i++ {
		store.Add(bodies.Description{Orientation: mgl64.QuatIdent(), InverseMass: 1, LocalInverseInertia: mgl64.Ident3()})
	}
	scene := &sim.Scene{Store: store}

	tests := []struct {
		name    string
		angular mgl64.Vec3
		want    float64
	}{
		{"slow", mgl64.Vec3{0, 3, 4}, 1},
		{"too fast", mgl64.Vec3{0, 30, 40}, 0},
		{"nan", mgl64.Vec3{math.NaN(), 0, 0}, 0},
		{"inf", mgl64.Vec3{0, 0, math.Inf(-1)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The last body sits in the second bundle.
			store.SetVelocity(wide.Width+1, mgl64.Vec3{}, tt.angular)
			s := NewStability(10)
			s.Observe(scene, 0)
			if s.Value() != tt.want {
				t.Errorf("stability = %f, want %f", s.Value(), tt.want)
			}
		})
	}
}
