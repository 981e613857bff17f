package softness

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/impulse/internal/wide"
)

func TestComputeMotorRigid(t *testing.T) {
	var s MotorSettingsWide
	s.WriteSlot(0, MotorSettings{MaximumForce: 120, Softness: 0})

	dt := float32(1.0 / 60)
	cfm, softnessScale, maxImpulse := ComputeMotor(&s, dt, 1/dt)

	if cfm[0] != 1 {
		t.Errorf("cfm scale = %f, want 1", cfm[0])
	}
	if softnessScale[0] != 0 {
		t.Errorf("softness scale = %f, want 0", softnessScale[0])
	}
	if math.Abs(float64(maxImpulse[0])-2) > 1e-5 {
		t.Errorf("max impulse = %f, want 2", maxImpulse[0])
	}
}

func TestComputeMotorSoft(t *testing.T) {
	tests := []struct {
		name     string
		softness float64
	}{
		{"slight", 0.001},
		{"moderate", 0.05},
		{"very soft", 2},
	}

	dt := float32(1.0 / 60)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s MotorSettingsWide
			s.WriteSlot(0, MotorSettings{MaximumForce: 1, Softness: tt.softness})
			cfm, softnessScale, _ := ComputeMotor(&s, dt, 1/dt)

			if !(cfm[0] > 0 && cfm[0] < 1) {
				t.Errorf("cfm scale %f not in (0,1)", cfm[0])
			}
			if math.Abs(float64(cfm[0]+softnessScale[0])-1) > 1e-6 {
				t.Errorf("cfm + softness = %f, want 1", cfm[0]+softnessScale[0])
			}
		})
	}
}

func TestComputeSpringPaddingLanes(t *testing.T) {
	var s SpringSettingsWide
	s.WriteSlot(0, SpringSettings{Frequency: 30, DampingRatio: 1})

	erp, cfm, softnessScale := ComputeSpring(&s, 1.0/60)
	if !(cfm[0] > 0 && cfm[0] < 1) || !(erp[0] > 0) || !(softnessScale[0] > 0) {
		t.Errorf("active lane: erp %f cfm %f softness %f", erp[0], cfm[0], softnessScale[0])
	}
	for i := 1; i < wide.Width; i++ {
		if erp[i] != 0 || cfm[i] != 0 || softnessScale[i] != 0 {
			t.Errorf("padding lane %d not zero", i)
		}
	}
	if erp.HasNaN() || cfm.HasNaN() || softnessScale.HasNaN() {
		t.Error("spring terms produced NaN")
	}
}

func TestSpringRoundTrip(t *testing.T) {
	var s SpringSettingsWide
	in := SpringSettings{Frequency: 12.5, DampingRatio: 0.7}
	s.WriteSlot(3, in)
	out := s.ReadSlot(3)
	if math.Abs(out.Frequency-in.Frequency) > 1e-4 || math.Abs(out.DampingRatio-in.DampingRatio) > 1e-6 {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestClampImpulse(t *testing.T) {
	tests := []struct {
		name            string
		accumulated     float32
		delta           float32
		wantAccumulated float32
		wantDelta       float32
	}{
		{"inside", 0.5, 0.25, 0.75, 0.25},
		{"over top", 0.5, 2, 1, 0.5},
		{"under bottom", -0.5, -2, -1, -0.5},
		{"back inside", 1, -0.5, 0.5, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := wide.Splat(tt.accumulated)
			delta := wide.Splat(tt.delta)
			ClampImpulse(wide.Splat(1), &acc, &delta)
			if acc[0] != tt.wantAccumulated || delta[0] != tt.wantDelta {
				t.Errorf("got acc %f delta %f, want %f %f", acc[0], delta[0], tt.wantAccumulated, tt.wantDelta)
			}
		})
	}
}

func TestClampImpulseUnidirectional(t *testing.T) {
	acc := wide.Splat(0.2)
	delta := wide.Splat(-1)
	ClampImpulseUnidirectional(wide.Splat(1), &acc, &delta)
	if acc[0] != 0 {
		t.Errorf("accumulated = %f, want 0", acc[0])
	}
	if delta[0] != -0.2 {
		t.Errorf("delta = %f, want -0.2", delta[0])
	}

	acc = wide.Splat(0.9)
	delta = wide.Splat(1)
	ClampImpulseUnidirectional(wide.Splat(1), &acc, &delta)
	if acc[0] != 1 {
		t.Errorf("accumulated = %f, want 1", acc[0])
	}
}

func TestValidate(t *testing.T) {
	if err := (MotorSettings{MaximumForce: -1}).Validate(); !errors.Is(err, ErrNegativeForce) {
		t.Errorf("expected ErrNegativeForce, got %v", err)
	}
	if err := (MotorSettings{MaximumForce: 1, Softness: -1}).Validate(); !errors.Is(err, ErrNegativeSoftness) {
		t.Errorf("expected ErrNegativeSoftness, got %v", err)
	}
	if err := (SpringSettings{Frequency: 0, DampingRatio: 1}).Validate(); !errors.Is(err, ErrInvalidSpring) {
		t.Errorf("expected ErrInvalidSpring, got %v", err)
	}
	// 2*pi*f underflows or overflows float32 at these frequencies.
	for _, f := range []float64{1e-46, 1e39, math.Inf(1)} {
		if err := (SpringSettings{Frequency: f, DampingRatio: 1}).Validate(); !errors.Is(err, ErrInvalidSpring) {
			t.Errorf("frequency %g: expected ErrInvalidSpring, got %v", f, err)
		}
	}
	if err := (ServoSettings{MaximumForce: 3}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
