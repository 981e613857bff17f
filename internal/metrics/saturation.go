package metrics

import (
	"math"

	"github.com/san-kum/impulse/internal/constraints"
	"github.com/san-kum/impulse/internal/sim"
)

// saturationTolerance is the relative distance from the clamp that still
// counts as saturated.
const saturationTolerance = 1e-4

// Saturation is the fraction of constraint samples whose accumulated impulse
// sat at the force limit.
type Saturation struct {
	name      string
	dt        float64
	saturated int
	samples   int
}

func NewSaturation(dt float64) *Saturation {
	return &Saturation{
		name: "saturation",
		dt:   dt,
	}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(scene *sim.Scene, step int) {
	for _, h := range scene.Handles {
		d, err := scene.Solver.Describe(h)
		if err != nil {
			continue
		}
		var maxForce float64
		switch d := d.(type) {
		case constraints.AngularAxisMotor:
			maxForce = d.Settings.MaximumForce
		case constraints.AngularAxisServo:
			maxForce = d.Servo.MaximumForce
		default:
			continue
		}
		acc, _ := scene.Solver.AccumulatedImpulse(h)
		limit := maxForce * s.dt
		s.samples++
		if limit > 0 && math.Abs(acc) >= limit*(1-saturationTolerance) {
			s.saturated++
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
