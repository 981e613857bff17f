package metrics

import (
	"github.com/san-kum/impulse/internal/sim"
	"github.com/san-kum/impulse/internal/wide"
)

// Stability is the fraction of steps in which every body's angular speed was
// finite and below threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(scene *sim.Scene, step int) {
	s.samples++
	if !s.stable(scene) {
		s.violations++
	}
}

// stable checks angular speeds Width bodies at a time.
func (s *Stability) stable(scene *sim.Scene) bool {
	limit := float32(s.threshold * s.threshold)
	var peak wide.Float
	count := scene.Store.Count()
	for start := 0; start < count; start += wide.Width {
		var angular wide.Vector3
		for lane := 0; lane < wide.Width && start+lane < count; lane++ {
			angular.WriteSlot(lane, scene.Store.AngularVelocity(start+lane))
		}
		speedSquared := angular.LengthSquared()
		if speedSquared.HasNaN() {
			return false
		}
		peak = peak.Max(speedSquared)
	}
	for _, v := range peak {
		if v > limit {
			return false
		}
	}
	return true
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
