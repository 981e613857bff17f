package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse/internal/sim"
)

// MomentumDrift tracks the largest change in total angular momentum relative
// to the first observation. Internal constraints between dynamic bodies
// conserve it; kinematic anchors do not.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(scene *sim.Scene, step int) {
	l := scene.Store.TotalAngularMomentum()
	if m.samples == 0 {
		m.initial = l
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, l.Sub(m.initial).Len())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}

// Default returns the metric set used by the CLI.
func Default(dt float64) []sim.Metric {
	return []sim.Metric{
		NewResidual(),
		NewStability(1e4),
		NewImpulseEffort(),
		NewSaturation(dt),
		NewMomentumDrift(),
	}
}
