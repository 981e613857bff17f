package metrics

import (
	"math"

	"github.com/san-kum/impulse/internal/sim"
)

// ImpulseEffort is the mean absolute accumulated impulse per constraint.
type ImpulseEffort struct {
	name    string
	sum     float64
	samples int
}

func NewImpulseEffort() *ImpulseEffort {
	return &ImpulseEffort{
		name: "impulse_effort",
	}
}

func (c *ImpulseEffort) Name() string {
	return c.name
}

func (c *ImpulseEffort) Observe(scene *sim.Scene, step int) {
	for _, h := range scene.Handles {
		acc, err := scene.Solver.AccumulatedImpulse(h)
		if err != nil {
			continue
		}
		c.sum += math.Abs(acc)
		c.samples++
	}
}

func (c *ImpulseEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ImpulseEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
