package metrics

import "github.com/san-kum/impulse/internal/sim"

// Residual is the mean constraint error over all observed steps.
type Residual struct {
	name    string
	sum     float64
	samples int
}

func NewResidual() *Residual {
	return &Residual{name: "residual"}
}

func (r *Residual) Name() string { return r.name }

func (r *Residual) Observe(scene *sim.Scene, step int) {
	r.sum += scene.Residual()
	r.samples++
}

func (r *Residual) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *Residual) Reset() {
	r.sum = 0
	r.samples = 0
}
