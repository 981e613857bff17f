package sim

import "time"

// Metric accumulates a statistic over a run.
type Metric interface {
	Name() string
	Observe(scene *Scene, step int)
	Value() float64
	Reset()
}

// Observer is notified after every solver step.
type Observer interface {
	OnStep(step int, t float64, scene *Scene, residual float64)
}

type Result struct {
	Residuals  []float64
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Elapsed    time.Duration
}

// FinalResidual returns the residual after the last step.
func (r *Result) FinalResidual() float64 {
	if len(r.Residuals) == 0 {
		return 0
	}
	return r.Residuals[len(r.Residuals)-1]
}
