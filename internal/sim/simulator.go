package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/impulse/internal/config"
	"github.com/san-kum/impulse/internal/solver"
)

type Simulator struct {
	scene     *Scene
	metrics   []Metric
	observers []Observer
}

func New(scene *Scene) *Simulator {
	return &Simulator{
		scene:     scene,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) Scene() *Scene { return s.scene }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps the solver cfg.Steps times. The context is checked between steps;
// a step in progress always completes.
func (s *Simulator) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Residuals: make([]float64, 0, cfg.Steps+1),
		Times:     make([]float64, 0, cfg.Steps+1),
		Metrics:   make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	result.Residuals = append(result.Residuals, s.scene.Residual())
	result.Times = append(result.Times, t)

	start := time.Now()
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			return result, ctx.Err()
		default:
		}

		if err := s.advance(cfg); err != nil {
			return result, fmt.Errorf("step %d: %w", i, err)
		}
		t += cfg.Dt
		result.StepsTaken++

		residual := s.scene.Residual()
		result.Residuals = append(result.Residuals, residual)
		result.Times = append(result.Times, t)

		for _, m := range s.metrics {
			m.Observe(s.scene, i)
		}
		for _, obs := range s.observers {
			obs.OnStep(i, t, s.scene, residual)
		}
	}
	result.Elapsed = time.Since(start)

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	solver.Logger().Info("run complete",
		"steps", result.StepsTaken,
		"constraints", s.scene.Solver.Count(),
		"batches", len(s.scene.Solver.Batches()),
		"residual", result.FinalResidual(),
		"elapsed", result.Elapsed)

	return result, nil
}

func (s *Simulator) advance(cfg *config.Config) error {
	if err := s.scene.Solver.Step(float32(cfg.Dt)); err != nil {
		return err
	}
	if cfg.IntegrateOrientation {
		return s.scene.Integrate(cfg.Dt)
	}
	return nil
}

func (s *Simulator) validateConfig(cfg *config.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	return nil
}

// RunWithCallback steps until the callback returns false or cfg.Steps is reached.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg *config.Config, callback func(step int, residual float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.advance(cfg); err != nil {
			return err
		}
		if !callback(i, s.scene.Residual()) {
			return nil
		}
	}

	return nil
}
