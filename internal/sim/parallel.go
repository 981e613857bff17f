package sim

import (
	"context"

	"github.com/san-kum/impulse/internal/config"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent scenes concurrently, one per config. Scenes share
// nothing, so they need no coordination beyond collecting results.
type Ensemble struct {
	configs []*config.Config
	metrics func() []Metric
}

// NewEnsemble creates an ensemble. metrics, if non-nil, builds a fresh metric
// set for each run.
func NewEnsemble(configs []*config.Config, metrics func() []Metric) *Ensemble {
	return &Ensemble{configs: configs, metrics: metrics}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.configs))

	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range e.configs {
		g.Go(func() error {
			scene, err := BuildScene(cfg)
			if err != nil {
				return err
			}
			s := New(scene)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			results[i], err = s.Run(ctx, cfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
