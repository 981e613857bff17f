package solver

import (
	"fmt"
	"runtime"

	"github.com/san-kum/impulse/internal/bodies"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultIterations       = 8
	DefaultMinBundlesPerJob = 16
)

// Options configures the solver loop.
type Options struct {
	// Iterations is the number of Solve passes after WarmStart.
	Iterations int

	// Workers bounds concurrent jobs. Zero uses GOMAXPROCS; one runs inline.
	Workers int

	// MinBundlesPerJob is the smallest bundle range handed to one worker.
	MinBundlesPerJob int

	// InitialCapacity sizes newly created type batches.
	InitialCapacity int
}

func DefaultOptions() Options {
	return Options{
		Iterations:       DefaultIterations,
		Workers:          runtime.GOMAXPROCS(0),
		MinBundlesPerJob: DefaultMinBundlesPerJob,
		InitialCapacity:  64,
	}
}

// Solver advances body velocities to satisfy every constraint in its set.
type Solver struct {
	*ConstraintSet

	store    *bodies.Store
	registry *Registry
	opts     Options
}

// New creates a solver over store. Missing options take their defaults.
func New(store *bodies.Store, registry *Registry, opts Options) *Solver {
	def := DefaultOptions()
	if opts.Iterations <= 0 {
		opts.Iterations = def.Iterations
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.MinBundlesPerJob <= 0 {
		opts.MinBundlesPerJob = def.MinBundlesPerJob
	}
	if opts.InitialCapacity <= 0 {
		opts.InitialCapacity = def.InitialCapacity
	}
	return &Solver{
		ConstraintSet: NewConstraintSet(registry, store, opts.InitialCapacity),
		store:         store,
		registry:      registry,
		opts:          opts,
	}
}

// Options returns the effective options.
func (s *Solver) Options() Options { return s.opts }

// BodyStore returns the body store the solver writes to.
func (s *Solver) BodyStore() *bodies.Store { return s.store }

// Step runs Prestep, WarmStart and the configured number of Solve iterations.
func (s *Solver) Step(dt float32) error {
	if !(dt > 0) {
		return fmt.Errorf("step dt=%f: %w", dt, ErrInvalidTimestep)
	}
	s.Prestep(dt)
	s.WarmStart()
	for i := 0; i < s.opts.Iterations; i++ {
		s.SolveIteration()
	}
	return nil
}

// Prestep refreshes every projection. Prestep only reads body state, so all
// batches run in one parallel pass.
func (s *Solver) Prestep(dt float32) {
	inverseDt := 1 / dt
	var jobs []job
	for _, batch := range s.batches {
		jobs = s.appendJobs(jobs, batch)
	}
	s.run(jobs, func(j job) {
		j.processor.Prestep(j.batch, s.store, dt, inverseDt, j.start, j.end)
	})
}

// WarmStart reapplies accumulated impulses, one batch at a time.
func (s *Solver) WarmStart() {
	for _, batch := range s.batches {
		s.run(s.appendJobs(nil, batch), func(j job) {
			j.processor.WarmStart(j.batch, s.store, j.start, j.end)
		})
	}
}

// SolveIteration runs one sequential-impulse pass over every batch. Each
// batch's scatter completes before the next batch gathers.
func (s *Solver) SolveIteration() {
	for _, batch := range s.batches {
		s.run(s.appendJobs(nil, batch), func(j job) {
			j.processor.SolveIteration(j.batch, s.store, j.start, j.end)
		})
	}
}

type job struct {
	processor  TypeProcessor
	batch      *TypeBatch
	start, end int
}

// appendJobs splits every type batch of a batch into bundle ranges.
func (s *Solver) appendJobs(jobs []job, batch *Batch) []job {
	for _, tb := range batch.TypeBatches {
		p, err := s.registry.Processor(tb.TypeID)
		if err != nil {
			panic(err)
		}
		bundles := tb.BundleCount()
		for start := 0; start < bundles; start += s.opts.MinBundlesPerJob {
			end := min(start+s.opts.MinBundlesPerJob, bundles)
			jobs = append(jobs, job{processor: p, batch: tb, start: start, end: end})
		}
	}
	return jobs
}

// run executes jobs and returns once all have finished. The return is the
// barrier between batches.
func (s *Solver) run(jobs []job, fn func(job)) {
	if len(jobs) == 0 {
		return
	}
	if s.opts.Workers == 1 || len(jobs) == 1 {
		for _, j := range jobs {
			fn(j)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			fn(j)
			return nil
		})
	}
	_ = g.Wait()
}
