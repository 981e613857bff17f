package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt             = 1.0 / 60
	DefaultSteps          = 120
	DefaultIterations     = 8
	DefaultMinBundles     = 16
	DefaultPairs          = 64
	DefaultTarget         = 5.0
	DefaultMaximumForce   = 1000.0
	DefaultInverseInertia = 1.0
	DefaultSpringFreq     = 30.0
	DefaultSpringDamping  = 1.0
)

// Scenario kinds.
const (
	KindMotor = "motor"
	KindServo = "servo"
	KindChain = "chain"
)

var (
	ErrInvalidDt         = errors.New("config: dt must be positive")
	ErrInvalidSteps      = errors.New("config: steps must be positive")
	ErrInvalidIterations = errors.New("config: iterations must be positive")
	ErrInvalidScenario   = errors.New("config: invalid scenario")
)

type Config struct {
	Dt               float64        `yaml:"dt"`
	Steps            int            `yaml:"steps"`
	Iterations       int            `yaml:"iterations"`
	Workers          int            `yaml:"workers"`
	MinBundlesPerJob int            `yaml:"min_bundles_per_job"`
	Scenario         ScenarioConfig `yaml:"scenario"`

	// IntegrateOrientation advances body orientations after each step, so
	// motor axes follow the bodies they are attached to.
	IntegrateOrientation bool `yaml:"integrate_orientation"`
}

type ScenarioConfig struct {
	Kind            string  `yaml:"kind"`
	Pairs           int     `yaml:"pairs"`
	TargetVelocity  float64 `yaml:"target_velocity"`
	MaximumForce    float64 `yaml:"maximum_force"`
	Softness        float64 `yaml:"softness"`
	SpringFrequency float64 `yaml:"spring_frequency"`
	SpringDamping   float64 `yaml:"spring_damping"`
	InverseInertia  float64 `yaml:"inverse_inertia"`
	InitialSpin     float64 `yaml:"initial_spin"`

	// AxisTilt rotates body B's local axis away from A's, in radians.
	AxisTilt float64 `yaml:"axis_tilt"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:               DefaultDt,
		Steps:            DefaultSteps,
		Iterations:       DefaultIterations,
		MinBundlesPerJob: DefaultMinBundles,
		Scenario: ScenarioConfig{
			Kind:            KindMotor,
			Pairs:           DefaultPairs,
			TargetVelocity:  DefaultTarget,
			MaximumForce:    DefaultMaximumForce,
			SpringFrequency: DefaultSpringFreq,
			SpringDamping:   DefaultSpringDamping,
			InverseInertia:  DefaultInverseInertia,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return ErrInvalidDt
	}
	if c.Steps <= 0 {
		return ErrInvalidSteps
	}
	if c.Iterations <= 0 {
		return ErrInvalidIterations
	}
	s := c.Scenario
	switch s.Kind {
	case KindMotor, KindServo, KindChain:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScenario, s.Kind)
	}
	if s.Pairs <= 0 {
		return fmt.Errorf("%w: pairs must be positive", ErrInvalidScenario)
	}
	if s.MaximumForce < 0 || s.Softness < 0 || s.InverseInertia < 0 {
		return fmt.Errorf("%w: force, softness and inertia must be non-negative", ErrInvalidScenario)
	}
	if s.Kind == KindServo && !(s.SpringFrequency > 0) {
		return fmt.Errorf("%w: servo needs a positive spring frequency", ErrInvalidScenario)
	}
	return nil
}
