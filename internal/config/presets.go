package config

import "sort"

var Presets = map[string]map[string]*Config{
	KindMotor: {
		"converge": {
			Dt: DefaultDt, Steps: 1, Iterations: 8,
			Scenario: ScenarioConfig{Kind: KindMotor, Pairs: 1, TargetVelocity: 5, MaximumForce: 1e6, InverseInertia: 1},
		},
		"saturated": {
			Dt: DefaultDt, Steps: 240, Iterations: 8,
			Scenario: ScenarioConfig{Kind: KindMotor, Pairs: 32, TargetVelocity: 20, MaximumForce: 30, InverseInertia: 1},
		},
		"soft": {
			Dt: DefaultDt, Steps: 180, Iterations: 8,
			Scenario: ScenarioConfig{Kind: KindMotor, Pairs: 64, TargetVelocity: 5, MaximumForce: 1000, Softness: 0.05, InverseInertia: 1},
		},
		"tilted": {
			Dt: DefaultDt, Steps: 120, Iterations: 8,
			Scenario: ScenarioConfig{Kind: KindMotor, Pairs: 64, TargetVelocity: 3, MaximumForce: 1000, InverseInertia: 1, AxisTilt: 0.4},
		},
	},
	KindServo: {
		"spin-up": {
			Dt: DefaultDt, Steps: 240, Iterations: 8,
			Scenario: ScenarioConfig{Kind: KindServo, Pairs: 64, TargetVelocity: 4, MaximumForce: 200, SpringFrequency: 30, SpringDamping: 1, InverseInertia: 1},
		},
		"overrun": {
			Dt: DefaultDt, Steps: 120, Iterations: 8,
			Scenario: ScenarioConfig{Kind: KindServo, Pairs: 16, TargetVelocity: 1, MaximumForce: 200, SpringFrequency: 30, SpringDamping: 1, InverseInertia: 1, InitialSpin: 6},
		},
	},
	KindChain: {
		"long": {
			Dt: DefaultDt, Steps: 120, Iterations: 16,
			Scenario: ScenarioConfig{Kind: KindChain, Pairs: 256, TargetVelocity: 0.5, MaximumForce: 500, InverseInertia: 1},
		},
	},
}

// GetPreset returns a copy of a named preset, or nil.
func GetPreset(kind, name string) *Config {
	if presets, ok := Presets[kind]; ok {
		if cfg, ok := presets[name]; ok {
			c := *cfg
			c.MinBundlesPerJob = DefaultMinBundles
			return &c
		}
	}
	return nil
}

// ListPresets returns the preset names for a kind, sorted.
func ListPresets(kind string) []string {
	presets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
