// Package softness converts actuator limits and spring parameters into the
// per-bundle terms the solver consumes: an effective mass scale (constraint
// force mixing), a softness impulse scale applied to the accumulated impulse
// each iteration, and a dt-scaled impulse clamp.
package softness

import (
	"errors"
	"math"

	"github.com/san-kum/impulse/internal/wide"
)

var (
	// ErrNegativeForce indicates a negative maximum force.
	ErrNegativeForce = errors.New("softness: maximum force must be non-negative")

	// ErrNegativeSoftness indicates a negative motor softness.
	ErrNegativeSoftness = errors.New("softness: softness must be non-negative")

	// ErrInvalidSpring indicates a non-positive frequency or negative damping ratio.
	ErrInvalidSpring = errors.New("softness: spring frequency must be positive and damping ratio non-negative")
)

// MotorSettings configures a bilateral velocity motor.
type MotorSettings struct {
	// MaximumForce bounds the force (or torque) the motor may apply.
	MaximumForce float64 `yaml:"maximum_force"`

	// Softness is the motor compliance in seconds. Zero is rigid.
	Softness float64 `yaml:"softness"`
}

// Validate checks the settings.
func (s MotorSettings) Validate() error {
	if s.MaximumForce < 0 || math.IsNaN(s.MaximumForce) {
		return ErrNegativeForce
	}
	if s.Softness < 0 || math.IsNaN(s.Softness) {
		return ErrNegativeSoftness
	}
	return nil
}

// SpringSettings configures spring-driven softness for servo variants.
type SpringSettings struct {
	Frequency    float64 `yaml:"frequency"`
	DampingRatio float64 `yaml:"damping_ratio"`
}

// Validate checks the settings. Frequencies too small or too large to
// survive conversion to the bundled float32 form are rejected.
func (s SpringSettings) Validate() error {
	if !(s.Frequency > 0) || s.DampingRatio < 0 || math.IsNaN(s.DampingRatio) {
		return ErrInvalidSpring
	}
	w := float32(2 * math.Pi * s.Frequency)
	if w == 0 || math.IsInf(float64(w), 0) {
		return ErrInvalidSpring
	}
	return nil
}

// ServoSettings bounds a unidirectional servo.
type ServoSettings struct {
	MaximumForce float64 `yaml:"maximum_force"`
}

// Validate checks the settings.
func (s ServoSettings) Validate() error {
	if s.MaximumForce < 0 || math.IsNaN(s.MaximumForce) {
		return ErrNegativeForce
	}
	return nil
}

// MotorSettingsWide is the bundled form of [MotorSettings].
type MotorSettingsWide struct {
	MaximumForce wide.Float
	Softness     wide.Float
}

// WriteSlot stores s into one lane.
func (w *MotorSettingsWide) WriteSlot(lane int, s MotorSettings) {
	w.MaximumForce[lane] = float32(s.MaximumForce)
	w.Softness[lane] = float32(s.Softness)
}

// ReadSlot extracts one lane.
func (w *MotorSettingsWide) ReadSlot(lane int) MotorSettings {
	return MotorSettings{
		MaximumForce: float64(w.MaximumForce[lane]),
		Softness:     float64(w.Softness[lane]),
	}
}

// ClearLane zeroes one lane.
func (w *MotorSettingsWide) ClearLane(lane int) {
	w.MaximumForce.ClearLane(lane)
	w.Softness.ClearLane(lane)
}

// CopyLane copies sourceLane of source into lane of w.
func (w *MotorSettingsWide) CopyLane(lane int, source *MotorSettingsWide, sourceLane int) {
	w.MaximumForce.CopyLane(lane, &source.MaximumForce, sourceLane)
	w.Softness.CopyLane(lane, &source.Softness, sourceLane)
}

// SpringSettingsWide stores angular frequency and twice the damping ratio,
// the forms the softness math uses directly.
type SpringSettingsWide struct {
	AngularFrequency  wide.Float
	TwiceDampingRatio wide.Float
}

// WriteSlot stores s into one lane.
func (w *SpringSettingsWide) WriteSlot(lane int, s SpringSettings) {
	w.AngularFrequency[lane] = float32(2 * math.Pi * s.Frequency)
	w.TwiceDampingRatio[lane] = float32(2 * s.DampingRatio)
}

// ReadSlot extracts one lane.
func (w *SpringSettingsWide) ReadSlot(lane int) SpringSettings {
	return SpringSettings{
		Frequency:    float64(w.AngularFrequency[lane]) / (2 * math.Pi),
		DampingRatio: float64(w.TwiceDampingRatio[lane]) / 2,
	}
}

// ClearLane zeroes one lane.
func (w *SpringSettingsWide) ClearLane(lane int) {
	w.AngularFrequency.ClearLane(lane)
	w.TwiceDampingRatio.ClearLane(lane)
}

// CopyLane copies the stored form directly, so no frequency conversion is
// repeated.
func (w *SpringSettingsWide) CopyLane(lane int, source *SpringSettingsWide, sourceLane int) {
	w.AngularFrequency.CopyLane(lane, &source.AngularFrequency, sourceLane)
	w.TwiceDampingRatio.CopyLane(lane, &source.TwiceDampingRatio, sourceLane)
}

// ServoSettingsWide is the bundled form of [ServoSettings].
type ServoSettingsWide struct {
	MaximumForce wide.Float
}

// WriteSlot stores s into one lane.
func (w *ServoSettingsWide) WriteSlot(lane int, s ServoSettings) {
	w.MaximumForce[lane] = float32(s.MaximumForce)
}

// ReadSlot extracts one lane.
func (w *ServoSettingsWide) ReadSlot(lane int) ServoSettings {
	return ServoSettings{MaximumForce: float64(w.MaximumForce[lane])}
}

// ClearLane zeroes one lane.
func (w *ServoSettingsWide) ClearLane(lane int) {
	w.MaximumForce.ClearLane(lane)
}

// CopyLane copies sourceLane of source into lane of w.
func (w *ServoSettingsWide) CopyLane(lane int, source *ServoSettingsWide, sourceLane int) {
	w.MaximumForce.CopyLane(lane, &source.MaximumForce, sourceLane)
}
