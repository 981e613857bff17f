package softness

import "github.com/san-kum/impulse/internal/wide"

// ComputeMotor derives the solver terms for a motor.
//
// With extra = softness / dt, the soft constraint solves
// Jv + extra * lambda / m = target, giving
//
//	effectiveMassCFMScale = 1 / (1 + extra)
//	softnessImpulseScale  = extra / (1 + extra)
//	maximumImpulse        = maximumForce * dt
func ComputeMotor(s *MotorSettingsWide, dt, inverseDt float32) (effectiveMassCFMScale, softnessImpulseScale, maximumImpulse wide.Float) {
	extra := s.Softness.Scale(inverseDt)
	one := wide.Splat(1)
	effectiveMassCFMScale = one.Div(one.Add(extra))
	softnessImpulseScale = extra.Mul(effectiveMassCFMScale)
	maximumImpulse = s.MaximumForce.Scale(dt)
	return
}

// ComputeSpring derives the solver terms for a spring-softened constraint.
//
//	positionErrorToVelocity = w / (w*dt + 2z)
//	extra                   = 1 / (w*dt * (w*dt + 2z))
//	effectiveMassCFMScale   = 1 / (1 + extra)
//	softnessImpulseScale    = extra / (1 + extra)
//
// Lanes with zero frequency (padding) produce zero for every term.
func ComputeSpring(s *SpringSettingsWide, dt float32) (positionErrorToVelocity, effectiveMassCFMScale, softnessImpulseScale wide.Float) {
	for i := 0; i < wide.Width; i++ {
		w := s.AngularFrequency[i]
		if w <= 0 {
			continue
		}
		wdt := w * dt
		denominator := wdt + s.TwiceDampingRatio[i]
		positionErrorToVelocity[i] = w / denominator
		extra := 1 / (wdt * denominator)
		effectiveMassCFMScale[i] = 1 / (1 + extra)
		softnessImpulseScale[i] = extra * effectiveMassCFMScale[i]
	}
	return
}

// ComputeServo returns the impulse bound for a servo.
func ComputeServo(s *ServoSettingsWide, dt float32) wide.Float {
	return s.MaximumForce.Scale(dt)
}

// ClampImpulse bounds the accumulated impulse into [-maximum, maximum] and
// rewrites delta to the change actually applied.
func ClampImpulse(maximum wide.Float, accumulated, delta *wide.Float) {
	previous := *accumulated
	*accumulated = previous.Add(*delta).Clamp(maximum.Negate(), maximum)
	*delta = accumulated.Sub(previous)
}

// ClampImpulseUnidirectional bounds the accumulated impulse into [0, maximum]
// and rewrites delta to the change actually applied.
func ClampImpulseUnidirectional(maximum wide.Float, accumulated, delta *wide.Float) {
	previous := *accumulated
	*accumulated = previous.Add(*delta).Max(wide.Float{}).Min(maximum)
	*delta = accumulated.Sub(previous)
}
