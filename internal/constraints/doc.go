// Package constraints provides concrete constraint kinds for the solver.
//
//   - [AngularAxisMotor]: bilateral motor driving relative angular velocity
//     about two body-local axes toward a target rate
//   - [AngularAxisServo]: spring-softened, push-only variant whose impulse
//     stays within [0, max]
//
// Call [Register] to install every kind into a [solver.Registry].
package constraints

import "github.com/san-kum/impulse/internal/solver"

// Register installs all kinds in this package.
func Register(r *solver.Registry) error {
	if err := r.Register(NewAngularAxisMotorProcessor()); err != nil {
		return err
	}
	return r.Register(NewAngularAxisServoProcessor())
}

// NewRegistry returns a registry holding every kind in this package.
func NewRegistry() *solver.Registry {
	r := solver.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
