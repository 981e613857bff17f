package bodies

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse/internal/wide"
)

// GatherState loads orientation, velocity and world-space inverse inertia for
// every lane of a bundle. Lanes at or beyond laneCount, and Sentinel lanes,
// gather as inert: identity orientation, zero velocity, zero inverse mass and
// inertia.
func (s *Store) GatherState(refs *TwoBodyReferences, laneCount int,
	orientationA, orientationB *wide.Quaternion,
	velocityA, velocityB *Velocities,
	inertiaA, inertiaB *Inertias) {
	s.GatherOrientation(refs, laneCount, orientationA, orientationB)
	s.GatherVelocities(refs, laneCount, velocityA, velocityB)
	s.gatherInertia(refs, laneCount, orientationA, orientationB, inertiaA, inertiaB)
}

// GatherOrientation loads the orientations of a bundle. Inactive lanes are identity.
func (s *Store) GatherOrientation(refs *TwoBodyReferences, laneCount int, orientationA, orientationB *wide.Quaternion) {
	*orientationA = wide.IdentityQuaternion()
	*orientationB = wide.IdentityQuaternion()
	for lane := 0; lane < laneCount; lane++ {
		if a := refs.A[lane]; s.active(a) {
			orientationA.WriteSlot(lane, s.orientation[a])
		}
		if b := refs.B[lane]; s.active(b) {
			orientationB.WriteSlot(lane, s.orientation[b])
		}
	}
}

// GatherInertia loads world-space inverse inertia for a bundle. Inactive lanes
// gather zero inverse mass and a zero tensor so they absorb impulse without
// effect.
func (s *Store) GatherInertia(refs *TwoBodyReferences, laneCount int, inertiaA, inertiaB *Inertias) {
	var orientationA, orientationB wide.Quaternion
	s.GatherOrientation(refs, laneCount, &orientationA, &orientationB)
	s.gatherInertia(refs, laneCount, &orientationA, &orientationB, inertiaA, inertiaB)
}

func (s *Store) gatherInertia(refs *TwoBodyReferences, laneCount int,
	orientationA, orientationB *wide.Quaternion, inertiaA, inertiaB *Inertias) {
	var localA, localB wide.Symmetric3x3
	inertiaA.InverseMass = wide.Float{}
	inertiaB.InverseMass = wide.Float{}
	for lane := 0; lane < laneCount; lane++ {
		if a := refs.A[lane]; s.active(a) {
			inertiaA.InverseMass[lane] = float32(s.inverseMass[a])
			localA.WriteSlot(lane, s.localInertia[a])
		}
		if b := refs.B[lane]; s.active(b) {
			inertiaB.InverseMass[lane] = float32(s.inverseMass[b])
			localB.WriteSlot(lane, s.localInertia[b])
		}
	}
	wide.RotateInverseInertia(&localA, orientationA, &inertiaA.InverseInertiaTensor)
	wide.RotateInverseInertia(&localB, orientationB, &inertiaB.InverseInertiaTensor)
}

// GatherVelocities loads only the velocities of a bundle. Inactive lanes are zero.
func (s *Store) GatherVelocities(refs *TwoBodyReferences, laneCount int, velocityA, velocityB *Velocities) {
	*velocityA = Velocities{}
	*velocityB = Velocities{}
	for lane := 0; lane < laneCount; lane++ {
		if a := refs.A[lane]; s.active(a) {
			velocityA.Linear.WriteSlot(lane, s.linear[a])
			velocityA.Angular.WriteSlot(lane, s.angular[a])
		}
		if b := refs.B[lane]; s.active(b) {
			velocityB.Linear.WriteSlot(lane, s.linear[b])
			velocityB.Angular.WriteSlot(lane, s.angular[b])
		}
	}
}

// ScatterVelocities writes a bundle's velocities back to the store.
// Sentinel lanes and lanes at or beyond laneCount are never written.
func (s *Store) ScatterVelocities(refs *TwoBodyReferences, laneCount int, velocityA, velocityB *Velocities) {
	for lane := 0; lane < laneCount; lane++ {
		if a := refs.A[lane]; s.active(a) {
			s.scatterLane(int(a), lane, velocityA)
		}
		if b := refs.B[lane]; s.active(b) {
			s.scatterLane(int(b), lane, velocityB)
		}
	}
}

func (s *Store) scatterLane(body, lane int, v *Velocities) {
	s.linear[body] = v.Linear.ReadSlot(lane)
	s.angular[body] = v.Angular.ReadSlot(lane)
}

// TotalAngularMomentum sums I * w over all bodies. I is the pseudo-inverse of
// the world inverse inertia, so axes a body cannot turn about contribute
// nothing while its free axes still count.
func (s *Store) TotalAngularMomentum() mgl64.Vec3 {
	var total mgl64.Vec3
	for i := range s.orientation {
		inertia := pseudoInverse(s.worldInverseInertia(i))
		total = total.Add(inertia.Mul3x1(s.angular[i]))
	}
	return total
}

// pseudoInverse inverts a symmetric matrix through its eigen decomposition,
// dropping eigenvalues that are negligible against the largest.
func pseudoInverse(m mgl64.Mat3) mgl64.Mat3 {
	values, vectors := symmetricEigen(m)
	largest := 0.0
	for _, v := range values {
		largest = math.Max(largest, math.Abs(v))
	}
	var out mgl64.Mat3
	if largest == 0 {
		return out
	}
	for k, v := range values {
		if math.Abs(v) <= 1e-12*largest {
			continue
		}
		column := vectors.Col(k)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				out.Set(r, c, out.At(r, c)+column[r]*column[c]/v)
			}
		}
	}
	return out
}

// symmetricEigen diagonalizes m with cyclic Jacobi rotations. The columns of
// the returned matrix are the eigenvectors.
func symmetricEigen(m mgl64.Mat3) ([3]float64, mgl64.Mat3) {
	a := m
	v := mgl64.Ident3()
	for sweep := 0; sweep < 32; sweep++ {
		off := a.At(0, 1)*a.At(0, 1) + a.At(0, 2)*a.At(0, 2) + a.At(1, 2)*a.At(1, 2)
		if off < 1e-30 {
			break
		}
		for p := 0; p < 2; p++ {
			for q := p + 1; q < 3; q++ {
				apq := a.At(p, q)
				if apq == 0 {
					continue
				}
				theta := (a.At(q, q) - a.At(p, p)) / (2 * apq)
				t := 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c
				j := mgl64.Ident3()
				j.Set(p, p, c)
				j.Set(q, q, c)
				j.Set(p, q, s)
				j.Set(q, p, -s)
				a = j.Transpose().Mul3(a).Mul3(j)
				v = v.Mul3(j)
			}
		}
	}
	return [3]float64{a.At(0, 0), a.At(1, 1), a.At(2, 2)}, v
}

func (s *Store) worldInverseInertia(i int) mgl64.Mat3 {
	r := s.orientation[i].Mat4().Mat3()
	return r.Mul3(s.localInertia[i]).Mul3(r.Transpose())
}
