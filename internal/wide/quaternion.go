package wide

import "github.com/go-gl/mathgl/mgl64"

// Quaternion holds Width quaternions. Solver code assumes unit length.
type Quaternion struct {
	X, Y, Z, W Float
}

// IdentityQuaternion returns Width identity rotations.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: Splat(1)}
}

// TransformWithoutOverlap rotates v by q and writes the result into out.
// out must not alias v.
//
// Uses v' = v + 2w(u x v) + 2u x (u x v) where u is the vector part of q.
func TransformWithoutOverlap(v *Vector3, q *Quaternion, out *Vector3) {
	for i := 0; i < Width; i++ {
		ux, uy, uz, w := q.X[i], q.Y[i], q.Z[i], q.W[i]
		vx, vy, vz := v.X[i], v.Y[i], v.Z[i]

		tx := 2 * (uy*vz - uz*vy)
		ty := 2 * (uz*vx - ux*vz)
		tz := 2 * (ux*vy - uy*vx)

		out.X[i] = vx + w*tx + (uy*tz - uz*ty)
		out.Y[i] = vy + w*ty + (uz*tx - ux*tz)
		out.Z[i] = vz + w*tz + (ux*ty - uy*tx)
	}
}

// ToMatrix writes the rotation matrix of q into out as three row vectors.
func (q *Quaternion) ToMatrix(out *Matrix3x3) {
	for i := 0; i < Width; i++ {
		x, y, z, w := q.X[i], q.Y[i], q.Z[i], q.W[i]
		xx, yy, zz := x*x, y*y, z*z
		xy, xz, yz := x*y, x*z, y*z
		wx, wy, wz := w*x, w*y, w*z

		out.X.X[i] = 1 - 2*(yy+zz)
		out.X.Y[i] = 2 * (xy - wz)
		out.X.Z[i] = 2 * (xz + wy)
		out.Y.X[i] = 2 * (xy + wz)
		out.Y.Y[i] = 1 - 2*(xx+zz)
		out.Y.Z[i] = 2 * (yz - wx)
		out.Z.X[i] = 2 * (xz - wy)
		out.Z.Y[i] = 2 * (yz + wx)
		out.Z.Z[i] = 1 - 2*(xx+yy)
	}
}

// ReadSlot extracts one lane as an mgl64 quaternion.
func (q *Quaternion) ReadSlot(lane int) mgl64.Quat {
	return mgl64.Quat{
		W: float64(q.W[lane]),
		V: mgl64.Vec3{float64(q.X[lane]), float64(q.Y[lane]), float64(q.Z[lane])},
	}
}

// WriteSlot stores an mgl64 quaternion into one lane.
func (q *Quaternion) WriteSlot(lane int, s mgl64.Quat) {
	q.X[lane] = float32(s.V[0])
	q.Y[lane] = float32(s.V[1])
	q.Z[lane] = float32(s.V[2])
	q.W[lane] = float32(s.W)
}
