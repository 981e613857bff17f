package wide

import "github.com/go-gl/mathgl/mgl64"

// Symmetric3x3 stores the lower triangle of Width symmetric 3x3 tensors.
//
//	XX
//	YX YY
//	ZX ZY ZZ
type Symmetric3x3 struct {
	XX, YX, YY, ZX, ZY, ZZ Float
}

// Matrix3x3 holds Width general 3x3 matrices as row vectors.
type Matrix3x3 struct {
	X, Y, Z Vector3
}

// TransformWithoutOverlap computes out = t * v per lane. out must not alias v.
// Because t is symmetric, v * t gives the same result.
func (t *Symmetric3x3) TransformWithoutOverlap(v *Vector3, out *Vector3) {
	for i := 0; i < Width; i++ {
		out.X[i] = v.X[i]*t.XX[i] + v.Y[i]*t.YX[i] + v.Z[i]*t.ZX[i]
		out.Y[i] = v.X[i]*t.YX[i] + v.Y[i]*t.YY[i] + v.Z[i]*t.ZY[i]
		out.Z[i] = v.X[i]*t.ZX[i] + v.Y[i]*t.ZY[i] + v.Z[i]*t.ZZ[i]
	}
}

// Trace returns XX + YY + ZZ per lane. For a positive semidefinite tensor it
// bounds a^T t a / |a|^2 from above.
func (t *Symmetric3x3) Trace() Float {
	return t.XX.Add(t.YY).Add(t.ZZ)
}

// RotateInverseInertia computes R * t * R^T per lane, mapping a body-local
// inverse inertia tensor into world space. out must not alias t.
func RotateInverseInertia(t *Symmetric3x3, q *Quaternion, out *Symmetric3x3) {
	var r Matrix3x3
	q.ToMatrix(&r)
	for i := 0; i < Width; i++ {
		// rows of R * t
		ax := r.X.X[i]*t.XX[i] + r.X.Y[i]*t.YX[i] + r.X.Z[i]*t.ZX[i]
		ay := r.X.X[i]*t.YX[i] + r.X.Y[i]*t.YY[i] + r.X.Z[i]*t.ZY[i]
		az := r.X.X[i]*t.ZX[i] + r.X.Y[i]*t.ZY[i] + r.X.Z[i]*t.ZZ[i]
		bx := r.Y.X[i]*t.XX[i] + r.Y.Y[i]*t.YX[i] + r.Y.Z[i]*t.ZX[i]
		by := r.Y.X[i]*t.YX[i] + r.Y.Y[i]*t.YY[i] + r.Y.Z[i]*t.ZY[i]
		bz := r.Y.X[i]*t.ZX[i] + r.Y.Y[i]*t.ZY[i] + r.Y.Z[i]*t.ZZ[i]
		cx := r.Z.X[i]*t.XX[i] + r.Z.Y[i]*t.YX[i] + r.Z.Z[i]*t.ZX[i]
		cy := r.Z.X[i]*t.YX[i] + r.Z.Y[i]*t.YY[i] + r.Z.Z[i]*t.ZY[i]
		cz := r.Z.X[i]*t.ZX[i] + r.Z.Y[i]*t.ZY[i] + r.Z.Z[i]*t.ZZ[i]

		out.XX[i] = ax*r.X.X[i] + ay*r.X.Y[i] + az*r.X.Z[i]
		out.YX[i] = bx*r.X.X[i] + by*r.X.Y[i] + bz*r.X.Z[i]
		out.YY[i] = bx*r.Y.X[i] + by*r.Y.Y[i] + bz*r.Y.Z[i]
		out.ZX[i] = cx*r.X.X[i] + cy*r.X.Y[i] + cz*r.X.Z[i]
		out.ZY[i] = cx*r.Y.X[i] + cy*r.Y.Y[i] + cz*r.Y.Z[i]
		out.ZZ[i] = cx*r.Z.X[i] + cy*r.Z.Y[i] + cz*r.Z.Z[i]
	}
}

// ReadSlot extracts one lane as a full mgl64 matrix.
func (t *Symmetric3x3) ReadSlot(lane int) mgl64.Mat3 {
	xx, yx, yy := float64(t.XX[lane]), float64(t.YX[lane]), float64(t.YY[lane])
	zx, zy, zz := float64(t.ZX[lane]), float64(t.ZY[lane]), float64(t.ZZ[lane])
	return mgl64.Mat3FromRows(
		mgl64.Vec3{xx, yx, zx},
		mgl64.Vec3{yx, yy, zy},
		mgl64.Vec3{zx, zy, zz},
	)
}

// WriteSlot stores the lower triangle of m into one lane.
// The upper triangle is ignored.
func (t *Symmetric3x3) WriteSlot(lane int, m mgl64.Mat3) {
	t.XX[lane] = float32(m.At(0, 0))
	t.YX[lane] = float32(m.At(1, 0))
	t.YY[lane] = float32(m.At(1, 1))
	t.ZX[lane] = float32(m.At(2, 0))
	t.ZY[lane] = float32(m.At(2, 1))
	t.ZZ[lane] = float32(m.At(2, 2))
}

// ClearLane zeroes one lane.
func (t *Symmetric3x3) ClearLane(lane int) {
	t.XX[lane], t.YX[lane], t.YY[lane] = 0, 0, 0
	t.ZX[lane], t.ZY[lane], t.ZZ[lane] = 0, 0, 0
}
