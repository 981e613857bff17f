package wide

import "github.com/go-gl/mathgl/mgl64"

// Vector3 holds Width 3D vectors in SoA layout.
type Vector3 struct {
	X, Y, Z Float
}

// Add performs lane-wise vector addition.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X.Add(o.X), Y: v.Y.Add(o.Y), Z: v.Z.Add(o.Z)}
}

// Sub performs lane-wise vector subtraction.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X.Sub(o.X), Y: v.Y.Sub(o.Y), Z: v.Z.Sub(o.Z)}
}

// Scale multiplies each lane's vector by the matching lane of s.
func (v Vector3) Scale(s Float) Vector3 {
	return Vector3{X: v.X.Mul(s), Y: v.Y.Mul(s), Z: v.Z.Mul(s)}
}

// Negate flips every component.
func (v Vector3) Negate() Vector3 {
	return Vector3{X: v.X.Negate(), Y: v.Y.Negate(), Z: v.Z.Negate()}
}

// Dot returns the lane-wise dot product.
func Dot(a, b Vector3) Float {
	var result Float
	for i := range result {
		result[i] = a.X[i]*b.X[i] + a.Y[i]*b.Y[i] + a.Z[i]*b.Z[i]
	}
	return result
}

// LengthSquared returns the lane-wise squared length.
func (v Vector3) LengthSquared() Float {
	return Dot(v, v)
}

// ReadSlot extracts one lane as a scalar vector.
func (v *Vector3) ReadSlot(lane int) mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X[lane]), float64(v.Y[lane]), float64(v.Z[lane])}
}

// WriteSlot stores a scalar vector into one lane.
func (v *Vector3) WriteSlot(lane int, s mgl64.Vec3) {
	v.X[lane] = float32(s[0])
	v.Y[lane] = float32(s[1])
	v.Z[lane] = float32(s[2])
}

// ClearLane zeroes one lane.
func (v *Vector3) ClearLane(lane int) {
	v.X[lane], v.Y[lane], v.Z[lane] = 0, 0, 0
}

// CopyLane copies sourceLane of source into lane of v.
func (v *Vector3) CopyLane(lane int, source *Vector3, sourceLane int) {
	v.X.CopyLane(lane, &source.X, sourceLane)
	v.Y.CopyLane(lane, &source.Y, sourceLane)
	v.Z.CopyLane(lane, &source.Z, sourceLane)
}
