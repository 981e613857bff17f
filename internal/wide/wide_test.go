package wide

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tolerance = 1e-5

func near(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestSplat(t *testing.T) {
	tests := []struct {
		name  string
		value float32
	}{
		{"zero", 0.0},
		{"one", 1.0},
		{"negative", -2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Splat(tt.value)
			for i, v := range result {
				if v != tt.value {
					t.Errorf("lane %d = %f, want %f", i, v, tt.value)
				}
			}
		})
	}
}

func TestFloatArithmetic(t *testing.T) {
	a := Float{1, 2, 3, 4, 5, 6, 7, 8}
	b := Splat(2)

	sum := a.Add(b)
	diff := a.Sub(b)
	prod := a.Mul(b)
	quot := a.Div(b)

	for i := range a {
		if sum[i] != a[i]+2 {
			t.Errorf("add lane %d = %f", i, sum[i])
		}
		if diff[i] != a[i]-2 {
			t.Errorf("sub lane %d = %f", i, diff[i])
		}
		if prod[i] != a[i]*2 {
			t.Errorf("mul lane %d = %f", i, prod[i])
		}
		if quot[i] != a[i]/2 {
			t.Errorf("div lane %d = %f", i, quot[i])
		}
	}
}

func TestClamp(t *testing.T) {
	v := Float{-5, -1, 0, 1, 5, 10, -10, 2}
	lo := Splat(-2)
	hi := Splat(3)
	got := v.Clamp(lo, hi)
	want := Float{-2, -1, 0, 1, 3, 3, -2, 2}
	if got != want {
		t.Errorf("Clamp = %v, want %v", got, want)
	}
}

func TestSafeReciprocal(t *testing.T) {
	tiny := float32(math.Ldexp(1, -40))
	v := Float{2, 0, -4, 1e-12, 0.5, 0, tiny, 1}
	scale := Float{1, 1, 1, 1, 1, 0, tiny, 1}
	got := v.SafeReciprocal(scale, 1e-6)
	want := Float{0.5, 0, -0.25, 0, 2, 0, float32(math.Ldexp(1, 40)), 1}
	if got != want {
		t.Errorf("SafeReciprocal = %v, want %v", got, want)
	}
	if got.HasNaN() {
		t.Error("SafeReciprocal produced NaN/Inf")
	}
}

func TestMinMax(t *testing.T) {
	a := Float{-1, 2, 3, -4, 5, 0, 7, -8}
	b := Splat(0)
	if got, want := a.Max(b), (Float{0, 2, 3, 0, 5, 0, 7, 0}); got != want {
		t.Errorf("Max = %v, want %v", got, want)
	}
	if got, want := a.Min(b), (Float{-1, 0, 0, -4, 0, 0, 0, -8}); got != want {
		t.Errorf("Min = %v, want %v", got, want)
	}
}

func TestHasNaN(t *testing.T) {
	v := Splat(1)
	if v.HasNaN() {
		t.Error("finite lanes reported as NaN")
	}
	v[5] = float32(math.Inf(1))
	if !v.HasNaN() {
		t.Error("infinite lane not reported")
	}
}

func TestSelectAndMask(t *testing.T) {
	m := ActiveMask(3)
	got := Select(m, Splat(1), Splat(-1))
	for i := range got {
		want := float32(-1)
		if i < 3 {
			want = 1
		}
		if got[i] != want {
			t.Errorf("lane %d = %f, want %f", i, got[i], want)
		}
	}
}

func TestDotAndLength(t *testing.T) {
	var x, y Vector3
	for i := 0; i < Width; i++ {
		x.WriteSlot(i, mgl64.Vec3{1, 0, 0})
		y.WriteSlot(i, mgl64.Vec3{0, float64(i), 0})
	}

	if d := Dot(x, y); d != Splat(0) {
		t.Errorf("dot of orthogonal axes = %v", d)
	}
	got := y.LengthSquared()
	for i := range got {
		if got[i] != float32(i*i) {
			t.Errorf("lane %d length squared = %f", i, got[i])
		}
	}
}

func TestTrace(t *testing.T) {
	var s Symmetric3x3
	s.WriteSlot(2, mgl64.Diag3(mgl64.Vec3{1, 2, 3}))
	got := s.Trace()
	if got[2] != 6 || got[0] != 0 {
		t.Errorf("Trace = %v", got)
	}
}

func TestQuaternionTransformMatchesMgl(t *testing.T) {
	v := mgl64.Vec3{0.3, -1.2, 2.0}
	var q Quaternion
	var wv Vector3
	rotations := make([]mgl64.Quat, Width)
	for i := 0; i < Width; i++ {
		axis := mgl64.Vec3{1, float64(i), 0.5}.Normalize()
		rotations[i] = mgl64.QuatRotate(0.2*float64(i+1), axis)
		q.WriteSlot(i, rotations[i])
		wv.WriteSlot(i, v)
	}

	var out Vector3
	TransformWithoutOverlap(&wv, &q, &out)

	for i := 0; i < Width; i++ {
		want := rotations[i].Rotate(v)
		got := out.ReadSlot(i)
		for c := 0; c < 3; c++ {
			if !near(got[c], want[c]) {
				t.Errorf("lane %d component %d = %f, want %f", i, c, got[c], want[c])
			}
		}
	}
}

func TestSymmetricTransform(t *testing.T) {
	m := mgl64.Mat3FromRows(
		mgl64.Vec3{2, 0.5, 0.1},
		mgl64.Vec3{0.5, 3, 0.2},
		mgl64.Vec3{0.1, 0.2, 4},
	)
	var s Symmetric3x3
	s.WriteSlot(0, m)
	v := mgl64.Vec3{1, -1, 2}
	var wv, out Vector3
	wv.WriteSlot(0, v)
	s.TransformWithoutOverlap(&wv, &out)

	want := m.Mul3x1(v)
	got := out.ReadSlot(0)
	for c := 0; c < 3; c++ {
		if !near(got[c], want[c]) {
			t.Errorf("component %d = %f, want %f", c, got[c], want[c])
		}
	}
}

func TestRotateInverseInertia(t *testing.T) {
	local := mgl64.Diag3(mgl64.Vec3{1, 2, 3})
	rot := mgl64.QuatRotate(math.Pi/3, mgl64.Vec3{0, 0, 1})

	var s, out Symmetric3x3
	var q Quaternion
	s.WriteSlot(0, local)
	q.WriteSlot(0, rot)
	RotateInverseInertia(&s, &q, &out)

	r := rot.Mat4().Mat3()
	want := r.Mul3(local).Mul3(r.Transpose())
	got := out.ReadSlot(0)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if !near(got.At(row, col), want.At(row, col)) {
				t.Errorf("(%d,%d) = %f, want %f", row, col, got.At(row, col), want.At(row, col))
			}
		}
	}
}

func TestLaneIndependence(t *testing.T) {
	v := mgl64.Vec3{1, 2, 3}
	rot := mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0})

	var full, single Vector3
	var qFull, qSingle Quaternion
	for i := 0; i < Width; i++ {
		full.WriteSlot(i, v)
		qFull.WriteSlot(i, rot)
	}
	single.WriteSlot(0, v)
	qSingle.WriteSlot(0, rot)

	var outFull, outSingle Vector3
	TransformWithoutOverlap(&full, &qFull, &outFull)
	TransformWithoutOverlap(&single, &qSingle, &outSingle)

	if outFull.ReadSlot(0) != outSingle.ReadSlot(0) {
		t.Errorf("lane 0 differs: %v vs %v", outFull.ReadSlot(0), outSingle.ReadSlot(0))
	}
	for i := 1; i < Width; i++ {
		if outSingle.ReadSlot(i) != (mgl64.Vec3{}) {
			t.Errorf("zero-quaternion padding lane %d produced %v", i, outSingle.ReadSlot(i))
		}
	}
}
