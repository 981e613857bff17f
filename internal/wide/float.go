package wide

import "math"

// Width is the number of lanes in every wide type. Fixed at build time.
const Width = 8

// Float represents Width float32 values processed in lock step.
type Float [Width]float32

// Splat creates a Float with all lanes set to n.
func Splat(n float32) Float {
	var result Float
	for i := range result {
		result[i] = n
	}
	return result
}

// Add performs lane-wise addition.
func (v Float) Add(other Float) Float {
	var result Float
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

// Sub performs lane-wise subtraction.
func (v Float) Sub(other Float) Float {
	var result Float
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result
}

// Mul performs lane-wise multiplication.
func (v Float) Mul(other Float) Float {
	var result Float
	for i := range v {
		result[i] = v[i] * other[i]
	}
	return result
}

// Div performs lane-wise division.
// Division by zero follows IEEE 754; callers guard denominators with [Float.SafeReciprocal].
func (v Float) Div(other Float) Float {
	var result Float
	for i := range v {
		result[i] = v[i] / other[i]
	}
	return result
}

// Scale multiplies every lane by s.
func (v Float) Scale(s float32) Float {
	var result Float
	for i := range v {
		result[i] = v[i] * s
	}
	return result
}

// Negate flips the sign of every lane.
func (v Float) Negate() Float {
	var result Float
	for i := range v {
		result[i] = -v[i]
	}
	return result
}

// Min returns the lane-wise minimum.
func (v Float) Min(other Float) Float {
	var result Float
	for i := range v {
		result[i] = min(v[i], other[i])
	}
	return result
}

// Max returns the lane-wise maximum.
func (v Float) Max(other Float) Float {
	var result Float
	for i := range v {
		result[i] = max(v[i], other[i])
	}
	return result
}

// Clamp bounds each lane into [lo[i], hi[i]].
func (v Float) Clamp(lo, hi Float) Float {
	var result Float
	for i := range v {
		result[i] = min(max(v[i], lo[i]), hi[i])
	}
	return result
}

// SafeReciprocal returns 1/v per lane, or 0 for lanes with
// |v| <= epsilon*scale. scale is the magnitude v is measured against, so the
// cutoff follows the lane's units. A lane with zero scale is always 0.
func (v Float) SafeReciprocal(scale Float, epsilon float32) Float {
	var result Float
	for i := range v {
		limit := epsilon * scale[i]
		if v[i] > limit || v[i] < -limit {
			result[i] = 1 / v[i]
		}
	}
	return result
}

// Select returns a where mask lane is set, b otherwise.
func Select(mask Mask, a, b Float) Float {
	var result Float
	for i := range result {
		if mask[i] {
			result[i] = a[i]
		} else {
			result[i] = b[i]
		}
	}
	return result
}

// Mask marks lanes. Used to separate active lanes from padding.
type Mask [Width]bool

// ActiveMask returns a mask with the first count lanes set.
func ActiveMask(count int) Mask {
	var m Mask
	for i := 0; i < count && i < Width; i++ {
		m[i] = true
	}
	return m
}

// HasNaN reports whether any lane is NaN or infinite.
func (v Float) HasNaN() bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}

// ClearLane zeroes one lane.
func (v *Float) ClearLane(lane int) {
	v[lane] = 0
}

// CopyLane copies sourceLane of source into lane of v without conversion.
func (v *Float) CopyLane(lane int, source *Float, sourceLane int) {
	v[lane] = source[sourceLane]
}
