// Package wide provides lane-parallel math types for bundled constraint solving.
//
// Every type stores [Width] independent values in Structure-of-Arrays layout.
// Operations are simple loops over fixed-size arrays so the Go compiler can
// auto-vectorize them, and each lane's result depends only on that lane's
// inputs. Inert padding lanes therefore never influence active lanes.
//
// # Wide Types
//
//   - [Float]: Width float32 scalars
//   - [Vector3]: Width 3D vectors (X, Y, Z as separate Floats)
//   - [Quaternion]: Width unit quaternions
//   - [Symmetric3x3]: Width symmetric 3x3 tensors (lower triangle)
//
// # Aliasing
//
// Functions named TransformWithoutOverlap write through an out pointer that
// must not alias any input. They are straight-line code that reads inputs
// after partially writing the output.
//
// # Scalar Access
//
// [Vector3.ReadSlot] and [Vector3.WriteSlot] (and the equivalents on the other
// types) move single lanes in and out as mgl64 values for the user-facing
// description API.
package wide
