package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector routines shared by the geometry packages.

// Elem returns a vector with all components set to v.
func Elem(v float64) r3.Vec {
	return r3.Vec{X: v, Y: v, Z: v}
}

// EqualWithin reports whether each component of a and b differ by at most tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Normalize returns the unit vector of a. Unlike r3.Unit the
// zero vector is returned unchanged instead of NaN components.
func Normalize(a r3.Vec) r3.Vec {
	n := r3.Norm(a)
	if n == 0 {
		return a
	}
	return r3.Scale(1/n, a)
}

// AngleTo returns the angle in radians between a and b.
// It returns π/2 if either vector has zero length.
func AngleTo(a, b r3.Vec) float64 {
	denom := math.Sqrt(r3.Norm2(a) * r3.Norm2(b))
	if denom == 0 {
		return math.Pi / 2
	}
	return math.Acos(clamp(r3.Dot(a, b)/denom, -1, 1))
}

// Clamp x between a and b, assume a <= b
func clamp(x, a, b float64) float64 {
	return math.Min(b, math.Max(x, a))
}

// FromFloat32 reads a vector from the first three elements of f.
func FromFloat32(f []float32) r3.Vec {
	_ = f[2]
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

// PutFloat32 writes v into the first three elements of dst.
func PutFloat32(dst []float32, v r3.Vec) {
	_ = dst[2]
	dst[0] = float32(v.X)
	dst[1] = float32(v.Y)
	dst[2] = float32(v.Z)
}
