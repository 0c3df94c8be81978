package threext

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half line starting at Origin. Intersection routines expect
// Direction to be of unit length.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// IntersectCone returns the first point where the ray hits the lateral
// surface of the single sided cone c, if any. Only hits in front of the
// ray origin (t > 0) with an axial distance strictly between c.Inf and
// c.Sup are reported.
func (r Ray) IntersectCone(c Cone) (r3.Vec, bool) {
	// A point X lies on the double sided cone when
	//  (A·(X-V))² = cos²θ |X-V|²
	// Substituting X = O + tD gives c2·t² + 2·c1·t + c0 = 0.
	cos := c.cos()
	cos2 := cos * cos
	E := r3.Sub(r.Origin, c.V)
	AdD := r3.Dot(c.Axis, r.Direction)
	AdE := r3.Dot(c.Axis, E)
	DdE := r3.Dot(r.Direction, E)
	EdE := r3.Dot(E, E)
	c2 := AdD*AdD - cos2
	c1 := AdD*AdE - cos2*DdE
	c0 := AdE*AdE - cos2*EdE

	accept := func(t float64) (r3.Vec, bool) {
		if !(t > 0) {
			return r3.Vec{}, false
		}
		p := r.At(t)
		d := r3.Dot(c.Axis, r3.Sub(p, c.V))
		return p, d > c.Inf && d < c.Sup
	}
	switch {
	case c2 != 0:
		discr := c1*c1 - c0*c2
		if discr < 0 {
			return r3.Vec{}, false
		} else if discr == 0 {
			// Tangent to the cone.
			return accept(-c1 / c2)
		}
		root := math.Sqrt(discr)
		t0 := (-c1 - root) / c2
		t1 := (-c1 + root) / c2
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if p, ok := accept(t0); ok {
			return p, true
		}
		return accept(t1)
	case c1 != 0:
		// Direction parallel to a cone generatrix.
		return accept(-c0 / (2 * c1))
	}
	// Ray contained in the cone surface or no solution.
	return r3.Vec{}, false
}

// IntersectConeFrustum returns the nearest point where the ray hits the
// lateral surface of f, if any. End caps are not considered.
func (r Ray) IntersectConeFrustum(f ConeFrustum) (r3.Vec, bool) {
	if f.Height == 0 {
		return r3.Vec{}, false
	}
	deltaR := f.Radius1 - f.Radius0
	slope := deltaR / f.Height
	rr := 1 + slope*slope
	R := f.Radius0 * slope
	D := r3.Sub(r.Origin, f.Base)
	DdA := r3.Dot(D, f.Axis)
	DdD := r3.Dot(D, D)
	VdA := r3.Dot(r.Direction, f.Axis)
	VdD := r3.Dot(r.Direction, D)
	VdV := r3.Dot(r.Direction, r.Direction)
	c0 := f.Radius0*f.Radius0 + 2*R*DdA + rr*DdA*DdA - DdD
	c1 := R*VdA + rr*DdA*VdA - VdD
	c2 := rr*VdA*VdA - VdV

	accept := func(t float64) (r3.Vec, bool) {
		if !(t >= 0) {
			return r3.Vec{}, false
		}
		u := r3.Add(D, r3.Scale(t, r.Direction))
		d := r3.Dot(f.Axis, u)
		return r3.Add(f.Base, u), d >= 0 && d <= f.Height
	}
	switch {
	case c2 != 0:
		discr := c1*c1 - c2*c0
		if discr < 0 {
			return r3.Vec{}, false
		} else if discr == 0 {
			return accept(-c1 / c2)
		}
		root := math.Sqrt(discr)
		t0 := (-c1 - root) / c2
		t1 := (-c1 + root) / c2
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if p, ok := accept(t0); ok {
			return p, true
		}
		return accept(t1)
	case c1 != 0:
		return accept(-c0 / (2 * c1))
	}
	return r3.Vec{}, false
}
