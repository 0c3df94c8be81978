package threext

import (
	"errors"
	"math"

	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cone is a single sided truncated cone without base. It is made of the
// points X such that the angle between Axis and X-V is Theta and whose
// distance to V along Axis lies in (Inf, Sup).
type Cone struct {
	// V is the apex.
	V r3.Vec
	// Axis is the unit direction the cone opens towards.
	Axis  r3.Vec
	Theta float64
	Inf   float64
	Sup   float64

	// cosTheta caches the cosine of cosFor.
	cosTheta float64
	cosFor   float64
}

// NewCone returns a cone with apex v. A zero sup is interpreted as +Inf.
func NewCone(v, axis r3.Vec, theta, inf, sup float64) Cone {
	var c Cone
	c.Set(v, axis, theta, inf, sup)
	return c
}

// Set sets all cone parameters. A zero sup is interpreted as +Inf.
func (c *Cone) Set(v, axis r3.Vec, theta, inf, sup float64) {
	if sup == 0 {
		sup = math.Inf(1)
	}
	*c = Cone{V: v, Axis: axis, Theta: theta, Inf: inf, Sup: sup, cosTheta: math.Cos(theta), cosFor: theta}
}

// cos returns the cosine of Theta. The cached value is only used while
// Theta is unchanged since the last call to Set.
func (c Cone) cos() float64 {
	if c.cosTheta == 0 || c.cosFor != c.Theta {
		return math.Cos(c.Theta)
	}
	return c.cosTheta
}

// Empty returns true if the cone contains no point.
func (c Cone) Empty() bool {
	return c.Theta <= 0 || c.Inf >= c.Sup
}

// Equal returns true if all cone parameters are exactly equal.
func (c Cone) Equal(o Cone) bool {
	return c.V == o.V && c.Axis == o.Axis && c.Theta == o.Theta &&
		c.Inf == o.Inf && c.Sup == o.Sup
}

// BoundingBox returns the axis aligned box enclosing the cone. It fails
// for unbounded cones and for cones opening wider than a half space.
func (c Cone) BoundingBox() (r3.Box, error) {
	switch {
	case c.Empty():
		return r3.Box{}, errors.New("empty cone")
	case math.IsInf(c.Sup, 1):
		return r3.Box{}, errors.New("unbounded cone")
	case c.Theta >= math.Pi/2:
		return r3.Box{}, errors.New("cone angle must be less than π/2 to be bounded")
	}
	tan := math.Tan(c.Theta)
	inf := math.Max(c.Inf, 0)
	bb := discBox(r3.Add(c.V, r3.Scale(inf, c.Axis)), c.Axis, inf*tan)
	bb = bb.Extend(discBox(r3.Add(c.V, r3.Scale(c.Sup, c.Axis)), c.Axis, c.Sup*tan))
	return r3.Box(bb), nil
}

// discBox returns the bounding box of a disc of the given center,
// unit normal and radius.
func discBox(center, normal r3.Vec, radius float64) d3.Box {
	ext := r3.Scale(radius, r3.Vec{
		X: math.Sqrt(math.Max(0, 1-normal.X*normal.X)),
		Y: math.Sqrt(math.Max(0, 1-normal.Y*normal.Y)),
		Z: math.Sqrt(math.Max(0, 1-normal.Z*normal.Z)),
	})
	return d3.Box{Min: r3.Sub(center, ext), Max: r3.Add(center, ext)}
}
