package must3

import (
	"math"

	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultRadius   = 1
	defaultSegments = 8
)

// RoundedCube returns a sphere built by projecting the vertices of a
// subdivided unit cube onto the sphere of the given radius.
// A zero radius or zero segments select the defaults 1 and 8.
func RoundedCube(radius float64, segments int) *bufgeom.Geometry {
	return cubeSphere(radius, segments, func(v r3.Vec) r3.Vec {
		return d3.Normalize(v)
	})
}

// SpherifiedCube returns a sphere built from a subdivided cube with the
// spherified cube mapping, which spreads vertices more evenly than
// normalization.
// A zero radius or zero segments select the defaults 1 and 8.
func SpherifiedCube(radius float64, segments int) *bufgeom.Geometry {
	return cubeSphere(radius, segments, spherify)
}

func cubeSphere(radius float64, segments int, project func(r3.Vec) r3.Vec) *bufgeom.Geometry {
	if radius < 0 {
		panic("radius < 0")
	}
	if segments < 0 {
		panic("segments < 0")
	}
	if radius == 0 {
		radius = defaultRadius
	}
	if segments == 0 {
		segments = defaultSegments
	}
	cube := Box(1, 1, 1, segments, segments, segments)
	pos := cube.Attribute(bufgeom.AttrPosition)
	n := pos.Count()
	positions := make([]float32, 3*n)
	normals := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		v := r3.Scale(radius, project(pos.Vec3(i)))
		d3.PutFloat32(positions[3*i:], v)
		d3.PutFloat32(normals[3*i:], d3.Normalize(v))
	}
	g := bufgeom.New()
	g.Index = cube.Index
	g.SetAttribute(bufgeom.AttrPosition, bufgeom.NewFloat32Attribute(positions, 3))
	g.SetAttribute(bufgeom.AttrNormal, bufgeom.NewFloat32Attribute(normals, 3))
	g.SetAttribute(bufgeom.AttrUV, cube.Attribute(bufgeom.AttrUV))
	return g
}

// spherify maps a point of the unit cube centered at the origin onto the
// unit sphere.
func spherify(v r3.Vec) r3.Vec {
	v = r3.Scale(2, v)
	x2, y2, z2 := v.X*v.X, v.Y*v.Y, v.Z*v.Z
	return r3.Vec{
		X: v.X * math.Sqrt(1-0.5*(y2+z2)+y2*z2/3),
		Y: v.Y * math.Sqrt(1-0.5*(z2+x2)+z2*x2/3),
		Z: v.Z * math.Sqrt(1-0.5*(x2+y2)+x2*y2/3),
	}
}
