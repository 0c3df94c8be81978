package form3

import (
	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/form3/must3"
)

// Box returns an indexed box geometry with the given dimensions and
// number of segments per axis.
func Box(width, height, depth float64, widthSegs, heightSegs, depthSegs int) (g *bufgeom.Geometry, err error) {
	defer recoverShape(&err)
	return must3.Box(width, height, depth, widthSegs, heightSegs, depthSegs), err
}

// RoundedCube returns a sphere made of a normalized subdivided cube.
// Zero arguments select a radius of 1 and 8 segments.
func RoundedCube(radius float64, segments int) (g *bufgeom.Geometry, err error) {
	defer recoverShape(&err)
	return must3.RoundedCube(radius, segments), err
}

// SpherifiedCube returns a sphere made of a spherified subdivided cube.
// Zero arguments select a radius of 1 and 8 segments.
func SpherifiedCube(radius float64, segments int) (g *bufgeom.Geometry, err error) {
	defer recoverShape(&err)
	return must3.SpherifiedCube(radius, segments), err
}

// IcosahedronSphere returns a subdivided icosahedron projected onto a sphere.
func IcosahedronSphere(radius float64, detail int) (g *bufgeom.Geometry, err error) {
	defer recoverShape(&err)
	return must3.IcosahedronSphere(radius, detail), err
}
