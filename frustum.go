package threext

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/form3/must3"
	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateCapsule is returned when a capsule cannot be converted
// to a cone frustum.
var ErrDegenerateCapsule = errors.New("degenerate capsule")

// DefaultMinScale is the downscaling factor used by
// ComputeOptimisedDownscalingBoundingCube for non-positive minScale.
const DefaultMinScale = 0.5

// ConeFrustum is a cone truncated by two planes orthogonal to its axis.
// Radius0 is the radius at Base and Radius1 the radius at Base+Height*Axis.
type ConeFrustum struct {
	Base    r3.Vec
	Axis    r3.Vec
	Height  float64
	Radius0 float64
	Radius1 float64
}

// NewConeFrustum returns a frustum with a normalized copy of axis.
// A zero axis is replaced by +Y.
func NewConeFrustum(base, axis r3.Vec, height, radius0, radius1 float64) ConeFrustum {
	if r3.Norm2(axis) == 0 {
		axis = r3.Vec{Y: 1}
	}
	return ConeFrustum{
		Base:    base,
		Axis:    r3.Unit(axis),
		Height:  height,
		Radius0: radius0,
		Radius1: radius1,
	}
}

// FromCapsule returns the frustum whose lateral surface is tangent to the
// spheres (center0, radius0) and (center1, radius1). The returned frustum
// always has Radius0 <= Radius1.
func FromCapsule(center0 r3.Vec, radius0 float64, center1 r3.Vec, radius1 float64) (ConeFrustum, error) {
	if radius0 > radius1 {
		return FromCapsule(center1, radius1, center0, radius0)
	}
	axis := r3.Sub(center1, center0)
	length := r3.Norm(axis)
	if length == 0 {
		return ConeFrustum{}, fmt.Errorf("%w: capsule height must not be zero", ErrDegenerateCapsule)
	}
	sinTheta := (radius1 - radius0) / length
	if sinTheta > 1 {
		return ConeFrustum{}, fmt.Errorf("%w: sphere of radius %g contains the other", ErrDegenerateCapsule, radius1)
	}
	axis = r3.Scale(1/length, axis)
	cosTheta := math.Sqrt(1 - sinTheta*sinTheta)
	return ConeFrustum{
		Base:    r3.Add(center0, r3.Scale(-sinTheta*radius0, axis)),
		Axis:    axis,
		Height:  length + sinTheta*(radius0-radius1),
		Radius0: radius0 * cosTheta,
		Radius1: radius1 * cosTheta,
	}, nil
}

// OrthogonalProject projects p onto the frustum axis along the direction
// orthogonal to the lateral surface of the frustum.
func (f ConeFrustum) OrthogonalProject(p r3.Vec) r3.Vec {
	// Work in the plane spanned by the axis and p, with p at positive y.
	baseToP := r3.Sub(p, f.Base)
	x := r3.Dot(baseToP, f.Axis)
	ySq := r3.Norm2(baseToP) - x*x
	y := 0.0
	if ySq > 0 {
		y = math.Sqrt(ySq)
	}
	t := x - y*(f.Radius0-f.Radius1)/f.Height
	return r3.Add(f.Base, r3.Scale(t, f.Axis))
}

// Empty returns true if the frustum has no volume.
func (f ConeFrustum) Empty() bool {
	return f.Height == 0 || (f.Radius0 == 0 && f.Radius1 == 0)
}

// Equal returns true if all frustum parameters are exactly equal.
func (f ConeFrustum) Equal(o ConeFrustum) bool {
	return f.Base == o.Base && f.Axis == o.Axis && f.Height == o.Height &&
		f.Radius0 == o.Radius0 && f.Radius1 == o.Radius1
}

// Top returns the center of the Radius1 end disc.
func (f ConeFrustum) Top() r3.Vec {
	return r3.Add(f.Base, r3.Scale(f.Height, f.Axis))
}

// BoundingBox returns the axis aligned box enclosing both end discs.
func (f ConeFrustum) BoundingBox() r3.Box {
	bb := discBox(f.Base, f.Axis, f.Radius0)
	return r3.Box(bb.Extend(discBox(f.Top(), f.Axis, f.Radius1)))
}

// ComputeOptimisedBoundingCube returns the 36 vertices (12 triangles) of a
// box enclosing the frustum, oriented along its axis, as flat xyz triplets
// relative to origin.
//
// Deprecated: Use ComputeOptimisedDownscalingBoundingCube which fits
// the frustum more tightly.
func (f ConeFrustum) ComputeOptimisedBoundingCube(origin r3.Vec) []float32 {
	positions := unitCubeTriangles()
	r := math.Max(f.Radius0, f.Radius1)
	t := d3.ScaleTransform(r3.Vec{X: r, Y: f.Height / 2, Z: r})
	if rot, ok := d3.RotationBetween(r3.Vec{Y: 1}, f.Axis); ok {
		t = rot.Mul(t)
	}
	center := r3.Add(f.Base, r3.Scale(f.Height/2, f.Axis))
	t = t.Translate(r3.Sub(center, origin))
	t.ApplyPositions(positions)
	return positions
}

// unitCubeTriangles returns the non-indexed triangles of the 2x2x2 box
// centered at the origin.
func unitCubeTriangles() []float32 {
	box := must3.Box(2, 2, 2, 1, 1, 1).ToNonIndexed()
	return box.Attribute(bufgeom.AttrPosition).Array.(bufgeom.Float32Array)
}

var (
	// Corners of the three rings of the downscaling cube: the small
	// face, the intermediate ring and the big face.
	downscalingRings = [12]r3.Vec{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1},
		{X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
		{X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
	}
	downscalingIndices = [90]int{
		// Small face.
		0, 1, 3, 0, 3, 2,
		// Small face to intermediate ring.
		6, 4, 0, 6, 0, 2,
		7, 6, 2, 7, 2, 3,
		5, 7, 3, 5, 3, 1,
		4, 5, 1, 4, 1, 0,
		// Intermediate ring to big face.
		10, 8, 4, 10, 4, 6,
		11, 10, 6, 11, 6, 7,
		9, 11, 7, 9, 7, 5,
		8, 9, 5, 8, 5, 4,
		// Big face.
		9, 8, 10, 9, 10, 11,
	}
)

// ComputeOptimisedDownscalingBoundingCube returns 30 triangles (270 floats
// of flat xyz triplets) of a hull enclosing the frustum of the capsule
// (center0, radius0, center1, radius1) and all its downscaled versions with
// radii scaled by a factor down to minScale. The hull is expressed relative
// to origin; a nil origin leaves it centered at the coordinate origin.
// A non-positive minScale selects DefaultMinScale.
func ComputeOptimisedDownscalingBoundingCube(center0 r3.Vec, radius0 float64, center1 r3.Vec, radius1 float64, origin *r3.Vec, minScale float64) ([]float32, error) {
	if minScale <= 0 {
		minScale = DefaultMinScale
	}
	if radius0 > radius1 {
		return ComputeOptimisedDownscalingBoundingCube(center1, radius1, center0, radius0, origin, minScale)
	}
	axis := r3.Sub(center1, center0)
	length := r3.Norm(axis)
	if length == 0 {
		return nil, fmt.Errorf("%w: capsule height must not be zero", ErrDegenerateCapsule)
	}
	sinTheta := (radius1 - radius0) / length
	switch {
	case math.Abs(sinTheta) >= 0.9999/minScale:
		return collapsedCube(r3.Scale(0.5, r3.Add(center0, center1))), nil
	case math.Abs(sinTheta) > 1:
		return ComputeOptimisedDownscalingBoundingCube(center0, minScale*radius0, center1, minScale*radius1, origin, 1)
	}
	cosTheta := math.Sqrt(1 - sinTheta*sinTheta)
	height := length + sinTheta*(radius0-minScale*minScale*radius1)
	if !(height > 0) {
		return collapsedCube(r3.Scale(0.5, r3.Add(center0, center1))), nil
	}
	unscaledHeight := length + sinTheta*(radius0-radius1)
	axis = r3.Scale(1/length, axis)
	base := r3.Add(center0, r3.Scale(-sinTheta*radius0, axis))
	r0 := radius0 * cosTheta
	r1 := radius1 * cosTheta

	rings := downscalingRings
	small, big := 1.0, 1.0
	if r1 > 0 {
		small = r0 / r1
		big = math.Sqrt(1-minScale*minScale*sinTheta*sinTheta) * radius1 * minScale / r1
	}
	midY := 2*unscaledHeight/height - 1
	for i := 0; i < 4; i++ {
		rings[i].X *= small
		rings[i].Z *= small
		rings[i+4].Y = midY
		rings[i+8].X *= big
		rings[i+8].Z *= big
	}

	t := d3.ScaleTransform(r3.Vec{X: r1, Y: height / 2, Z: r1})
	if rot, ok := d3.RotationBetween(r3.Vec{Y: 1}, axis); ok {
		t = rot.Mul(t)
	}
	if origin != nil {
		center := r3.Add(base, r3.Scale(height/2, axis))
		t = t.Translate(r3.Sub(center, *origin))
	}
	positions := make([]float32, 3*len(downscalingIndices))
	for i, idx := range downscalingIndices {
		d3.PutFloat32(positions[3*i:], t.Transform(rings[idx]))
	}
	return positions, nil
}

// collapsedCube returns the downscaling cube with every vertex at p.
func collapsedCube(p r3.Vec) []float32 {
	positions := make([]float32, 3*len(downscalingIndices))
	for i := range downscalingIndices {
		d3.PutFloat32(positions[3*i:], p)
	}
	return positions
}
