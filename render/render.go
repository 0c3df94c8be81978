package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle, following the right hand
// rule over V[0], V[1], V[2].
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return d3.Normalize(r3.Cross(e1, e2))
}

// Degenerate returns true if two vertices of the triangle are within tol
// of each other.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}

// Renderer reads triangles into t and returns the number read. io.EOF is
// returned once no triangles remain.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

type geometryRenderer struct {
	pos  *bufgeom.Attribute
	g    *bufgeom.Geometry
	next int
	end  int
}

// NewGeometryRenderer returns a Renderer streaming the triangles of a
// triangle list geometry. The draw range, if set, limits the triangles read.
func NewGeometryRenderer(g *bufgeom.Geometry) (Renderer, error) {
	pos := g.Attribute(bufgeom.AttrPosition)
	if pos == nil {
		return nil, fmt.Errorf("geometry renderer: %w %q", bufgeom.ErrMissingAttribute, bufgeom.AttrPosition)
	}
	start, end := triangleRange(g)
	return &geometryRenderer{pos: pos, g: g, next: start, end: end}, nil
}

// triangleRange returns the triangles [start, end) of g within its draw range.
func triangleRange(g *bufgeom.Geometry) (start, end int) {
	start, end = 0, g.TriangleCount()
	if dr := g.DrawRange; dr != nil {
		start = max(start, dr.Start/3)
		end = min(end, (dr.Start+dr.Count)/3)
	}
	return start, end
}

func (r *geometryRenderer) ReadTriangles(t []Triangle3) (int, error) {
	if len(t) == 0 {
		return 0, errors.New("empty triangle buffer")
	}
	if r.next >= r.end {
		return 0, io.EOF
	}
	n := 0
	for n < len(t) && r.next < r.end {
		a, b, c := r.g.Triangle(r.next)
		t[n] = Triangle3{V: [3]r3.Vec{r.pos.Vec3(a), r.pos.Vec3(b), r.pos.Vec3(c)}}
		n++
		r.next++
	}
	return n, nil
}

// ToGeometry returns a non-indexed geometry holding model with flat
// per-face normals.
func ToGeometry(model []Triangle3) *bufgeom.Geometry {
	pos := make([]float32, 0, 9*len(model))
	normal := make([]float32, 0, 9*len(model))
	for _, t := range model {
		n := t.Normal()
		for _, v := range t.V {
			pos = append(pos, float32(v.X), float32(v.Y), float32(v.Z))
			normal = append(normal, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	g := bufgeom.New()
	g.SetAttribute(bufgeom.AttrPosition, bufgeom.NewFloat32Attribute(pos, 3))
	g.SetAttribute(bufgeom.AttrNormal, bufgeom.NewFloat32Attribute(normal, 3))
	return g
}
