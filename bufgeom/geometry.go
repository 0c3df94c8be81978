package bufgeom

import (
	"errors"
	"fmt"
	"sort"

	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Standard attribute names.
const (
	AttrPosition    = "position"
	AttrNormal      = "normal"
	AttrUV          = "uv"
	AttrBarycentric = "barycentric"
)

var (
	// ErrNotIndexed is returned by operations that require an index buffer.
	ErrNotIndexed = errors.New("geometry is not indexed")
	// ErrIndexed is returned by operations that require a non-indexed geometry.
	ErrIndexed = errors.New("geometry is indexed")
	// ErrMissingAttribute is returned when a required attribute is absent.
	ErrMissingAttribute = errors.New("missing attribute")
	// ErrIncompatible is returned when attributes or geometries cannot be combined.
	ErrIncompatible = errors.New("incompatible attributes")
)

// Group is a range of the index (or vertex) buffer rendered with a single material.
type Group struct {
	Start         int
	Count         int
	MaterialIndex int
}

// Range limits the index (or vertex) range considered for drawing.
type Range struct {
	Start int
	Count int
}

// Geometry is a triangle mesh stored as named per-vertex attributes
// with an optional index buffer. Every three consecutive indices
// (or vertices when not indexed) form a triangle.
type Geometry struct {
	// Index is nil for non-indexed geometries. When set it has item size 1
	// and holds a Uint16Array or Uint32Array.
	Index      *Attribute
	Attributes map[string]*Attribute
	// MorphAttributes holds morph targets per attribute name.
	MorphAttributes      map[string][]*Attribute
	MorphTargetsRelative bool
	Groups               []Group
	// DrawRange limits the drawn range. nil draws the whole geometry.
	DrawRange *Range
	UserData  map[string]any
}

// New returns an empty geometry.
func New() *Geometry {
	return &Geometry{
		Attributes:      make(map[string]*Attribute),
		MorphAttributes: make(map[string][]*Attribute),
		UserData:        make(map[string]any),
	}
}

// SetIndex sets the index buffer from idx. A Uint16 buffer is used
// unless an index is too large for it.
func (g *Geometry) SetIndex(idx []int) {
	if idx == nil {
		g.Index = nil
		return
	}
	if maxIndex(idx) >= 65535 {
		arr := make(Uint32Array, len(idx))
		for i, v := range idx {
			arr[i] = uint32(v)
		}
		g.Index = NewAttribute(arr, 1)
		return
	}
	arr := make(Uint16Array, len(idx))
	for i, v := range idx {
		arr[i] = uint16(v)
	}
	g.Index = NewAttribute(arr, 1)
}

func maxIndex(idx []int) int {
	m := -1
	for _, v := range idx {
		if v > m {
			m = v
		}
	}
	return m
}

// Indices returns a copy of the index buffer as ints. It returns nil
// for non-indexed geometries.
func (g *Geometry) Indices() []int {
	if g.Index == nil {
		return nil
	}
	idx := make([]int, g.Index.Count())
	for i := range idx {
		idx[i] = g.Index.X(i)
	}
	return idx
}

// Attribute returns the named attribute or nil.
func (g *Geometry) Attribute(name string) *Attribute {
	return g.Attributes[name]
}

func (g *Geometry) SetAttribute(name string, a *Attribute) {
	if g.Attributes == nil {
		g.Attributes = make(map[string]*Attribute)
	}
	g.Attributes[name] = a
}

func (g *Geometry) DeleteAttribute(name string) {
	delete(g.Attributes, name)
}

// AttributeNames returns the attribute names in sorted order.
func (g *Geometry) AttributeNames() []string {
	return sortedKeys(g.Attributes)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Geometry) AddGroup(start, count, materialIndex int) {
	g.Groups = append(g.Groups, Group{Start: start, Count: count, MaterialIndex: materialIndex})
}

func (g *Geometry) ClearGroups() { g.Groups = g.Groups[:0] }

// VertexCount returns the number of items in the position attribute.
func (g *Geometry) VertexCount() int {
	pos := g.Attributes[AttrPosition]
	if pos == nil {
		return 0
	}
	return pos.Count()
}

// TriangleCount returns the number of triangles of the geometry.
func (g *Geometry) TriangleCount() int {
	if g.Index != nil {
		return g.Index.Count() / 3
	}
	return g.VertexCount() / 3
}

// Triangle returns the vertex indices of the i'th triangle.
func (g *Geometry) Triangle(i int) (a, b, c int) {
	if g.Index != nil {
		return g.Index.X(3 * i), g.Index.X(3*i + 1), g.Index.X(3*i + 2)
	}
	return 3 * i, 3*i + 1, 3*i + 2
}

// Clone returns a deep copy of the geometry. User data values are shallow copied.
func (g *Geometry) Clone() *Geometry {
	c := New()
	c.Index = g.Index.Clone()
	for name, a := range g.Attributes {
		c.Attributes[name] = a.Clone()
	}
	for name, morphs := range g.MorphAttributes {
		cm := make([]*Attribute, len(morphs))
		for i, m := range morphs {
			cm[i] = m.Clone()
		}
		c.MorphAttributes[name] = cm
	}
	c.MorphTargetsRelative = g.MorphTargetsRelative
	c.Groups = append(c.Groups, g.Groups...)
	if g.DrawRange != nil {
		dr := *g.DrawRange
		c.DrawRange = &dr
	}
	for k, v := range g.UserData {
		c.UserData[k] = v
	}
	return c
}

// ToNonIndexed returns a geometry with every indexed vertex expanded.
// A non-indexed geometry is returned as a clone.
func (g *Geometry) ToNonIndexed() *Geometry {
	if g.Index == nil {
		return g.Clone()
	}
	idx := g.Indices()
	c := g.Clone()
	c.Index = nil
	for name, a := range g.Attributes {
		c.Attributes[name] = deindex(a, idx)
	}
	for name, morphs := range g.MorphAttributes {
		for i, m := range morphs {
			c.MorphAttributes[name][i] = deindex(m, idx)
		}
	}
	return c
}

func deindex(a *Attribute, idx []int) *Attribute {
	out := &Attribute{Array: a.Array.New(len(idx) * a.ItemSize), ItemSize: a.ItemSize, Normalized: a.Normalized}
	for i, src := range idx {
		out.copyItem(i, a, src)
	}
	return out
}

// ComputeVertexNormals sets the normal attribute to the area weighted
// average of the face normals around each vertex. Non-indexed geometries
// get flat face normals.
func (g *Geometry) ComputeVertexNormals() error {
	pos := g.Attributes[AttrPosition]
	if pos == nil {
		return fmt.Errorf("compute vertex normals: %w %q", ErrMissingAttribute, AttrPosition)
	}
	normal := g.Attributes[AttrNormal]
	if normal == nil || normal.Count() != pos.Count() || normal.ItemSize != 3 {
		normal = NewAttribute(make(Float32Array, pos.Count()*3), 3)
		g.SetAttribute(AttrNormal, normal)
	} else {
		for i := 0; i < normal.Array.Len(); i++ {
			normal.Array.SetAt(i, 0)
		}
	}
	nt := g.TriangleCount()
	if g.Index != nil {
		acc := make([]r3.Vec, pos.Count())
		for i := 0; i < nt; i++ {
			a, b, c := g.Triangle(i)
			n := faceNormal(pos.Vec3(a), pos.Vec3(b), pos.Vec3(c))
			acc[a] = r3.Add(acc[a], n)
			acc[b] = r3.Add(acc[b], n)
			acc[c] = r3.Add(acc[c], n)
		}
		for i, n := range acc {
			normal.SetVec3(i, d3.Normalize(n))
		}
		return nil
	}
	for i := 0; i < nt; i++ {
		a, b, c := g.Triangle(i)
		n := d3.Normalize(faceNormal(pos.Vec3(a), pos.Vec3(b), pos.Vec3(c)))
		normal.SetVec3(a, n)
		normal.SetVec3(b, n)
		normal.SetVec3(c, n)
	}
	return nil
}

// faceNormal returns the unnormalized normal (C-B)x(A-B) of triangle ABC.
func faceNormal(a, b, c r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(c, b), r3.Sub(a, b))
}

// BoundingBox returns the axis aligned box enclosing all positions.
func (g *Geometry) BoundingBox() (r3.Box, error) {
	pos := g.Attributes[AttrPosition]
	if pos == nil {
		return r3.Box{}, fmt.Errorf("bounding box: %w %q", ErrMissingAttribute, AttrPosition)
	}
	bb := d3.EmptyBox()
	for i := 0; i < pos.Count(); i++ {
		bb = bb.Include(pos.Vec3(i))
	}
	return r3.Box(bb), nil
}
