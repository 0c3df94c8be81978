package bufgeom

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMergeTolerance is the attribute tolerance used by MergeVertices
// when called with a non-positive tolerance.
const DefaultMergeTolerance = 1e-4

// MergeVertices returns an indexed copy of g where vertices with all
// attributes equal within tolerance share a single index. Existing index
// buffers are optimized. Values are compared after truncating them to the
// number of decimals implied by tolerance.
func MergeVertices(g *Geometry, tolerance float64) (*Geometry, error) {
	if tolerance <= 0 {
		tolerance = DefaultMergeTolerance
	}
	tolerance = math.Max(tolerance, 0x1p-52)
	pos := g.Attributes[AttrPosition]
	if pos == nil {
		return nil, fmt.Errorf("merge vertices: %w %q", ErrMissingAttribute, AttrPosition)
	}
	vertexCount := pos.Count()
	if g.Index != nil {
		vertexCount = g.Index.Count()
	}
	shift := math.Pow(10, math.Log10(1/tolerance))

	names := g.AttributeNames()
	olds := make([]*Attribute, len(names))
	news := make([]*Attribute, len(names))
	morphNews := make([][]*Attribute, len(names))
	for i, name := range names {
		a := g.Attributes[name]
		olds[i] = a
		news[i] = &Attribute{Array: a.Array.New(0), ItemSize: a.ItemSize, Normalized: a.Normalized}
		for _, m := range g.MorphAttributes[name] {
			morphNews[i] = append(morphNews[i], &Attribute{Array: m.Array.New(0), ItemSize: m.ItemSize, Normalized: m.Normalized})
		}
	}

	hashToIndex := make(map[string]int)
	newIndices := make([]int, 0, vertexCount)
	var hash []byte
	next := 0
	for i := 0; i < vertexCount; i++ {
		index := i
		if g.Index != nil {
			index = g.Index.X(i)
		}
		hash = hash[:0]
		for _, a := range olds {
			for c := 0; c < a.ItemSize; c++ {
				hash = strconv.AppendInt(hash, int64(a.Component(index, c)*shift), 10)
				hash = append(hash, ',')
			}
		}
		if existing, ok := hashToIndex[string(hash)]; ok {
			newIndices = append(newIndices, existing)
			continue
		}
		for j, a := range olds {
			news[j].Array = news[j].Array.Append(itemOf(a, index))
			morphs := g.MorphAttributes[names[j]]
			for m, morph := range morphs {
				morphNews[j][m].Array = morphNews[j][m].Array.Append(itemOf(morph, index))
			}
		}
		hashToIndex[string(hash)] = next
		newIndices = append(newIndices, next)
		next++
	}

	result := g.Clone()
	for j, name := range names {
		result.SetAttribute(name, news[j])
		if len(morphNews[j]) > 0 {
			result.MorphAttributes[name] = morphNews[j]
		}
	}
	result.SetIndex(newIndices)
	return result, nil
}

// itemOf returns a single item of a as an array of the same kind.
func itemOf(a *Attribute, i int) Array {
	item := a.Array.New(a.ItemSize)
	for c := 0; c < a.ItemSize; c++ {
		item.SetAt(c, a.Component(i, c))
	}
	return item
}

// DrawMode is the primitive assembly mode of a triangle geometry.
type DrawMode uint8

const (
	TrianglesDrawMode DrawMode = iota
	TriangleStripDrawMode
	TriangleFanDrawMode
)

func (m DrawMode) String() string {
	switch m {
	case TrianglesDrawMode:
		return "triangles"
	case TriangleStripDrawMode:
		return "triangle strip"
	case TriangleFanDrawMode:
		return "triangle fan"
	}
	return "DrawMode(" + strconv.Itoa(int(m)) + ")"
}

// ToTrianglesDrawMode converts a triangle strip or fan geometry into a
// triangle list geometry. Non-indexed input is indexed sequentially first.
// A geometry already in triangles mode is returned as is.
func ToTrianglesDrawMode(g *Geometry, mode DrawMode) (*Geometry, error) {
	switch mode {
	case TrianglesDrawMode:
		slog.Warn("geometry already defined as triangles", slog.String("func", "ToTrianglesDrawMode"))
		return g, nil
	case TriangleStripDrawMode, TriangleFanDrawMode:
	default:
		return nil, fmt.Errorf("to triangles draw mode: unknown draw mode %s", mode)
	}
	idx := g.Indices()
	if idx == nil {
		if g.Attributes[AttrPosition] == nil {
			return nil, fmt.Errorf("to triangles draw mode: %w %q", ErrMissingAttribute, AttrPosition)
		}
		idx = make([]int, g.VertexCount())
		for i := range idx {
			idx[i] = i
		}
	}
	numTriangles := len(idx) - 2
	if numTriangles < 0 {
		numTriangles = 0
	}
	newIndices := make([]int, 0, 3*numTriangles)
	if mode == TriangleFanDrawMode {
		for i := 1; i <= numTriangles; i++ {
			newIndices = append(newIndices, idx[0], idx[i], idx[i+1])
		}
	} else {
		for i := 0; i < numTriangles; i++ {
			if i%2 == 0 {
				newIndices = append(newIndices, idx[i], idx[i+1], idx[i+2])
			} else {
				newIndices = append(newIndices, idx[i+2], idx[i+1], idx[i])
			}
		}
	}
	result := g.Clone()
	result.SetIndex(newIndices)
	result.ClearGroups()
	return result, nil
}

// MorphedAttributes holds the original position and normal attributes
// of a geometry and their counterparts with morph targets applied.
type MorphedAttributes struct {
	Position        *Attribute
	Normal          *Attribute
	MorphedPosition *Attribute
	MorphedNormal   *Attribute
}

// ComputeMorphedAttributes applies the morph target influences to the
// position and normal attributes of g within its draw range. Influence i
// weights the i'th morph target. Normals are only computed when g has them.
func ComputeMorphedAttributes(g *Geometry, influences []float64) (MorphedAttributes, error) {
	pos := g.Attributes[AttrPosition]
	if pos == nil {
		return MorphedAttributes{}, fmt.Errorf("compute morphed attributes: %w %q", ErrMissingAttribute, AttrPosition)
	}
	normal := g.Attributes[AttrNormal]
	res := MorphedAttributes{
		Position:        pos,
		Normal:          normal,
		MorphedPosition: NewAttribute(make(Float32Array, pos.Count()*3), 3),
	}
	if normal != nil {
		res.MorphedNormal = NewAttribute(make(Float32Array, normal.Count()*3), 3)
	}
	n := pos.Count()
	if g.Index != nil {
		n = g.Index.Count()
	}
	start, end := 0, n
	if dr := g.DrawRange; dr != nil {
		start = max(0, dr.Start)
		end = min(n, dr.Start+dr.Count)
	}
	vertex := func(j int) int {
		if g.Index != nil {
			return g.Index.X(j)
		}
		return j
	}
	for i := start; i+2 < end; i += 3 {
		a, b, c := vertex(i), vertex(i+1), vertex(i+2)
		morphTriangle(res.MorphedPosition, pos, g.MorphAttributes[AttrPosition], g.MorphTargetsRelative, influences, a, b, c)
		if normal != nil {
			morphTriangle(res.MorphedNormal, normal, g.MorphAttributes[AttrNormal], g.MorphTargetsRelative, influences, a, b, c)
		}
	}
	return res, nil
}

func morphTriangle(dst, attr *Attribute, morphs []*Attribute, relative bool, influences []float64, a, b, c int) {
	for _, vi := range [3]int{a, b, c} {
		v := attr.Vec3(vi)
		var delta r3.Vec
		for m, morph := range morphs {
			if m >= len(influences) || influences[m] == 0 {
				continue
			}
			mv := morph.Vec3(vi)
			if !relative {
				mv = r3.Sub(mv, v)
			}
			delta = r3.Add(delta, r3.Scale(influences[m], mv))
		}
		dst.SetVec3(vi, r3.Add(v, delta))
	}
}

// ComputeVertexBarycentricCoordinates sets the barycentric attribute of a
// non-indexed geometry so that the corners of each triangle read (1,0,0),
// (0,1,0) and (0,0,1).
func ComputeVertexBarycentricCoordinates(g *Geometry) error {
	if g.Index != nil {
		return fmt.Errorf("barycentric coordinates: %w: convert to non-indexed first", ErrIndexed)
	}
	pos := g.Attributes[AttrPosition]
	if pos == nil {
		return fmt.Errorf("barycentric coordinates: %w %q", ErrMissingAttribute, AttrPosition)
	}
	bar := g.Attributes[AttrBarycentric]
	if bar == nil || bar.ItemSize != 3 || bar.Count() != pos.Count() {
		bar = NewAttribute(make(Float32Array, pos.Count()*3), 3)
		g.SetAttribute(AttrBarycentric, bar)
	}
	for k := 0; k < bar.Count(); k++ {
		var v r3.Vec
		switch k % 3 {
		case 0:
			v.X = 1
		case 1:
			v.Y = 1
		case 2:
			v.Z = 1
		}
		bar.SetVec3(k, v)
	}
	return nil
}
