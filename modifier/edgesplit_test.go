package modifier_test

import (
	"math"
	"testing"

	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/form3/must3"
	"github.com/soypat/threext/modifier"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// mergedCube returns a cube whose 8 corners are shared by all adjacent faces.
func mergedCube(t *testing.T) *bufgeom.Geometry {
	t.Helper()
	box := must3.Box(1, 1, 1, 1, 1, 1)
	box.DeleteAttribute(bufgeom.AttrNormal)
	box.DeleteAttribute(bufgeom.AttrUV)
	cube, err := bufgeom.MergeVertices(box, 0)
	require.NoError(t, err)
	require.Equal(t, 8, cube.VertexCount())
	return cube
}

func TestEdgeSplitCube(t *testing.T) {
	cube := mergedCube(t)
	got, err := modifier.EdgeSplit(cube, math.Pi/4, true)
	require.NoError(t, err)
	// Every corner ends up with one vertex per adjacent face.
	require.Equal(t, 24, got.VertexCount())
	require.Equal(t, 36, got.Index.Count())
	require.Equal(t, bufgeom.KindUint32, got.Index.Array.Kind())
	require.Nil(t, got.Attribute(bufgeom.AttrNormal))
	requireFlatVertices(t, got)

	// Input is untouched.
	require.Equal(t, 8, cube.VertexCount())
	require.Equal(t, bufgeom.KindUint16, cube.Index.Array.Kind())

	// Triangles keep their positions.
	pos, gotPos := cube.Attribute(bufgeom.AttrPosition), got.Attribute(bufgeom.AttrPosition)
	for i := 0; i < cube.TriangleCount(); i++ {
		a, b, c := cube.Triangle(i)
		ga, gb, gc := got.Triangle(i)
		require.Equal(t, pos.Vec3(a), gotPos.Vec3(ga))
		require.Equal(t, pos.Vec3(b), gotPos.Vec3(gb))
		require.Equal(t, pos.Vec3(c), gotPos.Vec3(gc))
	}
}

func TestEdgeSplitWideAngle(t *testing.T) {
	cube := mergedCube(t)
	got, err := modifier.EdgeSplit(cube, 100*math.Pi/180, true)
	require.NoError(t, err)
	require.Equal(t, 8, got.VertexCount())
	require.Equal(t, cube.Indices(), got.Indices())
}

func TestEdgeSplitNonIndexed(t *testing.T) {
	box := must3.Box(1, 1, 1, 1, 1, 1)
	box.DeleteAttribute(bufgeom.AttrUV)
	flat := box.ToNonIndexed()
	got, err := modifier.EdgeSplit(flat, math.Pi/4, false)
	require.NoError(t, err)
	// Normals are dropped before merging, so the cube is rebuilt
	// from its 8 corners before splitting.
	require.Equal(t, 24, got.VertexCount())
	normal := got.Attribute(bufgeom.AttrNormal)
	require.NotNil(t, normal)
	for i := 0; i < normal.Count(); i++ {
		requireAxisAligned(t, normal.Vec3(i))
	}
}

func TestEdgeSplitKeepNormals(t *testing.T) {
	cube := mergedCube(t)
	require.NoError(t, cube.ComputeVertexNormals())
	old := cube.Attribute(bufgeom.AttrNormal)

	// No vertex is split: original smooth normals are kept.
	got, err := modifier.EdgeSplit(cube, 100*math.Pi/180, true)
	require.NoError(t, err)
	require.Equal(t, old.Array, got.Attribute(bufgeom.AttrNormal).Array)

	// Every vertex is split: all normals are recomputed and flat.
	got, err = modifier.EdgeSplit(cube, math.Pi/4, true)
	require.NoError(t, err)
	normal := got.Attribute(bufgeom.AttrNormal)
	require.Equal(t, 24, normal.Count())
	for i := 0; i < normal.Count(); i++ {
		requireAxisAligned(t, normal.Vec3(i))
	}
}

func TestEdgeSplitSmoothSurface(t *testing.T) {
	sphere := must3.SpherifiedCube(1, 6)
	old := sphere.Attribute(bufgeom.AttrNormal)
	got, err := modifier.EdgeSplit(sphere, math.Pi/3, true)
	require.NoError(t, err)
	require.Equal(t, sphere.VertexCount(), got.VertexCount())
	require.Equal(t, old.Array, got.Attribute(bufgeom.AttrNormal).Array)
	require.NotNil(t, got.Attribute(bufgeom.AttrUV))
}

func TestEdgeSplitCopiesUV(t *testing.T) {
	cube := mergedCube(t)
	pos := cube.Attribute(bufgeom.AttrPosition)
	uv := make([]float32, 0, 2*pos.Count())
	for i := 0; i < pos.Count(); i++ {
		p := pos.Vec3(i)
		uv = append(uv, float32(p.X+2*p.Y), float32(p.Z))
	}
	cube.SetAttribute(bufgeom.AttrUV, bufgeom.NewFloat32Attribute(uv, 2))

	got, err := modifier.EdgeSplit(cube, math.Pi/4, true)
	require.NoError(t, err)
	require.Equal(t, 24, got.VertexCount())
	srcUV, gotUV := cube.Attribute(bufgeom.AttrUV), got.Attribute(bufgeom.AttrUV)
	require.NotNil(t, gotUV)
	require.Equal(t, 24, gotUV.Count())
	// Split vertices carry the uv of the vertex they were copied from.
	src, dst := cube.Indices(), got.Indices()
	for corner := range dst {
		for c := 0; c < 2; c++ {
			require.Equal(t, srcUV.Component(src[corner], c), gotUV.Component(dst[corner], c),
				"corner %d uv component %d", corner, c)
		}
	}
}

func TestEdgeSplitMissingPosition(t *testing.T) {
	_, err := modifier.EdgeSplit(bufgeom.New(), math.Pi/4, true)
	require.ErrorIs(t, err, bufgeom.ErrMissingAttribute)
}

// requireFlatVertices checks that all triangles sharing a vertex have the
// same face normal.
func requireFlatVertices(t *testing.T, g *bufgeom.Geometry) {
	t.Helper()
	pos := g.Attribute(bufgeom.AttrPosition)
	seen := make(map[int]r3.Vec)
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		pa, pb, pc := pos.Vec3(a), pos.Vec3(b), pos.Vec3(c)
		n := r3.Unit(r3.Cross(r3.Sub(pc, pb), r3.Sub(pa, pb)))
		for _, v := range [3]int{a, b, c} {
			if prev, ok := seen[v]; ok {
				require.InDelta(t, 1, r3.Dot(prev, n), 1e-9, "vertex %d shared by non-coplanar faces", v)
			}
			seen[v] = n
		}
	}
	require.Len(t, seen, g.VertexCount())
}

func requireAxisAligned(t *testing.T, n r3.Vec) {
	t.Helper()
	require.InDelta(t, 1, math.Abs(n.X)+math.Abs(n.Y)+math.Abs(n.Z), 1e-6, "normal %v", n)
	require.InDelta(t, 1, r3.Norm(n), 1e-6, "normal %v", n)
}
