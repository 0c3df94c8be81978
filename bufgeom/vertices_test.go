package bufgeom_test

import (
	"testing"

	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/form3/must3"
	"github.com/stretchr/testify/require"
)

func TestMergeVertices(t *testing.T) {
	box := must3.Box(2, 2, 2, 1, 1, 1)
	for _, test := range []struct {
		name      string
		g         *bufgeom.Geometry
		drop      []string
		wantVerts int
	}{
		{name: "indexed", g: box, wantVerts: 24},
		{name: "non-indexed", g: box.ToNonIndexed(), wantVerts: 24},
		{name: "positions only", g: box.ToNonIndexed(), drop: []string{bufgeom.AttrNormal, bufgeom.AttrUV}, wantVerts: 8},
		{name: "positions and normals", g: box, drop: []string{bufgeom.AttrUV}, wantVerts: 24},
	} {
		g := test.g.Clone()
		for _, name := range test.drop {
			g.DeleteAttribute(name)
		}
		merged, err := bufgeom.MergeVertices(g, 0)
		require.NoError(t, err, test.name)
		require.Equal(t, test.wantVerts, merged.VertexCount(), test.name)
		require.Equal(t, 36, merged.Index.Count(), test.name)
		require.Equal(t, g.AttributeNames(), merged.AttributeNames(), test.name)
		// Every triangle keeps its corners.
		pos, mpos := g.Attribute(bufgeom.AttrPosition), merged.Attribute(bufgeom.AttrPosition)
		for i := 0; i < g.TriangleCount(); i++ {
			a, b, c := g.Triangle(i)
			ma, mb, mc := merged.Triangle(i)
			require.Equal(t, pos.Vec3(a), mpos.Vec3(ma), test.name)
			require.Equal(t, pos.Vec3(b), mpos.Vec3(mb), test.name)
			require.Equal(t, pos.Vec3(c), mpos.Vec3(mc), test.name)
		}
	}

	_, err := bufgeom.MergeVertices(bufgeom.New(), 0)
	require.ErrorIs(t, err, bufgeom.ErrMissingAttribute)
}

func TestMergeVerticesTolerance(t *testing.T) {
	g := bufgeom.New()
	g.SetAttribute(bufgeom.AttrPosition, bufgeom.NewFloat32Attribute([]float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0.001, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}, 3))
	coarse, err := bufgeom.MergeVertices(g, 1e-2)
	require.NoError(t, err)
	require.Equal(t, 3, coarse.VertexCount())
	require.Equal(t, []int{0, 1, 2, 0, 1, 2}, coarse.Indices())

	fine, err := bufgeom.MergeVertices(g, 1e-4)
	require.NoError(t, err)
	require.Equal(t, 4, fine.VertexCount())
	require.Equal(t, []int{0, 1, 2, 3, 1, 2}, fine.Indices())
}

func TestToTrianglesDrawMode(t *testing.T) {
	g := bufgeom.New()
	g.SetAttribute(bufgeom.AttrPosition, bufgeom.NewFloat32Attribute(make([]float32, 5*3), 3))
	g.AddGroup(0, 5, 0)

	strip, err := bufgeom.ToTrianglesDrawMode(g, bufgeom.TriangleStripDrawMode)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 2, 1, 2, 3, 4}, strip.Indices())
	require.Empty(t, strip.Groups)

	fan, err := bufgeom.ToTrianglesDrawMode(g, bufgeom.TriangleFanDrawMode)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 0, 2, 3, 0, 3, 4}, fan.Indices())

	// Input is left untouched.
	require.Nil(t, g.Index)
	require.Len(t, g.Groups, 1)

	same, err := bufgeom.ToTrianglesDrawMode(g, bufgeom.TrianglesDrawMode)
	require.NoError(t, err)
	require.Same(t, g, same)

	_, err = bufgeom.ToTrianglesDrawMode(g, bufgeom.DrawMode(42))
	require.Error(t, err)

	// Indexed strips follow the index buffer.
	g.SetIndex([]int{4, 3, 2, 1})
	strip, err = bufgeom.ToTrianglesDrawMode(g, bufgeom.TriangleStripDrawMode)
	require.NoError(t, err)
	require.Equal(t, []int{4, 3, 2, 1, 2, 3}, strip.Indices())
}

func TestComputeMorphedAttributes(t *testing.T) {
	g := bufgeom.New()
	g.SetAttribute(bufgeom.AttrPosition, bufgeom.NewFloat32Attribute([]float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		0, 0, 1, 1, 0, 1, 0, 1, 1,
	}, 3))
	g.SetAttribute(bufgeom.AttrNormal, bufgeom.NewFloat32Attribute([]float32{
		0, 0, 1, 0, 0, 1, 0, 0, 1,
		0, 0, 1, 0, 0, 1, 0, 0, 1,
	}, 3))
	up := make([]float32, 18)
	for i := 1; i < len(up); i += 3 {
		up[i] = 2
	}
	g.MorphAttributes[bufgeom.AttrPosition] = []*bufgeom.Attribute{bufgeom.NewFloat32Attribute(up, 3)}
	g.MorphAttributes[bufgeom.AttrNormal] = []*bufgeom.Attribute{bufgeom.NewFloat32Attribute(make([]float32, 18), 3)}
	g.MorphTargetsRelative = true

	res, err := bufgeom.ComputeMorphedAttributes(g, []float64{0.5})
	require.NoError(t, err)
	require.Same(t, g.Attribute(bufgeom.AttrPosition), res.Position)
	for i := 0; i < 6; i++ {
		want := g.Attribute(bufgeom.AttrPosition).Vec3(i)
		want.Y++
		require.Equal(t, want, res.MorphedPosition.Vec3(i))
		// Relative zero normal offsets leave normals unchanged.
		require.Equal(t, g.Attribute(bufgeom.AttrNormal).Vec3(i), res.MorphedNormal.Vec3(i))
	}

	// Absolute targets interpolate towards the target.
	g.MorphTargetsRelative = false
	g.DrawRange = &bufgeom.Range{Start: 0, Count: 3}
	res, err = bufgeom.ComputeMorphedAttributes(g, []float64{0.5})
	require.NoError(t, err)
	p := res.MorphedPosition.Vec3(1)
	require.InDelta(t, 0.5, p.X, 1e-7)
	require.InDelta(t, 1.0, p.Y, 1e-7)
	n := res.MorphedNormal.Vec3(0)
	require.InDelta(t, 0.5, n.Z, 1e-7)
	// Outside of the draw range nothing is computed.
	require.Zero(t, res.MorphedPosition.Vec3(4))

	g.DeleteAttribute(bufgeom.AttrNormal)
	res, err = bufgeom.ComputeMorphedAttributes(g, nil)
	require.NoError(t, err)
	require.Nil(t, res.MorphedNormal)
	require.Equal(t, g.Attribute(bufgeom.AttrPosition).Vec3(2), res.MorphedPosition.Vec3(2))
}

func TestComputeVertexBarycentricCoordinates(t *testing.T) {
	box := must3.Box(1, 1, 1, 1, 1, 1)
	require.ErrorIs(t, bufgeom.ComputeVertexBarycentricCoordinates(box), bufgeom.ErrIndexed)
	flat := box.ToNonIndexed()
	require.NoError(t, bufgeom.ComputeVertexBarycentricCoordinates(flat))
	bar := flat.Attribute(bufgeom.AttrBarycentric)
	require.Equal(t, 36, bar.Count())
	for i := 0; i < bar.Count(); i++ {
		v := bar.Vec3(i)
		require.Equal(t, 1.0, v.X+v.Y+v.Z)
		switch i % 3 {
		case 0:
			require.Equal(t, 1.0, v.X)
		case 1:
			require.Equal(t, 1.0, v.Y)
		case 2:
			require.Equal(t, 1.0, v.Z)
		}
	}
}
