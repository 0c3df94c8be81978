package must3

import (
	"github.com/soypat/threext/bufgeom"
)

// Box returns an indexed box geometry centered at the origin with the given
// dimensions and number of segments along each axis. Faces are built in the
// order +X, -X, +Y, -Y, +Z, -Z, each with its own vertices, normals, uvs and
// draw group.
func Box(width, height, depth float64, widthSegs, heightSegs, depthSegs int) *bufgeom.Geometry {
	if width < 0 || height < 0 || depth < 0 {
		panic("box dimension < 0")
	}
	if widthSegs < 1 || heightSegs < 1 || depthSegs < 1 {
		panic("box segments < 1")
	}
	b := boxBuilder{}
	b.plane(axZ, axY, axX, -1, -1, depth, height, width, depthSegs, heightSegs, 0)
	b.plane(axZ, axY, axX, 1, -1, depth, height, -width, depthSegs, heightSegs, 1)
	b.plane(axX, axZ, axY, 1, 1, width, depth, height, widthSegs, depthSegs, 2)
	b.plane(axX, axZ, axY, 1, -1, width, depth, -height, widthSegs, depthSegs, 3)
	b.plane(axX, axY, axZ, 1, -1, width, height, depth, widthSegs, heightSegs, 4)
	b.plane(axX, axY, axZ, -1, -1, width, height, -depth, widthSegs, heightSegs, 5)

	g := bufgeom.New()
	g.SetIndex(b.indices)
	g.SetAttribute(bufgeom.AttrPosition, bufgeom.NewFloat32Attribute(b.positions, 3))
	g.SetAttribute(bufgeom.AttrNormal, bufgeom.NewFloat32Attribute(b.normals, 3))
	g.SetAttribute(bufgeom.AttrUV, bufgeom.NewFloat32Attribute(b.uvs, 2))
	g.Groups = b.groups
	return g
}

type axis int

const (
	axX axis = iota
	axY
	axZ
)

type boxBuilder struct {
	positions []float32
	normals   []float32
	uvs       []float32
	indices   []int
	groups    []bufgeom.Group
	nverts    int
	groupEnd  int
}

// plane appends a grid of gridX by gridY cells spanning width along u and
// height along v, offset by depth/2 along w.
func (b *boxBuilder) plane(u, v, w axis, udir, vdir float64, width, height, depth float64, gridX, gridY, materialIndex int) {
	segW := width / float64(gridX)
	segH := height / float64(gridY)
	halfW, halfH, halfD := width/2, height/2, depth/2
	gridX1, gridY1 := gridX+1, gridY+1
	normalW := float32(1)
	if depth <= 0 {
		normalW = -1
	}
	var vec, nrm [3]float32
	for iy := 0; iy < gridY1; iy++ {
		y := float64(iy)*segH - halfH
		for ix := 0; ix < gridX1; ix++ {
			x := float64(ix)*segW - halfW
			vec[u] = float32(x * udir)
			vec[v] = float32(y * vdir)
			vec[w] = float32(halfD)
			b.positions = append(b.positions, vec[:]...)
			nrm = [3]float32{}
			nrm[w] = normalW
			b.normals = append(b.normals, nrm[:]...)
			b.uvs = append(b.uvs, float32(ix)/float32(gridX), 1-float32(iy)/float32(gridY))
		}
	}
	groupCount := 0
	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := b.nverts + ix + gridX1*iy
			bb := b.nverts + ix + gridX1*(iy+1)
			c := b.nverts + (ix + 1) + gridX1*(iy+1)
			d := b.nverts + (ix + 1) + gridX1*iy
			b.indices = append(b.indices, a, bb, d, bb, c, d)
			groupCount += 6
		}
	}
	b.groups = append(b.groups, bufgeom.Group{Start: b.groupEnd, Count: groupCount, MaterialIndex: materialIndex})
	b.groupEnd += groupCount
	b.nverts += gridX1 * gridY1
}
