package must3

import (
	"math"

	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	phi = (1 + math.Sqrt(5)) / 2

	icosahedronVertices = [12]r3.Vec{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	icosahedronFaces = [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// IcosahedronSphere returns a non-indexed sphere built by subdividing each
// face of an icosahedron detail times and projecting the result onto the
// sphere of the given radius. Normals are flat for detail 0 and radial
// otherwise.
func IcosahedronSphere(radius float64, detail int) *bufgeom.Geometry {
	if radius < 0 {
		panic("radius < 0")
	}
	if detail < 0 {
		panic("detail < 0")
	}
	if radius == 0 {
		radius = defaultRadius
	}
	var verts []r3.Vec
	for _, f := range icosahedronFaces {
		verts = subdivideFace(verts, icosahedronVertices[f[0]], icosahedronVertices[f[1]], icosahedronVertices[f[2]], detail)
	}
	positions := make([]float32, 3*len(verts))
	for i, v := range verts {
		v = r3.Scale(radius, d3.Normalize(v))
		verts[i] = v
		d3.PutFloat32(positions[3*i:], v)
	}
	uvs := sphereUVs(verts)

	g := bufgeom.New()
	g.SetAttribute(bufgeom.AttrPosition, bufgeom.NewFloat32Attribute(positions, 3))
	g.SetAttribute(bufgeom.AttrUV, bufgeom.NewFloat32Attribute(uvs, 2))
	if detail == 0 {
		if err := g.ComputeVertexNormals(); err != nil {
			panic(err)
		}
		return g
	}
	normals := make([]float32, len(positions))
	for i, v := range verts {
		d3.PutFloat32(normals[3*i:], d3.Normalize(v))
	}
	g.SetAttribute(bufgeom.AttrNormal, bufgeom.NewFloat32Attribute(normals, 3))
	return g
}

// subdivideFace appends the (detail+1)² triangles that tile triangle abc.
func subdivideFace(dst []r3.Vec, a, b, c r3.Vec, detail int) []r3.Vec {
	cols := detail + 1
	v := make([][]r3.Vec, cols+1)
	for i := 0; i <= cols; i++ {
		t := float64(i) / float64(cols)
		aj := lerp(a, c, t)
		bj := lerp(b, c, t)
		rows := cols - i
		v[i] = make([]r3.Vec, rows+1)
		for j := 0; j <= rows; j++ {
			if j == 0 && i == cols {
				v[i][j] = aj
			} else {
				v[i][j] = lerp(aj, bj, float64(j)/float64(rows))
			}
		}
	}
	for i := 0; i < cols; i++ {
		for j := 0; j < 2*(cols-i)-1; j++ {
			k := j / 2
			if j%2 == 0 {
				dst = append(dst, v[i][k+1], v[i+1][k], v[i][k])
			} else {
				dst = append(dst, v[i][k+1], v[i+1][k+1], v[i+1][k])
			}
		}
	}
	return dst
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// sphereUVs returns equirectangular uvs for a non-indexed triangle list on
// a sphere. Triangles crossing the seam and vertices at the poles are corrected.
func sphereUVs(verts []r3.Vec) []float32 {
	uvs := make([]float32, 0, 2*len(verts))
	for _, v := range verts {
		u := azimuth(v)/2/math.Pi + 0.5
		w := inclination(v)/math.Pi + 0.5
		uvs = append(uvs, float32(u), float32(1-w))
	}
	for i := 0; i+2 < len(verts); i += 3 {
		centroid := r3.Scale(1./3, r3.Add(verts[i], r3.Add(verts[i+1], verts[i+2])))
		azi := azimuth(centroid)
		for k := 0; k < 3; k++ {
			j := 2 * (i + k)
			if azi < 0 && uvs[j] == 1 {
				uvs[j] -= 1
			}
			if verts[i+k].X == 0 && verts[i+k].Z == 0 {
				uvs[j] = float32(azi/2/math.Pi + 0.5)
			}
		}
	}
	for i := 0; i+4 < len(uvs); i += 6 {
		x0, x1, x2 := uvs[i], uvs[i+2], uvs[i+4]
		hi := max(x0, x1, x2)
		lo := min(x0, x1, x2)
		if hi > 0.9 && lo < 0.1 {
			if x0 < 0.2 {
				uvs[i]++
			}
			if x1 < 0.2 {
				uvs[i+2]++
			}
			if x2 < 0.2 {
				uvs[i+4]++
			}
		}
	}
	return uvs
}

func azimuth(v r3.Vec) float64 { return math.Atan2(v.Z, -v.X) }

func inclination(v r3.Vec) float64 {
	return math.Atan2(-v.Y, math.Hypot(v.X, v.Z))
}
