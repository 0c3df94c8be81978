// Package modifier implements geometry modifiers operating on bufgeom meshes.
package modifier

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// splitCutOffSlack widens the cut off angle so that faces meeting exactly
// at the cut off angle are kept together.
const splitCutOffSlack = 0.001

// EdgeSplit returns a copy of g where vertices shared by faces whose
// normals differ by more than cutOffAngle (in radians) are duplicated,
// so that hard edges render with sharp shading.
//
// Non-indexed geometries are indexed by merging their vertices first.
// If g had normals they are recomputed for the result. With tryKeepNormals
// set and an indexed input, vertices that were not split keep their
// original normal. The result holds only the attributes and a 32 bit index;
// groups and morph targets are dropped.
func EdgeSplit(g *bufgeom.Geometry, cutOffAngle float64, tryKeepNormals bool) (*bufgeom.Geometry, error) {
	if g.Attribute(bufgeom.AttrPosition) == nil {
		return nil, fmt.Errorf("edge split: %w %q", bufgeom.ErrMissingAttribute, bufgeom.AttrPosition)
	}
	g = g.Clone()
	var oldNormals *bufgeom.Attribute
	hadNormals := g.Attribute(bufgeom.AttrNormal) != nil
	if hadNormals {
		if tryKeepNormals && g.Index != nil {
			oldNormals = g.Attribute(bufgeom.AttrNormal)
		}
		g.DeleteAttribute(bufgeom.AttrNormal)
	}
	if g.Index == nil {
		slog.Info("edge split: indexing geometry by merging vertices", slog.Int("vertices", g.VertexCount()))
		var err error
		g, err = bufgeom.MergeVertices(g, bufgeom.DefaultMergeTolerance)
		if err != nil {
			return nil, fmt.Errorf("edge split: %w", err)
		}
	}

	indices := g.Indices()
	pos := g.Attribute(bufgeom.AttrPosition)
	normals := cornerNormals(pos, indices)
	vertexCorners := make([][]int, pos.Count())
	for corner, v := range indices {
		vertexCorners[v] = append(vertexCorners[v], corner)
	}
	cutOff := math.Cos(cutOffAngle) - splitCutOffSlack
	var splits []split
	for _, corners := range vertexCorners {
		splits = splitVertex(splits, corners, normals, cutOff)
	}

	oldCount := pos.Count()
	result := bufgeom.New()
	for _, name := range g.AttributeNames() {
		a := g.Attribute(name)
		grown := &bufgeom.Attribute{
			Array:      a.Array.Clone().Append(a.Array.New(len(splits) * a.ItemSize)),
			ItemSize:   a.ItemSize,
			Normalized: a.Normalized,
		}
		for i, s := range splits {
			src := indices[s.original]
			for c := 0; c < a.ItemSize; c++ {
				grown.SetComponent(oldCount+i, c, a.Component(src, c))
			}
		}
		result.SetAttribute(name, grown)
	}
	newIndices := make(bufgeom.Uint32Array, len(indices))
	for i, v := range indices {
		newIndices[i] = uint32(v)
	}
	for i, s := range splits {
		for _, corner := range s.corners {
			newIndices[corner] = uint32(oldCount + i)
		}
	}
	result.Index = bufgeom.NewAttribute(newIndices, 1)

	if !hadNormals {
		return result, nil
	}
	if err := result.ComputeVertexNormals(); err != nil {
		return nil, fmt.Errorf("edge split: %w", err)
	}
	if oldNormals == nil {
		return result, nil
	}
	changed := make([]bool, oldNormals.Count())
	for _, s := range splits {
		changed[indices[s.original]] = true
	}
	normal := result.Attribute(bufgeom.AttrNormal)
	for i, ch := range changed {
		if !ch {
			normal.SetVec3(i, oldNormals.Vec3(i))
		}
	}
	return result, nil
}

// split is a group of triangle corners moved onto a new copy of the vertex
// referenced by corner original.
type split struct {
	original int
	corners  []int
}

// cornerNormals returns the unit face normal of the triangle owning each corner.
func cornerNormals(pos *bufgeom.Attribute, indices []int) []r3.Vec {
	normals := make([]r3.Vec, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		a := pos.Vec3(indices[i])
		b := pos.Vec3(indices[i+1])
		c := pos.Vec3(indices[i+2])
		n := d3.Normalize(r3.Cross(r3.Sub(c, b), r3.Sub(a, b)))
		normals[i], normals[i+1], normals[i+2] = n, n, n
	}
	return normals
}

// splitVertex partitions the corners sharing a vertex into smooth groups
// and appends a split to dst for every group but the first. Each round
// keeps the largest group found around any seed corner, the first one
// found on ties, and continues with the remainder.
func splitVertex(dst []split, corners []int, normals []r3.Vec, cutOff float64) []split {
	original := -1
	for len(corners) > 0 {
		group, rest := groupAround(corners, normals, cutOff, corners[0])
		for _, seed := range corners[1:] {
			g, r := groupAround(corners, normals, cutOff, seed)
			if len(g) > len(group) {
				group, rest = g, r
			}
		}
		if original < 0 {
			original = group[0]
		} else {
			dst = append(dst, split{original: original, corners: group})
		}
		corners = rest
	}
	return dst
}

// groupAround returns the corners whose normal is within cutOff of the seed
// corner normal, seed first, and the remaining corners.
func groupAround(corners []int, normals []r3.Vec, cutOff float64, seed int) (group, rest []int) {
	ref := normals[seed]
	group = append(group, seed)
	for _, c := range corners {
		if c == seed {
			continue
		}
		if r3.Dot(normals[c], ref) < cutOff {
			rest = append(rest, c)
		} else {
			group = append(group, c)
		}
	}
	return group, rest
}
