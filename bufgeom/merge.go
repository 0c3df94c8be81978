package bufgeom

import (
	"errors"
	"fmt"
)

// MergeAttributes concatenates attributes into a new one. All attributes
// must share array kind, item size and normalized flag.
func MergeAttributes(attrs ...*Attribute) (*Attribute, error) {
	if len(attrs) == 0 {
		return nil, errors.New("merge attributes: no attributes")
	}
	first := attrs[0]
	kind := first.Array.Kind()
	n := 0
	for i, a := range attrs {
		switch {
		case a.Array.Kind() != kind:
			return nil, fmt.Errorf("merge attributes: %w: attribute %d array kind %s, want %s", ErrIncompatible, i, a.Array.Kind(), kind)
		case a.ItemSize != first.ItemSize:
			return nil, fmt.Errorf("merge attributes: %w: attribute %d item size %d, want %d", ErrIncompatible, i, a.ItemSize, first.ItemSize)
		case a.Normalized != first.Normalized:
			return nil, fmt.Errorf("merge attributes: %w: attribute %d normalized flag mismatch", ErrIncompatible, i)
		}
		n += a.Array.Len()
	}
	merged := first.Array.New(0)
	for _, a := range attrs {
		merged = merged.Append(a.Array)
	}
	if merged.Len() != n {
		panic("bug: merged attribute length mismatch")
	}
	return &Attribute{Array: merged, ItemSize: first.ItemSize, Normalized: first.Normalized}, nil
}

// MergeGeometries merges geometries into a single one. Either all geometries
// are indexed or none is, and all must define the same attributes and morph
// attributes. With useGroups set a group is added per input geometry with
// its position in geoms as material index.
func MergeGeometries(geoms []*Geometry, useGroups bool) (*Geometry, error) {
	if len(geoms) == 0 {
		return nil, errors.New("merge geometries: no geometries")
	}
	first := geoms[0]
	isIndexed := first.Index != nil
	merged := New()
	merged.MorphTargetsRelative = first.MorphTargetsRelative
	attributes := make(map[string][]*Attribute)
	morphAttributes := make(map[string][][]*Attribute)
	var userData []map[string]any
	offset := 0
	for i, g := range geoms {
		if isIndexed != (g.Index != nil) {
			return nil, fmt.Errorf("merge geometries: geometry %d: %w: index must exist in all geometries or none", i, ErrIncompatible)
		}
		if len(g.Attributes) != len(first.Attributes) {
			return nil, fmt.Errorf("merge geometries: geometry %d: %w: have %d attributes, want %d", i, ErrIncompatible, len(g.Attributes), len(first.Attributes))
		}
		for name, a := range g.Attributes {
			if _, ok := first.Attributes[name]; !ok {
				return nil, fmt.Errorf("merge geometries: geometry %d: %w: attribute %q must exist in all geometries or none", i, ErrIncompatible, name)
			}
			attributes[name] = append(attributes[name], a)
		}
		if g.MorphTargetsRelative != merged.MorphTargetsRelative {
			return nil, fmt.Errorf("merge geometries: geometry %d: %w: inconsistent morph targets relative flag", i, ErrIncompatible)
		}
		if len(g.MorphAttributes) != len(first.MorphAttributes) {
			return nil, fmt.Errorf("merge geometries: geometry %d: %w: have %d morph attributes, want %d", i, ErrIncompatible, len(g.MorphAttributes), len(first.MorphAttributes))
		}
		for name, morphs := range g.MorphAttributes {
			firstMorphs, ok := first.MorphAttributes[name]
			if !ok {
				return nil, fmt.Errorf("merge geometries: geometry %d: %w: morph attribute %q must exist in all geometries or none", i, ErrIncompatible, name)
			}
			if len(morphs) != len(firstMorphs) {
				return nil, fmt.Errorf("merge geometries: geometry %d: %w: morph attribute %q has %d targets, want %d", i, ErrIncompatible, name, len(morphs), len(firstMorphs))
			}
			morphAttributes[name] = append(morphAttributes[name], morphs)
		}
		userData = append(userData, g.UserData)
		if useGroups {
			var count int
			switch {
			case isIndexed:
				count = g.Index.Count()
			case g.Attributes[AttrPosition] != nil:
				count = g.VertexCount()
			default:
				return nil, fmt.Errorf("merge geometries: geometry %d: %w: need index or %q attribute for groups", i, ErrMissingAttribute, AttrPosition)
			}
			merged.AddGroup(offset, count, i)
			offset += count
		}
	}
	merged.UserData["mergedUserData"] = userData

	if isIndexed {
		var idx []int
		indexOffset := 0
		for _, g := range geoms {
			for _, v := range g.Indices() {
				idx = append(idx, v+indexOffset)
			}
			indexOffset += g.VertexCount()
		}
		merged.SetIndex(idx)
	}

	for _, name := range sortedKeys(attributes) {
		a, err := MergeAttributes(attributes[name]...)
		if err != nil {
			return nil, fmt.Errorf("merge geometries: attribute %q: %w", name, err)
		}
		merged.SetAttribute(name, a)
	}

	for _, name := range sortedKeys(morphAttributes) {
		perGeom := morphAttributes[name]
		numTargets := len(perGeom[0])
		if numTargets == 0 {
			continue
		}
		targets := make([]*Attribute, numTargets)
		for t := range targets {
			toMerge := make([]*Attribute, len(perGeom))
			for j, morphs := range perGeom {
				toMerge[j] = morphs[t]
			}
			m, err := MergeAttributes(toMerge...)
			if err != nil {
				return nil, fmt.Errorf("merge geometries: morph attribute %q: %w", name, err)
			}
			targets[t] = m
		}
		merged.MorphAttributes[name] = targets
	}
	return merged, nil
}

// InterleaveAttributes copies the attributes into a single interleaved buffer
// and returns a view for each of them. All attributes must share array kind
// and vertex count.
func InterleaveAttributes(attrs ...*Attribute) ([]*InterleavedAttribute, error) {
	if len(attrs) == 0 {
		return nil, errors.New("interleave attributes: no attributes")
	}
	kind := attrs[0].Array.Kind()
	count := attrs[0].Count()
	n, stride := 0, 0
	for i, a := range attrs {
		if a.Array.Kind() != kind {
			return nil, fmt.Errorf("interleave attributes: %w: attribute %d array kind %s, want %s", ErrIncompatible, i, a.Array.Kind(), kind)
		}
		if a.Count() != count {
			return nil, fmt.Errorf("interleave attributes: %w: attribute %d count %d, want %d", ErrIncompatible, i, a.Count(), count)
		}
		n += a.Array.Len()
		stride += a.ItemSize
	}
	buf := &InterleavedBuffer{Array: attrs[0].Array.New(n), Stride: stride}
	res := make([]*InterleavedAttribute, len(attrs))
	offset := 0
	for j, a := range attrs {
		ia := &InterleavedAttribute{Buffer: buf, ItemSize: a.ItemSize, Offset: offset, Normalized: a.Normalized}
		res[j] = ia
		offset += a.ItemSize
		for i := 0; i < count; i++ {
			for c := 0; c < a.ItemSize; c++ {
				ia.SetComponent(i, c, a.Component(i, c))
			}
		}
	}
	return res, nil
}

// EstimateBytesUsed returns the memory used by the attribute and index
// buffers of the geometry in bytes.
func EstimateBytesUsed(g *Geometry) int {
	mem := 0
	for _, a := range g.Attributes {
		mem += a.bytesUsed()
	}
	if g.Index != nil {
		mem += g.Index.bytesUsed()
	}
	return mem
}
