package bufgeom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Attribute is a per-vertex (or per-index) data buffer. The array holds
// Count() items of ItemSize consecutive components each.
type Attribute struct {
	Array      Array
	ItemSize   int
	Normalized bool
}

// NewAttribute returns an attribute over arr. It panics if the array
// length is not a multiple of itemSize.
func NewAttribute(arr Array, itemSize int) *Attribute {
	if itemSize <= 0 {
		panic("attribute item size must be positive")
	}
	if arr.Len()%itemSize != 0 {
		panic("attribute array length not multiple of item size")
	}
	return &Attribute{Array: arr, ItemSize: itemSize}
}

// NewFloat32Attribute is shorthand for a float32 attribute over data.
func NewFloat32Attribute(data []float32, itemSize int) *Attribute {
	return NewAttribute(Float32Array(data), itemSize)
}

// Count returns the number of items in the attribute.
func (a *Attribute) Count() int {
	return a.Array.Len() / a.ItemSize
}

// Component returns the c'th component of item i.
func (a *Attribute) Component(i, c int) float64 {
	return a.Array.At(i*a.ItemSize + c)
}

// SetComponent sets the c'th component of item i.
func (a *Attribute) SetComponent(i, c int, v float64) {
	a.Array.SetAt(i*a.ItemSize+c, v)
}

// X returns the first component of item i. Used to read index buffers.
func (a *Attribute) X(i int) int {
	return int(a.Array.At(i * a.ItemSize))
}

// Vec3 reads item i as a 3D vector. Missing components read as zero.
func (a *Attribute) Vec3(i int) (v r3.Vec) {
	off := i * a.ItemSize
	switch {
	case a.ItemSize >= 3:
		v.Z = a.Array.At(off + 2)
		fallthrough
	case a.ItemSize == 2:
		v.Y = a.Array.At(off + 1)
		fallthrough
	default:
		v.X = a.Array.At(off)
	}
	return v
}

// SetVec3 writes v to item i. Components beyond ItemSize are discarded.
func (a *Attribute) SetVec3(i int, v r3.Vec) {
	off := i * a.ItemSize
	a.Array.SetAt(off, v.X)
	if a.ItemSize > 1 {
		a.Array.SetAt(off+1, v.Y)
	}
	if a.ItemSize > 2 {
		a.Array.SetAt(off+2, v.Z)
	}
}

// copyItem copies item src of attribute from into item dst of a.
func (a *Attribute) copyItem(dst int, from *Attribute, src int) {
	for c := 0; c < a.ItemSize; c++ {
		a.SetComponent(dst, c, from.Component(src, c))
	}
}

// Clone returns a deep copy of the attribute.
func (a *Attribute) Clone() *Attribute {
	if a == nil {
		return nil
	}
	return &Attribute{Array: a.Array.Clone(), ItemSize: a.ItemSize, Normalized: a.Normalized}
}

// bytesUsed returns the estimated memory footprint of the attribute data.
func (a *Attribute) bytesUsed() int {
	return a.Count() * a.ItemSize * a.Array.Kind().BytesPerElement()
}

// InterleavedBuffer holds the data of several attributes in a single
// array, Stride components per vertex.
type InterleavedBuffer struct {
	Array  Array
	Stride int
}

// Count returns the number of vertices stored in the buffer.
func (b *InterleavedBuffer) Count() int { return b.Array.Len() / b.Stride }

// InterleavedAttribute is a view of ItemSize components starting at Offset
// within each vertex of an InterleavedBuffer.
type InterleavedAttribute struct {
	Buffer     *InterleavedBuffer
	ItemSize   int
	Offset     int
	Normalized bool
}

// Count returns the number of items in the attribute.
func (a *InterleavedAttribute) Count() int { return a.Buffer.Count() }

// Component returns the c'th component of item i.
func (a *InterleavedAttribute) Component(i, c int) float64 {
	return a.Buffer.Array.At(i*a.Buffer.Stride + a.Offset + c)
}

// SetComponent sets the c'th component of item i.
func (a *InterleavedAttribute) SetComponent(i, c int, v float64) {
	a.Buffer.Array.SetAt(i*a.Buffer.Stride+a.Offset+c, v)
}
