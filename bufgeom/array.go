package bufgeom

import "fmt"

// Kind identifies the element type of a typed Array.
type Kind uint8

const (
	kindUndefined Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindFloat32
	KindFloat64
)

// BytesPerElement returns the size in bytes of a single element of the kind.
func (k Kind) BytesPerElement() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindFloat64:
		return 8
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindUint8:
		return "uint8"
	case KindInt16:
		return "int16"
	case KindUint16:
		return "uint16"
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Array is a flat typed numeric buffer backing an Attribute.
// Values are read and written as float64 and converted to the
// underlying element type on write.
type Array interface {
	Len() int
	At(i int) float64
	SetAt(i int, v float64)
	Kind() Kind
	// New returns a zeroed array of the same kind with length n.
	New(n int) Array
	// Clone returns a deep copy of the array.
	Clone() Array
	// Append appends the elements of src to the array and returns the result.
	// src must be of the same kind.
	Append(src Array) Array
}

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// TypedArray is an Array implementation over a Go slice.
type TypedArray[T number] []T

type (
	Int8Array    = TypedArray[int8]
	Uint8Array   = TypedArray[uint8]
	Int16Array   = TypedArray[int16]
	Uint16Array  = TypedArray[uint16]
	Int32Array   = TypedArray[int32]
	Uint32Array  = TypedArray[uint32]
	Float32Array = TypedArray[float32]
	Float64Array = TypedArray[float64]
)

func (a TypedArray[T]) Len() int           { return len(a) }
func (a TypedArray[T]) At(i int) float64   { return float64(a[i]) }
func (a TypedArray[T]) New(n int) Array    { return make(TypedArray[T], n) }
func (a TypedArray[T]) Clone() Array       { return append(TypedArray[T](nil), a...) }
func (a TypedArray[T]) Append(src Array) Array {
	return append(a, src.(TypedArray[T])...)
}

// SetAt sets the i'th element. Integer arrays truncate toward zero.
func (a TypedArray[T]) SetAt(i int, v float64) { a[i] = T(v) }

func (a TypedArray[T]) Kind() Kind {
	var z T
	switch any(z).(type) {
	case int8:
		return KindInt8
	case uint8:
		return KindUint8
	case int16:
		return KindInt16
	case uint16:
		return KindUint16
	case int32:
		return KindInt32
	case uint32:
		return KindUint32
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	}
	return kindUndefined
}

// NewArray returns a zeroed array of the argument kind.
func NewArray(k Kind, n int) Array {
	switch k {
	case KindInt8:
		return make(Int8Array, n)
	case KindUint8:
		return make(Uint8Array, n)
	case KindInt16:
		return make(Int16Array, n)
	case KindUint16:
		return make(Uint16Array, n)
	case KindInt32:
		return make(Int32Array, n)
	case KindUint32:
		return make(Uint32Array, n)
	case KindFloat32:
		return make(Float32Array, n)
	case KindFloat64:
		return make(Float64Array, n)
	}
	panic("undefined array kind " + k.String())
}
