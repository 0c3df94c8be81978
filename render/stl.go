package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Binary STL layout: an 80 byte header, a little endian uint32 facet count
// and 50 bytes per facet (normal, three vertices, attribute byte count).
const (
	stlCountOffset = 80
	stlHeaderSize  = stlCountOffset + 4
	stlFacetSize   = 50
)

// ErrEmptyModel is returned when writing an STL file with no triangles.
var ErrEmptyModel = errors.New("no triangles to write")

var errNormalMismatch = errors.New("stored facet normal differs from the normal of its vertices")

// IsNormalMismatch reports whether err only signals stored normals
// disagreeing with the triangle vertices. Smooth shaded meshes written with
// WriteGeometrySTL may trigger it while being valid.
func IsNormalMismatch(err error) bool {
	return errors.Is(err, errNormalMismatch)
}

type stlFacet struct {
	normal [3]float32
	v      [3][3]float32
}

func newFacet(t Triangle3, normal r3.Vec) (f stlFacet) {
	f.normal = toF32(normal)
	for i, v := range t.V {
		f.v[i] = toF32(v)
	}
	return f
}

func (f *stlFacet) put(b []byte) {
	_ = b[stlFacetSize-1]
	putF32(b, f.normal)
	for i := range f.v {
		putF32(b[12*(i+1):], f.v[i])
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (f *stlFacet) get(b []byte) {
	_ = b[stlFacetSize-1]
	f.normal = getF32(b)
	for i := range f.v {
		f.v[i] = getF32(b[12*(i+1):])
	}
}

func (f stlFacet) triangle() (t Triangle3) {
	for i, v := range f.v {
		t.V[i] = r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
	}
	return t
}

func (f stlFacet) validate() error {
	const (
		minEdge = 1e-12
		normTol = 5e-2
	)
	if badF32(f.normal) {
		return errors.New("inf/NaN facet normal")
	}
	if badF32(f.v[0]) || badF32(f.v[1]) || badF32(f.v[2]) {
		return errors.New("inf/NaN facet vertex")
	}
	t := f.triangle()
	if t.Degenerate(minEdge) {
		return errors.New("degenerate facet")
	}
	calc := toF32(t.Normal())
	neg := [3]float32{-calc[0], -calc[1], -calc[2]}
	if !equalWithinF32(calc, f.normal, normTol) && !equalWithinF32(neg, f.normal, normTol) {
		return errNormalMismatch
	}
	return nil
}

// stlEncoder buffers facets written to an underlying writer.
type stlEncoder struct {
	w     *bufio.Writer
	buf   [stlFacetSize]byte
	count int
}

func newSTLEncoder(w io.Writer) *stlEncoder {
	return &stlEncoder{w: bufio.NewWriterSize(w, 1024*stlFacetSize)}
}

func (e *stlEncoder) header(count int) error {
	if uint64(count) > math.MaxUint32 {
		return fmt.Errorf("%d triangles exceed STL facet count limit", count)
	}
	var hdr [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[stlCountOffset:], uint32(count))
	_, err := e.w.Write(hdr[:])
	return err
}

func (e *stlEncoder) facet(f stlFacet) error {
	f.put(e.buf[:])
	_, err := e.w.Write(e.buf[:])
	e.count++
	return err
}

// WriteSTL writes model triangles to w in binary STL format with
// normals computed from the triangle winding.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return ErrEmptyModel
	}
	enc := newSTLEncoder(w)
	if err := enc.header(len(model)); err != nil {
		return err
	}
	for _, t := range model {
		if err := enc.facet(newFacet(t, t.Normal())); err != nil {
			return err
		}
	}
	return enc.w.Flush()
}

// WriteGeometrySTL writes the triangles of g within its draw range to w in
// binary STL format. Facet normals are the normalized mean of the vertex
// normals when g has a normal attribute, the winding normal otherwise.
func WriteGeometrySTL(w io.Writer, g *bufgeom.Geometry) error {
	pos := g.Attribute(bufgeom.AttrPosition)
	if pos == nil {
		return fmt.Errorf("write STL: %w %q", bufgeom.ErrMissingAttribute, bufgeom.AttrPosition)
	}
	normal := g.Attribute(bufgeom.AttrNormal)
	start, end := triangleRange(g)
	if end <= start {
		return ErrEmptyModel
	}
	enc := newSTLEncoder(w)
	if err := enc.header(end - start); err != nil {
		return err
	}
	for i := start; i < end; i++ {
		a, b, c := g.Triangle(i)
		t := Triangle3{V: [3]r3.Vec{pos.Vec3(a), pos.Vec3(b), pos.Vec3(c)}}
		var n r3.Vec
		if normal != nil {
			n = d3.Normalize(r3.Add(r3.Add(normal.Vec3(a), normal.Vec3(b)), normal.Vec3(c)))
		}
		if n == (r3.Vec{}) {
			n = t.Normal()
		}
		if err := enc.facet(newFacet(t, n)); err != nil {
			return err
		}
	}
	return enc.w.Flush()
}

// CreateSTL streams the triangles read from r to a binary STL file at path.
// The facet count is written once r is exhausted.
func CreateSTL(path string, r Renderer) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	enc := newSTLEncoder(file)
	// Count is unknown until the renderer is drained.
	if err = enc.header(0); err != nil {
		return err
	}
	buf := make([]Triangle3, 1024)
	for {
		n, rerr := r.ReadTriangles(buf)
		for _, t := range buf[:n] {
			if err = enc.facet(newFacet(t, t.Normal())); err != nil {
				return err
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		} else if rerr != nil {
			return rerr
		}
	}
	if err = enc.w.Flush(); err != nil {
		return err
	}
	if uint64(enc.count) > math.MaxUint32 {
		return fmt.Errorf("%d triangles exceed STL facet count limit", enc.count)
	}
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(enc.count))
	_, err = file.WriteAt(count[:], stlCountOffset)
	return err
}

// ReadSTL reads the triangles of a binary STL stream. Facets whose stored
// normal disagrees with their winding are still returned along with an
// error for which IsNormalMismatch is true.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	br := bufio.NewReader(r)
	var hdr [stlHeaderSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("read STL header: %w", err)
	}
	count := int(binary.LittleEndian.Uint32(hdr[stlCountOffset:]))
	if count == 0 {
		return nil, errors.New("read STL: header indicates 0 triangles present")
	}
	var (
		buf        [stlFacetSize]byte
		f          stlFacet
		mismatches int
	)
	model := make([]Triangle3, 0, min(count, 1<<20))
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("read STL: %d/%d triangles read: %w", i, count, err)
		}
		f.get(buf[:])
		err := f.validate()
		if errors.Is(err, errNormalMismatch) {
			mismatches++
		} else if err != nil {
			return nil, fmt.Errorf("read STL: triangle %d: %w", i, err)
		}
		model = append(model, f.triangle())
	}
	if mismatches > 0 {
		return model, fmt.Errorf("read STL: %d/%d triangles: %w", mismatches, count, errNormalMismatch)
	}
	return model, nil
}

func toF32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func putF32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
}

func getF32(b []byte) (f [3]float32) {
	_ = b[11] // early bounds check
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return f
}

func badF32(f [3]float32) bool {
	for _, v := range f {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func equalWithinF32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}
