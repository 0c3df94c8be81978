package render_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/threext/bufgeom"
	"github.com/soypat/threext/form3"
	"github.com/soypat/threext/render"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

// imgDelta a normalized imgDelta parameter to describe how close the matching
// should be performed (imgDelta=0: perfect match, imgDelta=1, loose match)
const imgDelta = 0

type viewConfig struct {
	// what position (point) to look at
	lookat r3.Vec
	// which way is up (direction)
	up r3.Vec
	// where the camera/eye located at (point)
	eyepos r3.Vec
	far    float64
	near   float64
}

var defaultView = viewConfig{
	up:     r3.Vec{Y: 1},
	eyepos: r3.Vec{X: 3, Y: 3, Z: 3},
	near:   1,
	far:    10,
}

// TestSTLImages renders every geometry twice, once streamed through
// CreateSTL and once through the WriteSTL, ReadSTL, ToGeometry round trip,
// and expects identical images.
func TestSTLImages(t *testing.T) {
	dir := t.TempDir()
	var pngs [][]byte
	for _, test := range []struct {
		name string
		gen  func() (*bufgeom.Geometry, error)
	}{
		{name: "box", gen: func() (*bufgeom.Geometry, error) { return form3.Box(1, 1.5, 2, 1, 1, 1) }},
		{name: "rounded", gen: func() (*bufgeom.Geometry, error) { return form3.RoundedCube(1, 6) }},
		{name: "spherified", gen: func() (*bufgeom.Geometry, error) { return form3.SpherifiedCube(1, 6) }},
		{name: "icosahedron", gen: func() (*bufgeom.Geometry, error) { return form3.IcosahedronSphere(1, 2) }},
	} {
		g, err := test.gen()
		if err != nil {
			t.Fatal(err)
		}
		streamed := filepath.Join(dir, test.name+"_streamed.stl")
		r, err := render.NewGeometryRenderer(g)
		if err != nil {
			t.Fatal(err)
		}
		if err := render.CreateSTL(streamed, r); err != nil {
			t.Fatal(err)
		}

		r, _ = render.NewGeometryRenderer(g)
		model, err := render.RenderAll(r)
		if err != nil {
			t.Fatal(err)
		}
		var b bytes.Buffer
		if err := render.WriteSTL(&b, model); err != nil {
			t.Fatal(err)
		}
		model, err = render.ReadSTL(&b)
		if err != nil && !render.IsNormalMismatch(err) {
			t.Fatal(err)
		}
		r, _ = render.NewGeometryRenderer(render.ToGeometry(model))
		roundTrip := filepath.Join(dir, test.name+"_roundtrip.stl")
		if err := render.CreateSTL(roundTrip, r); err != nil {
			t.Fatal(err)
		}

		png1 := stlToPNG(t, streamed, defaultView)
		png2 := stlToPNG(t, roundTrip, defaultView)
		if !equalImages(t, png1, png2) {
			t.Errorf("%s: round trip image does not match streamed image", test.name)
		}
		pngs = append(pngs, png1)
	}
	if equalImages(t, pngs[0], pngs[len(pngs)-1]) {
		t.Error("box and sphere images must differ")
	}
}

func stlToPNG(t testing.TB, stlName string, view viewConfig) []byte {
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		t.Fatal(err)
	}
	const (
		width, height = 320, 240 // output width and height in pixels
		scale         = 2        // optional supersampling
		fovy          = 30       // vertical field of view in degrees
	)

	var (
		eye    = fauxgl.V(view.eyepos.X, view.eyepos.Y, view.eyepos.Z) // camera position
		center = fauxgl.V(view.lookat.X, view.lookat.Y, view.lookat.Z) // view center position
		up     = fauxgl.V(view.up.X, view.up.Y, view.up.Z)             // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()                  // light direction
		color  = fauxgl.HexColor("#468966")                            // object color
	)

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.near, view.far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := resize.Resize(width, height, context.Image(), resize.Bilinear)
	output := filepath.Join(filepath.Dir(stlName), filepath.Base(stlName)+".png")
	if err := fauxgl.SavePNG(output, image); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func equalImages(t testing.TB, png1, png2 []byte) bool {
	equal, err := cmpimg.EqualApprox("png", png1, png2, imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	return equal
}
