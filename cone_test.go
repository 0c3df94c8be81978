package threext

import (
	"math"
	"testing"

	"github.com/soypat/threext/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRayIntersectCone(t *testing.T) {
	const tol = 1e-12
	yUp := r3.Vec{Y: 1}
	for _, test := range []struct {
		name string
		cone Cone
		ray  Ray
		hit  bool
		want r3.Vec
	}{
		{
			name: "from inside",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/4, 0, 0),
			ray:  Ray{Origin: r3.Vec{Y: 5}, Direction: r3.Vec{X: 1}},
			hit:  true,
			want: r3.Vec{X: 5, Y: 5},
		},
		{
			name: "from outside",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/4, 0, 0),
			ray:  Ray{Origin: r3.Vec{X: -10, Y: 5}, Direction: r3.Vec{X: 1}},
			hit:  true,
			want: r3.Vec{X: -5, Y: 5},
		},
		{
			name: "translated apex",
			cone: NewCone(r3.Vec{X: 1, Y: 1, Z: 1}, yUp, math.Pi/4, 0, 0),
			ray:  Ray{Origin: r3.Vec{X: -9, Y: 3, Z: 1}, Direction: r3.Vec{X: 1}},
			hit:  true,
			want: r3.Vec{X: -1, Y: 3, Z: 1},
		},
		{
			name: "beyond sup",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/4, 0, 3),
			ray:  Ray{Origin: r3.Vec{X: -10, Y: 5}, Direction: r3.Vec{X: 1}},
		},
		{
			name: "below inf",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/4, 6, 0),
			ray:  Ray{Origin: r3.Vec{X: -10, Y: 5}, Direction: r3.Vec{X: 1}},
		},
		{
			name: "opposite nappe",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/4, 0, 0),
			ray:  Ray{Origin: r3.Vec{X: -10, Y: -5}, Direction: r3.Vec{X: 1}},
		},
		{
			name: "behind origin",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/4, 0, 0),
			ray:  Ray{Origin: r3.Vec{X: -10, Y: 5}, Direction: r3.Vec{X: -1}},
		},
		{
			name: "through apex along axis",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/6, 0, 0),
			ray:  Ray{Origin: r3.Vec{Y: -1}, Direction: yUp},
		},
		{
			name: "origin at apex along axis",
			cone: NewCone(r3.Vec{}, yUp, math.Pi/6, 0, 0),
			ray:  Ray{Origin: r3.Vec{}, Direction: yUp},
		},
	} {
		got, hit := test.ray.IntersectCone(test.cone)
		if hit != test.hit {
			t.Errorf("%s: hit=%v, want %v (point %v)", test.name, hit, test.hit, got)
			continue
		}
		if hit && !d3.EqualWithin(got, test.want, tol) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestRayIntersectConeAnalytic(t *testing.T) {
	// Rays from the axis orthogonal to it hit the cone at distance d*tan(theta).
	const tol = 1e-9
	axis := r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3})
	ortho := r3.Unit(r3.Cross(axis, r3.Vec{X: 1}))
	apex := r3.Vec{X: -1, Y: 0.5, Z: 2}
	for _, theta := range []float64{0.1, math.Pi / 6, math.Pi / 3, 1.4} {
		cone := NewCone(apex, axis, theta, 0.5, 20)
		for _, d := range []float64{0.6, 1, 5, 19.9} {
			origin := r3.Add(apex, r3.Scale(d, axis))
			got, ok := Ray{Origin: origin, Direction: ortho}.IntersectCone(cone)
			if !ok {
				t.Errorf("theta=%g d=%g: expected hit", theta, d)
				continue
			}
			want := r3.Add(origin, r3.Scale(d*math.Tan(theta), ortho))
			if !d3.EqualWithin(got, want, tol*(1+d)) {
				t.Errorf("theta=%g d=%g: got %v, want %v", theta, d, got, want)
			}
		}
		// Outside of the axial bounds.
		for _, d := range []float64{0.4, 20.1} {
			origin := r3.Add(apex, r3.Scale(d, axis))
			if _, ok := (Ray{Origin: origin, Direction: ortho}).IntersectCone(cone); ok {
				t.Errorf("theta=%g d=%g: unexpected hit outside bounds", theta, d)
			}
		}
	}
}

func TestRayIntersectConeParallel(t *testing.T) {
	// Rays parallel to a generatrix cross the double sided cone once.
	const tol = 1e-12
	theta := math.Acos(0.6)
	cos := math.Cos(theta)
	dir := r3.Vec{X: math.Sqrt(1 - cos*cos), Y: cos}
	cone := NewCone(r3.Vec{}, r3.Vec{Y: 1}, theta, 0, 0)

	got, ok := Ray{Origin: r3.Vec{X: -5}, Direction: dir}.IntersectCone(cone)
	if !ok {
		t.Fatal("expected hit")
	}
	want := r3.Vec{X: -2.5, Y: 1.875}
	if !d3.EqualWithin(got, want, tol) {
		t.Errorf("got %v, want %v", got, want)
	}
	ad := r3.Dot(cone.Axis, got)
	if surf := ad*ad - cos*cos*r3.Norm2(got); math.Abs(surf) > tol {
		t.Errorf("hit %v off the cone surface by %g", got, surf)
	}

	bounded := NewCone(r3.Vec{}, r3.Vec{Y: 1}, theta, 0, 1)
	if p, ok := (Ray{Origin: r3.Vec{X: -5}, Direction: dir}).IntersectCone(bounded); ok {
		t.Errorf("hit %v beyond sup", p)
	}
	if p, ok := (Ray{Origin: r3.Vec{X: 5}, Direction: dir}).IntersectCone(cone); ok {
		t.Errorf("hit %v behind ray origin", p)
	}
}

func TestConeEqualEmpty(t *testing.T) {
	c := NewCone(r3.Vec{X: 1}, r3.Vec{Y: 1}, 0.5, 1, 2)
	cp := c
	if !c.Equal(cp) {
		t.Error("copy must equal original")
	}
	if !c.Equal(c) {
		t.Error("equal must be reflexive")
	}
	for _, mod := range []func(*Cone){
		func(c *Cone) { c.V.Z = math.Nextafter(c.V.Z, 1) },
		func(c *Cone) { c.Axis.X += 1e-300 },
		func(c *Cone) { c.Theta = math.Nextafter(c.Theta, 1) },
		func(c *Cone) { c.Inf = math.Nextafter(c.Inf, 2) },
		func(c *Cone) { c.Sup = math.Nextafter(c.Sup, 3) },
	} {
		other := c
		mod(&other)
		if c.Equal(other) {
			t.Errorf("expected %+v != %+v", c, other)
		}
	}
	if !math.IsInf(NewCone(r3.Vec{}, r3.Vec{Y: 1}, 0.5, 0, 0).Sup, 1) {
		t.Error("zero sup must default to +Inf")
	}
	for _, empty := range []Cone{
		NewCone(r3.Vec{}, r3.Vec{Y: 1}, 0, 0, 1),
		NewCone(r3.Vec{}, r3.Vec{Y: 1}, 0.5, 2, 1),
	} {
		if !empty.Empty() {
			t.Errorf("expected empty cone %+v", empty)
		}
	}
	if c.Empty() {
		t.Error("cone should not be empty")
	}
}

func TestConeLiteralCosine(t *testing.T) {
	literal := Cone{Axis: r3.Vec{Y: 1}, Theta: math.Pi / 4, Sup: math.Inf(1)}
	built := NewCone(r3.Vec{}, r3.Vec{Y: 1}, math.Pi/4, 0, 0)
	ray := Ray{Origin: r3.Vec{Y: 5}, Direction: r3.Vec{X: 1}}
	p1, ok1 := ray.IntersectCone(literal)
	p2, ok2 := ray.IntersectCone(built)
	if ok1 != ok2 || p1 != p2 {
		t.Errorf("literal and constructed cone disagree: %v %v, %v %v", p1, ok1, p2, ok2)
	}
}

func TestConeThetaChange(t *testing.T) {
	c := NewCone(r3.Vec{}, r3.Vec{Y: 1}, math.Pi/6, 0, 0)
	c.Theta = math.Pi / 4
	ray := Ray{Origin: r3.Vec{Y: 5}, Direction: r3.Vec{X: 1}}
	got, ok := ray.IntersectCone(c)
	want := r3.Vec{X: 5, Y: 5}
	if !ok || !d3.EqualWithin(got, want, 1e-12) {
		t.Errorf("got %v %v, want %v", got, ok, want)
	}
}

func TestConeBoundingBox(t *testing.T) {
	const tol = 1e-12
	c := NewCone(r3.Vec{}, r3.Vec{Y: 1}, math.Pi/4, 1, 2)
	bb, err := c.BoundingBox()
	if err != nil {
		t.Fatal(err)
	}
	want := d3.Box{Min: r3.Vec{X: -2, Y: 1, Z: -2}, Max: r3.Vec{X: 2, Y: 2, Z: 2}}
	if !d3.Box(bb).Equals(want, tol) {
		t.Errorf("got %+v, want %+v", bb, want)
	}
	for _, bad := range []Cone{
		NewCone(r3.Vec{}, r3.Vec{Y: 1}, math.Pi/4, 0, 0),
		NewCone(r3.Vec{}, r3.Vec{Y: 1}, math.Pi/2, 0, 1),
		NewCone(r3.Vec{}, r3.Vec{Y: 1}, math.Pi/4, 2, 1),
	} {
		if _, err := bad.BoundingBox(); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
}
