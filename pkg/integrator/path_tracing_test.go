package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

var gray = core.NewVec3(0.5, 0.5, 0.5)

// emissiveScene is a white light sphere of radius 1 at (0,0,3)
func emissiveScene() ([]geometry.Primitive, geometry.Camera) {
	light := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1)
	prims := []geometry.Primitive{
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 3), 1, light)),
	}
	return prims, geometry.NewCamera(core.NewVec3(0, 0, 0), 45)
}

func vecClose(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// TestBackgroundFallback checks that an empty scene returns exactly the background
func TestBackgroundFallback(t *testing.T) {
	background := core.NewVec3(0.2, 0.4, 0.6)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	for _, limit := range []int{1, 2, 5, 32} {
		pt := NewPathTracer(limit, background)
		got := pt.RayColor(ray, nil, core.NewSampler(1, 0))
		if got != background {
			t.Errorf("bounce limit %d: got %v, want %v", limit, got, background)
		}
	}
}

// TestPathTracingDeterminism checks identical seeds produce identical radiance
func TestPathTracingDeterminism(t *testing.T) {
	mirror := material.NewMetal(core.NewVec3(0.9, 0.9, 0.9), 0.3)
	diffuse := material.NewLambertian(core.NewVec3(0.8, 0.2, 0.2))
	light := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 2)
	prims := []geometry.Primitive{
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 4), 1, diffuse)),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(2, 0, 4), 1, mirror)),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 3, 4), 1, light)),
	}
	camera := geometry.NewCamera(core.Vec3{}, 60)
	pt := NewPathTracer(8, gray)

	for _, pixel := range [][2]int{{16, 16}, {10, 20}, {0, 0}} {
		ray := camera.GetRay(pixel[0], pixel[1], 32, 32)
		a := pt.RayColor(ray, prims, core.NewSampler(7, 3))
		b := pt.RayColor(ray, prims, core.NewSampler(7, 3))
		if a != b {
			t.Errorf("pixel %v: %v != %v", pixel, a, b)
		}
	}
}

// TestEmissiveSphereScenario renders the center and a corner pixel of the
// single-light scene with one bounce
func TestEmissiveSphereScenario(t *testing.T) {
	prims, camera := emissiveScene()
	pt := NewPathTracer(1, gray)
	const width, height = 64, 64

	center := camera.GetRay(height/2, width/2, width, height)
	if _, ok := geometry.Nearest(center, prims); !ok {
		t.Fatal("center ray should hit the sphere")
	}
	got := pt.RayColor(center, prims, core.NewSampler(1, 0))
	if !vecClose(got, core.NewVec3(1, 1, 1), 1e-12) {
		t.Errorf("center pixel = %v, want white", got)
	}

	corner := camera.GetRay(0, 0, width, height)
	if _, ok := geometry.Nearest(corner, prims); ok {
		t.Fatal("corner ray should miss the sphere")
	}
	if got := pt.RayColor(corner, prims, core.NewSampler(1, 0)); got != gray {
		t.Errorf("corner pixel = %v, want exactly %v", got, gray)
	}
}

// TestZeroBounceLimit documents the caller contract: no bounce, no light
func TestZeroBounceLimit(t *testing.T) {
	prims, camera := emissiveScene()
	pt := NewPathTracer(0, gray)
	ray := camera.GetRay(32, 32, 64, 64)
	if got := pt.RayColor(ray, prims, core.NewSampler(1, 0)); got != (core.Vec3{}) {
		t.Errorf("bounce limit 0 = %v, want black", got)
	}
}

// TestSkyAfterBounce checks the second-bounce miss formula
func TestSkyAfterBounce(t *testing.T) {
	// Perfect mirror facing the camera: the reflected ray always escapes
	mirror := material.NewMetal(core.NewVec3(0.5, 1, 1), 1)
	prims := []geometry.Primitive{
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 3), 1, mirror)),
	}
	background := core.NewVec3(1, 1, 1)
	pt := NewPathTracer(4, background)

	got := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), prims, core.NewSampler(1, 0))
	want := core.NewVec3(0.5*AttenuationDecay, AttenuationDecay, AttenuationDecay)
	if !vecClose(got, want, 1e-9) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestEmissionAttenuatesPerBounce checks emission seen after one mirror bounce
// is scaled by the decayed attenuation but not by throughput
func TestEmissionAttenuatesPerBounce(t *testing.T) {
	mirror := material.NewMetal(core.NewVec3(0.1, 0.1, 0.1), 1)
	light := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1)
	prims := []geometry.Primitive{
		// Mirror in front of the camera, light behind the camera
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 3), 1, mirror)),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, light)),
	}
	pt := NewPathTracer(2, core.Vec3{})

	got := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), prims, core.NewSampler(1, 0))
	want := core.Splat(AttenuationDecay)
	if !vecClose(got, want, 1e-9) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestScatterDirectionHemisphere checks diffuse bounces stay above the surface
func TestScatterDirectionHemisphere(t *testing.T) {
	sampler := core.NewSampler(42, 0)
	normal := core.NewVec3(0, 1, 0)
	incoming := core.NewVec3(1, -1, 0).Normalize()

	for i := 0; i < 1000; i++ {
		dir := scatterDirection(incoming, normal, 0, sampler)
		if dir.Dot(normal) < 0 {
			t.Fatalf("diffuse direction %v below surface", dir)
		}
		if math.Abs(dir.Length()-1) > 1e-9 {
			t.Fatalf("direction %v not unit length", dir)
		}
	}

	mirror := scatterDirection(incoming, normal, 1, sampler)
	if !vecClose(mirror, core.NewVec3(1, 1, 0).Normalize(), 1e-12) {
		t.Errorf("mirror direction = %v", mirror)
	}
}
