package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

func TestNearest_OverlappingSpheres(t *testing.T) {
	red := material.NewLambertian(core.NewVec3(1, 0, 0))
	green := material.NewLambertian(core.NewVec3(0, 1, 0))

	prims := []Primitive{
		// Farther sphere first, so ordering alone cannot explain the result
		SpherePrimitive(NewSphere(core.NewVec3(0, 0, 6), 2, red)),
		SpherePrimitive(NewSphere(core.NewVec3(0, 0, 4), 1.5, green)),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	hit, ok := Nearest(ray, prims)
	if !ok {
		t.Fatal("Expected a hit")
	}
	if hit.Index != 1 {
		t.Errorf("Expected nearest primitive 1, got %d", hit.Index)
	}
	if math.Abs(hit.T-2.5) > 1e-9 {
		t.Errorf("Expected t=2.5, got %f", hit.T)
	}
	if hit.Material != green {
		t.Errorf("Expected green material, got %v", hit.Material)
	}
	if hit.Normal.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-9 {
		t.Errorf("Expected normal (0,0,-1), got %v", hit.Normal)
	}
}

func TestNearest_TieKeepsFirst(t *testing.T) {
	a := material.NewLambertian(core.NewVec3(1, 0, 0))
	b := material.NewLambertian(core.NewVec3(0, 0, 1))
	prims := []Primitive{
		SpherePrimitive(NewSphere(core.NewVec3(0, 0, 3), 1, a)),
		SpherePrimitive(NewSphere(core.NewVec3(0, 0, 3), 1, b)),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	hit, ok := Nearest(ray, prims)
	if !ok || hit.Index != 0 {
		t.Errorf("Expected first primitive on tie, got index %d (hit=%v)", hit.Index, ok)
	}
}

func TestNearest_MixedKinds(t *testing.T) {
	wall := NewTriangle(core.NewVec3(-5, -5, 2), core.NewVec3(5, -5, 2), core.NewVec3(0, 5, 2), grey)
	prims := []Primitive{
		SpherePrimitive(NewSphere(core.NewVec3(0, 0, 5), 1, grey)),
		TrianglePrimitive(wall),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	hit, ok := Nearest(ray, prims)
	if !ok {
		t.Fatal("Expected a hit")
	}
	if hit.Index != 1 || math.Abs(hit.T-2) > 1e-9 {
		t.Errorf("Expected triangle hit at t=2, got index %d t=%f", hit.Index, hit.T)
	}
	// Two-sided triangle: normal must face the incoming ray
	if hit.Normal.Dot(ray.Direction) >= 0 {
		t.Errorf("Expected normal facing the ray, got %v", hit.Normal)
	}
}

func TestNearest_Empty(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	if _, ok := Nearest(ray, nil); ok {
		t.Error("Expected no hit for empty primitive list")
	}
}

func TestPrimitive_Validate(t *testing.T) {
	tests := []struct {
		name    string
		prim    Primitive
		wantErr error
	}{
		{"Valid sphere", SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), 1, grey)), nil},
		{"Zero radius", SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), 0, grey)), ErrInvalidPrimitive},
		{"Negative radius", SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), -2, grey)), ErrInvalidPrimitive},
		{"NaN radius", SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), math.NaN(), grey)), ErrInvalidPrimitive},
		{"Valid triangle", TrianglePrimitive(NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), grey)), nil},
		{"Degenerate triangle", TrianglePrimitive(NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0), grey)), ErrInvalidPrimitive},
		{"Bad material", SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), 1, material.Material{Reflectivity: 2})), material.ErrInvalidMaterial},
		{"Unknown kind", Primitive{Kind: 7}, ErrInvalidPrimitive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prim.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPrimitive_WithMaterial(t *testing.T) {
	mirror := material.NewMetal(core.NewVec3(1, 1, 1), 1)

	s := SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), 1, grey)).WithMaterial(mirror)
	if s.Material() != mirror {
		t.Errorf("Sphere material not replaced: %v", s.Material())
	}

	tri := TrianglePrimitive(NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), grey)).WithMaterial(mirror)
	if tri.Material() != mirror {
		t.Errorf("Triangle material not replaced: %v", tri.Material())
	}
}

func TestCountKinds(t *testing.T) {
	prims := []Primitive{
		SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), 1, grey)),
		TrianglePrimitive(NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), grey)),
		SpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), 1, grey)),
	}
	spheres, triangles := CountKinds(prims)
	if spheres != 2 || triangles != 1 {
		t.Errorf("Expected 2 spheres and 1 triangle, got %d and %d", spheres, triangles)
	}
}
