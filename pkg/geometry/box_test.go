package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestNewBox_Faces(t *testing.T) {
	center := core.NewVec3(1, 2, 3)
	box := NewBox(center, core.NewVec3(1, 2, 0.5), 0, grey)

	if len(box) != 12 {
		t.Fatalf("Expected 12 triangles, got %d", len(box))
	}

	var area float64
	for i, p := range box {
		if p.Kind != KindTriangle {
			t.Fatalf("Primitive %d is not a triangle", i)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("Primitive %d invalid: %v", i, err)
		}
		// Normals point away from the center
		toFace := p.Triangle.V0.Subtract(center)
		if p.Triangle.Normal.Dot(toFace) <= 0 {
			t.Errorf("Triangle %d normal %v faces inward", i, p.Triangle.Normal)
		}
		area += p.Triangle.Area()
	}

	// 2x4x1 box
	expected := 2 * (2*4 + 2*1 + 4*1.0)
	if math.Abs(area-expected) > 1e-9 {
		t.Errorf("Expected surface area %f, got %f", expected, area)
	}
}

func TestNewBox_Rotation(t *testing.T) {
	box := NewBox(core.Vec3{}, core.NewVec3(1, 1, 1), 45, grey)

	// The nearest vertical edge sits at z=-sqrt(2); faces slope back at 45 degrees
	ray := core.NewRay(core.NewVec3(0.2, 0.3, -5), core.NewVec3(0, 0, 1))
	hit, ok := Nearest(ray, box)
	if !ok {
		t.Fatal("Expected hit on rotated box")
	}
	expected := 5 - math.Sqrt2 + 0.2
	if math.Abs(hit.T-expected) > 1e-6 {
		t.Errorf("Expected t=%f, got %f", expected, hit.T)
	}
}
