package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestIntersectTriangle(t *testing.T) {
	// Create a triangle in the XY plane
	v0 := core.NewVec3(0, 0, 0)
	v1 := core.NewVec3(1, 0, 0)
	v2 := core.NewVec3(0, 1, 0)
	triangle := NewTriangle(v0, v1, v2, grey)

	tests := []struct {
		name      string
		ray       core.Ray
		shouldHit bool
		expectedT float64
	}{
		{
			name:      "Ray hits triangle center",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1)),
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Ray hits triangle edge",
			ray:       core.NewRay(core.NewVec3(0.5, 0, -1), core.NewVec3(0, 0, 1)),
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Ray hits from the back side",
			ray:       core.NewRay(core.NewVec3(0.2, 0.2, 2), core.NewVec3(0, 0, -1)),
			shouldHit: true,
			expectedT: 2.0,
		},
		{
			name:      "Ray misses triangle",
			ray:       core.NewRay(core.NewVec3(1, 1, -1), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
		{
			name:      "Ray parallel to triangle",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(1, 0, 0)),
			shouldHit: false,
		},
		{
			name:      "Triangle behind ray",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, hit := IntersectTriangle(tt.ray, triangle)

			if hit != tt.shouldHit {
				t.Fatalf("Expected hit=%v, got hit=%v", tt.shouldHit, hit)
			}
			if hit && math.Abs(dist-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, dist)
			}
		})
	}
}

func TestNewTriangle_Normal(t *testing.T) {
	triangle := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), grey)

	if triangle.Normal != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected normal (0,0,1), got %v", triangle.Normal)
	}
	if math.Abs(triangle.Area()-0.5) > 1e-12 {
		t.Errorf("Expected area 0.5, got %f", triangle.Area())
	}
}

func TestNewQuad(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), grey)

	total := quad[0].Area() + quad[1].Area()
	if math.Abs(total-4) > 1e-12 {
		t.Errorf("Expected total area 4, got %f", total)
	}
	for i, tri := range quad {
		if tri.Normal != core.NewVec3(0, 0, 1) {
			t.Errorf("Triangle %d: expected normal (0,0,1), got %v", i, tri.Normal)
		}
	}

	// A ray through the middle of the second triangle
	ray := core.NewRay(core.NewVec3(0.5, 1.5, -1), core.NewVec3(0, 0, 1))
	if _, hit := IntersectTriangle(ray, quad[1]); !hit {
		t.Error("Expected ray to hit the second quad triangle")
	}
}
