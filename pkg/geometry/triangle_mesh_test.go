package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

var pyramidVertices = []core.Vec3{
	core.NewVec3(-1, 0, -1),
	core.NewVec3(1, 0, -1),
	core.NewVec3(1, 0, 1),
	core.NewVec3(-1, 0, 1),
	core.NewVec3(0, 1, 0),
}

var pyramidFaces = []int{
	0, 4, 1,
	1, 4, 2,
	2, 4, 3,
	3, 4, 0,
}

func TestNewTriangleMesh(t *testing.T) {
	prims, err := NewTriangleMesh(pyramidVertices, pyramidFaces, grey, nil)
	if err != nil {
		t.Fatalf("NewTriangleMesh failed: %v", err)
	}
	if len(prims) != 4 {
		t.Fatalf("Expected 4 triangles, got %d", len(prims))
	}
	for i, p := range prims {
		if p.Kind != KindTriangle || p.Material() != grey {
			t.Errorf("Triangle %d: unexpected %+v", i, p)
		}
	}
	if prims[1].Triangle.V0 != pyramidVertices[1] {
		t.Errorf("Expected second triangle to start at vertex 1, got %v", prims[1].Triangle.V0)
	}
}

func TestNewTriangleMesh_Options(t *testing.T) {
	red := material.NewLambertian(core.NewVec3(1, 0, 0))
	materials := []material.Material{red, grey, red, grey}

	prims, err := NewTriangleMesh(pyramidVertices, pyramidFaces, grey, &TriangleMeshOptions{
		Materials: materials,
		RotationY: 90,
	})
	if err != nil {
		t.Fatalf("NewTriangleMesh failed: %v", err)
	}

	for i, p := range prims {
		if p.Material() != materials[i] {
			t.Errorf("Triangle %d: expected material %d", i, i)
		}
	}

	// Rotating 90 degrees maps (-1,0,-1) to (-1,0,1)
	v := prims[0].Triangle.V0
	if math.Abs(v.X+1) > 1e-9 || math.Abs(v.Z-1) > 1e-9 {
		t.Errorf("Expected rotated vertex (-1,0,1), got %v", v)
	}
}

func TestNewTriangleMesh_Errors(t *testing.T) {
	tests := []struct {
		name    string
		faces   []int
		options *TriangleMeshOptions
	}{
		{"partial face", []int{0, 1}, nil},
		{"vertex out of range", []int{0, 1, 9}, nil},
		{"negative vertex", []int{0, -1, 2}, nil},
		{"material count", []int{0, 1, 2}, &TriangleMeshOptions{Materials: []material.Material{grey, grey}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTriangleMesh(pyramidVertices, tt.faces, grey, tt.options); !errors.Is(err, ErrInvalidPrimitive) {
				t.Errorf("Expected ErrInvalidPrimitive, got %v", err)
			}
		})
	}
}
