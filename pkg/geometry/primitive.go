package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrInvalidPrimitive is returned by Validate for malformed geometry
var ErrInvalidPrimitive = errors.New("invalid primitive")

// PrimitiveKind tags the variant held by a Primitive
type PrimitiveKind uint8

const (
	KindSphere PrimitiveKind = iota
	KindTriangle
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("PrimitiveKind(%d)", uint8(k))
	}
}

// Primitive is a closed tagged variant over the supported shapes. Only the
// payload selected by Kind is meaningful.
type Primitive struct {
	Kind     PrimitiveKind `json:"kind"`
	Sphere   Sphere        `json:"sphere"`
	Triangle Triangle      `json:"triangle"`
}

// SpherePrimitive wraps a sphere
func SpherePrimitive(s Sphere) Primitive {
	return Primitive{Kind: KindSphere, Sphere: s}
}

// TrianglePrimitive wraps a triangle
func TrianglePrimitive(t Triangle) Primitive {
	return Primitive{Kind: KindTriangle, Triangle: t}
}

// Material returns the material of the active variant
func (p Primitive) Material() material.Material {
	if p.Kind == KindTriangle {
		return p.Triangle.Material
	}
	return p.Sphere.Material
}

// WithMaterial returns a copy of p with the active variant's material replaced
func (p Primitive) WithMaterial(m material.Material) Primitive {
	if p.Kind == KindTriangle {
		p.Triangle.Material = m
	} else {
		p.Sphere.Material = m
	}
	return p
}

// Validate checks geometric and material invariants
func (p Primitive) Validate() error {
	switch p.Kind {
	case KindSphere:
		if !(p.Sphere.Radius > 0) || math.IsInf(p.Sphere.Radius, 0) {
			return fmt.Errorf("%w: sphere radius %g must be positive", ErrInvalidPrimitive, p.Sphere.Radius)
		}
		if !p.Sphere.Center.IsFinite() {
			return fmt.Errorf("%w: sphere center %v", ErrInvalidPrimitive, p.Sphere.Center)
		}
	case KindTriangle:
		tri := p.Triangle
		if !tri.V0.IsFinite() || !tri.V1.IsFinite() || !tri.V2.IsFinite() {
			return fmt.Errorf("%w: non-finite triangle vertex", ErrInvalidPrimitive)
		}
		if tri.Area() == 0 {
			return fmt.Errorf("%w: degenerate triangle", ErrInvalidPrimitive)
		}
		if n := tri.Normal.Length(); n < 0.999 || n > 1.001 {
			return fmt.Errorf("%w: triangle normal %v is not unit length", ErrInvalidPrimitive, tri.Normal)
		}
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidPrimitive, p.Kind)
	}

	if err := p.Material().Validate(); err != nil {
		return fmt.Errorf("%s: %w", p.Kind, err)
	}
	return nil
}

// Intersect is the single polymorphic intersection entry point
func Intersect(ray core.Ray, p Primitive) (float64, bool) {
	switch p.Kind {
	case KindSphere:
		return IntersectSphere(ray, p.Sphere)
	case KindTriangle:
		return IntersectTriangle(ray, p.Triangle)
	default:
		return 0, false
	}
}

// normalAt returns the shading normal for a hit at point. Triangles are
// two-sided, so their normal is flipped to face the incoming ray.
func (p Primitive) normalAt(ray core.Ray, point core.Vec3) core.Vec3 {
	if p.Kind == KindTriangle {
		if ray.Direction.Dot(p.Triangle.Normal) > 0 {
			return p.Triangle.Normal.Negate()
		}
		return p.Triangle.Normal
	}
	return p.Sphere.Normal(point)
}

// CountKinds returns how many spheres and triangles prims contains
func CountKinds(prims []Primitive) (spheres, triangles int) {
	for _, p := range prims {
		switch p.Kind {
		case KindSphere:
			spheres++
		case KindTriangle:
			triangles++
		}
	}
	return spheres, triangles
}
