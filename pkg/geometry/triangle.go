package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// parallelEpsilon rejects rays lying (almost) in the triangle's plane
const parallelEpsilon = 1e-8

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0       core.Vec3         `json:"v0"`
	V1       core.Vec3         `json:"v1"`
	V2       core.Vec3         `json:"v2"`
	Normal   core.Vec3         `json:"normal"` // Precomputed unit normal, (V1-V0)x(V2-V0)
	Material material.Material `json:"material"`
}

// NewTriangle creates a new triangle and precomputes its normal
func NewTriangle(v0, v1, v2 core.Vec3, mat material.Material) Triangle {
	return Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Normal:   v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize(),
		Material: mat,
	}
}

// NewQuad creates the two triangles spanning corner, corner+u, corner+u+v, corner+v
func NewQuad(corner, u, v core.Vec3, mat material.Material) [2]Triangle {
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)
	return [2]Triangle{
		NewTriangle(corner, p1, p2, mat),
		NewTriangle(corner, p2, p3, mat),
	}
}

// Area returns the triangle's surface area
func (t Triangle) Area() float64 {
	return t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length() / 2
}

// IntersectTriangle tests the ray against the triangle using the
// Möller-Trumbore algorithm and returns the hit distance.
func IntersectTriangle(ray core.Ray, t Triangle) (float64, bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle, or the triangle is degenerate
	if a > -parallelEpsilon && a < parallelEpsilon {
		return 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	dist := f * edge2.Dot(q)
	if dist <= HitEpsilon {
		return 0, false
	}
	return dist, true
}
