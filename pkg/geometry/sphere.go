package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// HitEpsilon is the minimum accepted hit distance. It keeps a ray that just
// left a surface from re-hitting it.
const HitEpsilon = 0.001

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3         `json:"center"`
	Radius   float64           `json:"radius"`
	Material material.Material `json:"material"`
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// IntersectSphere returns the distance along the ray to the nearest accepted
// intersection. The ray direction must be unit length, which makes the
// quadratic's leading coefficient 1.
func IntersectSphere(ray core.Ray, s Sphere) (float64, bool) {
	if s.Radius <= 0 {
		return 0, false
	}

	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - c
	if discriminant < 0 {
		return 0, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	if t0 := -b - sqrtD; t0 > HitEpsilon {
		return t0, true
	}
	// Origin inside the sphere (or just left it): take the far root
	if t1 := -b + sqrtD; t1 > HitEpsilon {
		return t1, true
	}
	return 0, false
}

// Normal returns the outward unit normal at a point on the sphere surface
func (s Sphere) Normal(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}
