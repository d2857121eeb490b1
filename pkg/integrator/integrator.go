package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance arriving along ray. The sampler is owned
	// by the caller and advanced in place.
	RayColor(ray core.Ray, prims []geometry.Primitive, sampler *core.Sampler) core.Vec3
}
