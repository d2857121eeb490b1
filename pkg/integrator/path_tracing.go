package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

const (
	// SurfaceEpsilon is the offset along the normal applied to bounce origins
	SurfaceEpsilon = 0.001
	// AttenuationDecay is the fixed per-bounce falloff of the path weight
	AttenuationDecay = 0.75
)

// PathTracer implements iterative unidirectional path tracing with a
// reflectivity-blended diffuse/specular bounce.
type PathTracer struct {
	BounceLimit int
	Background  core.Vec3
}

// NewPathTracer creates a new path tracer
func NewPathTracer(bounceLimit int, background core.Vec3) *PathTracer {
	return &PathTracer{BounceLimit: bounceLimit, Background: background}
}

// RayColor traces ray through prims for at most BounceLimit bounces.
// BounceLimit must be at least 1; with 0 no bounce runs and black is returned.
func (pt *PathTracer) RayColor(ray core.Ray, prims []geometry.Primitive, sampler *core.Sampler) core.Vec3 {
	light := core.Vec3{}
	throughput := core.Splat(1)
	attenuation := 1.0

	for bounce := 0; bounce < pt.BounceLimit; bounce++ {
		hit, isHit := geometry.Nearest(ray, prims)
		if !isHit {
			if bounce == 0 {
				return pt.Background
			}
			// A miss counts as hitting the sky once, then the path ends
			return light.Add(pt.Background.MultiplyVec(throughput).Multiply(attenuation))
		}

		mat := hit.Material
		light = light.Add(mat.Emission().Multiply(attenuation))

		ray = core.NewRay(
			hit.Point.Add(hit.Normal.Multiply(SurfaceEpsilon)),
			scatterDirection(ray.Direction, hit.Normal, mat.Reflectivity, sampler),
		)

		throughput = throughput.MultiplyVec(mat.BaseColor)
		attenuation *= AttenuationDecay
	}

	return light
}

// scatterDirection blends a cosine-weighted diffuse direction with the mirror
// reflection of incoming about normal.
func scatterDirection(incoming, normal core.Vec3, reflectivity float64, sampler *core.Sampler) core.Vec3 {
	diffuseSample := sampler.UnitSphere()
	if diffuseSample.Dot(normal) < 0 {
		diffuseSample = diffuseSample.Negate()
	}
	diffuse := normal.Add(diffuseSample).Normalize()
	specular := incoming.Reflect(normal)

	return diffuse.Multiply(1 - reflectivity).Add(specular.Multiply(reflectivity)).Normalize()
}
