package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewDefaultScene creates the three-sphere scene: an emissive red sphere, a
// mirror green sphere and a diffuse blue sphere.
func NewDefaultScene() (*Scene, error) {
	camera := geometry.NewCamera(core.NewVec3(0, 0, -5), 45)

	// Create materials
	emissiveRed := material.NewEmissive(core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 1), 1)
	mirrorGreen := material.NewMetal(core.NewVec3(0, 1, 0), 1)
	diffuseBlue := material.NewLambertian(core.NewVec3(0, 0, 1))

	return New("default", camera,
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(1, 0, 3), 1, emissiveRed)),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(-1, 0, 3), 1, mirrorGreen)),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 2, 3), 1, diffuseBlue)),
	)
}

// NewEmissiveScene creates a single white-emitting unit sphere at (0,0,3)
// seen from the origin with a 45 degree field of view.
func NewEmissiveScene() (*Scene, error) {
	camera := geometry.NewCamera(core.NewVec3(0, 0, 0), 45)
	light := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1)

	return New("emissive", camera,
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 3), 1, light)),
	)
}
