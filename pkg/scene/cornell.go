package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewCornellScene creates a Cornell box built from triangle walls with an
// emissive ceiling panel and two spheres.
func NewCornellScene() (*Scene, error) {
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	prims := cornellWalls(white)

	// Left sphere (mirror), right sphere (diffuse white)
	prims = append(prims,
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, material.NewMetal(core.NewVec3(0.8, 0.8, 0.9), 1))),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(370, 90, 351), 90, white)),
	)

	return New("cornell", cornellCamera(), prims...)
}

// NewCornellBoxesScene creates the classic Cornell box with a tall and a
// short rotated block instead of spheres
func NewCornellBoxesScene() (*Scene, error) {
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	prims := cornellWalls(white)

	// Tall box (back right) and short box (front left)
	prims = append(prims, geometry.NewBox(core.NewVec3(368, 165, 351), core.NewVec3(82.5, 165, 82.5), 15, white)...)
	prims = append(prims, geometry.NewBox(core.NewVec3(183, 82.5, 169), core.NewVec3(82.5, 82.5, 82.5), -18, white)...)

	return New("cornell-boxes", cornellCamera(), prims...)
}

// cornellCamera sits outside the open front of the box, looking down +z
func cornellCamera() geometry.Camera {
	return geometry.NewCamera(core.NewVec3(278, 278, -800), 40)
}

// cornellWalls returns the five walls and the ceiling light as triangles
func cornellWalls(white material.Material) []geometry.Primitive {
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))
	light := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 15)

	// Cornell box dimensions (standard 555x555x555 units)
	boxSize := 555.0

	walls := [][2]geometry.Triangle{
		// Floor - XZ plane at y=0
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white),
		// Ceiling - XZ plane at y=boxSize
		geometry.NewQuad(core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white),
		// Back wall - XY plane at z=boxSize
		geometry.NewQuad(core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), white),
		// Left wall (red) - YZ plane at x=0
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), red),
		// Right wall (green) - YZ plane at x=boxSize
		geometry.NewQuad(core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), green),
	}

	// Ceiling light: smaller panel just below the ceiling
	lightSize := 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	walls = append(walls, geometry.NewQuad(
		core.NewVec3(lightOffset, boxSize-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		light,
	))

	prims := make([]geometry.Primitive, 0, 2*len(walls))
	for _, quad := range walls {
		prims = append(prims, geometry.TrianglePrimitive(quad[0]), geometry.TrianglePrimitive(quad[1]))
	}
	return prims
}
