package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewTriangleMeshScene creates a scene showcasing triangle meshes: a box, a
// pyramid and an icosahedron on a ground quad, lit by two emissive spheres.
func NewTriangleMeshScene() (*Scene, error) {
	camera := geometry.NewCamera(core.NewVec3(0, 1.5, -6), 45)

	// Create materials
	ground := material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))
	redMetal := material.NewMetal(core.NewVec3(0.8, 0.2, 0.2), 0.9)
	blueLambertian := material.NewLambertian(core.NewVec3(0.2, 0.3, 0.8))
	goldMetal := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.95)
	warmLight := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1, 0.92, 0.83), 12)
	coolLight := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(0.75, 0.875, 1), 8)

	floor := geometry.NewQuad(core.NewVec3(-10, 0, -10), core.NewVec3(0, 0, 20), core.NewVec3(20, 0, 0), ground)
	prims := []geometry.Primitive{
		geometry.TrianglePrimitive(floor[0]),
		geometry.TrianglePrimitive(floor[1]),
		// Main overhead light and secondary fill light
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(2, 6, 3), 1.5, warmLight)),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(-3, 4, 2), 0.8, coolLight)),
	}

	// Box rotated to show multiple faces
	prims = append(prims, geometry.NewBox(core.NewVec3(-2, 0.5, 0), core.NewVec3(0.5, 0.5, 0.5), 30, redMetal)...)

	pyramid, err := createPyramidMesh(core.NewVec3(0, 1, 0), 1.5, 2, 45, blueLambertian)
	if err != nil {
		return nil, err
	}
	prims = append(prims, pyramid...)

	icosahedron, err := createIcosahedronMesh(core.NewVec3(2, 0.8, 0), 0.8, 60, goldMetal)
	if err != nil {
		return nil, err
	}
	prims = append(prims, icosahedron...)

	return New("mesh", camera, prims...)
}

// createPyramidMesh creates a square-based pyramid rotated about its vertical axis
func createPyramidMesh(center core.Vec3, baseSize, height, rotationY float64, mat material.Material) ([]geometry.Primitive, error) {
	halfBase := baseSize * 0.5
	halfHeight := height * 0.5

	vertices := []core.Vec3{
		// Base vertices
		center.Add(core.NewVec3(-halfBase, -halfHeight, -halfBase)), // 0: left-back
		center.Add(core.NewVec3(+halfBase, -halfHeight, -halfBase)), // 1: right-back
		center.Add(core.NewVec3(+halfBase, -halfHeight, +halfBase)), // 2: right-front
		center.Add(core.NewVec3(-halfBase, -halfHeight, +halfBase)), // 3: left-front
		// Apex
		center.Add(core.NewVec3(0, +halfHeight, 0)), // 4
	}

	faces := []int{
		// Base
		0, 2, 1, 0, 3, 2,
		// Sides
		0, 1, 4,
		1, 2, 4,
		2, 3, 4,
		3, 0, 4,
	}

	return geometry.NewTriangleMesh(vertices, faces, mat, &geometry.TriangleMeshOptions{
		RotationY: rotationY,
		Center:    center,
	})
}

// createIcosahedronMesh creates a 20-sided polyhedron with the given circumradius
func createIcosahedronMesh(center core.Vec3, radius, rotationY float64, mat material.Material) ([]geometry.Primitive, error) {
	phi := math.Phi
	scale := radius / math.Sqrt(1+phi*phi)

	unit := []core.Vec3{
		core.NewVec3(-1, phi, 0),
		core.NewVec3(1, phi, 0),
		core.NewVec3(-1, -phi, 0),
		core.NewVec3(1, -phi, 0),
		core.NewVec3(0, -1, phi),
		core.NewVec3(0, 1, phi),
		core.NewVec3(0, -1, -phi),
		core.NewVec3(0, 1, -phi),
		core.NewVec3(phi, 0, -1),
		core.NewVec3(phi, 0, 1),
		core.NewVec3(-phi, 0, -1),
		core.NewVec3(-phi, 0, 1),
	}
	vertices := make([]core.Vec3, len(unit))
	for i, v := range unit {
		vertices[i] = center.Add(v.Multiply(scale))
	}

	faces := []int{
		// 5 faces around vertex 0
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		// 5 adjacent faces
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		// 5 faces around vertex 3
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		// 5 adjacent faces
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	return geometry.NewTriangleMesh(vertices, faces, mat, &geometry.TriangleMeshOptions{
		RotationY: rotationY,
		Center:    center,
	})
}
