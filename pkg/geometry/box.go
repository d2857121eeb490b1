package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewBox returns the 12 triangles of a box with the given center and
// half-extents, rotated about its vertical axis by rotationY degrees.
// Faces wind outward.
func NewBox(center, size core.Vec3, rotationY float64, mat material.Material) []Primitive {
	// Define the 8 corners of a unit box centered at origin
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}

	for i := range corners {
		scaled := core.NewVec3(corners[i].X*size.X, corners[i].Y*size.Y, corners[i].Z*size.Z)
		corners[i] = rotateY(scaled, rotationY).Add(center)
	}

	// Each face is a corner plus two edge vectors
	faces := [6][2]Triangle{
		// Front (Z+): 4-5-6-7
		NewQuad(corners[4], corners[5].Subtract(corners[4]), corners[7].Subtract(corners[4]), mat),
		// Back (Z-): 1-0-3-2
		NewQuad(corners[1], corners[0].Subtract(corners[1]), corners[2].Subtract(corners[1]), mat),
		// Right (X+): 5-1-2-6
		NewQuad(corners[5], corners[1].Subtract(corners[5]), corners[6].Subtract(corners[5]), mat),
		// Left (X-): 0-4-7-3
		NewQuad(corners[0], corners[4].Subtract(corners[0]), corners[3].Subtract(corners[0]), mat),
		// Top (Y+): 3-7-6-2
		NewQuad(corners[3], corners[7].Subtract(corners[3]), corners[2].Subtract(corners[3]), mat),
		// Bottom (Y-): 4-0-1-5
		NewQuad(corners[4], corners[0].Subtract(corners[4]), corners[5].Subtract(corners[4]), mat),
	}

	prims := make([]Primitive, 0, 12)
	for _, face := range faces {
		prims = append(prims, TrianglePrimitive(face[0]), TrianglePrimitive(face[1]))
	}
	return prims
}
