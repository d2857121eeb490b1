package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Materials []material.Material // Optional per-triangle materials
	RotationY float64             // Rotation about the vertical axis through Center, in degrees
	Center    core.Vec3           // Pivot for RotationY
}

// NewTriangleMesh expands an indexed mesh into triangle primitives.
// vertices: array of 3D points
// faces: triangle indices, each group of 3 forms one triangle
// options: optional parameters (can be nil)
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat material.Material, options *TriangleMeshOptions) ([]Primitive, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("%w: %d face indices is not a multiple of 3", ErrInvalidPrimitive, len(faces))
	}
	numTriangles := len(faces) / 3
	if options != nil && options.Materials != nil && len(options.Materials) != numTriangles {
		return nil, fmt.Errorf("%w: %d materials for %d triangles", ErrInvalidPrimitive, len(options.Materials), numTriangles)
	}

	workingVertices := vertices
	if options != nil && options.RotationY != 0 {
		workingVertices = make([]core.Vec3, len(vertices))
		for i, vertex := range vertices {
			workingVertices[i] = rotateY(vertex.Subtract(options.Center), options.RotationY).Add(options.Center)
		}
	}

	prims := make([]Primitive, 0, numTriangles)
	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]
		for _, idx := range [3]int{i0, i1, i2} {
			if idx < 0 || idx >= len(workingVertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidPrimitive, i, idx, len(workingVertices))
			}
		}

		triMaterial := mat
		if options != nil && options.Materials != nil {
			triMaterial = options.Materials[i]
		}
		prims = append(prims, TrianglePrimitive(NewTriangle(workingVertices[i0], workingVertices[i1], workingVertices[i2], triMaterial)))
	}
	return prims, nil
}

// rotateY rotates v about the y axis by degrees
func rotateY(v core.Vec3, degrees float64) core.Vec3 {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return core.NewVec3(v.X*cos+v.Z*sin, v.Y, -v.X*sin+v.Z*cos)
}
