package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// HitRecord contains information about a ray-primitive intersection
type HitRecord struct {
	T        float64           // Distance along the ray
	Point    core.Vec3         // Point of intersection
	Normal   core.Vec3         // Unit surface normal at the intersection
	Material material.Material // Material of the hit primitive
	Index    int               // Index of the hit primitive
}

// Nearest returns the globally nearest positive hit among prims. On exactly
// equal distances the first primitive in order wins.
func Nearest(ray core.Ray, prims []Primitive) (HitRecord, bool) {
	closest := math.Inf(1)
	index := -1

	for i := range prims {
		if t, ok := Intersect(ray, prims[i]); ok && t < closest {
			closest = t
			index = i
		}
	}

	if index < 0 {
		return HitRecord{}, false
	}

	p := &prims[index]
	point := ray.At(closest)
	return HitRecord{
		T:        closest,
		Point:    point,
		Normal:   p.normalAt(ray, point),
		Material: p.Material(),
		Index:    index,
	}, true
}
