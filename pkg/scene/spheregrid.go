package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	// Convert hue from degrees to radians
	hRad := h * math.Pi / 180.0

	// Convert from OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a wall of spheres whose hue varies by column and
// whose reflectivity varies by row, lit by a large emissive sphere overhead.
func NewSphereGridScene() (*Scene, error) {
	const (
		columns = 8
		rows    = 5
		spacing = 1.0
		radius  = 0.4
		depth   = 8.0
	)

	center := core.NewVec3(float64(columns-1)*spacing/2, float64(rows-1)*spacing/2, depth)
	camera := geometry.NewCamera(core.NewVec3(center.X, center.Y, -4), 45)

	prims := []geometry.Primitive{
		geometry.SpherePrimitive(geometry.NewSphere(
			core.NewVec3(center.X, center.Y+14, depth),
			8,
			material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1.0, 0.95, 0.85), 4),
		)),
	}

	for row := 0; row < rows; row++ {
		reflectivity := float64(row) / float64(rows-1)
		for col := 0; col < columns; col++ {
			hue := float64(col) / float64(columns) * 360.0
			color := oklchToRGB(0.7, 0.15, hue)

			position := core.NewVec3(float64(col)*spacing, float64(row)*spacing, depth)
			sphere := geometry.NewSphere(position, radius, material.NewMetal(color, reflectivity))
			prims = append(prims, geometry.SpherePrimitive(sphere))
		}
	}

	return New("sphere-grid", camera, prims...)
}
