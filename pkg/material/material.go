package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidMaterial is returned when a material parameter is out of range
var ErrInvalidMaterial = errors.New("invalid material")

// Material describes both the diffuse albedo and the emission of a surface.
// Reflectivity blends between diffuse (0) and mirror-like (1) scattering.
type Material struct {
	BaseColor        core.Vec3 `json:"baseColor"`        // Albedo, each channel in [0,1]
	Reflectivity     float64   `json:"reflectivity"`     // 0 = diffuse, 1 = perfect mirror
	EmissiveStrength float64   `json:"emissiveStrength"` // Scale applied to EmissionColor, >= 0
	EmissionColor    core.Vec3 `json:"emissionColor"`    // Color of emitted light
}

// NewLambertian creates a purely diffuse, non-emissive material
func NewLambertian(baseColor core.Vec3) Material {
	return Material{BaseColor: baseColor}
}

// NewMetal creates a material that blends toward mirror reflection.
// Reflectivity is clamped to [0,1].
func NewMetal(baseColor core.Vec3, reflectivity float64) Material {
	return Material{
		BaseColor:    baseColor,
		Reflectivity: max(0, min(1, reflectivity)),
	}
}

// NewEmissive creates a light-emitting material
func NewEmissive(baseColor, emissionColor core.Vec3, strength float64) Material {
	return Material{
		BaseColor:        baseColor,
		EmissionColor:    emissionColor,
		EmissiveStrength: strength,
	}
}

// Emission returns the radiance emitted by the surface (strength * color)
func (m Material) Emission() core.Vec3 {
	return m.EmissionColor.Multiply(m.EmissiveStrength)
}

// IsEmissive reports whether the material contributes light directly
func (m Material) IsEmissive() bool {
	return m.EmissiveStrength > 0 && m.EmissionColor.LengthSquared() > 0
}

// Validate checks the material invariants
func (m Material) Validate() error {
	if !m.BaseColor.IsFinite() || !m.BaseColor.InRange(0, 1) {
		return fmt.Errorf("%w: base color %v outside [0,1]", ErrInvalidMaterial, m.BaseColor)
	}
	if m.Reflectivity < 0 || m.Reflectivity > 1 {
		return fmt.Errorf("%w: reflectivity %g outside [0,1]", ErrInvalidMaterial, m.Reflectivity)
	}
	if m.EmissiveStrength < 0 {
		return fmt.Errorf("%w: negative emissive strength %g", ErrInvalidMaterial, m.EmissiveStrength)
	}
	if !m.EmissionColor.IsFinite() || m.EmissionColor.X < 0 || m.EmissionColor.Y < 0 || m.EmissionColor.Z < 0 {
		return fmt.Errorf("%w: emission color %v must be non-negative", ErrInvalidMaterial, m.EmissionColor)
	}
	return nil
}
