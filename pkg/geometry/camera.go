package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidCamera is returned for a camera with an unusable field of view
var ErrInvalidCamera = errors.New("invalid camera")

// Camera is a pinhole camera looking down +z from Location
type Camera struct {
	Location core.Vec3 `json:"location"`
	FOV      float64   `json:"fov"` // Vertical field of view in degrees
}

// NewCamera creates a camera
func NewCamera(location core.Vec3, fov float64) Camera {
	return Camera{Location: location, FOV: fov}
}

// Validate checks the field of view lies in (0, 180)
func (c Camera) Validate() error {
	if !(c.FOV > 0 && c.FOV < 180) {
		return fmt.Errorf("%w: field of view %g must be in (0,180) degrees", ErrInvalidCamera, c.FOV)
	}
	if !c.Location.IsFinite() {
		return fmt.Errorf("%w: location %v", ErrInvalidCamera, c.Location)
	}
	return nil
}

// GetRay returns the normalized primary ray through the center of pixel
// (row i, column j) of a width x height frame.
func (c Camera) GetRay(i, j, width, height int) core.Ray {
	rayFactor := math.Tan(c.FOV * math.Pi / 180 / 2)
	aspectRatio := float64(width) / float64(height)

	direction := core.NewVec3(
		(2*(float64(j)+0.5)/float64(width)-1)*rayFactor*aspectRatio,
		(1-2*(float64(i)+0.5)/float64(height))*rayFactor,
		1,
	).Normalize()

	return core.NewRay(c.Location, direction)
}
