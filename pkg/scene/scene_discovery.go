package scene

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned by NewPreset for an unregistered scene id
var ErrUnknownPreset = errors.New("unknown scene preset")

// PresetInfo describes a built-in scene
type PresetInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // Short description
}

type preset struct {
	info  PresetInfo
	build func() (*Scene, error)
}

var presets = map[string]preset{
	"default": {
		info:  PresetInfo{ID: "default", Name: "Default Scene", Description: "Emissive, mirror and diffuse spheres"},
		build: NewDefaultScene,
	},
	"emissive": {
		info:  PresetInfo{ID: "emissive", Name: "Emissive Sphere", Description: "Single white light sphere in front of the camera"},
		build: NewEmissiveScene,
	},
	"cornell": {
		info:  PresetInfo{ID: "cornell", Name: "Cornell Box", Description: "Triangle walls, ceiling light and two spheres"},
		build: NewCornellScene,
	},
	"cornell-boxes": {
		info:  PresetInfo{ID: "cornell-boxes", Name: "Cornell Box with Blocks", Description: "Triangle walls, ceiling light and two rotated boxes"},
		build: NewCornellBoxesScene,
	},
	"mesh": {
		info:  PresetInfo{ID: "mesh", Name: "Triangle Meshes", Description: "Box, pyramid and icosahedron meshes on a ground quad"},
		build: NewTriangleMeshScene,
	},
	"sphere-grid": {
		info:  PresetInfo{ID: "sphere-grid", Name: "Sphere Grid", Description: "Grid of spheres with varying hue and reflectivity"},
		build: NewSphereGridScene,
	},
}

// Presets lists the built-in scenes sorted by id
func Presets() []PresetInfo {
	infos := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		infos = append(infos, p.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// NewPreset builds the built-in scene with the given id
func NewPreset(id string) (*Scene, error) {
	p, ok := presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	return p.build()
}
