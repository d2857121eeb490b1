package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	Index        int            `json:"index"`
	MaterialType string         `json:"materialType"`
	GeometryType string         `json:"geometryType"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	Properties   map[string]any `json:"properties"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	clamp := func(x float64) int { return int(max(0, min(1, x)) * 255) }
	return fmt.Sprintf("#%02x%02x%02x", clamp(c.X), clamp(c.Y), clamp(c.Z))
}

// extractMaterialInfo classifies a material and lists its properties
func extractMaterialInfo(m material.Material) (string, map[string]any) {
	properties := map[string]any{
		"baseColor":    vecArray(m.BaseColor),
		"color":        hexColor(m.BaseColor),
		"reflectivity": m.Reflectivity,
	}

	switch {
	case m.IsEmissive():
		properties["emission"] = vecArray(m.Emission())
		properties["emissiveStrength"] = m.EmissiveStrength
		return "emissive", properties
	case m.Reflectivity >= 1:
		return "mirror", properties
	case m.Reflectivity > 0:
		return "metal", properties
	default:
		return "lambertian", properties
	}
}

// extractGeometryInfo lists the shape parameters of a primitive
func extractGeometryInfo(p geometry.Primitive) (string, map[string]any) {
	properties := make(map[string]any)

	switch p.Kind {
	case geometry.KindSphere:
		properties["center"] = vecArray(p.Sphere.Center)
		properties["radius"] = p.Sphere.Radius
	case geometry.KindTriangle:
		properties["v0"] = vecArray(p.Triangle.V0)
		properties["v1"] = vecArray(p.Triangle.V1)
		properties["v2"] = vecArray(p.Triangle.V2)
	}
	return p.Kind.String(), properties
}

// inspectPixel casts the primary ray through the center of pixel (x, y) and
// describes the nearest primitive it hits
func inspectPixel(snap *scene.Snapshot, width, height, x, y int) InspectResponse {
	ray := snap.Camera.GetRay(y, x, width, height)
	hit, ok := geometry.Nearest(ray, snap.Primitives)
	if !ok {
		return InspectResponse{Hit: false, Index: -1}
	}

	prim := snap.Primitives[hit.Index]
	materialType, materialProps := extractMaterialInfo(hit.Material)
	geometryType, geometryProps := extractGeometryInfo(prim)

	return InspectResponse{
		Hit:          true,
		Index:        hit.Index,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.T,
		Properties: map[string]any{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}
}

// handleInspect handles ray casting inspection requests against the current
// scene and viewport
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	width, height := s.viewport.FrameSize()

	pixelX, err := parseIntParam(r.URL.Query(), "x", -1, 0, width-1)
	if err != nil {
		writeError(w, err)
		return
	}
	pixelY, err := parseIntParam(r.URL.Query(), "y", -1, 0, height-1)
	if err != nil {
		writeError(w, err)
		return
	}
	if pixelX < 0 || pixelY < 0 {
		writeError(w, fmt.Errorf("%w: x and y are required", errBadRequest))
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(s.current().scene.Snapshot(), width, height, pixelX, pixelY))
}
