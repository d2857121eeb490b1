// Package gpu describes the data the compute path tracer shares with the GPU:
// std430 primitive records, the std140 parameter block, binding points and
// the embedded compute shader. It has no dependency on a GL context.
package gpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// WorkgroupSize is the local size of the compute shader in x and y
const WorkgroupSize = 16

// Binding points shared with shaders/pathtrace.comp
const (
	ImageUnit       = 0 // rgba32f accumulation/output image
	SphereBinding   = 0 // std430 SSBO of SphereRecord
	TriangleBinding = 1 // std430 SSBO of TriangleRecord
	ParamsBinding   = 2 // std140 UBO holding ParamsBlock
)

// Record sizes in bytes
const (
	SphereRecordSize   = 48
	TriangleRecordSize = 96
	ParamsBlockSize    = 64
)

// SphereRecord is the std430 layout of one sphere. Every vec3 is packed with
// a scalar into the w lane so no implicit padding is needed.
type SphereRecord struct {
	CenterRadius          mgl32.Vec4 // offset  0: center.xyz, radius
	BaseColorReflectivity mgl32.Vec4 // offset 16: baseColor.rgb, reflectivity
	EmissionStrength      mgl32.Vec4 // offset 32: emissionColor.rgb, emissiveStrength
}

// TriangleRecord is the std430 layout of one triangle
type TriangleRecord struct {
	V0                    mgl32.Vec4 // offset  0: xyz, unused
	V1                    mgl32.Vec4 // offset 16
	V2                    mgl32.Vec4 // offset 32
	Normal                mgl32.Vec4 // offset 48: precomputed unit normal
	BaseColorReflectivity mgl32.Vec4 // offset 64
	EmissionStrength      mgl32.Vec4 // offset 80
}

// ParamsBlock is the std140 layout of the per-frame parameters
type ParamsBlock struct {
	SphereCount   uint32     // offset  0
	TriangleCount uint32     // offset  4
	FrameIndex    uint32     // offset  8
	Accumulate    uint32     // offset 12: 0 or 1
	BounceLimit   uint32     // offset 16
	Seed          uint32     // offset 20
	Sequence      uint32     // offset 24
	_pad          uint32     // offset 28
	Background    mgl32.Vec4 // offset 32: rgb, unused
	Camera        mgl32.Vec4 // offset 48: location.xyz, fov in degrees
}

func vec4(v core.Vec3, w float64) mgl32.Vec4 {
	return mgl32.Vec4{float32(v.X), float32(v.Y), float32(v.Z), float32(w)}
}

// NewSphereRecord packs a sphere
func NewSphereRecord(s geometry.Sphere) SphereRecord {
	return SphereRecord{
		CenterRadius:          vec4(s.Center, s.Radius),
		BaseColorReflectivity: vec4(s.Material.BaseColor, s.Material.Reflectivity),
		EmissionStrength:      vec4(s.Material.EmissionColor, s.Material.EmissiveStrength),
	}
}

// NewTriangleRecord packs a triangle
func NewTriangleRecord(t geometry.Triangle) TriangleRecord {
	return TriangleRecord{
		V0:                    vec4(t.V0, 0),
		V1:                    vec4(t.V1, 0),
		V2:                    vec4(t.V2, 0),
		Normal:                vec4(t.Normal, 0),
		BaseColorReflectivity: vec4(t.Material.BaseColor, t.Material.Reflectivity),
		EmissionStrength:      vec4(t.Material.EmissionColor, t.Material.EmissiveStrength),
	}
}

// PackScene splits a snapshot into per-kind record arrays, keeping the scene
// order within each kind.
func PackScene(snap *scene.Snapshot) ([]SphereRecord, []TriangleRecord) {
	spheres, triangles := snap.Counts()
	sphereRecs := make([]SphereRecord, 0, spheres)
	triangleRecs := make([]TriangleRecord, 0, triangles)

	for _, p := range snap.Primitives {
		switch p.Kind {
		case geometry.KindSphere:
			sphereRecs = append(sphereRecs, NewSphereRecord(p.Sphere))
		case geometry.KindTriangle:
			triangleRecs = append(triangleRecs, NewTriangleRecord(p.Triangle))
		}
	}
	return sphereRecs, triangleRecs
}

// NewParamsBlock packs the frame parameters and camera
func NewParamsBlock(params renderer.RenderParams, camera geometry.Camera) ParamsBlock {
	var accumulate uint32
	if params.Accumulate {
		accumulate = 1
	}
	return ParamsBlock{
		SphereCount:   uint32(params.SphereCount),
		TriangleCount: uint32(params.TriangleCount),
		FrameIndex:    params.FrameIndex,
		Accumulate:    accumulate,
		BounceLimit:   uint32(max(params.BounceLimit, 0)),
		Seed:          params.Seed,
		Sequence:      params.Sequence,
		Background:    vec4(params.Background, 0),
		Camera:        vec4(camera.Location, camera.FOV),
	}
}

// WorkgroupCounts returns the number of workgroups needed to cover a frame
func WorkgroupCounts(width, height int) (x, y uint32) {
	return uint32((width + WorkgroupSize - 1) / WorkgroupSize), uint32((height + WorkgroupSize - 1) / WorkgroupSize)
}

func putVec4(buf []byte, v mgl32.Vec4) {
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}

// Size returns the size of the record in bytes (48)
func (r *SphereRecord) Size() int {
	return int(unsafe.Sizeof(*r))
}

// MarshalTo writes the record into buf, which must hold SphereRecordSize bytes
func (r *SphereRecord) MarshalTo(buf []byte) {
	putVec4(buf[0:], r.CenterRadius)
	putVec4(buf[16:], r.BaseColorReflectivity)
	putVec4(buf[32:], r.EmissionStrength)
}

// Size returns the size of the record in bytes (96)
func (r *TriangleRecord) Size() int {
	return int(unsafe.Sizeof(*r))
}

// MarshalTo writes the record into buf, which must hold TriangleRecordSize bytes
func (r *TriangleRecord) MarshalTo(buf []byte) {
	putVec4(buf[0:], r.V0)
	putVec4(buf[16:], r.V1)
	putVec4(buf[32:], r.V2)
	putVec4(buf[48:], r.Normal)
	putVec4(buf[64:], r.BaseColorReflectivity)
	putVec4(buf[80:], r.EmissionStrength)
}

// Size returns the size of the block in bytes (64)
func (p *ParamsBlock) Size() int {
	return int(unsafe.Sizeof(*p))
}

// Marshal serializes the block for upload to the parameter UBO
func (p *ParamsBlock) Marshal() []byte {
	buf := make([]byte, ParamsBlockSize)
	words := []uint32{p.SphereCount, p.TriangleCount, p.FrameIndex, p.Accumulate, p.BounceLimit, p.Seed, p.Sequence, 0}
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	putVec4(buf[32:], p.Background)
	putVec4(buf[48:], p.Camera)
	return buf
}

// EncodeSpheres serializes records for upload to the sphere SSBO
func EncodeSpheres(records []SphereRecord) []byte {
	buf := make([]byte, len(records)*SphereRecordSize)
	for i := range records {
		records[i].MarshalTo(buf[i*SphereRecordSize:])
	}
	return buf
}

// EncodeTriangles serializes records for upload to the triangle SSBO
func EncodeTriangles(records []TriangleRecord) []byte {
	buf := make([]byte, len(records)*TriangleRecordSize)
	for i := range records {
		records[i].MarshalTo(buf[i*TriangleRecordSize:])
	}
	return buf
}
