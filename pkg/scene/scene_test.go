package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	s, err := New("test", geometry.NewCamera(core.NewVec3(0, 0, -5), 45),
		geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 3), 1, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNewRejectsInvalidPrimitives(t *testing.T) {
	camera := geometry.NewCamera(core.NewVec3(0, 0, 0), 45)
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	tests := []struct {
		name string
		prim geometry.Primitive
		want error
	}{
		{
			name: "zero radius",
			prim: geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 3), 0, gray)),
			want: geometry.ErrInvalidPrimitive,
		},
		{
			name: "degenerate triangle",
			prim: geometry.TrianglePrimitive(geometry.NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0), gray)),
			want: geometry.ErrInvalidPrimitive,
		},
		{
			name: "reflectivity above one",
			prim: geometry.SpherePrimitive(geometry.Sphere{
				Center:   core.NewVec3(0, 0, 3),
				Radius:   1,
				Material: material.Material{BaseColor: core.NewVec3(1, 1, 1), Reflectivity: 1.5},
			}),
			want: material.ErrInvalidMaterial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("bad", camera, tt.prim)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewRejectsInvalidCamera(t *testing.T) {
	_, err := New("bad", geometry.NewCamera(core.NewVec3(0, 0, 0), 0))
	if !errors.Is(err, geometry.ErrInvalidCamera) {
		t.Errorf("New() error = %v, want ErrInvalidCamera", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestScene(t)
	before := s.Snapshot()

	red := material.NewLambertian(core.NewVec3(1, 0, 0))
	if err := s.SetMaterial(0, red); err != nil {
		t.Fatalf("SetMaterial() error = %v", err)
	}
	if _, err := s.Add(geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(2, 0, 3), 1, red))); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if len(before.Primitives) != 1 {
		t.Errorf("old snapshot has %d primitives, want 1", len(before.Primitives))
	}
	if before.Primitives[0].Material().BaseColor != core.NewVec3(0.5, 0.5, 0.5) {
		t.Errorf("old snapshot material changed to %v", before.Primitives[0].Material().BaseColor)
	}

	after := s.Snapshot()
	if after.Version != before.Version+2 {
		t.Errorf("Version = %d, want %d", after.Version, before.Version+2)
	}
	if after.Primitives[0].Material().BaseColor != core.NewVec3(1, 0, 0) {
		t.Errorf("new snapshot material = %v, want red", after.Primitives[0].Material().BaseColor)
	}
}

func TestPrimitivesReturnsCopy(t *testing.T) {
	s := newTestScene(t)
	prims := s.Primitives()
	prims[0].Sphere.Radius = 42

	if got := s.Snapshot().Primitives[0].Sphere.Radius; got != 1 {
		t.Errorf("scene radius = %g after editing the copy, want 1", got)
	}
}

func TestMutationIndexErrors(t *testing.T) {
	s := newTestScene(t)
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	version := s.Version()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"remove", func() error { return s.Remove(5) }},
		{"remove negative", func() error { return s.Remove(-1) }},
		{"set material", func() error { return s.SetMaterial(1, gray) }},
		{"set primitive", func() error {
			return s.SetPrimitive(3, geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(0, 0, 0), 1, gray)))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("error = %v, want ErrIndexOutOfRange", err)
			}
		})
	}

	if s.Version() != version {
		t.Errorf("failed edits bumped version from %d to %d", version, s.Version())
	}
}

func TestRemoveShiftsPrimitives(t *testing.T) {
	s := newTestScene(t)
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	idx, err := s.Add(geometry.SpherePrimitive(geometry.NewSphere(core.NewVec3(5, 0, 3), 2, gray)))
	if err != nil || idx != 1 {
		t.Fatalf("Add() = %d, %v; want 1, nil", idx, err)
	}

	if err := s.Remove(0); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if r := s.Primitives()[0].Sphere.Radius; r != 2 {
		t.Errorf("remaining radius = %g, want 2", r)
	}
}

func TestSetCamera(t *testing.T) {
	s := newTestScene(t)
	if err := s.SetCamera(geometry.NewCamera(core.NewVec3(1, 2, 3), 60)); err != nil {
		t.Fatalf("SetCamera() error = %v", err)
	}
	if got := s.Camera(); got.FOV != 60 || got.Location != core.NewVec3(1, 2, 3) {
		t.Errorf("Camera() = %+v", got)
	}
	if err := s.SetCamera(geometry.NewCamera(core.Vec3{}, 180)); !errors.Is(err, geometry.ErrInvalidCamera) {
		t.Errorf("SetCamera(180) error = %v, want ErrInvalidCamera", err)
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s := newTestScene(t)
	gray := material.NewLambertian(core.NewVec3(0.2, 0.2, 0.2))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = s.SetMaterial(0, gray)
			}
		}()
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				snap := s.Snapshot()
				if len(snap.Primitives) != 1 {
					t.Errorf("snapshot has %d primitives", len(snap.Primitives))
					return
				}
			}
		}()
	}
	wg.Wait()

	if got, want := s.Version(), uint64(1+4*50); got != want {
		t.Errorf("Version() = %d, want %d", got, want)
	}
}

func TestPresets(t *testing.T) {
	infos := Presets()
	if len(infos) != 6 {
		t.Fatalf("Presets() returned %d scenes, want 6", len(infos))
	}

	for _, info := range infos {
		t.Run(info.ID, func(t *testing.T) {
			s, err := NewPreset(info.ID)
			if err != nil {
				t.Fatalf("NewPreset(%q) error = %v", info.ID, err)
			}
			if s.Len() == 0 {
				t.Error("preset has no primitives")
			}
			if s.Name != info.ID {
				t.Errorf("Name = %q, want %q", s.Name, info.ID)
			}
		})
	}

	if _, err := NewPreset("missing"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("NewPreset(missing) error = %v, want ErrUnknownPreset", err)
	}
}

func TestDefaultSceneLayout(t *testing.T) {
	s, err := NewDefaultScene()
	if err != nil {
		t.Fatalf("NewDefaultScene() error = %v", err)
	}
	snap := s.Snapshot()
	spheres, triangles := snap.Counts()
	if spheres != 3 || triangles != 0 {
		t.Errorf("Counts() = %d, %d; want 3, 0", spheres, triangles)
	}
	if !snap.Primitives[0].Material().IsEmissive() {
		t.Error("first sphere should be emissive")
	}
	if snap.Primitives[1].Material().Reflectivity != 1 {
		t.Error("second sphere should be a mirror")
	}
	if snap.Camera.Location != core.NewVec3(0, 0, -5) || snap.Camera.FOV != 45 {
		t.Errorf("camera = %+v", snap.Camera)
	}
}

func TestCornellSceneUsesTriangles(t *testing.T) {
	s, err := NewCornellScene()
	if err != nil {
		t.Fatalf("NewCornellScene() error = %v", err)
	}
	spheres, triangles := s.Snapshot().Counts()
	if spheres != 2 || triangles != 12 {
		t.Errorf("Counts() = %d, %d; want 2, 12", spheres, triangles)
	}
}

func TestTriangleScenesCounts(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (*Scene, error)
		spheres   int
		triangles int
	}{
		{"cornell-boxes", NewCornellBoxesScene, 0, 36},
		{"mesh", NewTriangleMeshScene, 2, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.build()
			if err != nil {
				t.Fatalf("build error = %v", err)
			}
			spheres, triangles := s.Snapshot().Counts()
			if spheres != tt.spheres || triangles != tt.triangles {
				t.Errorf("Counts() = %d, %d; want %d, %d", spheres, triangles, tt.spheres, tt.triangles)
			}
		})
	}
}
