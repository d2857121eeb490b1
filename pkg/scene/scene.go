package scene

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrIndexOutOfRange is returned when a mutation names a primitive that does not exist
var ErrIndexOutOfRange = errors.New("primitive index out of range")

// Snapshot is an immutable view of the scene. A render pass borrows one
// snapshot for its whole duration; later edits produce a new snapshot and are
// never observed by a pass already in flight.
type Snapshot struct {
	Primitives []geometry.Primitive
	Camera     geometry.Camera
	Version    uint64
}

// Counts returns the number of spheres and triangles in the snapshot
func (s *Snapshot) Counts() (spheres, triangles int) {
	return geometry.CountKinds(s.Primitives)
}

// Scene owns the primitives and camera. Reads are lock-free through
// Snapshot; edits are serialized and copy-on-write.
type Scene struct {
	Name string

	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Snapshot]
}

// New creates a scene after validating the camera and every primitive
func New(name string, camera geometry.Camera, prims ...geometry.Primitive) (*Scene, error) {
	if err := camera.Validate(); err != nil {
		return nil, err
	}
	for i, p := range prims {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
	}

	s := &Scene{Name: name}
	s.current.Store(&Snapshot{
		Primitives: append([]geometry.Primitive(nil), prims...),
		Camera:     camera,
		Version:    1,
	})
	return s, nil
}

// Snapshot returns the current immutable snapshot. Callers must not modify it.
func (s *Scene) Snapshot() *Snapshot {
	return s.current.Load()
}

// Primitives returns a copy of the ordered primitive list
func (s *Scene) Primitives() []geometry.Primitive {
	return append([]geometry.Primitive(nil), s.Snapshot().Primitives...)
}

// Camera returns the current camera
func (s *Scene) Camera() geometry.Camera {
	return s.Snapshot().Camera
}

// Len returns the number of primitives
func (s *Scene) Len() int {
	return len(s.Snapshot().Primitives)
}

// Version returns the current snapshot version. It increases on every edit.
func (s *Scene) Version() uint64 {
	return s.Snapshot().Version
}

// update applies fn to a private copy of the current snapshot and publishes it
func (s *Scene) update(fn func(next *Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	next := &Snapshot{
		Primitives: append([]geometry.Primitive(nil), cur.Primitives...),
		Camera:     cur.Camera,
		Version:    cur.Version + 1,
	}
	if err := fn(next); err != nil {
		return err
	}
	s.current.Store(next)
	return nil
}

// Add appends a primitive and returns its index
func (s *Scene) Add(p geometry.Primitive) (int, error) {
	if err := p.Validate(); err != nil {
		return -1, err
	}

	var index int
	err := s.update(func(next *Snapshot) error {
		next.Primitives = append(next.Primitives, p)
		index = len(next.Primitives) - 1
		return nil
	})
	return index, err
}

// Remove deletes the primitive at index, shifting later primitives down
func (s *Scene) Remove(index int) error {
	return s.update(func(next *Snapshot) error {
		if index < 0 || index >= len(next.Primitives) {
			return fmt.Errorf("remove %d: %w", index, ErrIndexOutOfRange)
		}
		next.Primitives = append(next.Primitives[:index], next.Primitives[index+1:]...)
		return nil
	})
}

// SetPrimitive replaces the primitive at index
func (s *Scene) SetPrimitive(index int, p geometry.Primitive) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.update(func(next *Snapshot) error {
		if index < 0 || index >= len(next.Primitives) {
			return fmt.Errorf("set primitive %d: %w", index, ErrIndexOutOfRange)
		}
		next.Primitives[index] = p
		return nil
	})
}

// SetMaterial replaces the material of the primitive at index
func (s *Scene) SetMaterial(index int, m material.Material) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.update(func(next *Snapshot) error {
		if index < 0 || index >= len(next.Primitives) {
			return fmt.Errorf("set material %d: %w", index, ErrIndexOutOfRange)
		}
		next.Primitives[index] = next.Primitives[index].WithMaterial(m)
		return nil
	})
}

// SetCamera replaces the camera
func (s *Scene) SetCamera(c geometry.Camera) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.update(func(next *Snapshot) error {
		next.Camera = c
		return nil
	})
}
