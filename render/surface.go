// Package render is the boundary between the scene and whatever draws it.
// The core never talks to a GPU or terminal directly; it hands geometry to a
// Surface once and then asks it to draw every tick.
package render

import (
	"context"

	"github.com/gekko3d/globe/scene"
	"github.com/gekko3d/globe/starfield"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Handle identifies submitted geometry on a surface.
type Handle string

func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// Surface draws submitted geometry. Implementations are not safe for
// concurrent use; the app calls them from its single tick goroutine.
type Surface interface {
	Name() string
	// Submit uploads geometry once. Live data (star sizes, layer rotation,
	// mesh placement) is read again on every Draw.
	Submit(g Geometry) (Handle, error)
	Draw(handles []Handle, camera scene.CameraState) error
	Dispose(h Handle) error
	// Resize takes effect before it returns.
	Resize(width, height int) error
}

// Geometry is one of PointCloud or Mesh.
type Geometry interface {
	isGeometry()
}

// PointCloud draws a star layer. Positions, colors and base sizes are static;
// Sizes and Rotation are live.
type PointCloud struct {
	Layer *starfield.Layer
}

func (PointCloud) isGeometry() {}

// Model places the layer: rotate about its own center, then offset.
func (p PointCloud) Model() mgl32.Mat4 {
	c := p.Layer.Center
	return mgl32.Translate3D(c.X(), c.Y(), c.Z()).Mul4(scene.RotationMatrix(p.Layer.Rotation))
}

// Placer supplies a world matrix each frame.
type Placer interface {
	Matrix() mgl32.Mat4
}

// Mesh is an indexed triangle mesh with a material.
type Mesh struct {
	Name     string
	Data     *scene.MeshData
	Material scene.Material
	Place    Placer
}

func (Mesh) isGeometry() {}

// Model returns the mesh's current world matrix.
func (m Mesh) Model() mgl32.Mat4 {
	if m.Place == nil {
		return mgl32.Ident4()
	}
	return m.Place.Matrix()
}

// TickInput is what a host reports each frame.
type TickInput struct {
	Now       float64 // host clock, seconds
	Scroll    float64
	HasScroll bool
}

// Events are the callbacks a host drives. A non-nil error from OnTick or
// OnResize stops the host and is returned from Run.
type Events struct {
	OnTick   func(in TickInput) error
	OnResize func(width, height int) error
	OnOrbit  func(dx, dy float64)
	OnZoom   func(delta float64)
}

// Host owns the frame loop. Run reports the initial viewport through
// OnResize, then ticks until the context ends or the user quits.
type Host interface {
	Run(ctx context.Context, ev Events) error
}
