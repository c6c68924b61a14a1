package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraState is the snapshot handed to a render surface each frame.
type CameraState struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Position   mgl32.Vec3
	Width      int
	Height     int
}

// Aspect returns width/height, falling back to 1 for a degenerate viewport.
func Aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// Perspective builds a right-handed projection matrix from a vertical field
// of view in degrees.
func Perspective(fovDeg, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far)
}

func (c CameraState) ViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.View)
}

// Project maps a world-space point to normalized device coordinates.
// ok is false for points behind the camera or outside the depth range.
func Project(vp mgl32.Mat4, p mgl32.Vec3) (ndc mgl32.Vec3, ok bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return mgl32.Vec3{}, false
	}
	ndc = clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return ndc, false
	}
	return ndc, true
}

// ToViewport converts NDC x/y to pixel (or cell) coordinates with the origin
// in the top-left corner.
func (c CameraState) ToViewport(ndc mgl32.Vec3) (x, y int) {
	fx := (ndc.X() + 1) * 0.5 * float32(c.Width)
	fy := (1 - ndc.Y()) * 0.5 * float32(c.Height)
	return int(fx), int(fy)
}
