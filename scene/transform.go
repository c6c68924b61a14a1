package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Transform places an object: translate, then rotate (Euler XYZ), then scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl64.Vec3 // radians
	Scale    mgl32.Vec3
}

// Identity returns a transform at the origin with unit scale.
func Identity() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// RotationMatrix composes the Euler angles as Rx·Ry·Rz, which is the
// intrinsic XYZ order used by most scene graphs.
func RotationMatrix(r mgl64.Vec3) mgl32.Mat4 {
	rx := mgl32.HomogRotate3DX(float32(r.X()))
	ry := mgl32.HomogRotate3DY(float32(r.Y()))
	rz := mgl32.HomogRotate3DZ(float32(r.Z()))
	return rx.Mul4(ry).Mul4(rz)
}

// Matrix is the model matrix T·R·S.
func (t Transform) Matrix() mgl32.Mat4 {
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(RotationMatrix(t.Rotation)).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Child returns the world matrix of child when it is parented to t.
func (t Transform) Child(child Transform) mgl32.Mat4 {
	return t.Matrix().Mul4(child.Matrix())
}

// Apply transforms a point by m.
func Apply(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m)
}

// Node is a transform with an optional parent. Matrix returns the world
// matrix, so a mesh holding a *Node follows its parent's live state.
type Node struct {
	Parent *Node
	Local  Transform
}

func (n *Node) Matrix() mgl32.Mat4 {
	m := n.Local.Matrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.Local.Matrix().Mul4(m)
	}
	return m
}
