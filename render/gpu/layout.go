package gpu

import (
	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/scene"
	"github.com/gekko3d/globe/starfield"
	"github.com/go-gl/mathgl/mgl32"
)

// Interleaved strides in float32s.
const (
	pointStride = 6 // position xyz, color rgb
	meshStride  = 8 // position xyz, normal xyz, uv
)

type cameraUniform struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

type objectUniform struct {
	Model  mgl32.Mat4
	Color  [4]float32
	Params [4]float32
}

// meshMode picks the pipeline for a material.
type meshMode int

const (
	modeOpaque meshMode = iota
	modeBlend
	modeGlow
)

func modeFor(m scene.Material) meshMode {
	switch {
	case m.Additive:
		return modeGlow
	case m.Opacity < 1:
		return modeBlend
	default:
		return modeOpaque
	}
}

func packPoints(l *starfield.Layer) []float32 {
	out := make([]float32, 0, l.Len()*pointStride)
	for i, p := range l.Positions {
		c := l.Colors[i]
		out = append(out, p.X(), p.Y(), p.Z(), c.X(), c.Y(), c.Z())
	}
	return out
}

func packMesh(m *scene.MeshData) []float32 {
	out := make([]float32, 0, m.VertexCount()*meshStride)
	for i, p := range m.Positions {
		n := m.Normals[i]
		uv := m.UVs[i]
		out = append(out, p.X(), p.Y(), p.Z(), n.X(), n.Y(), n.Z(), uv.X(), uv.Y())
	}
	return out
}

func pointUniform(pc render.PointCloud, scale float32) objectUniform {
	return objectUniform{
		Model:  pc.Model(),
		Color:  [4]float32{1, 1, 1, 1},
		Params: [4]float32{scale, 1, 0, 0},
	}
}

func meshUniform(m render.Mesh) objectUniform {
	c := m.Material.Color
	return objectUniform{
		Model:  m.Model(),
		Color:  [4]float32{c.X(), c.Y(), c.Z(), m.Material.Opacity},
		Params: [4]float32{0, m.Material.Opacity, 0, 0},
	}
}

// drawOrder puts opaque meshes first, then stars, then blended and additive
// shells, keeping submit order within each group.
func drawOrder(handles []render.Handle, rank func(render.Handle) int, out []render.Handle) []render.Handle {
	out = out[:0]
	for r := 0; r < 4; r++ {
		for _, h := range handles {
			if rank(h) == r {
				out = append(out, h)
			}
		}
	}
	return out
}
