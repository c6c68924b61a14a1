package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshData is an indexed triangle list.
type MeshData struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

func (m *MeshData) VertexCount() int { return len(m.Positions) }

// SphereMesh generates a UV sphere. Non-positive segment counts fall back to
// 64 around and 32 from pole to pole.
func SphereMesh(radius float32, widthSegments, heightSegments int) *MeshData {
	if widthSegments <= 0 {
		widthSegments = 64
	}
	if heightSegments <= 0 {
		heightSegments = 32
	}

	verts := (widthSegments + 1) * (heightSegments + 1)
	m := &MeshData{
		Positions: make([]mgl32.Vec3, 0, verts),
		Normals:   make([]mgl32.Vec3, 0, verts),
		UVs:       make([]mgl32.Vec2, 0, verts),
		Indices:   make([]uint32, 0, widthSegments*heightSegments*6),
	}

	for ring := 0; ring <= heightSegments; ring++ {
		theta := float64(ring) * math.Pi / float64(heightSegments)
		sinTheta, cosTheta := math.Sincos(theta)

		for seg := 0; seg <= widthSegments; seg++ {
			phi := float64(seg) * 2 * math.Pi / float64(widthSegments)
			sinPhi, cosPhi := math.Sincos(phi)

			n := mgl32.Vec3{
				float32(-cosPhi * sinTheta),
				float32(cosTheta),
				float32(sinPhi * sinTheta),
			}
			m.Normals = append(m.Normals, n)
			m.Positions = append(m.Positions, n.Mul(radius))
			m.UVs = append(m.UVs, mgl32.Vec2{
				float32(seg) / float32(widthSegments),
				float32(ring) / float32(heightSegments),
			})
		}
	}

	row := uint32(widthSegments + 1)
	for ring := 0; ring < heightSegments; ring++ {
		for seg := 0; seg < widthSegments; seg++ {
			current := uint32(ring)*row + uint32(seg)
			next := current + row

			m.Indices = append(m.Indices,
				current, next, current+1,
				current+1, next, next+1,
			)
		}
	}
	return m
}
