package scene

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Texture slot names.
const (
	SlotBase     = "base"
	SlotBump     = "bump"
	SlotSpecular = "specular"
	SlotNormal   = "normal"
	SlotEmissive = "emissive"
)

// Texture is decoded, normalized RGBA pixel data ready for upload.
type Texture struct {
	ID       string
	Key      string
	Image    *image.RGBA
	Fallback bool
}

func (t *Texture) Size() (int, int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Material describes how a mesh is shaded. A nil slot means "no texture".
type Material struct {
	Slots    map[string]*Texture
	Color    mgl32.Vec3
	Opacity  float32
	Additive bool
	BackSide bool
}

// NewMaterial returns an opaque white material with no textures.
func NewMaterial() Material {
	return Material{
		Slots:   map[string]*Texture{},
		Color:   mgl32.Vec3{1, 1, 1},
		Opacity: 1,
	}
}

func (m Material) Slot(name string) *Texture {
	return m.Slots[name]
}

func (m Material) Transparent() bool {
	return m.Opacity < 1 || m.Additive
}
