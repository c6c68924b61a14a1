package starfield

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// HSL offset bounds applied to each star's base color. Hue is in turns.
const (
	HueJitter        = 0.15
	SaturationJitter = 0.3
	LightnessJitter  = 0.3
)

// RGBHex converts a 0xRRGGBB literal to a color.
func RGBHex(hex uint32) colorful.Color {
	return colorful.Color{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
}

// Tint offsets base in HSL space: hue by U(-0.15, 0.15) turns (wrapped),
// saturation and lightness by U(0, 0.3) each (clamped to [0,1]).
func Tint(rng *rand.Rand, base colorful.Color) mgl32.Vec3 {
	dh := (rng.Float64()*2 - 1) * HueJitter
	ds := rng.Float64() * SaturationJitter
	dl := rng.Float64() * LightnessJitter
	return offsetHSL(base, dh, ds, dl)
}

func offsetHSL(base colorful.Color, dh, ds, dl float64) mgl32.Vec3 {
	h, s, l := base.Clamped().Hsl()
	h = math.Mod(h+dh*360, 360)
	if h < 0 {
		h += 360
	}
	s = clamp01(s + ds)
	l = clamp01(l + dl)

	c := colorful.Hsl(h, s, l).Clamped()
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
