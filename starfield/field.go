package starfield

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// TwinkleDepth scales the per-point oscillation: sizes swing within
	// ±20% of amplitude around the base size.
	TwinkleDepth = 0.2
	// ParallaxRate is the per-layer scroll factor; layer i turns at
	// ParallaxRate·(i+1) radians per scroll unit.
	ParallaxRate = 0.0001
)

// Frame is one external tick.
type Frame struct {
	Elapsed   float64 // monotonic seconds
	Scroll    float64
	HasScroll bool
}

// Field is the ordered set of layers. A layer's index is its parallax depth.
type Field struct {
	Layers []*Layer
}

// NewField validates every layer and returns the field.
func NewField(layers ...*Layer) (*Field, error) {
	for _, l := range layers {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	return &Field{Layers: layers}, nil
}

// Points is the total point count over all layers.
func (f *Field) Points() int {
	n := 0
	for _, l := range f.Layers {
		n += l.Len()
	}
	return n
}

// Tick advances every layer by one frame: drift, twinkle, then parallax.
// It allocates nothing and never skips a layer.
func Tick(f *Field, frame Frame) {
	for i, l := range f.Layers {
		l.Rotation = wrapAngles(l.Rotation.Add(l.Drift))
		l.DriftAngle = wrapAngles(l.DriftAngle.Add(l.Drift))

		twinkle(l, frame.Elapsed)

		if frame.HasScroll {
			l.Rotation[1] = ParallaxAngle(frame.Scroll, i)
			l.Rotation[0] = l.Rotation[1] * 0.5
		}
	}
}

// ParallaxAngle is the absolute Y rotation of layer index i for a scroll offset.
func ParallaxAngle(scroll float64, index int) float64 {
	return scroll * (ParallaxRate * float64(index+1))
}

// TwinkleSize is the size of a point with base size base at time t.
func TwinkleSize(base float32, tw Twinkle, t float64) float32 {
	return float32(float64(base) * (1 + math.Sin(t*tw.Speed+tw.Phase)*TwinkleDepth*tw.Amplitude))
}

func twinkle(l *Layer, t float64) {
	sizes := l.Sizes
	base := l.BaseSizes[:len(sizes)]
	tw := l.Twinkle[:len(sizes)]
	for i := range sizes {
		sizes[i] = TwinkleSize(base[i], tw[i], t)
	}
}

// Release drops every layer's buffers.
func (f *Field) Release() {
	for _, l := range f.Layers {
		l.Release()
	}
	f.Layers = nil
}

func wrapAngles(v mgl64.Vec3) mgl64.Vec3 {
	for i := range v {
		v[i] = math.Mod(v[i], 2*math.Pi)
	}
	return v
}
