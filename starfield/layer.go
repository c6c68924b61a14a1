package starfield

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Kind tells plain layers and clusters apart.
type Kind int

const (
	KindLayer Kind = iota
	KindCluster
)

// Twinkle holds one point's independent size oscillator.
type Twinkle struct {
	Speed     float64
	Amplitude float64
	Phase     float64
}

// Per-point random ranges.
const (
	TwinkleSpeedMin     = 0.01
	TwinkleSpeedMax     = 0.03
	TwinkleAmplitudeMin = 0.7
	TwinkleAmplitudeMax = 1.0

	DriftXY = 0.0001
	DriftZ  = 0.00001
)

// LayerSpec describes one layer to build.
type LayerSpec struct {
	ID           int
	Count        int
	BaseColor    colorful.Color
	RadiusMax    float64
	SizeMin      float32
	SizeMax      float32
	Distribution Distribution
	Kind         Kind
	Center       mgl32.Vec3 // only used by clusters
}

// Layer is a star point cloud plus its animation state. All per-point slices
// have the same length. Sizes is the live buffer rewritten by Tick.
type Layer struct {
	ID     int
	Kind   Kind
	Center mgl32.Vec3

	Positions []mgl32.Vec3
	BaseSizes []float32
	Sizes     []float32
	Colors    []mgl32.Vec3
	Twinkle   []Twinkle

	Drift      mgl64.Vec3 // radians per tick
	Rotation   mgl64.Vec3 // effective Euler rotation (XYZ)
	DriftAngle mgl64.Vec3 // drift accumulated since build, never overwritten
}

// Build creates a layer from spec using rng as the only source of
// randomness. It performs no I/O.
func Build(rng *rand.Rand, spec LayerSpec) (*Layer, error) {
	component := fmt.Sprintf("layer %d", spec.ID)
	if err := checkSpec(component, spec); err != nil {
		return nil, err
	}

	positions, err := Sample(rng, spec.Count, spec.RadiusMax, spec.Distribution)
	if err != nil {
		if ce, ok := err.(*ConfigurationError); ok {
			ce.Component = component
		}
		return nil, err
	}

	n := spec.Count
	l := &Layer{
		ID:        spec.ID,
		Kind:      spec.Kind,
		Center:    spec.Center,
		Positions: positions,
		BaseSizes: make([]float32, n),
		Sizes:     make([]float32, n),
		Colors:    make([]mgl32.Vec3, n),
		Twinkle:   make([]Twinkle, n),
	}

	span := float64(spec.SizeMax - spec.SizeMin)
	for i := 0; i < n; i++ {
		u := rng.Float64()
		size := float32(u*u*span) + spec.SizeMin
		l.BaseSizes[i] = size
		l.Sizes[i] = size

		l.Colors[i] = Tint(rng, spec.BaseColor)

		l.Twinkle[i] = Twinkle{
			Speed:     uniform(rng, TwinkleSpeedMin, TwinkleSpeedMax),
			Amplitude: uniform(rng, TwinkleAmplitudeMin, TwinkleAmplitudeMax),
			Phase:     rng.Float64() * 2 * math.Pi,
		}
	}

	l.Drift = mgl64.Vec3{
		uniform(rng, -DriftXY, DriftXY),
		uniform(rng, -DriftXY, DriftXY),
		uniform(rng, -DriftZ, DriftZ),
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// BuildCluster builds a center-weighted layer offset by spec.Center.
func BuildCluster(rng *rand.Rand, spec LayerSpec) (*Layer, error) {
	spec.Kind = KindCluster
	spec.Distribution = Clustered
	return Build(rng, spec)
}

func checkSpec(component string, spec LayerSpec) error {
	if spec.Count < 0 {
		return configErr(component, "count", spec.Count, "must be >= 0")
	}
	if spec.RadiusMax < 0 || math.IsNaN(spec.RadiusMax) || math.IsInf(spec.RadiusMax, 0) {
		return configErr(component, "radiusMax", spec.RadiusMax, "must be finite and >= 0")
	}
	if spec.SizeMin < 0 || isBadFloat32(spec.SizeMin) {
		return configErr(component, "sizeMin", spec.SizeMin, "must be finite and >= 0")
	}
	if spec.SizeMax < spec.SizeMin || isBadFloat32(spec.SizeMax) {
		return configErr(component, "sizeMax", spec.SizeMax, fmt.Sprintf("must be finite and >= sizeMin (%v)", spec.SizeMin))
	}
	return nil
}

func isBadFloat32(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Len is the number of points.
func (l *Layer) Len() int {
	return len(l.Positions)
}

// Validate checks that every per-point buffer has one entry per position.
func (l *Layer) Validate() error {
	component := fmt.Sprintf("layer %d", l.ID)
	n := len(l.Positions)
	check := func(name string, got int) error {
		if got != n {
			return configErr(component, name, got, fmt.Sprintf("length mismatch, want %d (positions)", n))
		}
		return nil
	}
	if err := check("baseSizes", len(l.BaseSizes)); err != nil {
		return err
	}
	if err := check("sizes", len(l.Sizes)); err != nil {
		return err
	}
	if err := check("colors", len(l.Colors)); err != nil {
		return err
	}
	return check("twinkle", len(l.Twinkle))
}

// Release drops the point buffers. The layer must not be ticked afterwards.
func (l *Layer) Release() {
	l.Positions = nil
	l.BaseSizes = nil
	l.Sizes = nil
	l.Colors = nil
	l.Twinkle = nil
}
