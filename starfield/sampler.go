package starfield

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Distribution selects how points are spread through the sampling sphere.
type Distribution int

const (
	// Uniform gives uniform density by volume.
	Uniform Distribution = iota
	// Clustered biases mass toward the center (r = R·u²).
	Clustered
)

func (d Distribution) String() string {
	switch d {
	case Uniform:
		return "uniform"
	case Clustered:
		return "clustered"
	default:
		return "unknown"
	}
}

// NewRand returns a PCG-backed generator. The same seed always yields the
// same stream, so a scene built from it is reproducible.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sample draws count points inside a sphere of radius radiusMax.
//
// Angles are sampled so the directions cover the sphere surface evenly
// (phi = acos(2u-1) rather than a lat/long grid). The radius depends on the
// distribution: cbrt for Uniform, square for Clustered.
func Sample(rng *rand.Rand, count int, radiusMax float64, dist Distribution) ([]mgl32.Vec3, error) {
	if err := checkSampleArgs(count, radiusMax, dist); err != nil {
		return nil, err
	}
	points := make([]mgl32.Vec3, count)
	for i := range points {
		points[i] = samplePoint(rng, radiusMax, dist)
	}
	return points, nil
}

func checkSampleArgs(count int, radiusMax float64, dist Distribution) error {
	if count < 0 {
		return configErr("sampler", "count", count, "must be >= 0")
	}
	if math.IsNaN(radiusMax) || math.IsInf(radiusMax, 0) {
		return configErr("sampler", "radiusMax", radiusMax, "must be finite")
	}
	if radiusMax < 0 {
		return configErr("sampler", "radiusMax", radiusMax, "must be >= 0")
	}
	if dist != Uniform && dist != Clustered {
		return configErr("sampler", "distribution", int(dist), "unknown distribution")
	}
	return nil
}

func samplePoint(rng *rand.Rand, radiusMax float64, dist Distribution) mgl32.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)

	// (0,1] keeps every point off the origin when radiusMax > 0.
	v := 1 - rng.Float64()
	var r float64
	switch dist {
	case Clustered:
		r = radiusMax * v * v
	default:
		r = radiusMax * math.Cbrt(v)
	}

	sinPhi := math.Sin(phi)
	return mgl32.Vec3{
		float32(r * sinPhi * math.Cos(theta)),
		float32(r * sinPhi * math.Sin(theta)),
		float32(r * math.Cos(phi)),
	}
}
