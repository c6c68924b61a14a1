package starfield

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildField(t *testing.T, seed uint64, layers int) *Field {
	t.Helper()
	rng := NewRand(seed)
	var ls []*Layer
	for i := 0; i < layers; i++ {
		spec := testSpec()
		spec.ID = i
		spec.Count = 200
		l, err := Build(rng, spec)
		require.NoError(t, err)
		ls = append(ls, l)
	}
	f, err := NewField(ls...)
	require.NoError(t, err)
	return f
}

func TestTick_SizesStayWithinTwinkleBand(t *testing.T) {
	f := buildField(t, 1, 3)
	for _, elapsed := range []float64{0, 1.5, 40, 1e4} {
		Tick(f, Frame{Elapsed: elapsed})
		for _, l := range f.Layers {
			for i, s := range l.Sizes {
				base := float64(l.BaseSizes[i])
				amp := TwinkleDepth * l.Twinkle[i].Amplitude
				assert.GreaterOrEqual(t, float64(s), base*(1-amp)-1e-5)
				assert.LessOrEqual(t, float64(s), base*(1+amp)+1e-5)
			}
		}
	}
}

func TestTick_TwinkleIsIdempotentForSameTime(t *testing.T) {
	f := buildField(t, 2, 2)
	Tick(f, Frame{Elapsed: 12.25})
	first := append([]float32(nil), f.Layers[1].Sizes...)

	Tick(f, Frame{Elapsed: 99})
	Tick(f, Frame{Elapsed: 12.25})
	assert.Equal(t, first, f.Layers[1].Sizes)
}

func TestTwinkleSize_EqualsBaseAtZeroCrossing(t *testing.T) {
	tw := Twinkle{Speed: 0.02, Amplitude: 0.8, Phase: 1.1}
	at := (math.Pi - tw.Phase) / tw.Speed
	assert.InDelta(t, 2.5, TwinkleSize(2.5, tw, at), 1e-5)

	peak := (math.Pi/2 - tw.Phase) / tw.Speed
	assert.InDelta(t, 2.5*(1+TwinkleDepth*tw.Amplitude), TwinkleSize(2.5, tw, peak), 1e-5)
}

func TestTick_DriftAccumulates(t *testing.T) {
	f := buildField(t, 3, 2)
	const n = 1000
	for i := 0; i < n; i++ {
		Tick(f, Frame{Elapsed: float64(i) / 60})
	}

	for _, l := range f.Layers {
		want := l.Drift.Mul(n)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, math.Mod(want[k], 2*math.Pi), l.DriftAngle[k], 1e-9)
		}
		// Without scroll the effective rotation is the drift alone.
		assert.InDelta(t, l.DriftAngle.X(), l.Rotation.X(), 1e-9)
		assert.InDelta(t, l.DriftAngle.Y(), l.Rotation.Y(), 1e-9)
		assert.InDelta(t, l.DriftAngle.Z(), l.Rotation.Z(), 1e-9)
	}
}

func TestTick_RotationWrapsIntoTurn(t *testing.T) {
	f := buildField(t, 4, 1)
	l := f.Layers[0]
	l.Drift = mgl64.Vec3{1, -1, 0.5}
	for i := 0; i < 100; i++ {
		Tick(f, Frame{Elapsed: float64(i)})
		for k := 0; k < 3; k++ {
			assert.Less(t, math.Abs(l.Rotation[k]), 2*math.Pi)
			assert.Less(t, math.Abs(l.DriftAngle[k]), 2*math.Pi)
		}
	}
}

func TestTick_ScrollOverwritesParallaxAxes(t *testing.T) {
	f := buildField(t, 5, 3)
	for i := 0; i < 50; i++ {
		Tick(f, Frame{Elapsed: float64(i)})
	}

	const scroll = 1200.0
	Tick(f, Frame{Elapsed: 51, Scroll: scroll, HasScroll: true})
	for i, l := range f.Layers {
		y := scroll * ParallaxRate * float64(i+1)
		assert.InDelta(t, y, l.Rotation.Y(), 1e-12, "layer %d", i)
		assert.InDelta(t, y*0.5, l.Rotation.X(), 1e-12, "layer %d", i)
		// Z keeps drifting; the accumulator never sees parallax.
		assert.InDelta(t, l.DriftAngle.Z(), l.Rotation.Z(), 1e-9)
	}

	// Deeper layers turn faster for the same scroll.
	assert.Less(t, f.Layers[0].Rotation.Y(), f.Layers[2].Rotation.Y())

	// Drift resumes on top of the overwritten value.
	before := f.Layers[1].Rotation
	Tick(f, Frame{Elapsed: 52})
	assert.InDelta(t, before.Y()+f.Layers[1].Drift.Y(), f.Layers[1].Rotation.Y(), 1e-12)
}

func TestTick_ZeroScrollResetsParallax(t *testing.T) {
	f := buildField(t, 6, 2)
	Tick(f, Frame{Elapsed: 1, Scroll: 500, HasScroll: true})
	Tick(f, Frame{Elapsed: 2, Scroll: 0, HasScroll: true})
	for _, l := range f.Layers {
		assert.Equal(t, 0.0, l.Rotation.X())
		assert.Equal(t, 0.0, l.Rotation.Y())
	}
}

func TestParallaxAngle(t *testing.T) {
	assert.InDelta(t, 0.1, ParallaxAngle(1000, 0), 1e-12)
	assert.InDelta(t, 0.3, ParallaxAngle(1000, 2), 1e-12)
	assert.Equal(t, 0.0, ParallaxAngle(0, 5))
}

func TestTick_DoesNotAllocate(t *testing.T) {
	f := buildField(t, 7, 3)
	elapsed := 0.0
	allocs := testing.AllocsPerRun(100, func() {
		elapsed += 1.0 / 60
		Tick(f, Frame{Elapsed: elapsed, Scroll: elapsed * 10, HasScroll: true})
	})
	assert.Equal(t, 0.0, allocs)
}

func TestField_PointsAndRelease(t *testing.T) {
	f := buildField(t, 8, 3)
	assert.Equal(t, 600, f.Points())
	f.Release()
	assert.Equal(t, 0, f.Points())
	assert.Empty(t, f.Layers)
}

func BenchmarkTick(b *testing.B) {
	rng := NewRand(1)
	var layers []*Layer
	for i, count := range []int{8000, 4000, 1500} {
		spec := testSpec()
		spec.ID = i
		spec.Count = count
		l, err := Build(rng, spec)
		if err != nil {
			b.Fatal(err)
		}
		layers = append(layers, l)
	}
	f, err := NewField(layers...)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Tick(f, Frame{Elapsed: float64(i) / 60})
	}
}
