package globe

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/starfield"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallSky() StarfieldModule {
	return StarfieldModule{
		Seed: 42,
		Layers: []starfield.LayerSpec{
			{Count: 50, BaseColor: starfield.RGBHex(0xffffff), RadiusMax: 100, SizeMin: 0.3, SizeMax: 1.2},
			{Count: 40, BaseColor: starfield.RGBHex(0xaaccff), RadiusMax: 80, SizeMin: 0.4, SizeMax: 1.5},
		},
		Clusters: []starfield.LayerSpec{
			{Count: 30, BaseColor: starfield.RGBHex(0xffccee), RadiusMax: 10, SizeMin: 0.3, SizeMax: 1, Center: mgl32.Vec3{50, 0, -20}},
		},
	}
}

func TestStarfieldModule_BuildsLayersThenClusters(t *testing.T) {
	app, err := NewAppBuilder().UseModule(ClockModule{}, smallSky()).Build()
	require.NoError(t, err)

	sky, ok := Resource[Sky](app)
	require.True(t, ok)
	require.Len(t, sky.Field.Layers, 3)
	assert.Equal(t, uint64(42), sky.Seed)

	for i, l := range sky.Field.Layers {
		assert.Equal(t, i, l.ID)
	}
	assert.Equal(t, starfield.KindLayer, sky.Field.Layers[1].Kind)
	assert.Equal(t, starfield.KindCluster, sky.Field.Layers[2].Kind)
	assert.Equal(t, mgl32.Vec3{50, 0, -20}, sky.Field.Layers[2].Center)
	assert.Equal(t, 120, sky.Field.Points())
}

func TestStarfieldModule_SameSeedSameSky(t *testing.T) {
	build := func() *Sky {
		app, err := NewAppBuilder().UseModule(ClockModule{}, smallSky()).Build()
		require.NoError(t, err)
		sky, _ := Resource[Sky](app)
		return sky
	}
	a, b := build(), build()
	for i := range a.Field.Layers {
		assert.Equal(t, a.Field.Layers[i].Positions, b.Field.Layers[i].Positions)
		assert.Equal(t, a.Field.Layers[i].Colors, b.Field.Layers[i].Colors)
	}
}

func TestStarfieldModule_ZeroSeedIsLogged(t *testing.T) {
	var out bytes.Buffer
	m := smallSky()
	m.Seed = 0

	app, err := NewAppBuilder().
		UseModule(LoggingModule{Logger: NewWriterLogger("t", false, &out, &out)}).
		UseModule(ClockModule{}, m).
		Build()
	require.NoError(t, err)

	sky, _ := Resource[Sky](app)
	assert.NotZero(t, sky.Seed)
	assert.Contains(t, out.String(), fmt.Sprintf("(seed %d)", sky.Seed))
}

func TestStarfieldModule_ConfigurationError(t *testing.T) {
	m := smallSky()
	m.Clusters[0].Count = -1

	_, err := NewAppBuilder().UseModule(ClockModule{}, m).Build()
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "count", ce.Param)
	assert.Equal(t, "layer 2", ce.Component)
	assert.Contains(t, err.Error(), "install StarfieldModule")
}

func TestSkySystem_TicksWithClockAndScroll(t *testing.T) {
	app, err := NewAppBuilder().UseModule(ClockModule{}, smallSky()).Build()
	require.NoError(t, err)
	require.NoError(t, app.Start())
	sky, _ := Resource[Sky](app)
	l0, l1 := sky.Field.Layers[0], sky.Field.Layers[1]

	require.NoError(t, app.Tick(render.TickInput{Now: 0}))
	require.NoError(t, app.Tick(render.TickInput{Now: 1.0 / 60}))
	want := l0.Drift.Mul(2)
	assert.InDeltaSlice(t, want[:], l0.Rotation[:], 1e-12)

	require.NoError(t, app.Tick(render.TickInput{Now: 2.0 / 60, Scroll: 400, HasScroll: true}))
	assert.InDelta(t, starfield.ParallaxAngle(400, 0), l0.Rotation.Y(), 1e-12)
	assert.InDelta(t, starfield.ParallaxAngle(400, 1), l1.Rotation.Y(), 1e-12)
	assert.InDelta(t, l1.Rotation.Y()*0.5, l1.Rotation.X(), 1e-12)

	// Without a new scroll the layer drifts on from the parallax angle.
	want = l1.Rotation.Add(l1.Drift)
	require.NoError(t, app.Tick(render.TickInput{Now: 3.0 / 60}))
	assert.InDeltaSlice(t, want[:], l1.Rotation[:], 1e-12)

	for k, s := range l0.Sizes {
		assert.InDelta(t, starfield.TwinkleSize(l0.BaseSizes[k], l0.Twinkle[k], 3.0/60), s, 1e-6)
	}
}

func TestSkySystem_TeardownReleasesBuffers(t *testing.T) {
	app, err := NewAppBuilder().UseModule(ClockModule{}, smallSky()).Build()
	require.NoError(t, err)
	require.NoError(t, app.Start())
	sky, _ := Resource[Sky](app)
	layers := sky.Field.Layers

	require.NoError(t, app.Teardown())
	assert.Empty(t, sky.Field.Layers)
	for _, l := range layers {
		assert.Zero(t, l.Len())
		assert.Nil(t, l.Sizes)
	}
}
