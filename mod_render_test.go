package globe

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/starfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneModules(def SceneDef) []Module {
	return append([]Module{LoggingModule{Logger: NewWriterLogger("test", false, io.Discard, io.Discard)}}, def.Modules()...)
}

func smallScene() SceneDef {
	def := DefaultSceneDef()
	def.Seed = 7
	sky := smallSky()
	def.Layers, def.Clusters = sky.Layers, sky.Clusters
	def.Globe.Segments = 8
	return def
}

func TestRenderModule_Lifecycle(t *testing.T) {
	rec := render.NewRecorder()
	app, err := NewAppBuilder().
		UseModule(sceneModules(smallScene())...).
		UseRenderer(rec).
		Build()
	require.NoError(t, err)

	host := &render.FixedStepHost{Frames: 5, Width: 640, Height: 480}
	require.NoError(t, app.Run(context.Background(), host))

	// 3 star layers, earth, clouds, 3 markers, atmosphere.
	submitted := 3 + 2 + len(DefaultMarkers) + 1
	assert.Equal(t, submitted, rec.Count(render.OpSubmit))
	assert.Equal(t, 5, rec.Count(render.OpDraw))
	assert.Equal(t, submitted, rec.Count(render.OpDispose))
	assert.Equal(t, 1, rec.Count(render.OpResize))
	assert.True(t, rec.Closed)
	assert.Empty(t, rec.Live)

	// Resize came before the first draw and the camera saw it.
	assert.Equal(t, 640, rec.Width)
	assert.Equal(t, 640, rec.LastCamera.Width)

	// Disposal runs newest first.
	var disposed []render.Handle
	for _, c := range rec.Calls {
		if c.Op == render.OpDispose {
			disposed = append(disposed, c.Handle)
		}
	}
	require.Len(t, disposed, len(rec.Order))
	for i, h := range disposed {
		assert.Equal(t, rec.Order[len(rec.Order)-1-i], h)
	}
	assert.Equal(t, render.OpClose, rec.Calls[len(rec.Calls)-1].Op)
}

func TestRenderModule_DrawSeesLiveSizes(t *testing.T) {
	rec := render.NewRecorder()
	app, err := NewAppBuilder().
		UseModule(sceneModules(smallScene())...).
		UseRenderer(rec).
		Build()
	require.NoError(t, err)
	sky, _ := Resource[Sky](app)
	layer := sky.Field.Layers[0]

	require.NoError(t, app.Start())
	for i := 0; i < 30; i++ {
		require.NoError(t, app.Tick(render.TickInput{Now: float64(i) * 10}))
	}

	first := rec.Order[0]
	got := rec.LastSizes[first]
	require.Len(t, got, layer.Len())
	assert.Equal(t, layer.Sizes, got)
	assert.NotEqual(t, layer.BaseSizes, got, "twinkle changed the sizes")
	require.NoError(t, app.Teardown())
}

func TestRenderModule_SubmitFailureAbortsStart(t *testing.T) {
	rec := render.NewRecorder()
	boom := errors.New("out of memory")
	rec.FailSubmit = boom

	app, err := NewAppBuilder().
		UseModule(sceneModules(smallScene())...).
		UseRenderer(rec).
		Build()
	require.NoError(t, err)

	err = app.Run(context.Background(), &render.FixedStepHost{Frames: 5})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, rec.Count(render.OpDraw))
	assert.True(t, rec.Closed, "teardown still closes the surface")
}

func TestRenderModule_OnlyOneRenderer(t *testing.T) {
	assert.PanicsWithValue(t, "Multiple renderers installed: headless and headless", func() {
		_, _ = NewAppBuilder().
			UseRenderer(render.NewRecorder()).
			UseRenderer(render.NewRecorder()).
			Build()
	})
}

func TestRenderModule_NilSurface(t *testing.T) {
	_, err := NewAppBuilder().UseModule(RenderModule{}).Build()
	assert.ErrorContains(t, err, "no render surface")
}

func TestScene_FailedDayFetchStillRuns(t *testing.T) {
	rec := render.NewRecorder()
	src := NewFSSource(textureFS(t, TextureBump, TextureSpecular, TextureNormal, TextureClouds))

	app, err := NewAppBuilder().
		UseModule(sceneModules(smallScene())[0]).
		UseModule(AssetServerModule{Source: src}).
		UseModule(smallScene().Modules()...).
		UseRenderer(rec).
		Build()
	require.NoError(t, err)

	g, _ := Resource[Globe](app)
	base := g.Surface.Material.Slot("base")
	assert.True(t, base.Fallback)
	assert.Equal(t, Placeholder(TextureDay).Pix, base.Image.Pix)
	assert.False(t, g.Surface.Material.Slot("bump").Fallback)

	require.NoError(t, app.Run(context.Background(), &render.FixedStepHost{Frames: 3}))
	assert.Equal(t, 3, rec.Count(render.OpDraw))
}

func TestScene_SeedReproducible(t *testing.T) {
	positions := func() [][]float32 {
		app, err := NewAppBuilder().UseModule(sceneModules(smallScene())...).Build()
		require.NoError(t, err)
		sky, _ := Resource[Sky](app)
		var out [][]float32
		for _, l := range sky.Field.Layers {
			for _, p := range l.Positions {
				out = append(out, p[:])
			}
		}
		return out
	}
	assert.Equal(t, positions(), positions())
}

func TestScene_ConfigErrorIsFatal(t *testing.T) {
	def := smallScene()
	def.Layers[1].RadiusMax = -5

	_, err := NewAppBuilder().UseModule(sceneModules(def)...).Build()
	var ce *starfield.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "radiusMax", ce.Param)
}
