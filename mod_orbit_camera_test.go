package globe

import (
	"testing"

	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCamera(t *testing.T) (*App, *OrbitCamera) {
	t.Helper()
	app, err := NewAppBuilder().UseModule(NewOrbitCameraModule()).Build()
	require.NoError(t, err)
	cam, ok := Resource[OrbitCamera](app)
	require.True(t, ok)
	require.NoError(t, app.Start())
	return app, cam
}

func settle(t *testing.T, app *App, frames int) {
	t.Helper()
	for i := 0; i < frames; i++ {
		require.NoError(t, app.Tick(render.TickInput{}))
	}
}

func TestOrbitCamera_StartsFacingGlobe(t *testing.T) {
	_, cam := buildCamera(t)

	st := cam.State()
	assert.InDelta(t, 4, st.Position.Z(), 1e-6)
	assert.InDelta(t, 0, st.Position.X(), 1e-6)

	ndc, ok := scene.Project(st.Projection.Mul4(st.View), mgl32.Vec3{})
	require.True(t, ok)
	assert.InDelta(t, 0, ndc.X(), 1e-6)
	assert.InDelta(t, 0, ndc.Y(), 1e-6)
}

func TestOrbitCamera_ResizeUpdatesProjectionImmediately(t *testing.T) {
	app, cam := buildCamera(t)

	require.NoError(t, app.Resize(1600, 800))
	st := cam.State()
	assert.Equal(t, 1600, st.Width)
	assert.Equal(t, 800, st.Height)
	want := scene.Perspective(60, 2, 0.1, 1000)
	assert.Equal(t, want, st.Projection)
}

func TestOrbitCamera_ZoomClamped(t *testing.T) {
	app, cam := buildCamera(t)

	for i := 0; i < 100; i++ {
		app.Zoom(1)
	}
	settle(t, app, 600)
	assert.InDelta(t, 10, cam.Distance, 1e-3)

	for i := 0; i < 100; i++ {
		app.Zoom(-1)
	}
	settle(t, app, 600)
	assert.InDelta(t, 2, cam.Distance, 1e-3)
}

func TestOrbitCamera_PitchClamped(t *testing.T) {
	app, cam := buildCamera(t)

	app.Orbit(0, 10)
	settle(t, app, 600)
	assert.InDelta(t, MaxPitch, cam.Pitch, 1e-3)

	app.Orbit(0, -20)
	settle(t, app, 600)
	assert.InDelta(t, -MaxPitch, cam.Pitch, 1e-3)
}

func TestOrbitCamera_Damped(t *testing.T) {
	app, cam := buildCamera(t)

	app.Orbit(-1, 0)
	settle(t, app, 1)
	assert.Greater(t, cam.Yaw, 0.0)
	assert.Less(t, cam.Yaw, 1.0, "one frame does not reach the target")

	settle(t, app, 600)
	assert.InDelta(t, 1.0, cam.Yaw, 1e-3)
	assert.InDelta(t, 4, cam.Position().Len(), 1e-3, "orbiting keeps the distance")
}
