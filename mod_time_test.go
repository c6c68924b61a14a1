package globe

import (
	"testing"

	"github.com/gekko3d/globe/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneClock_Advance(t *testing.T) {
	var c SceneClock

	c.advance(100)
	assert.Equal(t, 0.0, c.Elapsed, "first tick only sets the origin")

	c.advance(100.1)
	c.advance(100.2)
	assert.InDelta(t, 0.2, c.Elapsed, 1e-9)
	assert.Equal(t, uint64(2), c.Frame)

	c.advance(99) // host clock went backwards
	assert.InDelta(t, 0.2, c.Elapsed, 1e-9)
	assert.Equal(t, 0.0, c.Dt)

	c.advance(200) // long stall
	assert.InDelta(t, 0.2+MaxFrameStep, c.Elapsed, 1e-9)
}

func TestClockModule_MonotonicAndResetOnStart(t *testing.T) {
	app, err := NewAppBuilder().UseModule(ClockModule{}).Build()
	require.NoError(t, err)
	require.NoError(t, app.Start())

	clock, ok := Resource[SceneClock](app)
	require.True(t, ok)

	prev := -1.0
	for i := 0; i < 10; i++ {
		require.NoError(t, app.Tick(render.TickInput{Now: 5 + float64(i)/60}))
		assert.GreaterOrEqual(t, clock.Elapsed, prev)
		prev = clock.Elapsed
	}
	assert.InDelta(t, 9.0/60, clock.Elapsed, 1e-9)
}

func TestClockModule_ScrollSignal(t *testing.T) {
	app, err := NewAppBuilder().UseModule(ClockModule{}).Build()
	require.NoError(t, err)
	require.NoError(t, app.Start())
	scroll, _ := Resource[ScrollSignal](app)

	require.NoError(t, app.Tick(render.TickInput{Scroll: 120, HasScroll: true}))
	assert.True(t, scroll.Changed)
	assert.Equal(t, 120.0, scroll.Offset)

	require.NoError(t, app.Tick(render.TickInput{}))
	assert.False(t, scroll.Changed)
	assert.Equal(t, 120.0, scroll.Offset, "offset is kept between scrolls")
}
