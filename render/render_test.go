package render

import (
	"context"
	"errors"
	"testing"

	"github.com/gekko3d/globe/scene"
	"github.com/gekko3d/globe/starfield"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayer(t *testing.T) *starfield.Layer {
	t.Helper()
	l, err := starfield.Build(starfield.NewRand(1), starfield.LayerSpec{
		Count:     10,
		BaseColor: starfield.RGBHex(0xffffff),
		RadiusMax: 5,
		SizeMin:   0.2,
		SizeMax:   1.2,
	})
	require.NoError(t, err)
	return l
}

func TestRecorder_Lifecycle(t *testing.T) {
	r := NewRecorder()
	l := testLayer(t)

	h1, err := r.Submit(PointCloud{Layer: l})
	require.NoError(t, err)
	h2, err := r.Submit(Mesh{Name: "earth", Data: scene.SphereMesh(1, 8, 4)})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	cam := scene.CameraState{Width: 10, Height: 5}
	require.NoError(t, r.Draw([]Handle{h1, h2}, cam))
	assert.Equal(t, cam, r.LastCamera)
	assert.Equal(t, l.Sizes, r.LastSizes[h1])

	// Live sizes are re-read on every draw.
	l.Sizes[0] = 99
	require.NoError(t, r.Draw([]Handle{h1}, cam))
	assert.Equal(t, float32(99), r.LastSizes[h1][0])

	require.NoError(t, r.Dispose(h2))
	require.NoError(t, r.Dispose(h1))
	assert.Empty(t, r.Live)
	assert.ErrorIs(t, r.Dispose(h1), ErrUnknownHandle)
	assert.ErrorIs(t, r.Draw([]Handle{h1}, cam), ErrUnknownHandle)

	assert.Equal(t, 2, r.Count(OpSubmit))
	assert.Equal(t, 2, r.Count(OpDraw))
	assert.Equal(t, 2, r.Count(OpDispose))
}

func TestRecorder_FailSubmitOnce(t *testing.T) {
	r := NewRecorder()
	boom := errors.New("boom")
	r.FailSubmit = boom

	_, err := r.Submit(PointCloud{Layer: testLayer(t)})
	assert.ErrorIs(t, err, boom)
	_, err = r.Submit(PointCloud{Layer: testLayer(t)})
	assert.NoError(t, err)
}

func TestRecorder_ResizeAndClose(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Resize(640, 480))
	assert.Equal(t, 640, r.Width)
	assert.Equal(t, 480, r.Height)
	require.NoError(t, r.Close())
	assert.True(t, r.Closed)
}

func TestPointCloud_ModelUsesLiveRotation(t *testing.T) {
	l := testLayer(t)
	l.Center = mgl32.Vec3{10, 0, 0}
	pc := PointCloud{Layer: l}

	p := scene.Apply(pc.Model(), mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 11, p.X(), 1e-5)

	l.Rotation = mgl64.Vec3{0, 3.14159265, 0}
	p = scene.Apply(pc.Model(), mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 9, p.X(), 1e-4)
}

func TestMesh_ModelDefaultsToIdentity(t *testing.T) {
	assert.Equal(t, mgl32.Ident4(), Mesh{}.Model())

	node := &scene.Node{Local: scene.Transform{Position: mgl32.Vec3{0, 2, 0}}}
	m := Mesh{Place: node}
	assert.InDelta(t, 2, scene.Apply(m.Model(), mgl32.Vec3{}).Y(), 1e-6)
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("no adapter")
	err := Unavailable("wgpu", cause)

	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "wgpu", ue.Backend)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "no adapter")
}

func TestFixedStepHost(t *testing.T) {
	var ticks []TickInput
	var sizes [][2]int
	h := &FixedStepHost{
		Frames: 5,
		Width:  800,
		Height: 600,
		Scroll: func(frame int) (float64, bool) {
			return float64(frame * 40), frame == 3
		},
	}
	err := h.Run(context.Background(), Events{
		OnTick: func(in TickInput) error {
			ticks = append(ticks, in)
			return nil
		},
		OnResize: func(w, h int) error {
			sizes = append(sizes, [2]int{w, h})
			return nil
		},
	})
	require.NoError(t, err)
	require.Len(t, ticks, 5)
	assert.Equal(t, [][2]int{{800, 600}}, sizes)
	assert.InDelta(t, 4*DefaultStep, ticks[4].Now, 1e-12)
	assert.True(t, ticks[3].HasScroll)
	assert.Equal(t, 120.0, ticks[3].Scroll)
	assert.False(t, ticks[2].HasScroll)
}

func TestFixedStepHost_StopsOnErrorAndCancel(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	h := &FixedStepHost{Frames: 10}
	err := h.Run(context.Background(), Events{OnTick: func(TickInput) error {
		n++
		if n == 3 {
			return boom
		}
		return nil
	}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n = 0
	assert.NoError(t, h.Run(ctx, Events{OnTick: func(TickInput) error { n++; return nil }}))
	assert.Zero(t, n)
}

func TestScrollAccumulator(t *testing.T) {
	var s ScrollAccumulator
	_, changed := s.Take()
	assert.False(t, changed)

	s.Wheel(3)
	off, changed := s.Take()
	assert.True(t, changed)
	assert.Equal(t, 120.0, off)

	_, changed = s.Take()
	assert.False(t, changed)

	s.Wheel(-10)
	off, _ = s.Take()
	assert.Equal(t, 0.0, off)
}

func TestFrameLimit(t *testing.T) {
	ticks := 0
	host := FrameLimit{Host: &FixedStepHost{Frames: 100}, Frames: 7}
	err := host.Run(context.Background(), Events{OnTick: func(TickInput) error { ticks++; return nil }})
	require.NoError(t, err)
	assert.Equal(t, 7, ticks)

	ticks = 0
	unlimited := FrameLimit{Host: &FixedStepHost{Frames: 4}}
	require.NoError(t, unlimited.Run(context.Background(), Events{OnTick: func(TickInput) error { ticks++; return nil }}))
	assert.Equal(t, 4, ticks)
}
