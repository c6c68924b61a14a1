// Package term draws the scene as colored glyphs in a terminal.
package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const backendName = "terminal"

// Glyph thresholds on live star size.
const (
	SmallStar = 0.6
	LargeStar = 1.2
)

// DefaultCellAspect is a typical terminal cell's width over its height.
const DefaultCellAspect = 0.5

// Glyph picks the character for a star of the given live size.
func Glyph(size float32) rune {
	switch {
	case size < SmallStar:
		return '.'
	case size < LargeStar:
		return '+'
	default:
		return '*'
	}
}

// Surface projects every submitted point (and mesh vertex) into terminal
// cells, nearest first.
type Surface struct {
	CellAspect float32

	screen  tcell.Screen
	objects map[render.Handle]render.Geometry
	depth   []float32
	w, h    int
}

func NewSurface(screen tcell.Screen) *Surface {
	w, h := screen.Size()
	return &Surface{
		CellAspect: DefaultCellAspect,
		screen:     screen,
		objects:    make(map[render.Handle]render.Geometry),
		w:          w,
		h:          h,
	}
}

// OpenScreen creates and initializes the terminal screen.
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, render.Unavailable(backendName, err)
	}
	if err := screen.Init(); err != nil {
		return nil, render.Unavailable(backendName, err)
	}
	return screen, nil
}

func (s *Surface) Name() string { return backendName }

func (s *Surface) Submit(g render.Geometry) (render.Handle, error) {
	switch g := g.(type) {
	case render.PointCloud:
		if g.Layer == nil {
			return "", fmt.Errorf("submit: point cloud without layer")
		}
	case render.Mesh:
		if g.Data == nil {
			return "", fmt.Errorf("submit %q: empty mesh", g.Name)
		}
	default:
		return "", fmt.Errorf("submit: unsupported geometry %T", g)
	}
	h := render.NewHandle()
	s.objects[h] = g
	return h, nil
}

func (s *Surface) Draw(handles []render.Handle, camera scene.CameraState) error {
	for _, h := range handles {
		if _, ok := s.objects[h]; !ok {
			return fmt.Errorf("draw %s: %w", h, render.ErrUnknownHandle)
		}
	}

	s.screen.Clear()
	n := s.w * s.h
	if cap(s.depth) < n {
		s.depth = make([]float32, n)
	}
	s.depth = s.depth[:n]
	for i := range s.depth {
		s.depth[i] = 2
	}

	camera.Width, camera.Height = s.w, s.h
	aspect := s.CellAspect
	if aspect <= 0 {
		aspect = DefaultCellAspect
	}
	vp := mgl32.Scale3D(1/aspect, 1, 1).Mul4(camera.ViewProjection())

	for _, h := range handles {
		switch g := s.objects[h].(type) {
		case render.PointCloud:
			s.drawPoints(vp, camera, g)
		case render.Mesh:
			s.drawMesh(vp, camera, g)
		}
	}
	s.screen.Show()
	return nil
}

func (s *Surface) plot(camera scene.CameraState, ndc mgl32.Vec3, r rune, style tcell.Style) {
	x, y := camera.ToViewport(ndc)
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	i := y*s.w + x
	if ndc.Z() >= s.depth[i] {
		return
	}
	s.depth[i] = ndc.Z()
	s.screen.SetContent(x, y, r, nil, style)
}

func (s *Surface) drawPoints(vp mgl32.Mat4, camera scene.CameraState, pc render.PointCloud) {
	mvp := vp.Mul4(pc.Model())
	l := pc.Layer
	for i, p := range l.Positions {
		ndc, ok := scene.Project(mvp, p)
		if !ok {
			continue
		}
		s.plot(camera, ndc, Glyph(l.Sizes[i]), tcell.StyleDefault.Foreground(rgb(l.Colors[i])))
	}
}

func (s *Surface) drawMesh(vp mgl32.Mat4, camera scene.CameraState, m render.Mesh) {
	// Additive and see-through shells would only hide the surface beneath.
	if m.Material.Transparent() {
		return
	}
	mvp := vp.Mul4(m.Model())
	base := m.Material.Slot(scene.SlotBase)
	for i, p := range m.Data.Positions {
		ndc, ok := scene.Project(mvp, p)
		if !ok {
			continue
		}
		c := m.Material.Color
		if base != nil && base.Image != nil {
			c = sampleUV(base, m.Data.UVs[i])
		}
		s.plot(camera, ndc, 'o', tcell.StyleDefault.Foreground(rgb(c)))
	}
}

func sampleUV(t *scene.Texture, uv mgl32.Vec2) mgl32.Vec3 {
	w, h := t.Size()
	x := min(int(uv.X()*float32(w)), w-1)
	y := min(int(uv.Y()*float32(h)), h-1)
	c := t.Image.RGBAAt(x, y)
	return mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func rgb(c mgl32.Vec3) tcell.Color {
	return tcell.NewRGBColor(int32(c.X()*255), int32(c.Y()*255), int32(c.Z()*255))
}

func (s *Surface) Dispose(h render.Handle) error {
	if _, ok := s.objects[h]; !ok {
		return fmt.Errorf("dispose %s: %w", h, render.ErrUnknownHandle)
	}
	delete(s.objects, h)
	return nil
}

// Resize records the new cell grid; the next Draw uses it.
func (s *Surface) Resize(width, height int) error {
	s.w, s.h = max(width, 0), max(height, 0)
	return nil
}

// Close restores the terminal.
func (s *Surface) Close() error {
	s.objects = map[render.Handle]render.Geometry{}
	s.screen.Fini()
	return nil
}
