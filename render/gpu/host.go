package gpu

import (
	"context"

	"github.com/gekko3d/globe/render"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// OrbitSensitivity converts cursor pixels to orbit radians.
const OrbitSensitivity = 0.005

// Host runs the frame loop on a GLFW window. The swap chain's FIFO present
// mode paces it to the display refresh rate.
type Host struct {
	Window *Window
}

func (h *Host) Run(ctx context.Context, ev render.Events) error {
	win := h.Window.win

	var (
		cbErr    error
		scroll   render.ScrollAccumulator
		dragging bool
		lastX    float64
		lastY    float64
	)
	fail := func(err error) {
		if err != nil && cbErr == nil {
			cbErr = err
		}
	}

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if ev.OnResize != nil {
			fail(ev.OnResize(width, height))
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		// Wheel up scrolls toward the top of the page and zooms in.
		scroll.Wheel(-yoff)
		if ev.OnZoom != nil {
			ev.OnZoom(-yoff)
		}
	})
	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		dragging = action == glfw.Press
		lastX, lastY = w.GetCursorPos()
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if dragging && ev.OnOrbit != nil {
			ev.OnOrbit((x-lastX)*OrbitSensitivity, (y-lastY)*OrbitSensitivity)
		}
		lastX, lastY = x, y
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	defer func() {
		win.SetFramebufferSizeCallback(nil)
		win.SetScrollCallback(nil)
		win.SetMouseButtonCallback(nil)
		win.SetCursorPosCallback(nil)
		win.SetKeyCallback(nil)
	}()

	if ev.OnResize != nil {
		width, height := win.GetFramebufferSize()
		if err := ev.OnResize(width, height); err != nil {
			return err
		}
	}

	for !win.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		glfw.PollEvents()
		if cbErr != nil {
			return cbErr
		}

		in := render.TickInput{Now: glfw.GetTime()}
		in.Scroll, in.HasScroll = scroll.Take()
		if ev.OnTick != nil {
			if err := ev.OnTick(in); err != nil {
				return err
			}
		}
	}
	return nil
}
