package gpu

import (
	"github.com/gekko3d/globe/render"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window is a GLFW window without a client API; WebGPU draws into it.
// Open and every method must be called from the main OS thread.
type Window struct {
	win *glfw.Window
}

func Open(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, render.Unavailable("glfw", err)
	}
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Globe"
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, render.Unavailable("glfw", err)
	}
	return &Window{win: win}, nil
}

// FramebufferSize is the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) Close() error {
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
		glfw.Terminate()
	}
	return nil
}
