package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/globe/render"
)

// Orbit step per arrow key press and per dragged cell, in radians.
const (
	KeyOrbitStep  = 0.05
	DragOrbitStep = 0.02
)

// Host ticks at roughly 60 FPS and turns terminal input into app events.
type Host struct {
	Screen   tcell.Screen
	Interval time.Duration

	scroll   render.ScrollAccumulator
	dragging bool
	lastX    int
	lastY    int
}

func (h *Host) Run(ctx context.Context, ev render.Events) error {
	h.Screen.EnableMouse()

	if ev.OnResize != nil {
		w, ht := h.Screen.Size()
		if err := ev.OnResize(w, ht); err != nil {
			return err
		}
	}

	interval := h.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			e := h.Screen.PollEvent()
			if e == nil {
				return
			}
			select {
			case events <- e:
			case <-done:
				return
			}
		}
	}()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			stop, err := h.handle(e, ev)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		case <-ticker.C:
			in := render.TickInput{Now: time.Since(start).Seconds()}
			in.Scroll, in.HasScroll = h.scroll.Take()
			if ev.OnTick != nil {
				if err := ev.OnTick(in); err != nil {
					return err
				}
			}
		}
	}
}

// handle applies one terminal event. stop is true when the user quits.
func (h *Host) handle(e tcell.Event, ev render.Events) (stop bool, err error) {
	switch e := e.(type) {
	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true, nil
		case tcell.KeyLeft:
			h.orbit(ev, -KeyOrbitStep, 0)
		case tcell.KeyRight:
			h.orbit(ev, KeyOrbitStep, 0)
		case tcell.KeyUp:
			h.orbit(ev, 0, -KeyOrbitStep)
		case tcell.KeyDown:
			h.orbit(ev, 0, KeyOrbitStep)
		case tcell.KeyRune:
			switch e.Rune() {
			case 'q':
				return true, nil
			case '+', '=':
				h.zoom(ev, -1)
			case '-':
				h.zoom(ev, 1)
			}
		}

	case *tcell.EventMouse:
		buttons := e.Buttons()
		switch {
		case buttons&tcell.WheelUp != 0:
			h.scroll.Wheel(-1)
			h.zoom(ev, -1)
		case buttons&tcell.WheelDown != 0:
			h.scroll.Wheel(1)
			h.zoom(ev, 1)
		}
		x, y := e.Position()
		if buttons&tcell.Button1 != 0 {
			if h.dragging {
				h.orbit(ev, float64(x-h.lastX)*DragOrbitStep, float64(y-h.lastY)*DragOrbitStep)
			}
			h.dragging = true
		} else {
			h.dragging = false
		}
		h.lastX, h.lastY = x, y

	case *tcell.EventResize:
		h.Screen.Sync()
		if ev.OnResize != nil {
			w, ht := e.Size()
			return false, ev.OnResize(w, ht)
		}
	}
	return false, nil
}

func (h *Host) orbit(ev render.Events, dx, dy float64) {
	if ev.OnOrbit != nil {
		ev.OnOrbit(dx, dy)
	}
}

func (h *Host) zoom(ev render.Events, delta float64) {
	if ev.OnZoom != nil {
		ev.OnZoom(delta)
	}
}
