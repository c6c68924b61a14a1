package render

import (
	"context"
	"math"
)

// DefaultStep is the tick interval hosts aim for.
const DefaultStep = 1.0 / 60

// FixedStepHost emits a fixed number of ticks at a fixed step without
// waiting on a real clock. Scroll, if set, is asked for a scroll offset
// before every frame.
type FixedStepHost struct {
	Frames int
	Step   float64
	Start  float64
	Width  int
	Height int
	Scroll func(frame int) (offset float64, ok bool)
}

func (h *FixedStepHost) Run(ctx context.Context, ev Events) error {
	if h.Width > 0 && h.Height > 0 && ev.OnResize != nil {
		if err := ev.OnResize(h.Width, h.Height); err != nil {
			return err
		}
	}
	step := h.Step
	if step <= 0 {
		step = DefaultStep
	}
	for i := 0; i < h.Frames; i++ {
		if ctx.Err() != nil {
			return nil
		}
		in := TickInput{Now: h.Start + float64(i)*step}
		if h.Scroll != nil {
			in.Scroll, in.HasScroll = h.Scroll(i)
		}
		if ev.OnTick != nil {
			if err := ev.OnTick(in); err != nil {
				return err
			}
		}
	}
	return nil
}

// ScrollStepPixels is the offset added per wheel notch.
const ScrollStepPixels = 40

// ScrollAccumulator turns wheel notches into a page-style scroll offset that
// never goes below zero.
type ScrollAccumulator struct {
	Offset float64
	dirty  bool
}

// Wheel applies a wheel delta. Positive notches scroll down the page.
func (s *ScrollAccumulator) Wheel(notches float64) {
	s.Offset = math.Max(0, s.Offset+notches*ScrollStepPixels)
	s.dirty = true
}

// Take returns the offset and whether it changed since the last call.
func (s *ScrollAccumulator) Take() (float64, bool) {
	changed := s.dirty
	s.dirty = false
	return s.Offset, changed
}

// FrameLimit stops the wrapped host after Frames ticks. Zero means no limit.
type FrameLimit struct {
	Host   Host
	Frames int
}

func (l FrameLimit) Run(ctx context.Context, ev Events) error {
	if l.Frames <= 0 {
		return l.Host.Run(ctx, ev)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := 0
	tick := ev.OnTick
	ev.OnTick = func(in TickInput) error {
		if n >= l.Frames {
			return nil
		}
		if tick != nil {
			if err := tick(in); err != nil {
				return err
			}
		}
		n++
		if n >= l.Frames {
			cancel()
		}
		return nil
	}
	return l.Host.Run(ctx, ev)
}
