package render

import (
	"fmt"

	"github.com/gekko3d/globe/scene"
)

// Op is a recorded surface call.
type Op string

const (
	OpSubmit  Op = "submit"
	OpDraw    Op = "draw"
	OpDispose Op = "dispose"
	OpResize  Op = "resize"
	OpClose   Op = "close"
)

// Call is one entry in a Recorder's log.
type Call struct {
	Op      Op
	Handle  Handle
	Handles int
	Width   int
	Height  int
}

// Recorder is a headless Surface. It keeps everything it is given and a log of
// every call, which makes it the surface of choice for tests and for running
// the scene without a display.
type Recorder struct {
	Calls      []Call
	Live       map[Handle]Geometry
	Order      []Handle
	LastCamera scene.CameraState
	Width      int
	Height     int
	Closed     bool

	// Live star sizes observed at the last Draw, per handle.
	LastSizes map[Handle][]float32

	// FailSubmit, when set, is returned by the next Submit.
	FailSubmit error
}

func NewRecorder() *Recorder {
	return &Recorder{
		Live:      make(map[Handle]Geometry),
		LastSizes: make(map[Handle][]float32),
	}
}

func (r *Recorder) Name() string { return "headless" }

func (r *Recorder) Submit(g Geometry) (Handle, error) {
	if err := r.FailSubmit; err != nil {
		r.FailSubmit = nil
		return "", err
	}
	if g == nil {
		return "", fmt.Errorf("submit: nil geometry")
	}
	h := NewHandle()
	r.Live[h] = g
	r.Order = append(r.Order, h)
	r.Calls = append(r.Calls, Call{Op: OpSubmit, Handle: h})
	return h, nil
}

func (r *Recorder) Draw(handles []Handle, camera scene.CameraState) error {
	for _, h := range handles {
		g, ok := r.Live[h]
		if !ok {
			return fmt.Errorf("draw %s: %w", h, ErrUnknownHandle)
		}
		if pc, ok := g.(PointCloud); ok && pc.Layer != nil {
			r.LastSizes[h] = append(r.LastSizes[h][:0], pc.Layer.Sizes...)
		}
	}
	r.LastCamera = camera
	r.Calls = append(r.Calls, Call{Op: OpDraw, Handles: len(handles)})
	return nil
}

func (r *Recorder) Dispose(h Handle) error {
	if _, ok := r.Live[h]; !ok {
		return fmt.Errorf("dispose %s: %w", h, ErrUnknownHandle)
	}
	delete(r.Live, h)
	delete(r.LastSizes, h)
	r.Calls = append(r.Calls, Call{Op: OpDispose, Handle: h})
	return nil
}

func (r *Recorder) Resize(width, height int) error {
	r.Width, r.Height = width, height
	r.Calls = append(r.Calls, Call{Op: OpResize, Width: width, Height: height})
	return nil
}

func (r *Recorder) Close() error {
	r.Closed = true
	r.Calls = append(r.Calls, Call{Op: OpClose})
	return nil
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}
