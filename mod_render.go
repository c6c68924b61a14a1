package globe

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gekko3d/globe/render"
)

// RenderState tracks everything submitted to the surface, in submit order.
type RenderState struct {
	Surface render.Surface
	Handles []render.Handle
	Frames  uint64
}

// RenderModule hands the scene to a surface. Geometry is submitted once at
// Start, drawn every tick and disposed at Teardown. Install it after the
// modules whose scene it draws.
type RenderModule struct {
	Surface render.Surface
}

func (m RenderModule) Install(app *App, cmd *Commands) error {
	if m.Surface == nil {
		return errors.New("no render surface")
	}
	ensureSingleRenderer(app, m.Surface.Name())
	app.Logger().Infof("Renderer selected: %s", m.Surface.Name())

	rs := &RenderState{Surface: m.Surface}
	cmd.AddResources(rs)
	cmd.OnResize(m.Surface.Resize)
	cmd.UseSystem(System(renderSubmitSystem).InStage(Render).InPhase(Startup))
	cmd.UseSystem(System(renderSystem).InStage(Render))
	cmd.UseSystem(System(renderTeardownSystem).InStage(Render).InPhase(Teardown))
	return nil
}

// renderSubmitSystem submits star layers first, then the globe meshes.
func renderSubmitSystem(rs *RenderState, cmd *Commands) error {
	var geometry []render.Geometry
	if sky, ok := Resource[Sky](cmd.app); ok {
		for _, l := range sky.Field.Layers {
			geometry = append(geometry, render.PointCloud{Layer: l})
		}
	}
	if g, ok := Resource[Globe](cmd.app); ok {
		for _, m := range g.Meshes() {
			geometry = append(geometry, m)
		}
	}

	for _, g := range geometry {
		h, err := rs.Surface.Submit(g)
		if err != nil {
			return fmt.Errorf("submit to %s: %w", rs.Surface.Name(), err)
		}
		rs.Handles = append(rs.Handles, h)
	}
	cmd.Logger().Infof("Submitted %d objects to %s", len(rs.Handles), rs.Surface.Name())
	return nil
}

func renderSystem(rs *RenderState, cam *OrbitCamera, log Logger) error {
	if err := rs.Surface.Draw(rs.Handles, cam.State()); err != nil {
		return fmt.Errorf("draw frame %d: %w", rs.Frames, err)
	}
	rs.Frames++
	if rs.Frames%600 == 0 {
		log.Debugf("Drew %d frames", rs.Frames)
	}
	return nil
}

// renderTeardownSystem disposes handles newest first, then closes the surface
// if it owns a window or terminal.
func renderTeardownSystem(rs *RenderState, log Logger) error {
	var errs []error
	for _, h := range slices.Backward(rs.Handles) {
		if err := rs.Surface.Dispose(h); err != nil {
			errs = append(errs, err)
		}
	}
	n := len(rs.Handles)
	rs.Handles = nil

	if c, ok := rs.Surface.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", rs.Surface.Name(), err))
		}
	}
	log.Infof("Released %d render objects after %d frames", n, rs.Frames)
	return errors.Join(errs...)
}
