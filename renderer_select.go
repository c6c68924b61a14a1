package globe

import (
	"fmt"
	"strings"

	"github.com/gekko3d/globe/render"
)

// RendererName identifies a render backend on the command line.
type RendererName string

const (
	RendererGPU      RendererName = "gpu"
	RendererTerminal RendererName = "term"
	RendererHeadless RendererName = "headless"
)

var rendererNames = []RendererName{RendererGPU, RendererTerminal, RendererHeadless}

// ParseRendererName accepts a backend name in any case.
func ParseRendererName(s string) (RendererName, error) {
	n := RendererName(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range rendererNames {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown renderer %q (want one of %v)", s, rendererNames)
}

// UseRenderer installs exactly one render surface.
// Usage:
//
//	builder.UseRenderer(render.NewRecorder())
func (b *AppBuilder) UseRenderer(surface render.Surface) *AppBuilder {
	return b.UseModule(RenderModule{Surface: surface})
}
