package globe

import (
	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/starfield"
)

// ConfigurationError is fatal at build time and names the bad parameter.
type ConfigurationError = starfield.ConfigurationError

// RenderSurfaceUnavailable means no surface could be created. It is never
// retried.
type RenderSurfaceUnavailable = render.UnavailableError
