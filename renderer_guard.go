package globe

import (
	"fmt"
)

// RendererTag marks that a render surface has been installed into the App.
// Only one surface may be installed at a time.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer enforces a single surface per App.
// A second surface is a wiring mistake, so it panics with a clear message.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
		panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
	}
	app.addResources(&RendererTag{Name: name})
}
