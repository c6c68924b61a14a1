package globe

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// OnResize registers fn to run synchronously from App.Resize.
func (cmd *Commands) OnResize(fn func(width, height int) error) *Commands {
	cmd.app.resizers = append(cmd.app.resizers, fn)
	return cmd
}

func (cmd *Commands) OnOrbit(fn func(dx, dy float64)) *Commands {
	cmd.app.orbiters = append(cmd.app.orbiters, fn)
	return cmd
}

func (cmd *Commands) OnZoom(fn func(delta float64)) *Commands {
	cmd.app.zoomers = append(cmd.app.zoomers, fn)
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
