package globe

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"

	"github.com/gekko3d/globe/render"
)

type systemFn any

// Module installs resources and systems into an App.
type Module interface {
	Install(app *App, cmd *Commands) error
}

// FrameInput is what the host reported for the current tick. Only the clock
// and scroll systems read it.
type FrameInput struct {
	render.TickInput
}

type App struct {
	stages    []Stage
	systems   map[string]map[Phase][]systemFn
	resources map[reflect.Type]any

	input    *FrameInput
	resizers []func(width, height int) error
	orbiters []func(dx, dy float64)
	zoomers  []func(delta float64)

	started  bool
	tornDown bool
}

func newApp() *App {
	app := &App{
		systems:   make(map[string]map[Phase][]systemFn),
		resources: make(map[reflect.Type]any),
		input:     &FrameInput{},
	}
	for _, stage := range []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale} {
		app.stages = append(app.stages, stage)
		app.initStage(stage)
	}
	app.addResources(app.input)
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Start runs every Startup system once. Calling it again after a Teardown is
// an error; build a new App instead.
func (app *App) Start() error {
	if app.tornDown {
		return errors.New("start: app already torn down")
	}
	if app.started {
		return nil
	}
	app.started = true
	app.Logger().Infof("Starting")
	return app.callSystems(Startup)
}

// Tick runs one frame of Execute systems with the host's input.
func (app *App) Tick(in render.TickInput) error {
	if !app.started || app.tornDown {
		return errors.New("tick: app is not running")
	}
	app.input.TickInput = in
	return app.callSystems(Execute)
}

// Teardown runs every Teardown system, even when some fail, and reports all
// of their errors together. It is a no-op after the first call.
func (app *App) Teardown() error {
	if app.tornDown {
		return nil
	}
	app.tornDown = true
	var errs []error
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name][Teardown] {
			if err := app.callSystem(system); err != nil {
				errs = append(errs, fmt.Errorf("%s teardown: %w", stage.Name, err))
			}
		}
	}
	app.Logger().Infof("Torn down")
	return errors.Join(errs...)
}

// Resize hands the new viewport to every resize listener before returning.
func (app *App) Resize(width, height int) error {
	for _, fn := range app.resizers {
		if err := fn(width, height); err != nil {
			return fmt.Errorf("resize %dx%d: %w", width, height, err)
		}
	}
	return nil
}

func (app *App) Orbit(dx, dy float64) {
	for _, fn := range app.orbiters {
		fn(dx, dy)
	}
}

func (app *App) Zoom(delta float64) {
	for _, fn := range app.zoomers {
		fn(delta)
	}
}

// Run starts the app, hands the frame loop to host and tears down when the
// host returns, whatever the reason.
func (app *App) Run(ctx context.Context, host render.Host) (err error) {
	defer func() {
		err = errors.Join(err, app.Teardown())
	}()
	if err := app.Start(); err != nil {
		return err
	}
	return host.Run(ctx, render.Events{
		OnTick:   app.Tick,
		OnResize: app.Resize,
		OnOrbit:  app.Orbit,
		OnZoom:   app.Zoom,
	})
}

func (app *App) callSystems(phase Phase) error {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name][phase] {
			if err := app.callSystem(system); err != nil {
				return fmt.Errorf("%s %s: %w", stage.Name, phase, err)
			}
		}
	}
	return nil
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type T, if installed.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

func (app *App) callSystem(system systemFn) error {
	return app.callSystemInternal(system)
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfLogger   = reflect.TypeFor[Logger]()
	typeOfError    = reflect.TypeFor[error]()
)

// callSystemInternal resolves every pointer parameter from resources and
// calls the system. A system may return nothing or a single error.
func (app *App) callSystemInternal(system systemFn) error {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)

		if argType == typeOfLogger {
			args[i] = reflect.ValueOf(app.Logger())
			continue
		}
		if argType.Kind() != reflect.Pointer {
			panic(app.unresolved(systemType, systemValue, argType))
		}

		underlyingType := argType.Elem()
		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			panic(app.unresolved(systemType, systemValue, argType))
		}
	}

	out := systemValue.Call(args)
	if len(out) == 1 && systemType.Out(0) == typeOfError && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func (app *App) unresolved(systemType reflect.Type, systemValue reflect.Value, argType reflect.Type) string {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	return msg
}
