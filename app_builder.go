package globe

import (
	"fmt"
	"reflect"
)

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs every module in order. The first install error stops the
// build and comes back wrapped with the module's type name.
func (b *AppBuilder) Build() (*App, error) {
	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		if err := module.Install(app, commands); err != nil {
			return nil, fmt.Errorf("install %s: %w", moduleName(module), err)
		}
	}

	return app, nil
}

func moduleName(m Module) string {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
