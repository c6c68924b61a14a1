package globe

import (
	"time"

	"github.com/gekko3d/globe/starfield"
)

// Sky is the built star field. Layer order is Layers then Clusters, and a
// layer's position in that order is its parallax depth.
type Sky struct {
	Field *starfield.Field
	Seed  uint64
}

// StarfieldModule builds every star layer while the app is built. Seed 0
// draws a seed from the clock; the seed in use is logged either way so a
// scene can be reproduced.
type StarfieldModule struct {
	Layers   []starfield.LayerSpec
	Clusters []starfield.LayerSpec
	Seed     uint64
}

func (m StarfieldModule) Install(app *App, cmd *Commands) error {
	seed := m.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := starfield.NewRand(seed)

	layers := make([]*starfield.Layer, 0, len(m.Layers)+len(m.Clusters))
	for _, spec := range m.Layers {
		spec.ID = len(layers)
		l, err := starfield.Build(rng, spec)
		if err != nil {
			return err
		}
		layers = append(layers, l)
	}
	for _, spec := range m.Clusters {
		spec.ID = len(layers)
		l, err := starfield.BuildCluster(rng, spec)
		if err != nil {
			return err
		}
		layers = append(layers, l)
	}

	field, err := starfield.NewField(layers...)
	if err != nil {
		return err
	}
	app.Logger().Infof("Built %d star layers, %d points (seed %d)", len(layers), field.Points(), seed)

	cmd.AddResources(&Sky{Field: field, Seed: seed})
	cmd.UseSystem(System(skySystem).InStage(Update))
	cmd.UseSystem(System(skyReleaseSystem).InStage(Finale).InPhase(Teardown))
	return nil
}

func skySystem(sky *Sky, clock *SceneClock, scroll *ScrollSignal) {
	starfield.Tick(sky.Field, starfield.Frame{
		Elapsed:   clock.Elapsed,
		Scroll:    scroll.Offset,
		HasScroll: scroll.Changed,
	})
}

func skyReleaseSystem(sky *Sky) {
	sky.Field.Release()
}
