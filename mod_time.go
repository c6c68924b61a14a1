package globe

// MaxFrameStep caps how far the scene clock moves in one tick, so a stalled
// host (debugger, suspended laptop) does not make everything jump.
const MaxFrameStep = 0.25

// SceneClock is the monotonic elapsed time every animation reads. Only
// clockSystem writes it.
type SceneClock struct {
	Elapsed float64 // seconds since Start
	Dt      float64 // seconds since the previous tick
	Frame   uint64

	last    float64
	running bool
}

// advance moves the clock to host time now. The first call after a reset
// only records the origin.
func (c *SceneClock) advance(now float64) {
	if !c.running {
		c.last = now
		c.running = true
		c.Dt = 0
		return
	}
	dt := now - c.last
	c.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > MaxFrameStep {
		dt = MaxFrameStep
	}
	c.Dt = dt
	c.Elapsed += dt
	c.Frame++
}

func (c *SceneClock) reset() {
	*c = SceneClock{}
}

// ScrollSignal is the page-style scroll offset reported by the host. Changed
// is true only on ticks where the host reported a new offset.
type ScrollSignal struct {
	Offset  float64
	Changed bool
}

type ClockModule struct{}

func (mod ClockModule) Install(app *App, cmd *Commands) error {
	cmd.AddResources(&SceneClock{}, &ScrollSignal{})
	cmd.UseSystem(System(clockResetSystem).InStage(Prelude).InPhase(Startup))
	cmd.UseSystem(System(clockSystem).InStage(Prelude))
	cmd.UseSystem(System(scrollSystem).InStage(Prelude))
	return nil
}

func clockResetSystem(clock *SceneClock, scroll *ScrollSignal) {
	clock.reset()
	*scroll = ScrollSignal{}
}

func clockSystem(in *FrameInput, clock *SceneClock) {
	clock.advance(in.Now)
}

func scrollSystem(in *FrameInput, scroll *ScrollSignal) {
	scroll.Changed = in.HasScroll
	if in.HasScroll {
		scroll.Offset = in.Scroll
	}
}
