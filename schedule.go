package globe

import (
	"fmt"
	"reflect"
	"slices"
)

type Stage struct {
	Name string
}

var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	PreRender  = Stage{Name: "PreRender"}
	Render     = Stage{Name: "Render"}
	PostRender = Stage{Name: "PostRender"}
	Finale     = Stage{Name: "Finale"}
)

// Phase says when a system runs: once at Start, every Tick, or once at
// Teardown.
type Phase int

const (
	Startup Phase = iota
	Execute
	Teardown
)

func (p Phase) String() string {
	switch p {
	case Startup:
		return "startup"
	case Execute:
		return "execute"
	case Teardown:
		return "teardown"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type systemScheduleBuilder struct {
	inStage Stage
	inPhase Phase
	system  systemFn
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	return systemScheduleBuilder{
		system:  sched.system,
		inStage: s,
		inPhase: sched.inPhase,
	}
}

func (sched systemScheduleBuilder) InPhase(p Phase) systemScheduleBuilder {
	return systemScheduleBuilder{
		system:  sched.system,
		inStage: sched.inStage,
		inPhase: p,
	}
}

// System schedules fn in the Update stage on every tick unless told
// otherwise.
func System(system systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{
		system:  system,
		inStage: Update,
		inPhase: Execute,
	}
}

type stagePosition int

const (
	stageBefore stagePosition = iota
	stageAfter
)

type stagePositionBuilder struct {
	position stagePosition
	target   Stage
}

func BeforeStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{
		position: stageBefore,
		target:   s,
	}
}

func AfterStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{
		position: stageAfter,
		target:   s,
	}
}

func (app *App) UseStage(stage Stage, where stagePositionBuilder) *App {
	var stageIdx int = -1
	for i, s := range app.stages {
		if s.Name == where.target.Name {
			stageIdx = i
			break
		}
	}
	if -1 == stageIdx {
		panic(fmt.Sprintf("Stage %v not found", where.target.Name))
	}

	var insertAt int
	if stageBefore == where.position {
		insertAt = stageIdx
	} else {
		insertAt = stageIdx + 1
	}

	app.stages = slices.Insert(app.stages, insertAt, stage)
	app.initStage(stage)

	return app
}

func (app *App) UseSystem(system systemScheduleBuilder) *App {
	checkSystem(system.system)
	systemsInStage, ok := app.systems[system.inStage.Name]
	if !ok {
		panic(fmt.Sprintf("Stage %v doesn't exist", system.inStage.Name))
	}
	systemsInStage[system.inPhase] = append(systemsInStage[system.inPhase], system.system)
	return app
}

func (app *App) initStage(stage Stage) {
	app.systems[stage.Name] = map[Phase][]systemFn{
		Startup:  {},
		Execute:  {},
		Teardown: {},
	}
}

func checkSystem(system systemFn) {
	t := reflect.TypeOf(system)
	if t == nil || t.Kind() != reflect.Func {
		panic(fmt.Sprintf("System must be a func, got %v", t))
	}
	if t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != typeOfError) {
		panic(fmt.Sprintf("System %v may only return an error", t))
	}
}
