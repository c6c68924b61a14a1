package globe

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/gekko3d/globe/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	MaxPitch = 89 * math.Pi / 180
	// ZoomFactor scales the distance per zoom step; positive steps move out.
	ZoomFactor = 1.05
)

// OrbitCamera circles the origin. Input moves the targets; Step eases the
// current values toward them with critically damped springs.
type OrbitCamera struct {
	FovDeg      float32
	Near        float32
	Far         float32
	MinDistance float64
	MaxDistance float64

	Yaw      float64
	Pitch    float64
	Distance float64

	targetYaw, targetPitch, targetDistance float64
	velYaw, velPitch, velDistance          float64

	spring     harmonica.Spring
	width      int
	height     int
	projection mgl32.Mat4
}

// Orbit turns the camera around the globe by dYaw and dPitch radians. Pitch
// stops short of the poles.
func (c *OrbitCamera) Orbit(dYaw, dPitch float64) {
	c.targetYaw -= dYaw
	c.targetPitch = clamp(c.targetPitch+dPitch, -MaxPitch, MaxPitch)
}

// Zoom moves the camera out for positive delta and in for negative, within
// the distance limits.
func (c *OrbitCamera) Zoom(delta float64) {
	c.targetDistance = clamp(c.targetDistance*math.Pow(ZoomFactor, delta), c.MinDistance, c.MaxDistance)
}

// SetViewport updates aspect and projection at once.
func (c *OrbitCamera) SetViewport(width, height int) {
	c.width, c.height = width, height
	c.projection = scene.Perspective(c.FovDeg, scene.Aspect(width, height), c.Near, c.Far)
}

// Step advances the springs by one frame.
func (c *OrbitCamera) Step() {
	c.Yaw, c.velYaw = c.spring.Update(c.Yaw, c.velYaw, c.targetYaw)
	c.Pitch, c.velPitch = c.spring.Update(c.Pitch, c.velPitch, c.targetPitch)
	c.Distance, c.velDistance = c.spring.Update(c.Distance, c.velDistance, c.targetDistance)
}

func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp := math.Cos(c.Pitch)
	return mgl32.Vec3{
		float32(c.Distance * cp * math.Sin(c.Yaw)),
		float32(c.Distance * math.Sin(c.Pitch)),
		float32(c.Distance * cp * math.Cos(c.Yaw)),
	}
}

// State is the snapshot handed to the render surface.
func (c *OrbitCamera) State() scene.CameraState {
	pos := c.Position()
	return scene.CameraState{
		View:       mgl32.LookAtV(pos, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection: c.projection,
		Position:   pos,
		Width:      c.width,
		Height:     c.height,
	}
}

type OrbitCameraModule struct {
	FovDeg      float32
	Near        float32
	Far         float32
	Distance    float64
	MinDistance float64
	MaxDistance float64
	// Spring tuning, see harmonica.NewSpring.
	Frequency float64
	Damping   float64
}

func NewOrbitCameraModule() OrbitCameraModule {
	return OrbitCameraModule{
		FovDeg:      60,
		Near:        0.1,
		Far:         1000,
		Distance:    4,
		MinDistance: 2,
		MaxDistance: 10,
		Frequency:   3,
		Damping:     1,
	}
}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) error {
	d := NewOrbitCameraModule()
	if m.FovDeg <= 0 {
		m.FovDeg = d.FovDeg
	}
	if m.Near <= 0 {
		m.Near = d.Near
	}
	if m.Far <= m.Near {
		m.Far = d.Far
	}
	if m.MaxDistance <= 0 {
		m.MaxDistance = d.MaxDistance
	}
	if m.MinDistance <= 0 || m.MinDistance > m.MaxDistance {
		m.MinDistance = min(d.MinDistance, m.MaxDistance)
	}
	if m.Distance <= 0 {
		m.Distance = d.Distance
	}
	if m.Frequency <= 0 {
		m.Frequency = d.Frequency
	}
	if m.Damping <= 0 {
		m.Damping = d.Damping
	}
	dist := clamp(m.Distance, m.MinDistance, m.MaxDistance)

	cam := &OrbitCamera{
		FovDeg:         m.FovDeg,
		Near:           m.Near,
		Far:            m.Far,
		MinDistance:    m.MinDistance,
		MaxDistance:    m.MaxDistance,
		Distance:       dist,
		targetDistance: dist,
		spring:         harmonica.NewSpring(harmonica.FPS(60), m.Frequency, m.Damping),
	}
	cam.SetViewport(0, 0)

	cmd.AddResources(cam)
	cmd.OnResize(func(width, height int) error {
		cam.SetViewport(width, height)
		return nil
	})
	cmd.OnOrbit(cam.Orbit)
	cmd.OnZoom(cam.Zoom)
	cmd.UseSystem(System(orbitCameraSystem).InStage(PostUpdate))
	return nil
}

func orbitCameraSystem(cam *OrbitCamera) {
	cam.Step()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
