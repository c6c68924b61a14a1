package globe

import (
	"fmt"
	"math"

	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultRotationSpeed = 0.001 // radians per tick
	DefaultAxialTilt     = 23.5  // degrees
	DefaultSegments      = 64

	CloudLift      = 0.01
	AtmosphereLift = 0.1
	MarkerLift     = 0.02
	MarkerRadius   = 0.02
	CloudOpacity   = 0.4

	// SliderDefault is the speed slider position that maps to
	// DefaultRotationSpeed. The slider runs from 0 to SliderMax.
	SliderDefault = 50
	SliderMax     = 100
)

var (
	AtmosphereColor = mgl32.Vec3{0.3, 0.6, 1.0} // #4d99ff
	MarkerColor     = mgl32.Vec3{1.0, 0x44 / 255.0, 0x44 / 255.0}
)

// Marker pins a named place to the globe surface.
type Marker struct {
	Name string
	Lat  float64
	Lon  float64
}

var DefaultMarkers = []Marker{
	{Name: "New York", Lat: 40.7128, Lon: -74.0060},
	{Name: "London", Lat: 51.5074, Lon: -0.1278},
	{Name: "Tokyo", Lat: 35.6762, Lon: 139.6503},
}

// Globe is the Earth scene graph. Tilt holds the axial tilt, Body spins
// inside it and carries the clouds and markers.
type Globe struct {
	Tilt *scene.Node
	Body *scene.Node

	Surface    render.Mesh
	Clouds     *render.Mesh
	Atmosphere *render.Mesh
	Markers    []render.Mesh

	RotationSpeed float64
}

// Meshes lists every mesh to submit: surface, clouds, markers, atmosphere.
func (g *Globe) Meshes() []render.Mesh {
	out := []render.Mesh{g.Surface}
	if g.Clouds != nil {
		out = append(out, *g.Clouds)
	}
	out = append(out, g.Markers...)
	if g.Atmosphere != nil {
		out = append(out, *g.Atmosphere)
	}
	return out
}

// SetRotationSpeed changes the spin from the next tick on. Negative speeds
// spin the other way.
func (g *Globe) SetRotationSpeed(speed float64) {
	g.RotationSpeed = speed
}

// SpeedFromSlider maps a 0..100 slider to a rotation speed; the middle
// position gives the default speed.
func SpeedFromSlider(value float64) float64 {
	value = math.Max(0, math.Min(SliderMax, value))
	return DefaultRotationSpeed * value / SliderDefault
}

type GlobeModule struct {
	Radius        float64
	Segments      int
	RotationSpeed float64
	TiltDeg       float64
	Clouds        bool
	Atmosphere    bool
	Markers       []Marker
}

func NewGlobeModule() GlobeModule {
	return GlobeModule{
		Radius:        1,
		Segments:      DefaultSegments,
		RotationSpeed: DefaultRotationSpeed,
		TiltDeg:       DefaultAxialTilt,
		Clouds:        true,
		Atmosphere:    true,
		Markers:       DefaultMarkers,
	}
}

func (m GlobeModule) Install(app *App, cmd *Commands) error {
	if m.Radius <= 0 || math.IsNaN(m.Radius) || math.IsInf(m.Radius, 0) {
		return fmt.Errorf("globe radius %v: must be finite and > 0", m.Radius)
	}
	segments := m.Segments
	if segments <= 0 {
		segments = DefaultSegments
	}

	assets, _ := Resource[AssetServer](app)
	if assets == nil {
		app.Logger().Warnf("No asset server installed; globe uses placeholder textures")
	}
	tex := func(key TextureKey) *scene.Texture {
		return assets.TextureOrPlaceholder(key).Texture()
	}

	tilt := &scene.Node{Local: scene.Identity()}
	tilt.Local.Rotation[2] = m.TiltDeg * math.Pi / 180
	body := &scene.Node{Parent: tilt, Local: scene.Identity()}

	g := &Globe{Tilt: tilt, Body: body, RotationSpeed: m.RotationSpeed}

	surface := scene.NewMaterial()
	surface.Slots[scene.SlotBase] = tex(TextureDay)
	surface.Slots[scene.SlotBump] = tex(TextureBump)
	surface.Slots[scene.SlotSpecular] = tex(TextureSpecular)
	surface.Slots[scene.SlotNormal] = tex(TextureNormal)
	surface.Slots[scene.SlotEmissive] = tex(TextureNight)
	g.Surface = render.Mesh{
		Name:     "earth",
		Data:     scene.SphereMesh(float32(m.Radius), segments, segments/2),
		Material: surface,
		Place:    body,
	}

	if m.Clouds {
		mat := scene.NewMaterial()
		mat.Slots[scene.SlotBase] = tex(TextureClouds)
		mat.Opacity = CloudOpacity
		g.Clouds = &render.Mesh{
			Name:     "clouds",
			Data:     scene.SphereMesh(float32(m.Radius+CloudLift), segments, segments/2),
			Material: mat,
			Place:    &scene.Node{Parent: body, Local: scene.Identity()},
		}
	}

	if m.Atmosphere {
		mat := scene.NewMaterial()
		mat.Color = AtmosphereColor
		mat.Additive = true
		mat.BackSide = true
		g.Atmosphere = &render.Mesh{
			Name:     "atmosphere",
			Data:     scene.SphereMesh(float32(m.Radius+AtmosphereLift), segments, segments/2),
			Material: mat,
			Place:    &scene.Node{Parent: tilt, Local: scene.Identity()},
		}
	}

	markerMesh := scene.SphereMesh(MarkerRadius, 16, 16)
	for _, mk := range m.Markers {
		mat := scene.NewMaterial()
		mat.Color = MarkerColor
		node := &scene.Node{Parent: body, Local: scene.Identity()}
		node.Local.Position = scene.LatLongToVector3(mk.Lat, mk.Lon, m.Radius+MarkerLift)
		g.Markers = append(g.Markers, render.Mesh{
			Name:     "marker " + mk.Name,
			Data:     markerMesh,
			Material: mat,
			Place:    node,
		})
	}

	cmd.AddResources(g)
	cmd.UseSystem(System(globeSpinSystem).InStage(Update))
	return nil
}

func globeSpinSystem(g *Globe) {
	r := &g.Body.Local.Rotation
	r[1] = math.Mod(r[1]+g.RotationSpeed, 2*math.Pi)
}
