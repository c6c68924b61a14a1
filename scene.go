package globe

import (
	"github.com/gekko3d/globe/starfield"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneDef defines the initial state of a scene.
type SceneDef struct {
	Seed     uint64 // 0 picks a seed from the clock
	Layers   []starfield.LayerSpec
	Clusters []starfield.LayerSpec
	Globe    GlobeModule
	Camera   OrbitCameraModule
}

// DefaultSceneDef is the full scene: three star layers from far and dim to
// near and bright, two small clusters, and the globe with clouds,
// atmosphere and markers.
func DefaultSceneDef() SceneDef {
	return SceneDef{
		Layers: []starfield.LayerSpec{
			{Count: 3000, BaseColor: starfield.RGBHex(0xffffff), RadiusMax: 500, SizeMin: 0.3, SizeMax: 1.2},
			{Count: 2000, BaseColor: starfield.RGBHex(0xaaccff), RadiusMax: 400, SizeMin: 0.4, SizeMax: 1.5},
			{Count: 1000, BaseColor: starfield.RGBHex(0xffddaa), RadiusMax: 300, SizeMin: 0.5, SizeMax: 2.0},
		},
		Clusters: []starfield.LayerSpec{
			{Count: 400, BaseColor: starfield.RGBHex(0xffccee), RadiusMax: 40, SizeMin: 0.3, SizeMax: 1.0, Center: mgl32.Vec3{120, 40, -200}},
			{Count: 300, BaseColor: starfield.RGBHex(0xccddff), RadiusMax: 30, SizeMin: 0.3, SizeMax: 1.0, Center: mgl32.Vec3{-150, -60, -180}},
		},
		Globe:  NewGlobeModule(),
		Camera: NewOrbitCameraModule(),
	}
}

// Modules lists the modules that build this scene, in install order. Add
// logging and assets before them and a renderer after.
func (d SceneDef) Modules() []Module {
	return []Module{
		ClockModule{},
		StarfieldModule{Layers: d.Layers, Clusters: d.Clusters, Seed: d.Seed},
		d.Globe,
		d.Camera,
	}
}
