package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LatLongToVector3 places a geographic coordinate (degrees) on a sphere of
// the given radius, Y up, matching the texture layout of SphereMesh.
func LatLongToVector3(lat, lon, radius float64) mgl32.Vec3 {
	phi := (90 - lat) * math.Pi / 180
	theta := (lon + 180) * math.Pi / 180

	return mgl32.Vec3{
		float32(-radius * math.Sin(phi) * math.Cos(theta)),
		float32(radius * math.Cos(phi)),
		float32(radius * math.Sin(phi) * math.Sin(theta)),
	}
}
