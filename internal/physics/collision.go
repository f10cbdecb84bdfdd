package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Collides reports whether a body of the given height and half-width at pos
// touches solid ground. It samples the feet, the head and the four foot corners.
func Collides(pos mgl32.Vec3, height, halfWidth float32, f Field, threshold float32) bool {
	points := []mgl32.Vec3{
		pos,
		pos.Add(mgl32.Vec3{0, height, 0}),
		pos.Add(mgl32.Vec3{-halfWidth, 0, -halfWidth}),
		pos.Add(mgl32.Vec3{halfWidth, 0, -halfWidth}),
		pos.Add(mgl32.Vec3{-halfWidth, 0, halfWidth}),
		pos.Add(mgl32.Vec3{halfWidth, 0, halfWidth}),
	}
	for _, p := range points {
		if sampleAt(f, p) < threshold {
			return true
		}
	}
	return false
}

// FindGroundLevel casts straight down from (x, fromY, z) and returns the
// height of the first surface above minY.
func FindGroundLevel(x, z, fromY, minY float32, f Field, threshold float32) (float32, bool) {
	if fromY <= minY {
		return 0, false
	}
	r := Raycast(mgl32.Vec3{x, fromY, z}, mgl32.Vec3{0, -1, 0}, 0, fromY-minY, f, threshold)
	if !r.Hit {
		return 0, false
	}
	return r.Position.Y(), true
}
