// Package physics answers point and ray queries against a density field
// without building meshes: ground probing for spawn points and solid checks
// for the viewer camera.
package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"mini-terrain/internal/profiling"
)

// Field is a density field; values below the threshold are solid.
type Field interface {
	Sample(x, y, z float64) float32
}

// DefaultStep is the ray marching step in world units.
const DefaultStep = 0.05

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Position mgl32.Vec3 // estimated surface crossing
	Distance float32
	Hit      bool
}

func sampleAt(f Field, p mgl32.Vec3) float32 {
	return f.Sample(float64(p.X()), float64(p.Y()), float64(p.Z()))
}

// Raycast marches from start along direction and reports the first point
// where the field turns solid. The crossing is refined linearly between the
// last two samples.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, f Field, threshold float32) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	dir := direction.Normalize()
	stepSize := float32(DefaultStep)
	steps := int((maxDist - minDist) / stepSize)

	prevDist := minDist
	prev := sampleAt(f, start.Add(dir.Mul(prevDist)))
	if prev < threshold {
		return RaycastResult{Position: start.Add(dir.Mul(prevDist)), Distance: prevDist, Hit: true}
	}
	for i := 1; i <= steps+1; i++ {
		dist := min(minDist+float32(i)*stepSize, maxDist)
		d := sampleAt(f, start.Add(dir.Mul(dist)))
		if d < threshold {
			// prev >= threshold > d, so the denominator is positive.
			t := (prev - threshold) / (prev - d)
			hit := prevDist + t*(dist-prevDist)
			return RaycastResult{Position: start.Add(dir.Mul(hit)), Distance: hit, Hit: true}
		}
		prev, prevDist = d, dist
		if dist >= maxDist {
			break
		}
	}
	return RaycastResult{}
}
