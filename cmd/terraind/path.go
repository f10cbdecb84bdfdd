package main

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// pathFunc returns the reference position for tick i.
type pathFunc func(i int) mgl32.Vec3

// newPath builds a reference walk. step is the distance covered per tick.
func newPath(kind string, origin mgl32.Vec3, step, radius float64) (pathFunc, error) {
	switch kind {
	case "still":
		return func(int) mgl32.Vec3 { return origin }, nil
	case "line":
		return func(i int) mgl32.Vec3 {
			return origin.Add(mgl32.Vec3{float32(float64(i) * step), 0, 0})
		}, nil
	case "circle":
		if radius <= 0 {
			return nil, fmt.Errorf("circle path needs a positive radius, got %g", radius)
		}
		return func(i int) mgl32.Vec3 {
			a := float64(i) * step / radius
			return origin.Add(mgl32.Vec3{
				float32(radius * math.Cos(a)),
				0,
				float32(radius * math.Sin(a)),
			})
		}, nil
	}
	return nil, fmt.Errorf("unknown path %q (want still, line or circle)", kind)
}
