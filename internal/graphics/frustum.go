package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// frustumMargin inflates chunk boxes before testing, in world units.
const frustumMargin float32 = 1.0

// plane is a*x + b*y + c*z + d = 0 with the normal pointing into the frustum.
type plane struct {
	a, b, c, d float32
}

// aabb is a world-space bounding box.
type aabb struct {
	min, max mgl32.Vec3
}

// chunkBounds places a chunk-local mesh box into world space using the
// translation of the chunk transform.
func chunkBounds(lo, hi mgl32.Vec3, transform mgl32.Mat4) aabb {
	off := transform.Col(3).Vec3()
	return aabb{min: lo.Add(off), max: hi.Add(off)}
}

// extractFrustumPlanes builds six planes from the combined projection*view matrix.
// Planes are returned in order: left, right, bottom, top, near, far.
func extractFrustumPlanes(clip mgl32.Mat4) [6]plane {
	// mgl32 matrices are column-major; rN holds row N.
	r0 := clip.Row(0)
	r1 := clip.Row(1)
	r2 := clip.Row(2)
	r3 := clip.Row(3)

	mk := func(v mgl32.Vec4) plane { return normalizePlane(plane{v[0], v[1], v[2], v[3]}) }
	return [6]plane{
		mk(r3.Add(r0)),
		mk(r3.Sub(r0)),
		mk(r3.Add(r1)),
		mk(r3.Sub(r1)),
		mk(r3.Add(r2)),
		mk(r3.Sub(r2)),
	}
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// intersects tests the box against precomputed planes. The box is outside
// when its most positive vertex lies behind any plane.
func (b aabb) intersects(planes [6]plane) bool {
	lo := b.min.Sub(mgl32.Vec3{frustumMargin, frustumMargin, frustumMargin})
	hi := b.max.Add(mgl32.Vec3{frustumMargin, frustumMargin, frustumMargin})
	for _, p := range planes {
		px := hi.X()
		if p.a < 0 {
			px = lo.X()
		}
		py := hi.Y()
		if p.b < 0 {
			py = lo.Y()
		}
		pz := hi.Z()
		if p.c < 0 {
			pz = lo.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}
