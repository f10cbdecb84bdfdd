package world

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk in chunk space. World position = coord * chunk size.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns c offset by (dx,dy,dz).
func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// DistanceSq is the squared Euclidean distance between two coords in chunk units.
func (c ChunkCoord) DistanceSq(o ChunkCoord) int {
	dx := c.X - o.X
	dy := c.Y - o.Y
	dz := c.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Origin returns the world-space minimum corner of the chunk.
func (c ChunkCoord) Origin(chunkSize float64) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(float64(c.X) * chunkSize),
		float32(float64(c.Y) * chunkSize),
		float32(float64(c.Z) * chunkSize),
	}
}

// Transform returns the model matrix placing chunk-local mesh data in world space.
func (c ChunkCoord) Transform(chunkSize float64) mgl32.Mat4 {
	o := c.Origin(chunkSize)
	return mgl32.Translate3D(o.X(), o.Y(), o.Z())
}

// CompareCoords orders coordinates lexicographically by X, then Y, then Z.
func CompareCoords(a, b ChunkCoord) int {
	if r := cmp.Compare(a.X, b.X); r != 0 {
		return r
	}
	if r := cmp.Compare(a.Y, b.Y); r != 0 {
		return r
	}
	return cmp.Compare(a.Z, b.Z)
}

// SortCoords sorts coords in place in lexicographic order.
func SortCoords(coords []ChunkCoord) {
	slices.SortFunc(coords, CompareCoords)
}

// ChunkCoordAt returns the chunk containing a world position: floor(pos / chunkSize).
func ChunkCoordAt(pos mgl32.Vec3, chunkSize float64) ChunkCoord {
	return ChunkCoord{
		X: int(math.Floor(float64(pos.X()) / chunkSize)),
		Y: int(math.Floor(float64(pos.Y()) / chunkSize)),
		Z: int(math.Floor(float64(pos.Z()) / chunkSize)),
	}
}

// CubeAround returns the (2r+1)^3 coordinates within r of center on every axis,
// in lexicographic order.
func CubeAround(center ChunkCoord, r int) []ChunkCoord {
	if r < 0 {
		return nil
	}
	side := 2*r + 1
	out := make([]ChunkCoord, 0, side*side*side)
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				out = append(out, center.Add(dx, dy, dz))
			}
		}
	}
	return out
}
