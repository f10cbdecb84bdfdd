package world

import (
	"fmt"

	"mini-terrain/internal/profiling"
	"mini-terrain/internal/voxel"
)

// GridBuilder discretises the density field into per-chunk sample grids.
type GridBuilder struct {
	sampler    *DensitySampler
	points     int
	voxelScale float64
}

// NewGridBuilder creates a builder producing (pointsPerChunk+1)^3 grids.
func NewGridBuilder(sampler *DensitySampler, pointsPerChunk int, voxelScale float64) (*GridBuilder, error) {
	if sampler == nil {
		return nil, fmt.Errorf("%w: nil density sampler", ErrInvalidParams)
	}
	if pointsPerChunk < 1 {
		return nil, fmt.Errorf("%w: points per chunk must be positive, got %d", ErrInvalidParams, pointsPerChunk)
	}
	if !(voxelScale > 0) {
		return nil, fmt.Errorf("%w: voxel scale must be positive, got %g", ErrInvalidParams, voxelScale)
	}
	return &GridBuilder{sampler: sampler, points: pointsPerChunk, voxelScale: voxelScale}, nil
}

func (b *GridBuilder) PointsPerChunk() int      { return b.points }
func (b *GridBuilder) VoxelScale() float64      { return b.voxelScale }
func (b *GridBuilder) Sampler() *DensitySampler { return b.sampler }

// ChunkSize is the world-space edge length of a chunk.
func (b *GridBuilder) ChunkSize() float64 {
	return float64(b.points) * b.voxelScale
}

// Build samples the density field at every lattice point of the chunk.
// Lattice positions are computed from integer world indices so that
// neighbouring chunks share bit-identical boundary samples.
func (b *GridBuilder) Build(c ChunkCoord) *voxel.Matrix3D {
	defer profiling.Track("world.GridBuilder.Build")()
	n := b.points + 1
	grid := voxel.NewCube(n)
	baseX, baseY, baseZ := c.X*b.points, c.Y*b.points, c.Z*b.points
	grid.Fill(func(x, y, z int) float32 {
		wx := float64(baseX+x) * b.voxelScale
		wy := float64(baseY+y) * b.voxelScale
		wz := float64(baseZ+z) * b.voxelScale
		return b.sampler.Sample(wx, wy, wz)
	})
	return grid
}
