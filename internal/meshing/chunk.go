package meshing

import (
	"fmt"

	"mini-terrain/internal/world"
)

// Mesher builds the chunk-local mesh for one coordinate.
type Mesher interface {
	ChunkSize() float64
	Mesh(c world.ChunkCoord) *MeshBuffer
}

// SafeMesh runs m.Mesh and reports a panic (a grid index defect) as the
// result's error instead of unwinding the caller.
func SafeMesh(m Mesher, c world.ChunkCoord) (res MeshResult) {
	res.Coord = c
	defer func() {
		if r := recover(); r != nil {
			res.Mesh = nil
			if err, ok := r.(error); ok {
				res.Error = fmt.Errorf("mesh chunk %v: %w", c, err)
			} else {
				res.Error = fmt.Errorf("mesh chunk %v: %v", c, r)
			}
		}
	}()
	res.Mesh = m.Mesh(c)
	return res
}

// ChunkMesher runs the full per-chunk pipeline: grid build, then extraction.
// It holds no mutable state and is safe for concurrent use.
type ChunkMesher struct {
	builder   *world.GridBuilder
	extractor Extractor
}

// NewChunkMesher pairs a grid builder with an extractor scaled to the
// builder's voxel size.
func NewChunkMesher(builder *world.GridBuilder, table *Table, threshold float32, interpolate bool) (*ChunkMesher, error) {
	if builder == nil {
		return nil, fmt.Errorf("%w: nil grid builder", ErrInvalidTable)
	}
	if table == nil {
		table = DefaultTable()
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &ChunkMesher{
		builder: builder,
		extractor: Extractor{
			Table:       table,
			Scale:       float32(builder.VoxelScale()),
			Threshold:   threshold,
			Interpolate: interpolate,
		},
	}, nil
}

// ChunkSize is the world-space edge length of a chunk.
func (m *ChunkMesher) ChunkSize() float64 {
	return m.builder.ChunkSize()
}

// Mesh builds the chunk-local mesh for a coordinate. The result may be Empty.
func (m *ChunkMesher) Mesh(c world.ChunkCoord) *MeshBuffer {
	grid := m.builder.Build(c)
	return m.extractor.Extract(grid)
}
