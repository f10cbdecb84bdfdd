package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"mini-terrain/internal/profiling"
	"mini-terrain/internal/voxel"
)

// IsoLevel is the default surface threshold: densities below it are solid.
const IsoLevel float32 = 0

// cornerOffsets are the 8 corners of a unit cube, bottom face then top face.
var cornerOffsets = [8][3]int{
	{0, 0, 0},
	{1, 0, 0},
	{1, 0, 1},
	{0, 0, 1},
	{0, 1, 0},
	{1, 1, 0},
	{1, 1, 1},
	{0, 1, 1},
}

// cubeEdges are the corner pairs of the 12 cube edges.
var cubeEdges = [12][2]uint8{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func corner(i uint8) mgl32.Vec3 {
	o := cornerOffsets[i]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// Extractor turns a density grid into a triangle mesh.
type Extractor struct {
	Table     *Table
	Scale     float32 // world size of one grid step
	Threshold float32
	// Interpolate places edge vertices on the estimated crossing. When false
	// every edge vertex sits at the edge midpoint (low-poly look).
	Interpolate bool
}

// Extract runs marching cubes over grid with the default iso level.
func Extract(grid *voxel.Matrix3D, scale float32, table *Table, interpolate bool) *MeshBuffer {
	e := Extractor{Table: table, Scale: scale, Threshold: IsoLevel, Interpolate: interpolate}
	return e.Extract(grid)
}

// Config returns the 8-bit corner configuration of the cube whose minimum
// corner is (x,y,z), filling densities with the corner samples.
func (e *Extractor) Config(grid *voxel.Matrix3D, x, y, z int, densities *[8]float32) uint8 {
	var id uint8
	for i, o := range cornerOffsets {
		d := grid.Get(x+o[0], y+o[1], z+o[2])
		densities[i] = d
		if d < e.Threshold {
			id |= 1 << i
		}
	}
	return id
}

// Extract walks every unit cube of grid and emits its triangles in chunk-local space.
func (e *Extractor) Extract(grid *voxel.Matrix3D) *MeshBuffer {
	defer profiling.Track("meshing.Extract")()
	mesh := &MeshBuffer{}
	dx, dy, dz := grid.Dims()
	var densities [8]float32
	for z := 0; z < dz-1; z++ {
		for y := 0; y < dy-1; y++ {
			for x := 0; x < dx-1; x++ {
				refs := e.Table.Triangles[e.Config(grid, x, y, z, &densities)]
				if len(refs) == 0 {
					continue
				}
				origin := mgl32.Vec3{float32(x), float32(y), float32(z)}
				for i := 0; i+2 < len(refs); i += 3 {
					a := origin.Add(e.vertex(refs[i], &densities)).Mul(e.Scale)
					b := origin.Add(e.vertex(refs[i+1], &densities)).Mul(e.Scale)
					c := origin.Add(e.vertex(refs[i+2], &densities)).Mul(e.Scale)
					mesh.addTriangle(a, b, c)
				}
			}
		}
	}
	return mesh
}

// vertex resolves a table reference to a cube-local position.
func (e *Extractor) vertex(ref uint8, densities *[8]float32) mgl32.Vec3 {
	if e.Table.Method == MethodCorner {
		return corner(ref)
	}
	edge := cubeEdges[ref]
	w := float32(0.5)
	if e.Interpolate {
		w = EdgeWeight(densities[edge[0]], densities[edge[1]], e.Threshold)
	}
	return corner(edge[0]).Mul(w).Add(corner(edge[1]).Mul(1 - w))
}

// EdgeWeight returns the weight of the start corner of an edge so that
// start*w + end*(1-w) lies on the linear crossing of threshold. Equal
// densities give the midpoint; the result is clamped to [0,1].
func EdgeWeight(start, end, threshold float32) float32 {
	var w float32
	switch {
	case end < start:
		w = (threshold - end) / (start - end)
	case start < end:
		w = 1 - (threshold-start)/(end-start)
	default:
		return 0.5
	}
	return mgl32.Clamp(w, 0, 1)
}
