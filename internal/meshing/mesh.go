package meshing

import "github.com/go-gl/mathgl/mgl32"

// MeshBuffer is a flat-shaded triangle soup in chunk-local space. Vertex i of
// triangle k is at index 3k+i; the index buffer is implicit.
type MeshBuffer struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2

	// Dropped counts degenerate triangles skipped during extraction.
	Dropped int
}

// VertexCount returns the number of emitted vertices.
func (m *MeshBuffer) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of emitted triangles.
func (m *MeshBuffer) TriangleCount() int {
	return len(m.Positions) / 3
}

// Empty reports a chunk with no visible geometry. Callers must not create a
// renderable or collidable object for it.
func (m *MeshBuffer) Empty() bool {
	return m == nil || len(m.Positions) == 0
}

// Indices returns the implicit index sequence 0..N-1.
func (m *MeshBuffer) Indices() []uint32 {
	idx := make([]uint32, len(m.Positions))
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

// Bounds returns the axis-aligned bounding box of the positions.
func (m *MeshBuffer) Bounds() (lo, hi mgl32.Vec3) {
	if m.Empty() {
		return lo, hi
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}

// Interleaved packs position(3) + normal(3) + uv(2) per vertex for GPU upload.
// Normals are normalised here; the buffer itself keeps raw face normals.
func (m *MeshBuffer) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Positions)*VertexStride)
	for i, p := range m.Positions {
		n := m.Normals[i].Normalize()
		uv := m.TexCoords[i]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// VertexStride is the number of float32 values per vertex in Interleaved.
const VertexStride = 8

// minNormalLenSq is the squared face-normal length below which a triangle is
// treated as degenerate.
const minNormalLenSq = 1e-12

// addTriangle appends one flat-shaded triangle, skipping degenerate ones.
func (m *MeshBuffer) addTriangle(a, b, c mgl32.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Dot(n) < minNormalLenSq {
		m.Dropped++
		return false
	}
	m.Positions = append(m.Positions, a, b, c)
	m.Normals = append(m.Normals, n, n, n)
	m.TexCoords = append(m.TexCoords, mgl32.Vec2{}, mgl32.Vec2{}, mgl32.Vec2{})
	return true
}
