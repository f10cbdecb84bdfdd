package graphics

import (
	_ "embed"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/world"
)

//go:embed shaders/flat.vert
var flatVertSrc string

//go:embed shaders/flat.frag
var flatFragSrc string

// chunkMesh is one uploaded chunk.
type chunkMesh struct {
	coord       world.ChunkCoord
	vao, vbo    uint32
	vertexCount int32
	model       mgl32.Mat4
	bounds      aabb
}

// ChunkRenderer owns the GPU buffers of every ready chunk. It is a
// streaming.Listener and must be driven from the GL thread.
type ChunkRenderer struct {
	shader *Shader
	meshes map[uuid.UUID]*chunkMesh

	LightDir    mgl32.Vec3
	LowColor    mgl32.Vec3
	HighColor   mgl32.Vec3
	HeightRange mgl32.Vec2
	Wireframe   bool
}

var _ streaming.Listener = (*ChunkRenderer)(nil)

// NewChunkRenderer compiles the flat-shading program. gl.Init must have run.
func NewChunkRenderer() (*ChunkRenderer, error) {
	shader, err := NewShader(flatVertSrc, flatFragSrc)
	if err != nil {
		return nil, err
	}
	return &ChunkRenderer{
		shader:      shader,
		meshes:      make(map[uuid.UUID]*chunkMesh),
		LightDir:    mgl32.Vec3{-0.4, -1.0, -0.3},
		LowColor:    mgl32.Vec3{0.36, 0.30, 0.22},
		HighColor:   mgl32.Vec3{0.45, 0.70, 0.32},
		HeightRange: mgl32.Vec2{-16, 16},
	}, nil
}

func (r *ChunkRenderer) OnChunkReady(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4) {
	defer profiling.Track("graphics.Upload")()
	data := mesh.Interleaved()
	lo, hi := mesh.Bounds()
	m := &chunkMesh{
		coord:       coord,
		vertexCount: int32(mesh.VertexCount()),
		model:       transform,
		bounds:      chunkBounds(lo, hi, transform),
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	stride := int32(meshing.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(6*4))

	// unbind to reduce accidental state changes
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if old, ok := r.meshes[handle]; ok {
		old.release()
	}
	r.meshes[handle] = m
}

func (r *ChunkRenderer) OnChunkRemoved(coord world.ChunkCoord, handle uuid.UUID) {
	if m, ok := r.meshes[handle]; ok {
		m.release()
		delete(r.meshes, handle)
	}
}

func (m *chunkMesh) release() {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
}

// Len returns the number of uploaded chunks.
func (r *ChunkRenderer) Len() int {
	return len(r.meshes)
}

// Draw renders every chunk within maxDistance chunks of center on each axis
// whose bounds touch the view frustum, and returns the number drawn.
func (r *ChunkRenderer) Draw(view, proj mgl32.Mat4, center world.ChunkCoord, maxDistance int) int {
	defer profiling.Track("graphics.Draw")()
	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	r.shader.Use()
	r.shader.SetMatrix4("view", view)
	r.shader.SetMatrix4("proj", proj)
	r.shader.SetVector3("lightDir", r.LightDir)
	r.shader.SetVector3("lowColor", r.LowColor)
	r.shader.SetVector3("highColor", r.HighColor)
	r.shader.SetVector2("heightRange", r.HeightRange.X(), r.HeightRange.Y())

	planes := extractFrustumPlanes(proj.Mul4(view))
	drawn, culled := 0, 0
	for _, m := range r.meshes {
		d := max(abs(m.coord.X-center.X), abs(m.coord.Y-center.Y), abs(m.coord.Z-center.Z))
		if d > maxDistance {
			continue
		}
		if !m.bounds.intersects(planes) {
			culled++
			continue
		}
		r.shader.SetMatrix4("model", m.model)
		gl.BindVertexArray(m.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, m.vertexCount)
		drawn++
	}
	gl.BindVertexArray(0)
	profiling.Count("graphics.chunks.drawn", int64(drawn))
	profiling.Count("graphics.chunks.culled", int64(culled))
	return drawn
}

// Delete frees every buffer and the program.
func (r *ChunkRenderer) Delete() {
	for h, m := range r.meshes {
		m.release()
		delete(r.meshes, h)
	}
	r.shader.Delete()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
