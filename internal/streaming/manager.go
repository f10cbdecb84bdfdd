package streaming

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/world"
)

var (
	// ErrInvalidOptions reports streaming options that cannot keep the active
	// set stable.
	ErrInvalidOptions = errors.New("invalid streaming options")
	// ErrClosed is returned by Tick after Close.
	ErrClosed = errors.New("streaming manager closed")
)

// handleSpace namespaces chunk handles.
var handleSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mini-terrain/chunk"))

// Options controls the active neighbourhood around the reference point.
type Options struct {
	// ViewRadius is the half-width, in chunks, of the cube kept active.
	ViewRadius int
	// EvictRadius is the chunk-space distance beyond which active chunks are
	// dropped. Zero selects DefaultEvictRadius.
	EvictRadius float64
	// Workers > 0 builds chunks on a worker pool of that size.
	Workers int
	Logger  *log.Logger
}

// DefaultEvictRadius returns the eviction distance used when none is set.
func DefaultEvictRadius(viewRadius int) float64 {
	return float64(max(2*viewRadius, 1))
}

// Validate checks the eviction radius clears every corner of the view cube.
func (o Options) Validate() error {
	if o.ViewRadius < 0 {
		return fmt.Errorf("%w: view radius %d is negative", ErrInvalidOptions, o.ViewRadius)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidOptions, o.Workers)
	}
	evict := o.evictRadius()
	if math.IsNaN(evict) || evict <= math.Sqrt(3)*float64(o.ViewRadius) {
		return fmt.Errorf("%w: evict radius %g must exceed sqrt(3) * view radius (%g)",
			ErrInvalidOptions, evict, math.Sqrt(3)*float64(o.ViewRadius))
	}
	return nil
}

func (o Options) evictRadius() float64 {
	if o.EvictRadius == 0 {
		return DefaultEvictRadius(o.ViewRadius)
	}
	return o.EvictRadius
}

// TickStats summarises one Tick.
type TickStats struct {
	Base    world.ChunkCoord
	Evicted int // coordinates dropped from the active set
	Removed int // OnChunkRemoved events
	Created int // coordinates added to the active set
	Ready   int // OnChunkReady events
}

// Changed reports whether the tick touched the active set.
func (s TickStats) Changed() bool {
	return s.Evicted > 0 || s.Created > 0
}

// Manager keeps the chunks around a moving reference point built, and tells
// a Listener when chunk meshes appear and disappear.
type Manager struct {
	mesher      meshing.Mesher
	pool        *meshing.WorkerPool
	store       *ChunkStore
	listener    Listener
	logger      *log.Logger
	viewRadius  int
	evictRadius float64
	chunkSize   float64
	seq         uint64
	closed      bool
}

// New creates a manager with an empty active set. A nil listener discards events.
func New(mesher meshing.Mesher, opts Options, listener Listener) (*Manager, error) {
	if mesher == nil {
		return nil, fmt.Errorf("%w: nil mesher", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if listener == nil {
		listener = ListenerFuncs{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m := &Manager{
		mesher:      mesher,
		store:       NewChunkStore(),
		listener:    listener,
		logger:      logger,
		viewRadius:  opts.ViewRadius,
		evictRadius: opts.evictRadius(),
		chunkSize:   mesher.ChunkSize(),
	}
	if opts.Workers > 0 {
		side := 2*opts.ViewRadius + 1
		m.pool = meshing.NewWorkerPool(mesher, opts.Workers, side*side*side)
	}
	return m, nil
}

// ChunkSize is the world-space edge length of a chunk.
func (m *Manager) ChunkSize() float64 { return m.chunkSize }

// ViewRadius returns the active cube half-width in chunks.
func (m *Manager) ViewRadius() int { return m.viewRadius }

// EvictRadius returns the effective eviction distance in chunks.
func (m *Manager) EvictRadius() float64 { return m.evictRadius }

// Store exposes the active set for read-only queries.
func (m *Manager) Store() *ChunkStore { return m.store }

// Active returns the active coordinates in lexicographic order.
func (m *Manager) Active() []world.ChunkCoord { return m.store.Coords() }

// IsActive reports whether coord is in the active set.
func (m *Manager) IsActive(coord world.ChunkCoord) bool { return m.store.HasChunk(coord) }

// Len returns the size of the active set.
func (m *Manager) Len() int { return m.store.Len() }

// Generate builds the mesh for coord without touching the active set.
func (m *Manager) Generate(coord world.ChunkCoord) *meshing.MeshBuffer {
	return m.mesher.Mesh(coord)
}

// Tick brings the active set in line with the reference position: chunks too
// far from it are evicted, then every missing chunk of the view cube is built.
// A second Tick with the same base chunk does nothing.
//
// Missing chunks are built before anything changes. If any build fails, Tick
// returns the error with the active set untouched and no events emitted.
func (m *Manager) Tick(ref mgl32.Vec3) (TickStats, error) {
	defer profiling.Track("streaming.Manager.Tick")()
	if m.closed {
		return TickStats{}, ErrClosed
	}
	base := world.ChunkCoordAt(ref, m.chunkSize)
	stats := TickStats{Base: base}

	// Evicted coords lie outside the view cube, so missing is the same
	// before and after eviction.
	var missing []world.ChunkCoord
	for _, c := range world.CubeAround(base, m.viewRadius) {
		if !m.store.HasChunk(c) {
			missing = append(missing, c)
		}
	}
	results, err := m.build(missing)
	if err != nil {
		return stats, err
	}

	for _, ch := range m.store.EvictFarChunks(base, m.evictRadius) {
		stats.Evicted++
		if ch.HasMesh() {
			m.listener.OnChunkRemoved(ch.Coord, ch.Handle)
			stats.Removed++
		}
	}
	for _, r := range results {
		m.install(r.Coord, r.Mesh, &stats)
	}
	profiling.Count("streaming.chunks.created", int64(stats.Created))
	profiling.Count("streaming.chunks.evicted", int64(stats.Evicted))
	if stats.Changed() {
		m.logger.Printf("streaming: base %v created %d (ready %d) evicted %d (removed %d) active %d",
			base, stats.Created, stats.Ready, stats.Evicted, stats.Removed, m.store.Len())
	}
	return stats, nil
}

// build meshes coords, sequentially or on the pool, returning results in
// lexicographic order. Any failed chunk fails the whole batch.
func (m *Manager) build(coords []world.ChunkCoord) ([]meshing.MeshResult, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	if m.pool == nil {
		out := make([]meshing.MeshResult, len(coords))
		for i, c := range coords {
			out[i] = meshing.SafeMesh(m.mesher, c)
			if out[i].Error != nil {
				return nil, out[i].Error
			}
		}
		return out, nil
	}
	results, err := m.pool.MeshAll(coords)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Error != nil {
			return nil, r.Error
		}
	}
	return results, nil
}

// install marks coord active and reports its mesh if it has geometry.
func (m *Manager) install(coord world.ChunkCoord, mesh *meshing.MeshBuffer, stats *TickStats) {
	m.seq++
	ch := &Chunk{
		Coord:  coord,
		Handle: uuid.NewSHA1(handleSpace, fmt.Appendf(nil, "%d/%v", m.seq, coord)),
	}
	if !mesh.Empty() {
		ch.Triangles = mesh.TriangleCount()
	}
	if !m.store.AddChunk(ch) {
		return
	}
	stats.Created++
	if ch.HasMesh() {
		m.listener.OnChunkReady(coord, ch.Handle, mesh, coord.Transform(m.chunkSize))
		stats.Ready++
	}
}

// Close stops the worker pool. The active set is kept for inspection.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.pool != nil {
		m.pool.Shutdown()
	}
}
