package streaming

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"mini-terrain/internal/profiling"
	"mini-terrain/internal/world"
)

// Chunk is the record kept for an active chunk coordinate.
type Chunk struct {
	Coord  world.ChunkCoord
	Handle uuid.UUID
	// Triangles is zero for an empty chunk: nothing was handed to the listener.
	Triangles int
}

// HasMesh reports whether the chunk produced visible geometry.
func (c *Chunk) HasMesh() bool {
	return c.Triangles > 0
}

// ChunkStore is the active chunk set.
type ChunkStore struct {
	chunks   map[world.ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates an empty chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[world.ChunkCoord]*Chunk),
	}
}

// GetChunk returns the record at coord, or nil.
func (cs *ChunkStore) GetChunk(coord world.ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// HasChunk checks if a coordinate is active.
func (cs *ChunkStore) HasChunk(coord world.ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// AddChunk marks a chunk active. An existing record is left untouched.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[chunk.Coord]; ok {
		return false
	}
	cs.chunks[chunk.Coord] = chunk
	cs.modCount++
	return true
}

// Len returns the number of active chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// Coords returns the active coordinates in lexicographic order.
func (cs *ChunkStore) Coords() []world.ChunkCoord {
	cs.mu.RLock()
	coords := make([]world.ChunkCoord, 0, len(cs.chunks))
	for c := range cs.chunks {
		coords = append(coords, c)
	}
	cs.mu.RUnlock()
	world.SortCoords(coords)
	return coords
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// EvictFarChunks removes chunks whose chunk-space distance to center exceeds
// radius and returns them in lexicographic order.
func (cs *ChunkStore) EvictFarChunks(center world.ChunkCoord, radius float64) []*Chunk {
	defer profiling.Track("streaming.EvictFarChunks")()
	limit := radius * radius
	var removed []*Chunk
	cs.mu.Lock()
	for coord, chunk := range cs.chunks {
		if float64(coord.DistanceSq(center)) > limit {
			delete(cs.chunks, coord)
			cs.modCount++
			removed = append(removed, chunk)
		}
	}
	cs.mu.Unlock()
	sortChunks(removed)
	return removed
}

func sortChunks(chunks []*Chunk) {
	slices.SortFunc(chunks, func(a, b *Chunk) int {
		return world.CompareCoords(a.Coord, b.Coord)
	})
}
