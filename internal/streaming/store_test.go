package streaming

import (
	"testing"

	"github.com/google/uuid"

	"mini-terrain/internal/world"
)

func TestChunkStore(t *testing.T) {
	cs := NewChunkStore()
	coords := []world.ChunkCoord{{X: 3, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: -3, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}}
	for _, c := range coords {
		if !cs.AddChunk(&Chunk{Coord: c, Handle: uuid.New()}) {
			t.Fatalf("AddChunk(%v) rejected", c)
		}
	}
	if cs.AddChunk(&Chunk{Coord: coords[0]}) {
		t.Error("duplicate accepted")
	}
	if cs.Len() != 4 || cs.GetModCount() != 4 {
		t.Errorf("len %d mod %d", cs.Len(), cs.GetModCount())
	}
	got := cs.Coords()
	want := []world.ChunkCoord{{X: -3, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 3, Y: 0, Z: 0}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Coords = %v, want %v", got, want)
		}
	}

	removed := cs.EvictFarChunks(world.ChunkCoord{}, 2)
	if len(removed) != 2 || removed[0].Coord != want[0] || removed[1].Coord != want[3] {
		t.Fatalf("removed %v", removed)
	}
	if cs.HasChunk(want[0]) || !cs.HasChunk(want[1]) || cs.GetChunk(want[3]) != nil {
		t.Error("store contents wrong after eviction")
	}
	if cs.GetModCount() != 6 {
		t.Errorf("mod count %d, want 6", cs.GetModCount())
	}
}
