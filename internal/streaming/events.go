package streaming

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/world"
)

// Listener receives chunk lifecycle events from the Manager. Calls arrive on
// the goroutine running Tick, in lexicographic coordinate order.
type Listener interface {
	// OnChunkReady is called for every newly built chunk with geometry.
	// mesh is in chunk-local space; transform places it in the world.
	OnChunkReady(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4)
	// OnChunkRemoved is called when a chunk previously reported ready is evicted.
	OnChunkRemoved(coord world.ChunkCoord, handle uuid.UUID)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Ready   func(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4)
	Removed func(coord world.ChunkCoord, handle uuid.UUID)
}

func (f ListenerFuncs) OnChunkReady(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4) {
	if f.Ready != nil {
		f.Ready(coord, handle, mesh, transform)
	}
}

func (f ListenerFuncs) OnChunkRemoved(coord world.ChunkCoord, handle uuid.UUID) {
	if f.Removed != nil {
		f.Removed(coord, handle)
	}
}

// Multi fans events out to several listeners in order.
type Multi []Listener

func (m Multi) OnChunkReady(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4) {
	for _, l := range m {
		l.OnChunkReady(coord, handle, mesh, transform)
	}
}

func (m Multi) OnChunkRemoved(coord world.ChunkCoord, handle uuid.UUID) {
	for _, l := range m {
		l.OnChunkRemoved(coord, handle)
	}
}

type EventKind uint8

const (
	EventReady EventKind = iota + 1
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventRemoved:
		return "removed"
	}
	return "unknown"
}

// Event is one recorded listener call. Mesh and Transform are only set for
// EventReady.
type Event struct {
	Kind      EventKind
	Coord     world.ChunkCoord
	Handle    uuid.UUID
	Mesh      *meshing.MeshBuffer
	Transform mgl32.Mat4
}

// Recorder is a Listener that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnChunkReady(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4) {
	r.mu.Lock()
	r.events = append(r.events, Event{Kind: EventReady, Coord: coord, Handle: handle, Mesh: mesh, Transform: transform})
	r.mu.Unlock()
}

func (r *Recorder) OnChunkRemoved(coord world.ChunkCoord, handle uuid.UUID) {
	r.mu.Lock()
	r.events = append(r.events, Event{Kind: EventRemoved, Coord: coord, Handle: handle})
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Drain returns the recorded events and clears the recorder.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
