// Package ws streams chunk meshes to websocket clients such as browser renderers.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/world"
)

const ProtocolVersion = "1.0"

const (
	TypeHello        = "HELLO"
	TypeChunkReady   = "CHUNK_READY"
	TypeChunkRemoved = "CHUNK_REMOVED"
)

// HelloMsg is the first message on every connection.
type HelloMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	SessionID       uint64  `json:"session_id"`
	ChunkSize       float64 `json:"chunk_size"`
	Chunks          int     `json:"chunks"`
}

// ChunkMsg carries a ready chunk mesh or a removal. Positions and Normals are
// flat xyz triples in chunk-local space; Transform is column-major.
type ChunkMsg struct {
	Type      string       `json:"type"`
	Coord     [3]int       `json:"coord"`
	Handle    uuid.UUID    `json:"handle"`
	Transform *[16]float32 `json:"transform,omitempty"`
	Positions []float32    `json:"positions,omitempty"`
	Normals   []float32    `json:"normals,omitempty"`
}

type client struct {
	id  uint64
	out chan []byte
}

// Hub is a streaming.Listener that fans chunk events out to connected
// clients. New clients first receive every chunk currently ready, in
// coordinate order. Clients that fall behind are disconnected.
type Hub struct {
	log       *log.Logger
	chunkSize float64
	upgrader  websocket.Upgrader
	nextID    atomic.Uint64

	// AllowRemote accepts non-loopback clients.
	AllowRemote bool

	mu      sync.Mutex
	clients map[uint64]*client
	ready   map[world.ChunkCoord][]byte
}

var _ streaming.Listener = (*Hub)(nil)

// NewHub creates a hub for meshes of the given chunk size.
func NewHub(chunkSize float64, logger *log.Logger) *Hub {
	return &Hub{
		log:       logger,
		chunkSize: chunkSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: make(map[uint64]*client),
		ready:   make(map[world.ChunkCoord][]byte),
	}
}

func flatten(vs []mgl32.Vec3) []float32 {
	out := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func (h *Hub) OnChunkReady(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4) {
	m := [16]float32(transform)
	b, err := json.Marshal(ChunkMsg{
		Type:      TypeChunkReady,
		Coord:     [3]int{coord.X, coord.Y, coord.Z},
		Handle:    handle,
		Transform: &m,
		Positions: flatten(mesh.Positions),
		Normals:   flatten(mesh.Normals),
	})
	if err != nil {
		h.logf("ws: encode chunk %v: %v", coord, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready[coord] = b
	h.broadcastLocked(b)
}

func (h *Hub) OnChunkRemoved(coord world.ChunkCoord, handle uuid.UUID) {
	b, err := json.Marshal(ChunkMsg{
		Type:   TypeChunkRemoved,
		Coord:  [3]int{coord.X, coord.Y, coord.Z},
		Handle: handle,
	})
	if err != nil {
		h.logf("ws: encode removal %v: %v", coord, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.ready, coord)
	h.broadcastLocked(b)
}

func (h *Hub) broadcastLocked(b []byte) {
	for id, c := range h.clients {
		select {
		case c.out <- b:
		default:
			h.logf("ws: client %d too slow, dropping", id)
			close(c.out)
			delete(h.clients, id)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register adds a client, queueing the hello message and the current chunk
// snapshot ahead of any later broadcast.
func (h *Hub) register() *client {
	h.mu.Lock()
	defer h.mu.Unlock()

	coords := make([]world.ChunkCoord, 0, len(h.ready))
	for c := range h.ready {
		coords = append(coords, c)
	}
	world.SortCoords(coords)

	c := &client{id: h.nextID.Add(1), out: make(chan []byte, len(coords)+256)}
	hello, _ := json.Marshal(HelloMsg{
		Type:            TypeHello,
		ProtocolVersion: ProtocolVersion,
		SessionID:       c.id,
		ChunkSize:       h.chunkSize,
		Chunks:          len(coords),
	})
	c.out <- hello
	for _, coord := range coords {
		c.out <- h.ready[coord]
	}
	h.clients[c.id] = c
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		close(c.out)
		delete(h.clients, c.id)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.out)
		delete(h.clients, id)
	}
}

// Handler serves the websocket endpoint.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !h.AllowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := h.register()
		defer h.unregister(c)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeDone := make(chan struct{})
		go func() {
			defer close(writeDone)
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-c.out:
					if !ok {
						_ = conn.WriteControl(websocket.CloseMessage,
							websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"), time.Now().Add(time.Second))
						cancel()
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: clients only send control frames; any error ends the session.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		<-ctx.Done()
		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeDone:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (h *Hub) logf(format string, args ...any) {
	if h.log != nil {
		h.log.Printf(format, args...)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if hst, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = hst
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Ready returns the coordinates whose meshes are currently held for new clients.
func (h *Hub) Ready() []world.ChunkCoord {
	h.mu.Lock()
	defer h.mu.Unlock()
	coords := make([]world.ChunkCoord, 0, len(h.ready))
	for c := range h.ready {
		coords = append(coords, c)
	}
	world.SortCoords(coords)
	return coords
}
