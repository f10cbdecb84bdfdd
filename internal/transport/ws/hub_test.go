package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/world"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(msg, v); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
}

func triangleMesh() *meshing.MeshBuffer {
	n := mgl32.Vec3{0, 0, 1}
	return &meshing.MeshBuffer{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   []mgl32.Vec3{n, n, n},
		TexCoords: make([]mgl32.Vec2, 3),
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(8, nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	var hello HelloMsg
	readJSON(t, a, &hello)
	if hello.Type != TypeHello || hello.ChunkSize != 8 || hello.Chunks != 0 || hello.ProtocolVersion != ProtocolVersion {
		t.Fatalf("hello = %+v", hello)
	}

	coord := world.ChunkCoord{X: 1, Y: -1, Z: 2}
	handle := uuid.New()
	hub.OnChunkReady(coord, handle, triangleMesh(), coord.Transform(8))

	var ready ChunkMsg
	readJSON(t, a, &ready)
	if ready.Type != TypeChunkReady || ready.Coord != [3]int{1, -1, 2} || ready.Handle != handle {
		t.Fatalf("ready = %+v", ready)
	}
	if len(ready.Positions) != 9 || ready.Positions[3] != 1 || len(ready.Normals) != 9 {
		t.Errorf("positions %v normals %v", ready.Positions, ready.Normals)
	}
	if ready.Transform == nil || ready.Transform[12] != 8 || ready.Transform[13] != -8 || ready.Transform[14] != 16 {
		t.Errorf("transform %v", ready.Transform)
	}

	// A late client receives the current chunk first.
	b := dial(t, srv)
	readJSON(t, b, &hello)
	if hello.Chunks != 1 || hello.SessionID == 0 {
		t.Fatalf("late hello = %+v", hello)
	}
	var snap ChunkMsg
	readJSON(t, b, &snap)
	if snap.Type != TypeChunkReady || snap.Handle != handle {
		t.Fatalf("snapshot = %+v", snap)
	}
	if hub.Clients() != 2 {
		t.Errorf("clients = %d", hub.Clients())
	}

	hub.OnChunkRemoved(coord, handle)
	for _, conn := range []*websocket.Conn{a, b} {
		var removed ChunkMsg
		readJSON(t, conn, &removed)
		if removed.Type != TypeChunkRemoved || removed.Handle != handle || removed.Positions != nil {
			t.Errorf("removed = %+v", removed)
		}
	}
	if len(hub.Ready()) != 0 {
		t.Errorf("ready after removal: %v", hub.Ready())
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(4, nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	var hello HelloMsg
	readJSON(t, conn, &hello)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not unregistered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.3:1234":  false,
		"garbage":        false,
	}
	for addr, want := range tests {
		if got := isLoopbackRemote(addr); got != want {
			t.Errorf("isLoopbackRemote(%q) = %v", addr, got)
		}
	}
}
