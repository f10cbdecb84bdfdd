package eventlog

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mini-terrain/internal/config"
	"mini-terrain/internal/streaming"
)

func newManager(t *testing.T, l streaming.Listener) *streaming.Manager {
	t.Helper()
	c := config.Default()
	c.PointsPerChunk = 4
	c.ViewRadius = 1
	m, err := c.NewManager(l, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestWriterRecordsEvents(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	rec := &streaming.Recorder{}
	m := newManager(t, streaming.Multi{w, rec})

	for _, ref := range []mgl32.Vec3{{}, {40, 0, 0}} {
		stats, err := m.Tick(ref)
		if err != nil {
			t.Fatal(err)
		}
		w.WriteTick(stats)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := ReadAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	events := rec.Events()
	if len(records) != len(events)+2 {
		t.Fatalf("%d records for %d events", len(records), len(events))
	}

	i := 0
	for n, r := range records {
		if r.Seq != uint64(n+1) {
			t.Fatalf("record %d has seq %d", n, r.Seq)
		}
		if r.Type == TypeTick {
			if r.Base == nil {
				t.Errorf("tick record %d has no base", n)
			}
			continue
		}
		e := events[i]
		i++
		if r.Type != e.Kind.String() {
			t.Fatalf("record %d type %q, event %v", n, r.Type, e.Kind)
		}
		if *r.Coord != [3]int{e.Coord.X, e.Coord.Y, e.Coord.Z} || *r.Handle != e.Handle {
			t.Errorf("record %d: %v %v, event %v %v", n, *r.Coord, *r.Handle, e.Coord, e.Handle)
		}
		if r.Type == TypeReady {
			if r.Triangles != e.Mesh.TriangleCount() {
				t.Errorf("record %d: %d triangles, mesh has %d", n, r.Triangles, e.Mesh.TriangleCount())
			}
			origin := e.Coord.Origin(m.ChunkSize())
			if *r.Origin != [3]float32(origin) {
				t.Errorf("record %d origin %v, want %v", n, *r.Origin, origin)
			}
		}
	}

	last := records[len(records)-1]
	if last.Type != TypeTick || *last.Base != [3]int{10, 0, 0} || last.Evicted != 27 {
		t.Errorf("last tick record = %+v", last)
	}
}

func TestCreateAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl.zst")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	m := newManager(t, w)
	stats, err := m.Tick(mgl32.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	w.WriteTick(stats)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	records, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != stats.Ready+1 {
		t.Errorf("%d records, want %d", len(records), stats.Ready+1)
	}

	w.OnChunkRemoved(stats.Base, [16]byte{})
	if w.Err() == nil {
		t.Error("write after close not reported")
	}
}
