// Package eventlog records chunk streaming events as zstd-compressed JSON lines.
package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/world"
)

// Record types.
const (
	TypeTick    = "tick"
	TypeReady   = "ready"
	TypeRemoved = "removed"
)

// Record is one line of the log.
type Record struct {
	Seq  uint64 `json:"seq"`
	Type string `json:"type"`

	Coord     *[3]int    `json:"coord,omitempty"`
	Handle    *uuid.UUID `json:"handle,omitempty"`
	Triangles int        `json:"triangles,omitempty"`
	Dropped   int        `json:"dropped,omitempty"`
	// Origin is the world-space translation of the chunk mesh.
	Origin *[3]float32 `json:"origin,omitempty"`
	Min    *[3]float32 `json:"min,omitempty"`
	Max    *[3]float32 `json:"max,omitempty"`

	// Tick summary fields.
	Base    *[3]int `json:"base,omitempty"`
	Created int     `json:"created,omitempty"`
	Ready   int     `json:"ready,omitempty"`
	Evicted int     `json:"evicted,omitempty"`
	Removed int     `json:"removed,omitempty"`
}

// Writer is a streaming.Listener that appends every event to a zstd stream.
// Listener callbacks cannot fail, so the first write error is kept and
// returned by Err and Close.
type Writer struct {
	mu     sync.Mutex
	seq    uint64
	closer io.Closer
	enc    *zstd.Encoder
	w      *bufio.Writer
	err    error
}

var _ streaming.Listener = (*Writer)(nil)

// NewWriter compresses records onto out. Closing the Writer does not close out.
func NewWriter(out io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Create opens (truncating) a log file at path.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

func coordArray(c world.ChunkCoord) *[3]int {
	return &[3]int{c.X, c.Y, c.Z}
}

func vecArray(v mgl32.Vec3) *[3]float32 {
	a := [3]float32(v)
	return &a
}

func (w *Writer) OnChunkReady(coord world.ChunkCoord, handle uuid.UUID, mesh *meshing.MeshBuffer, transform mgl32.Mat4) {
	lo, hi := mesh.Bounds()
	w.write(Record{
		Type:      TypeReady,
		Coord:     coordArray(coord),
		Handle:    &handle,
		Triangles: mesh.TriangleCount(),
		Dropped:   mesh.Dropped,
		Origin:    vecArray(transform.Col(3).Vec3()),
		Min:       vecArray(lo),
		Max:       vecArray(hi),
	})
}

func (w *Writer) OnChunkRemoved(coord world.ChunkCoord, handle uuid.UUID) {
	w.write(Record{Type: TypeRemoved, Coord: coordArray(coord), Handle: &handle})
}

// WriteTick records a tick summary.
func (w *Writer) WriteTick(s streaming.TickStats) {
	w.write(Record{
		Type:    TypeTick,
		Base:    coordArray(s.Base),
		Created: s.Created,
		Ready:   s.Ready,
		Evicted: s.Evicted,
		Removed: s.Removed,
	})
}

func (w *Writer) write(r Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	if w.enc == nil {
		w.err = errors.New("eventlog: write after close")
		return
	}
	w.seq++
	r.Seq = w.seq
	b, err := json.Marshal(r)
	if err != nil {
		w.err = err
		return
	}
	if _, err := w.w.Write(b); err != nil {
		w.err = err
		return
	}
	w.err = w.w.WriteByte('\n')
}

// Flush pushes buffered records through the compressor.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil || w.enc == nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

// Err returns the first write error.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close flushes and finishes the zstd frame.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return w.err
	}
	var errs []error
	errs = append(errs, w.err, w.w.Flush(), w.enc.Close())
	w.enc = nil
	if w.closer != nil {
		errs = append(errs, w.closer.Close())
	}
	return errors.Join(errs...)
}

// ReadAll decodes every record of a compressed log.
func ReadAll(r io.Reader) ([]Record, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	var out []Record
	jd := json.NewDecoder(dec)
	for {
		var rec Record
		if err := jd.Decode(&rec); err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// ReadFile decodes a log file written by Create.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}
