package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/world"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSampleConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "terrain.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed != 1337 || c.PointsPerChunk != 16 || c.Workers != 4 || c.EvictRadius != 4 {
		t.Errorf("unexpected config %+v", c)
	}
	if len(c.UpperCurve) != 2 || c.UpperCurve[1] != (world.CurvePoint{Y: 16, Value: 1}) {
		t.Errorf("upper_curve = %v", c.UpperCurve)
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	c, err := Decode([]byte("seed: 7\nview_radius: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Seed = 7
	want.ViewRadius = 1
	if !reflect.DeepEqual(c, want) {
		t.Errorf("got %+v, want %+v", c, want)
	}

	empty, err := Decode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(empty, Default()) {
		t.Error("empty document should decode to Default")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c := Default()
	c.Noise = "value"
	c.Triangulation = "tables/custom.yaml"
	raw, err := c.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, c) {
		t.Errorf("round trip: got %+v, want %+v", back, c)
	}
}

func TestDecodeSimplexNoise(t *testing.T) {
	c, err := Decode([]byte("noise: simplex\n"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.Sampler()
	if err != nil {
		t.Fatal(err)
	}
	if d := s.Sample(3, -100, 3); d >= 0 {
		t.Errorf("deep simplex density = %v, want solid", d)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "seed: [1"},
		{"unknown key", "seeds: 3\n"},
		{"negative seed", "seed: -1\n"},
		{"zero points", "points_per_chunk: 0\n"},
		{"zero scale", "voxel_scale: 0\n"},
		{"unknown noise", "noise: worley\n"},
		{"length mismatch", "noise_weights: [1, 2]\nnoise_scales: [0.1]\n"},
		{"non-positive noise scale", "noise_weights: [1]\nnoise_scales: [0]\n"},
		{"empty curve", "upper_curve: []\n"},
		{"curve missing value", "lower_curve: [{y: 1}]\n"},
		{"duplicate curve y", "lower_curve: [{y: 1, value: 0}, {y: 1, value: 2}]\n"},
		{"evict inside view cube", "view_radius: 4\nevict_radius: 5\n"},
		{"negative workers", "workers: -1\n"},
		{"wrong type", "interpolate: maybe\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.doc)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestTerrainParams(t *testing.T) {
	c := Default()
	p, err := c.TerrainParams()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Layers) != 3 || p.Layers[1] != (world.NoiseLayer{Weight: 0.5, Scale: 0.05}) {
		t.Errorf("layers = %v", p.Layers)
	}
	if p.Seed != 42 || p.Noise != world.NoisePerlin {
		t.Errorf("params = %+v", p)
	}
	if got := p.Upper.At(0); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("upper(0) = %v, want 0.4", got)
	}
}

func TestSampler(t *testing.T) {
	s, err := Default().Sampler()
	if err != nil {
		t.Fatal(err)
	}
	if d := s.Sample(5, -100, 5); d >= 0 {
		t.Errorf("deep density = %v, want solid", d)
	}
	if d := s.Sample(5, 100, 5); d <= 0 {
		t.Errorf("sky density = %v, want empty", d)
	}
}

func TestTable(t *testing.T) {
	c := Default()
	tab, err := c.Table()
	if err != nil || tab != meshing.DefaultTable() {
		t.Fatalf("default table: %v %v", tab, err)
	}

	path := filepath.Join(t.TempDir(), "corner.yaml")
	var corner meshing.Table
	corner.Version = 1
	corner.Method = meshing.MethodCorner
	corner.Triangles[1] = []uint8{0, 1, 4}
	raw, err := corner.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	c.Triangulation = path
	tab, err = c.Table()
	if err != nil {
		t.Fatal(err)
	}
	if tab.Method != meshing.MethodCorner {
		t.Errorf("method = %v", tab.Method)
	}

	c.Triangulation = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := c.Table(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("missing table: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	c := Default()
	c.PointsPerChunk = 4
	c.ViewRadius = 1
	m, err := c.NewManager(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	if m.ChunkSize() != 4 || m.EvictRadius() != 2 {
		t.Errorf("chunk size %v evict %v", m.ChunkSize(), m.EvictRadius())
	}
	if _, err := m.Tick(mgl32.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 27 {
		t.Errorf("active = %d", m.Len())
	}

	c.NoiseScales = c.NoiseScales[:1]
	if _, err := c.NewManager(nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("mismatched layers: %v", err)
	}
}

func TestFetchLocalFile(t *testing.T) {
	src, err := filepath.Abs(filepath.Join("..", "..", "configs", "terrain.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(t.TempDir(), "terrain.yaml")
	if err := Fetch(context.Background(), src, dst); err != nil {
		t.Fatal(err)
	}
	c, err := Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed != 1337 {
		t.Errorf("seed = %d", c.Seed)
	}
}

func TestRenderDistanceClamp(t *testing.T) {
	old := GetRenderDistance()
	defer SetRenderDistance(old)

	SetRenderDistance(5)
	if GetRenderDistance() != 5 {
		t.Errorf("got %d", GetRenderDistance())
	}
	SetRenderDistance(-3)
	if GetRenderDistance() != minRenderDistance {
		t.Errorf("low clamp: %d", GetRenderDistance())
	}
	SetRenderDistance(100)
	if GetRenderDistance() != maxRenderDistance {
		t.Errorf("high clamp: %d", GetRenderDistance())
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	c, err := Resolve(ctx, "", "")
	if err != nil || !reflect.DeepEqual(c, Default()) {
		t.Fatalf("Resolve with no inputs = %+v, %v", c, err)
	}

	sample, err := filepath.Abs(filepath.Join("..", "..", "configs", "terrain.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	c, err = Resolve(ctx, sample, "")
	if err != nil || c.Seed != 1337 {
		t.Fatalf("Resolve(path) = %+v, %v", c, err)
	}

	c, err = Resolve(ctx, "", sample)
	if err != nil || c.Seed != 1337 {
		t.Fatalf("Resolve(src) = %+v, %v", c, err)
	}

	if _, err := Resolve(ctx, filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Error("missing file accepted")
	}
}
