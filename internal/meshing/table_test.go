package meshing

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultTableValid(t *testing.T) {
	tab := DefaultTable()
	if tab.Method != MethodEdge {
		t.Fatalf("method = %v, want edge", tab.Method)
	}
	if err := tab.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(tab.Entry(0)) != 0 || len(tab.Entry(255)) != 0 {
		t.Error("uniform configurations must have no triangles")
	}
	for id := 1; id < 255; id++ {
		if len(tab.Entry(uint8(id))) == 0 {
			t.Errorf("mixed configuration %d has no triangles", id)
		}
	}
}

// TestDefaultTableEdgesCrossSurface checks every configuration references
// exactly the edges whose endpoints lie on opposite sides of the surface.
func TestDefaultTableEdgesCrossSurface(t *testing.T) {
	tab := DefaultTable()
	for id := 0; id < 256; id++ {
		crossing := map[uint8]bool{}
		for e, c := range cubeEdges {
			if (id>>c[0])&1 != (id>>c[1])&1 {
				crossing[uint8(e)] = true
			}
		}
		used := map[uint8]bool{}
		for _, r := range tab.Entry(uint8(id)) {
			if !crossing[r] {
				t.Errorf("config %d references non-crossing edge %d", id, r)
			}
			used[r] = true
		}
		if len(used) != len(crossing) {
			t.Errorf("config %d uses %d edges, %d cross the surface", id, len(used), len(crossing))
		}
	}
}

func TestTableRoundTrip(t *testing.T) {
	data, err := DefaultTable().Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeTable(data)
	if err != nil {
		t.Fatalf("decode encoded table: %v", err)
	}
	if !reflect.DeepEqual(back, DefaultTable()) {
		t.Fatal("table did not round-trip")
	}

	var corner Table
	corner.Version = 3
	corner.Method = MethodCorner
	corner.Triangles[1] = []uint8{0, 1, 4}
	data, err = corner.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "method: corner") {
		t.Errorf("encoded corner table missing method:\n%s", data)
	}
	back, err = DecodeTable(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Version != 3 || back.Method != MethodCorner || !reflect.DeepEqual(back.Triangles[1], []uint8{0, 1, 4}) {
		t.Errorf("corner table round trip mismatch: %+v", back)
	}
	if len(back.Triangles[0]) != 0 {
		t.Errorf("entry 0 = %v, want empty", back.Triangles[0])
	}
}

func rows(n int, row string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("  - " + row + "\n")
	}
	return b.String()
}

func TestDecodeTableErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "{{{"},
		{"missing triangles", "method: edge\n"},
		{"too few entries", "method: edge\ntriangles:\n" + rows(255, "[]")},
		{"edge out of range", "method: edge\ntriangles:\n" + rows(255, "[]") + "  - [0, 1, 12]\n"},
		{"negative ref", "method: edge\ntriangles:\n" + rows(255, "[]") + "  - [0, -1, 2]\n"},
		{"partial triangle", "method: edge\ntriangles:\n" + rows(255, "[]") + "  - [0, 1]\n"},
		{"unknown method", "method: dual\ntriangles:\n" + rows(256, "[]")},
		{"corner out of range", "method: corner\ntriangles:\n" + rows(255, "[]") + "  - [0, 1, 8]\n"},
		{"unknown field", "method: edge\nextra: 1\ntriangles:\n" + rows(256, "[]")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTable([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidTable) {
				t.Fatalf("got %v, want ErrInvalidTable", err)
			}
		})
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.yaml")
	if err := os.WriteFile(path, defaultTableYAML, 0o644); err != nil {
		t.Fatal(err)
	}
	tab, err := LoadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tab.Triangles, DefaultTable().Triangles) {
		t.Error("loaded table differs from embedded default")
	}
	if _, err := LoadTable(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range []Method{MethodEdge, MethodCorner} {
		got, err := ParseMethod(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMethod(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMethod("dual"); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("ParseMethod(dual) = %v", err)
	}
}
