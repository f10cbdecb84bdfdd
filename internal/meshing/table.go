package meshing

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTable reports a triangulation table that cannot drive the mesher.
var ErrInvalidTable = errors.New("invalid triangulation table")

// Method says what the references in a table entry point at.
type Method uint8

const (
	// MethodEdge references the 12 cube edges; vertices are placed on the edge.
	MethodEdge Method = iota
	// MethodCorner references the 8 cube corners; vertices are the raw corners.
	MethodCorner
)

func (m Method) String() string {
	switch m {
	case MethodEdge:
		return "edge"
	case MethodCorner:
		return "corner"
	}
	return "Method(" + strconv.Itoa(int(m)) + ")"
}

// ParseMethod is the inverse of Method.String.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "edge", "":
		return MethodEdge, nil
	case "corner":
		return MethodCorner, nil
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrInvalidTable, s)
}

// maxRef is the largest valid reference for the method.
func (m Method) maxRef() uint8 {
	if m == MethodCorner {
		return 7
	}
	return 11
}

// Table is an immutable triangulation table indexed by the 8-bit corner configuration.
type Table struct {
	Version   int
	Method    Method
	Triangles [256][]uint8
}

// Entry returns the triangle-vertex references for a configuration.
func (t *Table) Entry(id uint8) []uint8 {
	return t.Triangles[id]
}

// Validate checks every entry holds whole triangles of in-range references.
func (t *Table) Validate() error {
	if t.Method != MethodEdge && t.Method != MethodCorner {
		return fmt.Errorf("%w: unknown method %d", ErrInvalidTable, t.Method)
	}
	limit := t.Method.maxRef()
	for id, refs := range t.Triangles {
		if len(refs)%3 != 0 {
			return fmt.Errorf("%w: entry %d has %d references, not a multiple of 3", ErrInvalidTable, id, len(refs))
		}
		for _, r := range refs {
			if r > limit {
				return fmt.Errorf("%w: entry %d references %s %d (max %d)", ErrInvalidTable, id, t.Method, r, limit)
			}
		}
	}
	return nil
}

//go:embed triangulation.yaml
var defaultTableYAML []byte

//go:embed table.schema.json
var tableSchemaJSON string

var tableSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("table.schema.json", tableSchemaJSON)
})

var defaultTable = sync.OnceValue(func() *Table {
	t, err := DecodeTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("meshing: embedded triangulation table: %v", err))
	}
	return t
})

// DefaultTable returns the built-in edge-method marching cubes table.
// The returned table is shared and must not be modified.
func DefaultTable() *Table {
	return defaultTable()
}

// tableDoc is the on-disk YAML shape of a table.
type tableDoc struct {
	Version   int        `yaml:"version"`
	Method    string     `yaml:"method"`
	Triangles []tableRow `yaml:"triangles"`
}

type tableRow []int

// MarshalYAML writes each entry on one line: "- [0, 8, 3]".
func (r tableRow) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range r {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)})
	}
	return n, nil
}

// DecodeTable parses and validates a YAML triangulation table.
func DecodeTable(data []byte) (*Table, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	method, err := ParseMethod(doc.Method)
	if err != nil {
		return nil, err
	}
	t := &Table{Version: doc.Version, Method: method}
	for id, row := range doc.Triangles {
		refs := make([]uint8, len(row))
		for i, v := range row {
			refs[i] = uint8(v) // range enforced by the schema
		}
		t.Triangles[id] = refs
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validateSchema checks a decoded YAML document against the table schema.
// The document is normalised through JSON so the validator sees JSON types.
func validateSchema(doc any) error {
	schema, err := tableSchema()
	if err != nil {
		return fmt.Errorf("compile table schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return nil
}

// LoadTable reads a table file from disk.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := DecodeTable(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Encode writes the table in the format DecodeTable reads.
func (t *Table) Encode() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	doc := tableDoc{
		Version:   t.Version,
		Method:    t.Method.String(),
		Triangles: make([]tableRow, len(t.Triangles)),
	}
	for id, refs := range t.Triangles {
		row := make(tableRow, len(refs))
		for i, r := range refs {
			row[i] = int(r)
		}
		doc.Triangles[id] = row
	}
	return yaml.Marshal(doc)
}
