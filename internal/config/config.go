package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"mini-terrain/internal/world"
)

// ErrInvalidConfig wraps every configuration problem found before a chunk is built.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the terrain.yaml document.
type Config struct {
	Seed           uint64  `yaml:"seed"`
	PointsPerChunk int     `yaml:"points_per_chunk"`
	VoxelScale     float64 `yaml:"voxel_scale"`
	Threshold      float32 `yaml:"threshold"`
	Interpolate    bool    `yaml:"interpolate"`

	Noise        string             `yaml:"noise"`
	NoiseWeights []float64          `yaml:"noise_weights"`
	NoiseScales  []float64          `yaml:"noise_scales"`
	UpperCurve   []world.CurvePoint `yaml:"upper_curve"`
	LowerCurve   []world.CurvePoint `yaml:"lower_curve"`

	ViewRadius  int     `yaml:"view_radius"`
	EvictRadius float64 `yaml:"evict_radius"`
	Workers     int     `yaml:"workers"`

	// Triangulation is a table file path; empty selects the built-in table.
	Triangulation string `yaml:"triangulation"`
}

// Default returns a rolling-hills configuration.
func Default() Config {
	return Config{
		Seed:           42,
		PointsPerChunk: 16,
		VoxelScale:     1,
		Threshold:      0,
		Interpolate:    true,
		Noise:          string(world.NoisePerlin),
		NoiseWeights:   []float64{1, 0.5, 0.25},
		NoiseScales:    []float64{0.02, 0.05, 0.1},
		UpperCurve:     []world.CurvePoint{{Y: -16, Value: -0.2}, {Y: 16, Value: 1}},
		LowerCurve:     []world.CurvePoint{{Y: -16, Value: -1}, {Y: 16, Value: 0.2}},
		ViewRadius:     2,
	}
}

//go:embed config.schema.json
var configSchemaJSON string

var configSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", configSchemaJSON)
})

// Load reads a YAML config file. Keys missing from the file keep their
// Default values.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := Decode(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode parses and validates a YAML config document over Default.
func Decode(raw []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return Config{}, err
		}
	}
	c := Default()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func validateSchema(doc any) error {
	schema, err := configSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON types.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Encode writes c as YAML.
func (c Config) Encode() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the cross-field rules the schema cannot express.
func (c Config) Validate() error {
	if c.PointsPerChunk < 1 {
		return fmt.Errorf("%w: points_per_chunk %d must be at least 1", ErrInvalidConfig, c.PointsPerChunk)
	}
	if !(c.VoxelScale > 0) || math.IsInf(c.VoxelScale, 0) {
		return fmt.Errorf("%w: voxel_scale %g must be positive", ErrInvalidConfig, c.VoxelScale)
	}
	if len(c.NoiseWeights) != len(c.NoiseScales) {
		return fmt.Errorf("%w: %d noise_weights but %d noise_scales",
			ErrInvalidConfig, len(c.NoiseWeights), len(c.NoiseScales))
	}
	for i, s := range c.NoiseScales {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: noise_scales[%d] = %g must be positive", ErrInvalidConfig, i, s)
		}
	}
	if _, err := c.TerrainParams(); err != nil {
		return err
	}
	if err := c.StreamingOptions(nil).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
