package config

import (
	"fmt"
	"log"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/world"
)

// TerrainParams converts the noise and curve settings for the density sampler.
func (c Config) TerrainParams() (world.TerrainParams, error) {
	p := world.TerrainParams{
		Seed:   c.Seed,
		Noise:  world.NoiseKind(c.Noise),
		Layers: make([]world.NoiseLayer, len(c.NoiseWeights)),
	}
	for i, w := range c.NoiseWeights {
		p.Layers[i] = world.NoiseLayer{Weight: w, Scale: c.NoiseScales[i]}
	}
	var err error
	if p.Upper, err = world.NewBoundCurve(c.UpperCurve...); err != nil {
		return p, fmt.Errorf("%w: upper_curve: %v", ErrInvalidConfig, err)
	}
	if p.Lower, err = world.NewBoundCurve(c.LowerCurve...); err != nil {
		return p, fmt.Errorf("%w: lower_curve: %v", ErrInvalidConfig, err)
	}
	return p, nil
}

// Table loads the configured triangulation table.
func (c Config) Table() (*meshing.Table, error) {
	if c.Triangulation == "" {
		return meshing.DefaultTable(), nil
	}
	t, err := meshing.LoadTable(c.Triangulation)
	if err != nil {
		return nil, fmt.Errorf("%w: triangulation: %w", ErrInvalidConfig, err)
	}
	return t, nil
}

// Sampler builds the density sampler for c.
func (c Config) Sampler() (*world.DensitySampler, error) {
	params, err := c.TerrainParams()
	if err != nil {
		return nil, err
	}
	sampler, err := world.NewDensitySampler(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return sampler, nil
}

// Mesher builds the sampler, grid builder and chunk mesher.
func (c Config) Mesher() (*meshing.ChunkMesher, error) {
	sampler, err := c.Sampler()
	if err != nil {
		return nil, err
	}
	builder, err := world.NewGridBuilder(sampler, c.PointsPerChunk, c.VoxelScale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	table, err := c.Table()
	if err != nil {
		return nil, err
	}
	return meshing.NewChunkMesher(builder, table, c.Threshold, c.Interpolate)
}

// StreamingOptions returns the manager options for c.
func (c Config) StreamingOptions(logger *log.Logger) streaming.Options {
	return streaming.Options{
		ViewRadius:  c.ViewRadius,
		EvictRadius: c.EvictRadius,
		Workers:     c.Workers,
		Logger:      logger,
	}
}

// NewManager wires a streaming manager from c.
func (c Config) NewManager(listener streaming.Listener, logger *log.Logger) (*streaming.Manager, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mesher, err := c.Mesher()
	if err != nil {
		return nil, err
	}
	return streaming.New(mesher, c.StreamingOptions(logger), listener)
}
