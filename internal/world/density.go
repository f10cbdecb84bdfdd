package world

import (
	"fmt"
	"math"
)

// NoiseLayer is one weighted noise contribution. Scale multiplies world
// coordinates before sampling (the layer's frequency).
type NoiseLayer struct {
	Weight float64
	Scale  float64
}

// TerrainParams fully determines a density field.
type TerrainParams struct {
	Seed   uint64
	Noise  NoiseKind
	Layers []NoiseLayer
	Upper  BoundCurve
	Lower  BoundCurve
}

// DensitySampler evaluates the terrain density field. Values below the iso
// threshold are solid, values above are empty.
//
// The raw weighted noise sum is normalised using its known range and then
// remapped into the band [lower(y), upper(y)]. The two height curves produce
// the layering: a solid floor where upper < 0, caves and surface where the
// band straddles zero, open air where lower > 0.
type DensitySampler struct {
	layers  []NoiseLayer
	sources []NoiseSource
	upper   BoundCurve
	lower   BoundCurve
	rawMin  float64
	rawMax  float64
}

// NewDensitySampler seeds one independent source per layer.
func NewDensitySampler(p TerrainParams) (*DensitySampler, error) {
	if p.Upper.IsZero() || p.Lower.IsZero() {
		return nil, fmt.Errorf("%w: upper and lower bound curves are required", ErrInvalidParams)
	}
	s := &DensitySampler{
		layers:  make([]NoiseLayer, len(p.Layers)),
		sources: make([]NoiseSource, len(p.Layers)),
		upper:   p.Upper,
		lower:   p.Lower,
	}
	copy(s.layers, p.Layers)

	var total float64
	for i, l := range p.Layers {
		if math.IsNaN(l.Weight) || math.IsInf(l.Weight, 0) || math.IsNaN(l.Scale) || math.IsInf(l.Scale, 0) {
			return nil, fmt.Errorf("%w: layer %d has a non-finite weight or scale", ErrInvalidParams, i)
		}
		src, err := NewNoiseSource(p.Noise, layerSeed(p.Seed, i))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		s.sources[i] = src
		total += math.Abs(l.Weight)
	}
	// Every source is normalised to [-1,1].
	s.rawMin = -total
	s.rawMax = total
	return s, nil
}

// RawRange returns the fixed range of the summed noise.
func (s *DensitySampler) RawRange() (float64, float64) {
	return s.rawMin, s.rawMax
}

// Raw returns the weighted noise sum before height banding.
func (s *DensitySampler) Raw(x, y, z float64) float64 {
	var raw float64
	for i, l := range s.layers {
		raw += l.Weight * s.sources[i].Noise3D(x*l.Scale, y*l.Scale, z*l.Scale)
	}
	return raw
}

// Bounds returns the (lower, upper) density band at height y.
func (s *DensitySampler) Bounds(y float64) (float64, float64) {
	return s.lower.At(y), s.upper.At(y)
}

// Sample returns the density at a world position.
func (s *DensitySampler) Sample(x, y, z float64) float32 {
	raw := s.Raw(x, y, z)
	lower, upper := s.Bounds(y)
	norm := 0.5
	if span := s.rawMax - s.rawMin; span > 0 {
		norm = (raw - s.rawMin) / span
	}
	return float32(norm*(upper-lower) + lower)
}
