package world

import (
	"fmt"
	"math"

	"github.com/larspensjo/Go-simplex-noise/simplexnoise"
)

// Deterministic lattice noise. Lattice values and gradients come from integer
// hashing, so the same seed reproduces the same field. Simplex noise comes
// from simplexnoise, which has a fixed permutation table; seeds shift the
// sampling position instead.

// NoiseKind selects the noise function used by every layer.
type NoiseKind string

const (
	NoisePerlin  NoiseKind = "perlin"
	NoiseValue   NoiseKind = "value"
	NoiseSimplex NoiseKind = "simplex"
)

// NoiseSource is one independent noise function returning values in [-1,1].
type NoiseSource interface {
	Noise3D(x, y, z float64) float64
}

// NewNoiseSource returns the source of the given kind for a seed.
func NewNoiseSource(kind NoiseKind, seed int64) (NoiseSource, error) {
	switch kind {
	case NoisePerlin, "":
		return gradientSource(seed), nil
	case NoiseValue:
		return valueSource(seed), nil
	case NoiseSimplex:
		return newSimplexSource(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// layerSeed derives an independent per-layer seed from the world seed.
func layerSeed(worldSeed uint64, layer int) int64 {
	v := worldSeed + uint64(layer+1)*0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return int64(v ^ (v >> 31))
}

type gradientSource int64

func (s gradientSource) Noise3D(x, y, z float64) float64 {
	return gradientNoise3D(x, y, z, int64(s))
}

type valueSource int64

func (s valueSource) Noise3D(x, y, z float64) float64 {
	return valueNoise3D(x, y, z, int64(s))*2 - 1
}

// simplexOffsetRange bounds the per-seed shift. Larger offsets lose float64
// precision in the fractional part the noise depends on.
const simplexOffsetRange = 1 << 16

type simplexSource struct {
	ox, oy, oz float64
}

func newSimplexSource(seed int64) simplexSource {
	u := uint64(seed)
	part := func(shift uint) float64 {
		// 16 integer bits plus a fraction so offsets do not land on the lattice.
		return float64((u>>shift)&0xFFFF) + float64((u>>(shift+16))&0xFF)/256
	}
	return simplexSource{ox: part(0), oy: part(24), oz: part(40) - simplexOffsetRange/2}
}

func (s simplexSource) Noise3D(x, y, z float64) float64 {
	v := simplexnoise.Noise3(x+s.ox, y+s.oy, z+s.oz)
	return max(-1, min(1, v))
}

// fade function is used for smoothing (6t^5 - 15t^4 + 10t^3)
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func hash3(x, y, z int64, seed int64) uint64 {
	// SplitMix64 style integer hash for 3D coordinates
	// Use separate golden ratio variants per axis for better distribution
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

func latticeValue3D(x, y, z int64, seed int64) float64 {
	// Map to [0,1]
	h := hash3(x, y, z, seed)
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise3D(x, y, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	z0 := math.Floor(z)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)

	fx := fade(x - x0)
	fy := fade(y - y0)
	fz := fade(z - z0)

	v000 := latticeValue3D(ix, iy, iz, seed)
	v100 := latticeValue3D(ix+1, iy, iz, seed)
	v010 := latticeValue3D(ix, iy+1, iz, seed)
	v110 := latticeValue3D(ix+1, iy+1, iz, seed)
	v001 := latticeValue3D(ix, iy, iz+1, seed)
	v101 := latticeValue3D(ix+1, iy, iz+1, seed)
	v011 := latticeValue3D(ix, iy+1, iz+1, seed)
	v111 := latticeValue3D(ix+1, iy+1, iz+1, seed)

	i00 := lerp(v000, v100, fx)
	i10 := lerp(v010, v110, fx)
	i01 := lerp(v001, v101, fx)
	i11 := lerp(v011, v111, fx)

	i0 := lerp(i00, i10, fy)
	i1 := lerp(i01, i11, fy)
	return lerp(i0, i1, fz) // [0,1]
}

// Gradient set of improved Perlin noise: the 12 cube edge directions, padded to 16.
var gradients = [16][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
	{1, 1, 0}, {0, -1, 1}, {-1, 1, 0}, {0, -1, -1},
}

func gradDot(ix, iy, iz int64, seed int64, dx, dy, dz float64) float64 {
	g := gradients[hash3(ix, iy, iz, seed)&15]
	return g[0]*dx + g[1]*dy + g[2]*dz
}

// gradientNoise3D is Perlin-style gradient noise. It is zero on lattice points
// and clamped to [-1,1].
func gradientNoise3D(x, y, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	z0 := math.Floor(z)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)
	dx, dy, dz := x-x0, y-y0, z-z0

	n000 := gradDot(ix, iy, iz, seed, dx, dy, dz)
	n100 := gradDot(ix+1, iy, iz, seed, dx-1, dy, dz)
	n010 := gradDot(ix, iy+1, iz, seed, dx, dy-1, dz)
	n110 := gradDot(ix+1, iy+1, iz, seed, dx-1, dy-1, dz)
	n001 := gradDot(ix, iy, iz+1, seed, dx, dy, dz-1)
	n101 := gradDot(ix+1, iy, iz+1, seed, dx-1, dy, dz-1)
	n011 := gradDot(ix, iy+1, iz+1, seed, dx, dy-1, dz-1)
	n111 := gradDot(ix+1, iy+1, iz+1, seed, dx-1, dy-1, dz-1)

	u, v, w := fade(dx), fade(dy), fade(dz)
	i00 := lerp(n000, n100, u)
	i10 := lerp(n010, n110, u)
	i01 := lerp(n001, n101, u)
	i11 := lerp(n011, n111, u)
	i0 := lerp(i00, i10, v)
	i1 := lerp(i01, i11, v)

	n := lerp(i0, i1, w)
	if n > 1 {
		return 1
	}
	if n < -1 {
		return -1
	}
	return n
}
