package voxel

import "fmt"

// IndexError reports an access outside the bounds of a Matrix3D.
// Get and Set panic with it; At and Store return it.
type IndexError struct {
	X, Y, Z    int
	DX, DY, DZ int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("voxel: index (%d,%d,%d) out of range [0,%d)x[0,%d)x[0,%d)",
		e.X, e.Y, e.Z, e.DX, e.DY, e.DZ)
}

// Matrix3D is a dense 3D grid of density samples stored row-major:
// index = z*dx*dy + y*dx + x.
type Matrix3D struct {
	dx, dy, dz int
	elems      []float32
}

// NewMatrix3D allocates a zeroed grid. Non-positive dimensions are a programming error.
func NewMatrix3D(dx, dy, dz int) *Matrix3D {
	if dx <= 0 || dy <= 0 || dz <= 0 {
		panic(fmt.Sprintf("voxel: invalid matrix dimensions %dx%dx%d", dx, dy, dz))
	}
	return &Matrix3D{
		dx:    dx,
		dy:    dy,
		dz:    dz,
		elems: make([]float32, dx*dy*dz),
	}
}

// NewCube allocates an n*n*n grid.
func NewCube(n int) *Matrix3D {
	return NewMatrix3D(n, n, n)
}

// Dims returns the grid dimensions.
func (m *Matrix3D) Dims() (int, int, int) {
	return m.dx, m.dy, m.dz
}

func (m *Matrix3D) DX() int { return m.dx }
func (m *Matrix3D) DY() int { return m.dy }
func (m *Matrix3D) DZ() int { return m.dz }

// Len returns the number of stored samples.
func (m *Matrix3D) Len() int {
	return len(m.elems)
}

// InBounds reports whether (x,y,z) addresses a sample.
func (m *Matrix3D) InBounds(x, y, z int) bool {
	return x >= 0 && x < m.dx && y >= 0 && y < m.dy && z >= 0 && z < m.dz
}

func (m *Matrix3D) index(x, y, z int) int {
	return z*m.dx*m.dy + y*m.dx + x
}

func (m *Matrix3D) boundsError(x, y, z int) *IndexError {
	return &IndexError{X: x, Y: y, Z: z, DX: m.dx, DY: m.dy, DZ: m.dz}
}

// Get returns the sample at (x,y,z). It panics with *IndexError when out of range.
func (m *Matrix3D) Get(x, y, z int) float32 {
	if !m.InBounds(x, y, z) {
		panic(m.boundsError(x, y, z))
	}
	return m.elems[m.index(x, y, z)]
}

// Set stores v at (x,y,z). It panics with *IndexError when out of range.
func (m *Matrix3D) Set(x, y, z int, v float32) {
	if !m.InBounds(x, y, z) {
		panic(m.boundsError(x, y, z))
	}
	m.elems[m.index(x, y, z)] = v
}

// At is Get with an error return instead of a panic.
func (m *Matrix3D) At(x, y, z int) (float32, error) {
	if !m.InBounds(x, y, z) {
		return 0, m.boundsError(x, y, z)
	}
	return m.elems[m.index(x, y, z)], nil
}

// Store is Set with an error return instead of a panic.
func (m *Matrix3D) Store(x, y, z int, v float32) error {
	if !m.InBounds(x, y, z) {
		return m.boundsError(x, y, z)
	}
	m.elems[m.index(x, y, z)] = v
	return nil
}

// Fill calls f for every lattice point in storage order and stores the result.
func (m *Matrix3D) Fill(f func(x, y, z int) float32) {
	i := 0
	for z := 0; z < m.dz; z++ {
		for y := 0; y < m.dy; y++ {
			for x := 0; x < m.dx; x++ {
				m.elems[i] = f(x, y, z)
				i++
			}
		}
	}
}

// Range returns the smallest and largest stored sample.
func (m *Matrix3D) Range() (lo, hi float32) {
	lo, hi = m.elems[0], m.elems[0]
	for _, v := range m.elems[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Values exposes the backing slice in storage order. Callers must not modify it
// once the grid has been handed to a mesher.
func (m *Matrix3D) Values() []float32 {
	return m.elems
}
