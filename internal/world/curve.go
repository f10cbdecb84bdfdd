package world

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrInvalidParams reports terrain parameters that cannot produce a density field.
var ErrInvalidParams = errors.New("invalid terrain parameters")

// CurvePoint is one control point of a BoundCurve.
type CurvePoint struct {
	Y     float64 `yaml:"y" json:"y"`
	Value float64 `yaml:"value" json:"value"`
}

// BoundCurve maps world height to a density bound. It interpolates linearly
// between control points and holds the end values beyond them.
type BoundCurve struct {
	points []CurvePoint
}

// NewBoundCurve builds a curve from control points in any order.
// Two points at the same height are rejected.
func NewBoundCurve(points ...CurvePoint) (BoundCurve, error) {
	if len(points) == 0 {
		return BoundCurve{}, fmt.Errorf("%w: bound curve has no control points", ErrInvalidParams)
	}
	pts := slices.Clone(points)
	slices.SortFunc(pts, func(a, b CurvePoint) int {
		switch {
		case a.Y < b.Y:
			return -1
		case a.Y > b.Y:
			return 1
		}
		return 0
	})
	for i := 1; i < len(pts); i++ {
		if pts[i].Y == pts[i-1].Y {
			return BoundCurve{}, fmt.Errorf("%w: bound curve has two points at y=%g", ErrInvalidParams, pts[i].Y)
		}
	}
	return BoundCurve{points: pts}, nil
}

// ConstantCurve returns a curve with the same value at every height.
func ConstantCurve(v float64) BoundCurve {
	return BoundCurve{points: []CurvePoint{{Y: 0, Value: v}}}
}

// IsZero reports whether the curve has no control points.
func (c BoundCurve) IsZero() bool {
	return len(c.points) == 0
}

// Points returns a copy of the sorted control points.
func (c BoundCurve) Points() []CurvePoint {
	return slices.Clone(c.points)
}

// At evaluates the curve at height y.
func (c BoundCurve) At(y float64) float64 {
	n := len(c.points)
	switch {
	case n == 0:
		return 0
	case y <= c.points[0].Y:
		return c.points[0].Value
	case y >= c.points[n-1].Y:
		return c.points[n-1].Value
	}
	// First point strictly above y; i >= 1 by the checks above.
	i := sort.Search(n, func(i int) bool { return c.points[i].Y > y })
	a, b := c.points[i-1], c.points[i]
	t := (y - a.Y) / (b.Y - a.Y)
	return lerp(a.Value, b.Value, t)
}
