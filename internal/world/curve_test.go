package world

import (
	"errors"
	"testing"
)

func TestBoundCurveInterpolation(t *testing.T) {
	c, err := NewBoundCurve(
		CurvePoint{Y: 10, Value: 1},
		CurvePoint{Y: -10, Value: -1},
		CurvePoint{Y: 0, Value: 0.5},
	)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		y, want float64
	}{
		{-100, -1}, // clamped below
		{-10, -1},
		{-5, -0.25},
		{0, 0.5},
		{5, 0.75},
		{10, 1},
		{1000, 1}, // clamped above
	}
	for _, tt := range tests {
		if got := c.At(tt.y); got != tt.want {
			t.Errorf("At(%v) = %v, want %v", tt.y, got, tt.want)
		}
	}
	if pts := c.Points(); pts[0].Y != -10 || pts[2].Y != 10 {
		t.Errorf("points not sorted: %v", pts)
	}
}

func TestBoundCurveConstant(t *testing.T) {
	c := ConstantCurve(-0.3)
	for _, y := range []float64{-1e6, 0, 42, 1e6} {
		if got := c.At(y); got != -0.3 {
			t.Errorf("At(%v) = %v", y, got)
		}
	}
}

func TestBoundCurveErrors(t *testing.T) {
	if _, err := NewBoundCurve(); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("empty curve: got %v", err)
	}
	_, err := NewBoundCurve(CurvePoint{Y: 1, Value: 0}, CurvePoint{Y: 1, Value: 2})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("duplicate heights: got %v", err)
	}
}
