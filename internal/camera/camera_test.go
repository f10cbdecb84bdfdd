package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// vecNear compares component-wise with an absolute tolerance. mgl32's
// ApproxEqualThreshold squares epsilon when one side is zero.
func vecNear(got, want mgl32.Vec3, eps float64) bool {
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > eps {
			return false
		}
	}
	return true
}

func TestFrontDefaultsToNegativeZ(t *testing.T) {
	c := New(800, 600, mgl32.Vec3{})
	if !vecNear(c.Front(), mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("front = %v", c.Front())
	}
	if !vecNear(c.Right(), mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("right = %v", c.Right())
	}
}

func TestMouseLookClampsPitch(t *testing.T) {
	c := New(800, 600, mgl32.Vec3{})
	c.HandleMouseMovement(100, 100) // first sample only records the position
	if c.Yaw != -90 || c.Pitch != 0 {
		t.Fatalf("first sample moved the camera: yaw %v pitch %v", c.Yaw, c.Pitch)
	}
	c.HandleMouseMovement(200, 100)
	if math.Abs(c.Yaw-(-80)) > 1e-9 {
		t.Errorf("yaw = %v, want -80", c.Yaw)
	}
	c.HandleMouseMovement(200, -5000)
	if c.Pitch != 89 {
		t.Errorf("pitch = %v, want clamp at 89", c.Pitch)
	}
	c.HandleMouseMovement(200, 5000)
	if c.Pitch != -89 {
		t.Errorf("pitch = %v, want clamp at -89", c.Pitch)
	}
}

func TestMove(t *testing.T) {
	c := New(800, 600, mgl32.Vec3{1, 2, 3})
	c.Speed = 10
	c.Move(1, 0, 0, 0.5)
	if !vecNear(c.Position, mgl32.Vec3{1, 2, -2}, 1e-4) {
		t.Errorf("forward: %v", c.Position)
	}
	c.Move(0, 0, 1, 1)
	if !vecNear(c.Position, mgl32.Vec3{1, 12, -2}, 1e-4) {
		t.Errorf("up: %v", c.Position)
	}
	before := c.Position
	c.Move(0, 0, 0, 1)
	if c.Position != before {
		t.Error("zero input moved the camera")
	}
}

func TestViewMatrixPlacesCameraAtOrigin(t *testing.T) {
	c := New(800, 600, mgl32.Vec3{5, 6, 7})
	eye := c.ViewMatrix().Mul4x1(c.Position.Vec4(1))
	if !vecNear(eye.Vec3(), mgl32.Vec3{}, 1e-4) {
		t.Errorf("eye in view space = %v", eye)
	}
	c.Resize(1000, 500)
	if c.AspectRatio != 2 {
		t.Errorf("aspect = %v", c.AspectRatio)
	}
}
