// Package camera is the free-flying observer that drives chunk streaming in the viewer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a fly camera: yaw/pitch mouse look, movement along its own axes.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float64 // degrees, 0 looks along +X
	Pitch    float64 // degrees, clamped to [-89, 89]

	Speed       float32 // world units per second
	Sensitivity float64

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	FirstMouse bool
	lastMouseX float64
	lastMouseY float64
}

func New(width, height int, position mgl32.Vec3) *Camera {
	return &Camera{
		Position:    position,
		Yaw:         -90,
		Speed:       12,
		Sensitivity: 0.1,
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		FirstMouse:  true,
	}
}

// HandleMouseMovement turns the camera by the cursor delta since the last call.
func (c *Camera) HandleMouseMovement(xpos, ypos float64) {
	if c.FirstMouse {
		c.lastMouseX = xpos
		c.lastMouseY = ypos
		c.FirstMouse = false
		return
	}

	xoffset := (xpos - c.lastMouseX) * c.Sensitivity
	yoffset := (c.lastMouseY - ypos) * c.Sensitivity
	c.lastMouseX = xpos
	c.lastMouseY = ypos

	c.Yaw += xoffset
	c.Pitch = math.Max(-89, math.Min(89, c.Pitch+yoffset))
}

func (c *Camera) Front() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	pt := mgl32.DegToRad(float32(c.Pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(pt)))
	fy := float32(math.Sin(float64(pt)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(pt)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Move flies the camera. forward/right/up are axis inputs in [-1,1].
func (c *Camera) Move(forward, right, up float32, dt float64) {
	dir := c.Front().Mul(forward).Add(c.Right().Mul(right)).Add(mgl32.Vec3{0, up, 0})
	if dir.Len() == 0 {
		return
	}
	c.Position = c.Position.Add(dir.Normalize().Mul(c.Speed * float32(dt)))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Resize updates the aspect ratio for a new framebuffer size.
func (c *Camera) Resize(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}
