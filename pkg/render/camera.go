package render

import (
	"math"

	"github.com/taigrr/duopipe/pkg/math3d"
)

// InputState is the input accumulated since the previous frame.
type InputState struct {
	Forward, Back, Left, Right bool
	Fast                       bool // Speed modifier (shift)

	// Pointer motion since the last update, in pointer units.
	MouseDX, MouseDY        float64
	LeftButton, RightButton bool
}

// Camera is a free-flying perspective camera. Orientation is stored as
// absolute pitch and yaw; the view basis and matrices are rebuilt on every
// change.
type Camera struct {
	// Movement tuning
	MoveSpeed      float64 // Keyboard translation, units per second
	FastMultiplier float64 // Applied to MoveSpeed while InputState.Fast is held
	DollySpeed     float64 // Pointer translation, units per pointer unit per second
	RotateSpeed    float64 // Radians per pointer unit

	position   math3d.Vec3
	pitch, yaw float64

	fov       float64 // Vertical, radians
	aspect    float64
	near, far float64

	right, up, forward math3d.Vec3

	viewToWorld math3d.Mat4
	worldToView math3d.Mat4

	policies    [2]ProjectionPolicy
	projections [2]math3d.Mat4
}

// NewCamera creates a camera at position looking down -z.
// fovDegrees is the vertical field of view.
func NewCamera(position math3d.Vec3, fovDegrees, aspect float64) *Camera {
	c := &Camera{
		MoveSpeed:      10,
		FastMultiplier: 2.5,
		DollySpeed:     2,
		RotateSpeed:    0.1 * math.Pi / 180,

		position: position,
		fov:      fovDegrees * math.Pi / 180,
		aspect:   aspect,
		near:     0.1,
		far:      100,
		policies: [2]ProjectionPolicy{
			Hardware: HardwareProjection{},
			Software: SoftwareProjection{},
		},
	}
	c.rebuild()
	return c
}

// SetPolicy replaces the projection policy used for mode.
func (c *Camera) SetPolicy(mode PipelineMode, p ProjectionPolicy) {
	c.policies[mode] = p
	c.rebuildProjections()
}

// SetAspect sets the width / height ratio of the target.
func (c *Camera) SetAspect(aspect float64) {
	c.aspect = aspect
	c.rebuildProjections()
}

// FOV returns the vertical field of view in radians.
func (c *Camera) FOV() float64 { return c.fov }

// SetClipPlanes sets the near and far planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.near, c.far = near, far
	c.rebuildProjections()
}

// SetPosition moves the camera without changing its orientation.
func (c *Camera) SetPosition(p math3d.Vec3) {
	c.position = p
	c.rebuild()
}

// SetOrientation sets absolute pitch and yaw in radians.
func (c *Camera) SetOrientation(pitch, yaw float64) {
	c.pitch, c.yaw = pitch, yaw
	c.rebuild()
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 { return c.position }

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 { return c.forward }

// Right returns the unit right vector.
func (c *Camera) Right() math3d.Vec3 { return c.right }

// Up returns the unit up vector.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// Pitch returns the pitch angle in radians.
func (c *Camera) Pitch() float64 { return c.pitch }

// Yaw returns the yaw angle in radians.
func (c *Camera) Yaw() float64 { return c.yaw }

// ViewToWorld returns the camera-to-world transform.
func (c *Camera) ViewToWorld() math3d.Mat4 { return c.viewToWorld }

// WorldToView returns the view matrix.
func (c *Camera) WorldToView() math3d.Mat4 { return c.worldToView }

// ProjectionMatrix returns the projection for the given pipeline.
func (c *Camera) ProjectionMatrix(mode PipelineMode) math3d.Mat4 {
	return c.projections[mode]
}

// ViewProjection returns ProjectionMatrix(mode) * WorldToView().
func (c *Camera) ViewProjection(mode PipelineMode) math3d.Mat4 {
	return c.projections[mode].Mul(c.worldToView)
}

// Update applies one frame of input. Keyboard input moves along the
// camera's right and forward axes. The pointer acts according to the
// held buttons: left dollies and yaws, right pitches and yaws, both pan
// vertically.
func (c *Camera) Update(dt float64, in InputState) {
	speed := c.MoveSpeed
	if in.Fast {
		speed *= c.FastMultiplier
	}

	var move math3d.Vec3
	if in.Right {
		move.X += speed * dt
	}
	if in.Left {
		move.X -= speed * dt
	}
	if in.Forward {
		move.Z += speed * dt
	}
	if in.Back {
		move.Z -= speed * dt
	}

	switch {
	case in.LeftButton && in.RightButton:
		move.Y -= in.MouseDY * c.DollySpeed * dt
	case in.LeftButton:
		move.Z -= in.MouseDY * c.DollySpeed * dt
		c.yaw -= in.MouseDX * c.RotateSpeed
	case in.RightButton:
		c.pitch -= in.MouseDY * c.RotateSpeed
		c.yaw -= in.MouseDX * c.RotateSpeed
	}

	c.rebuildBasis()
	c.position = c.position.
		Add(c.right.Scale(move.X)).
		Add(c.up.Scale(move.Y)).
		Add(c.forward.Scale(move.Z))
	c.rebuildView()
}

func (c *Camera) rebuild() {
	c.rebuildBasis()
	c.rebuildView()
	c.rebuildProjections()
}

// rebuildBasis derives right/up/forward from yaw then pitch.
func (c *Camera) rebuildBasis() {
	forward := math3d.RotateY(c.yaw).MulDir(math3d.Forward())
	c.right = forward.Cross(math3d.Up()).Normalize()
	c.forward = math3d.Rotate(c.right, c.pitch).MulDir(forward).Normalize()
	c.up = c.right.Cross(c.forward)
}

func (c *Camera) rebuildView() {
	c.viewToWorld = math3d.FromColumns(
		math3d.Direction(c.right),
		math3d.Direction(c.up),
		math3d.Direction(c.forward.Negate()),
		math3d.Point(c.position),
	)
	c.worldToView = c.viewToWorld.Inverse()
}

func (c *Camera) rebuildProjections() {
	for mode, p := range c.policies {
		if p == nil {
			continue
		}
		c.projections[mode] = p.Matrix(c.fov, c.aspect, c.near, c.far)
	}
}
