package render

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/taigrr/duopipe/pkg/math3d"
)

// ProjectionPolicy builds a projection matrix for one pipeline's clip-space
// convention. Input is the camera's right-handed view space (looking down
// -z); fov is the vertical field of view in radians.
type ProjectionPolicy interface {
	Matrix(fov, aspect, near, far float64) math3d.Mat4
}

// SoftwareProjection maps view space to the rasterizer's clip space:
// x and y in [-1, 1] with y up, depth in [0, 1] from near to far, and
// w equal to the view distance.
type SoftwareProjection struct{}

// Matrix implements ProjectionPolicy.
func (SoftwareProjection) Matrix(fov, aspect, near, far float64) math3d.Mat4 {
	fovScale := math.Tan(fov / 2)

	var m math3d.Mat4
	m[0] = 1 / (aspect * fovScale)
	m[5] = 1 / fovScale
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = near * far / (near - far)
	return m
}

// HardwareProjection builds the left-handed, depth 0..1 perspective that
// graphics devices consume, in the single precision they consume it in.
// The view-space z flip is folded in so the same camera view matrix
// drives both pipelines.
type HardwareProjection struct{}

// Matrix implements ProjectionPolicy.
func (HardwareProjection) Matrix(fov, aspect, near, far float64) math3d.Mat4 {
	a := float32(aspect)
	n, f := float32(near), float32(far)

	yScale := 1 / math32.Tan(float32(fov)/2)
	xScale := yScale / a
	zRange := f / (f - n)

	lh := [16]float32{
		xScale, 0, 0, 0,
		0, yScale, 0, 0,
		0, 0, zRange, 1,
		0, 0, -n * zRange, 0,
	}
	flip := math3d.Scale(math3d.V3(1, 1, -1))

	var m math3d.Mat4
	for i, v := range lh {
		m[i] = float64(v)
	}
	return m.Mul(flip)
}
