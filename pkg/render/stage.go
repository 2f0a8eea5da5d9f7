package render

import (
	"github.com/taigrr/duopipe/pkg/math3d"
)

// VertexSource is the read side of a mesh's vertex buffer.
// *models.Mesh implements it; render does not import models.
type VertexSource interface {
	VertexCount() int
	VertexAttributes(i int) (pos, normal, tangent math3d.Vec3, uv math3d.Vec2)
}

// BoundedVertexSource adds a model-space bounding box for whole-mesh
// visibility tests.
type BoundedVertexSource interface {
	VertexSource
	Bounds() (lo, hi math3d.Vec3)
}

// ProjectionStage transforms model vertices into the rasterizer's
// post-divide clip space. The output buffer belongs to the stage and is
// overwritten by every Run.
type ProjectionStage struct {
	// VisibilityScale multiplies w before the perspective divide.
	VisibilityScale float64

	// NormalsAsDirections drops the world translation from normals and
	// tangents. By default they are transformed like positions, with the
	// translation included.
	NormalsAsDirections bool

	out []Vertex
}

// NewProjectionStage creates a stage with unit visibility scale.
func NewProjectionStage() *ProjectionStage {
	return &ProjectionStage{VisibilityScale: 1}
}

// Run transforms every vertex of src. The returned slice aliases the
// stage's buffer and stays valid until the next call.
func (s *ProjectionStage) Run(src VertexSource, world math3d.Mat4, cam *Camera, mode PipelineMode) []Vertex {
	n := src.VertexCount()
	if cap(s.out) < n {
		s.out = make([]Vertex, n)
	}
	s.out = s.out[:n]

	wvp := cam.ProjectionMatrix(mode).Mul(cam.WorldToView()).Mul(world)
	eye := cam.Position()

	k := s.VisibilityScale
	if k == 0 {
		k = 1
	}

	xformAttr := world.MulPoint
	if s.NormalsAsDirections {
		xformAttr = world.MulDir
	}

	for i := range n {
		pos, normal, tangent, uv := src.VertexAttributes(i)

		clip := wvp.MulVec4(math3d.Point(pos))
		w := clip.W * k
		inv := 1 / w

		s.out[i] = Vertex{
			Position: math3d.V4(clip.X*inv, clip.Y*inv, clip.Z*inv, w),
			UV:       uv,
			Normal:   xformAttr(normal),
			Tangent:  xformAttr(tangent),
			ViewDir:  world.MulPoint(pos).Sub(eye).Normalize(),
		}
	}
	return s.out
}
