package render

import (
	"github.com/taigrr/duopipe/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum represents the 6 planes of a view frustum.
// Each plane's normal points inward.
type Frustum struct {
	Planes [6]Plane
}

// Plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of the clip volume
// -w <= x, y <= w and 0 <= z <= w from a combined model-to-clip matrix
// (Gribb/Hartmann). The planes live in whatever space the matrix maps
// from.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// Row i of a column-major matrix is m[i], m[i+4], m[i+8], m[i+12].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r0, d0 := row(0)
	r1, d1 := row(1)
	r2, d2 := row(2)
	r3, d3 := row(3)

	var f Frustum
	f.Planes[FrustumLeft] = Plane{r3.Add(r0), d3 + d0}
	f.Planes[FrustumRight] = Plane{r3.Sub(r0), d3 - d0}
	f.Planes[FrustumBottom] = Plane{r3.Add(r1), d3 + d1}
	f.Planes[FrustumTop] = Plane{r3.Sub(r1), d3 - d1}
	f.Planes[FrustumNear] = Plane{r2, d2} // Depth starts at 0, not -w
	f.Planes[FrustumFar] = Plane{r3.Sub(r2), d3 - d2}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// IntersectAABB reports whether any part of box may be inside the
// frustum. Uses the positive-vertex test, so it can report true for boxes
// near a frustum corner that are actually outside.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		// The corner furthest along the plane normal.
		p := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB reports whether box is completely inside the frustum.
func (f Frustum) ContainsAABB(box AABB) bool {
	for _, plane := range f.Planes {
		n := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Min.X, box.Max.X),
			selectComponent(plane.Normal.Y >= 0, box.Min.Y, box.Max.Y),
			selectComponent(plane.Normal.Z >= 0, box.Min.Z, box.Max.Z),
		)
		if plane.DistanceToPoint(n) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// ModelFrustum returns the clip volume of pipeline mode expressed in the
// model space of an object placed by world. visibilityScale matches
// ProjectionStage.VisibilityScale.
func (c *Camera) ModelFrustum(mode PipelineMode, world math3d.Mat4, visibilityScale float64) Frustum {
	m := c.ViewProjection(mode).Mul(world)
	if visibilityScale != 0 && visibilityScale != 1 {
		// Scale the w row.
		for i := 3; i < 16; i += 4 {
			m[i] *= visibilityScale
		}
	}
	return NewFrustumFromMatrix(m)
}

// MeshVisible reports whether the bounding box of src, placed by world,
// may be visible to cam. Sources without bounds are always visible.
func MeshVisible(src VertexSource, world math3d.Mat4, cam *Camera, mode PipelineMode, visibilityScale float64) bool {
	bounded, ok := src.(BoundedVertexSource)
	if !ok {
		return true
	}
	lo, hi := bounded.Bounds()
	return cam.ModelFrustum(mode, world, visibilityScale).IntersectAABB(AABB{Min: lo, Max: hi})
}
