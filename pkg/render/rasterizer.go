// Package render implements the software pipeline: camera, projection,
// triangle rasterization, per-pixel shading and terminal presentation.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/taigrr/duopipe/pkg/math3d"
)

// ErrIndexOutOfRange is returned by Draw when an index refers past the
// vertex buffer.
var ErrIndexOutOfRange = errors.New("index out of range")

// degenerateArea is the doubled screen-space area below which a triangle
// is skipped.
const degenerateArea = 1e-12

// Vertex is a transformed vertex. Position holds post-divide x, y, z and
// the pre-divide w.
type Vertex struct {
	Position math3d.Vec4
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	ViewDir  math3d.Vec3
}

// FragmentShader computes the color of one covered pixel from the
// interpolated vertex. Shade is called from several goroutines when the
// rasterizer runs banded, so implementations must not mutate shared state.
type FragmentShader interface {
	Shade(v Vertex) Color3
}

// Surface is a render target.
type Surface interface {
	Size() (width, height int)
	PackColor(r, g, b uint8) color.RGBA
	SetPixel(x, y int, c color.RGBA)
}

// Stats counts rasterizer work since the last ResetStats.
type Stats struct {
	Triangles        int // Triangles submitted
	FrustumCulled    int // Rejected because a vertex left the clip volume
	FacingCulled     int // Rejected by the cull mode
	Degenerate       int // Skipped for near-zero area
	FragmentsTested  int // Covered pixels that reached the depth test
	FragmentsWritten int // Pixels that passed the depth test
}

func (s *Stats) add(o Stats) {
	s.Triangles += o.Triangles
	s.FrustumCulled += o.FrustumCulled
	s.FacingCulled += o.FacingCulled
	s.Degenerate += o.Degenerate
	s.FragmentsTested += o.FragmentsTested
	s.FragmentsWritten += o.FragmentsWritten
}

// Rasterizer fills triangles into a Surface with a depth buffer.
type Rasterizer struct {
	Cull CullMode

	// Workers is the number of horizontal bands rasterized concurrently.
	// Values below 2 rasterize on the calling goroutine.
	Workers int

	// PerspectiveVaryings interpolates normal, tangent and view direction
	// with perspective correction. UVs are always corrected.
	PerspectiveVaryings bool

	Stats Stats

	surface       Surface
	width, height int
	depth         []float64

	setups []triangleSetup // Reused between draws
}

// triangleSetup is the per-triangle state shared by every band.
type triangleSetup struct {
	v       [3]*Vertex
	sx, sy  [3]float64 // Screen-space vertices
	invArea float64    // 1 / doubled signed area
	minX    int
	minY    int
	maxX    int // Exclusive
	maxY    int // Exclusive
}

// NewRasterizer creates a rasterizer targeting surface.
func NewRasterizer(surface Surface) *Rasterizer {
	r := &Rasterizer{}
	r.SetSurface(surface)
	return r
}

// SetSurface changes the render target, resizing the depth buffer when
// needed.
func (r *Rasterizer) SetSurface(surface Surface) {
	r.surface = surface
	r.resize()
}

func (r *Rasterizer) resize() {
	if r.surface == nil {
		r.width, r.height, r.depth = 0, 0, nil
		return
	}
	w, h := r.surface.Size()
	if w == r.width && h == r.height && len(r.depth) == w*h {
		return
	}
	r.width, r.height = w, h
	r.depth = make([]float64, w*h)
	r.EndFrame()
}

// Depth returns the stored depth at (x, y), +Inf when nothing was drawn
// there this frame.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return math.Inf(1)
	}
	return r.depth[y*r.width+x]
}

// EndFrame resets the depth buffer. Call it once after all draws of a
// frame.
func (r *Rasterizer) EndFrame() {
	n := len(r.depth)
	if n == 0 {
		return
	}
	// Copy-doubling fill
	r.depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(r.depth[i:], r.depth[:i])
	}
}

// ResetStats zeroes the counters.
func (r *Rasterizer) ResetStats() {
	r.Stats = Stats{}
}

// Draw rasterizes every index triple of indices over buf. Triangles with a
// vertex outside the clip volume are discarded whole.
func (r *Rasterizer) Draw(buf []Vertex, indices []uint32, shader FragmentShader) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("draw: %d indices is not a whole number of triangles", len(indices))
	}
	if r.surface == nil {
		return errors.New("draw: no surface")
	}
	r.resize()

	if err := r.setup(buf, indices); err != nil {
		return err
	}
	if len(r.setups) == 0 {
		return nil
	}

	r.Stats.add(r.fill(shader))
	return nil
}

// setup builds triangleSetup for every triangle that survives frustum,
// facing and degeneracy checks.
func (r *Rasterizer) setup(buf []Vertex, indices []uint32) error {
	r.setups = r.setups[:0]
	w, h := float64(r.width), float64(r.height)
	n := uint32(len(buf))

	for t := 0; t < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if i0 >= n || i1 >= n || i2 >= n {
			return fmt.Errorf("draw: triangle %d: %w (%d vertices)", t/3, ErrIndexOutOfRange, n)
		}
		r.Stats.Triangles++

		s := triangleSetup{v: [3]*Vertex{&buf[i0], &buf[i1], &buf[i2]}}
		visible := true
		for k, v := range s.v {
			if !inClipVolume(v.Position) {
				visible = false
				break
			}
			s.sx[k] = (v.Position.X + 1) / 2 * w
			s.sy[k] = (1 - v.Position.Y) / 2 * h
		}
		if !visible {
			r.Stats.FrustumCulled++
			continue
		}

		area := cross2(s.sx[0]-s.sx[1], s.sy[0]-s.sy[1], s.sx[2]-s.sx[1], s.sy[2]-s.sy[1])
		if math.Abs(area) < degenerateArea {
			r.Stats.Degenerate++
			continue
		}
		if (r.Cull == CullBack && area < 0) || (r.Cull == CullFront && area > 0) {
			r.Stats.FacingCulled++
			continue
		}
		s.invArea = 1 / area

		s.minX = clampInt(int(math.Floor(min(s.sx[0], s.sx[1], s.sx[2]))), 0, r.width)
		s.maxX = clampInt(int(math.Ceil(max(s.sx[0], s.sx[1], s.sx[2]))), 0, r.width)
		s.minY = clampInt(int(math.Floor(min(s.sy[0], s.sy[1], s.sy[2]))), 0, r.height)
		s.maxY = clampInt(int(math.Ceil(max(s.sy[0], s.sy[1], s.sy[2]))), 0, r.height)
		if s.minX >= s.maxX || s.minY >= s.maxY {
			continue
		}

		r.setups = append(r.setups, s)
	}
	return nil
}

// rasterizeRows fills rows [y0, y1) of every set-up triangle, in index
// order. Rows are owned exclusively by the caller.
func (r *Rasterizer) rasterizeRows(y0, y1 int, shader FragmentShader) Stats {
	var st Stats
	for i := range r.setups {
		s := &r.setups[i]
		lo, hi := max(s.minY, y0), min(s.maxY, y1)
		for y := lo; y < hi; y++ {
			py := float64(y) + 0.5
			row := y * r.width
			for x := s.minX; x < s.maxX; x++ {
				px := float64(x) + 0.5

				w0 := cross2(px-s.sx[1], py-s.sy[1], s.sx[2]-s.sx[1], s.sy[2]-s.sy[1])
				w1 := cross2(px-s.sx[2], py-s.sy[2], s.sx[0]-s.sx[2], s.sy[0]-s.sy[2])
				w2 := cross2(px-s.sx[0], py-s.sy[0], s.sx[1]-s.sx[0], s.sy[1]-s.sy[0])
				if !r.covers(w0, w1, w2) {
					continue
				}

				b := [3]float64{w0 * s.invArea, w1 * s.invArea, w2 * s.invArea}
				frag := r.interpolate(s, b)

				st.FragmentsTested++
				if !(frag.Position.Z < r.depth[row+x]) {
					continue
				}
				r.depth[row+x] = frag.Position.Z
				st.FragmentsWritten++

				cr, cg, cb := shader.Shade(frag).MaxToOne().RGB8()
				r.surface.SetPixel(x, y, r.surface.PackColor(cr, cg, cb))
			}
		}
	}
	return st
}

// covers applies the cull mode to a pixel's edge weights.
func (r *Rasterizer) covers(w0, w1, w2 float64) bool {
	switch r.Cull {
	case CullBack:
		return w0 >= 0 && w1 >= 0 && w2 >= 0
	case CullFront:
		return w0 <= 0 && w1 <= 0 && w2 <= 0
	default:
		return (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0)
	}
}

// interpolate builds the fragment for barycentric weights b.
func (r *Rasterizer) interpolate(s *triangleSetup, b [3]float64) Vertex {
	v0, v1, v2 := s.v[0], s.v[1], s.v[2]

	var invW, invZ float64
	var pw [3]float64 // b / w per vertex
	for k, v := range s.v {
		pw[k] = safeDiv(b[k], v.Position.W)
		invW += pw[k]
		invZ += safeDiv(b[k], v.Position.Z)
	}
	w := 1 / invW
	z := 1 / invZ

	uv := v0.UV.Scale(pw[0]).Add(v1.UV.Scale(pw[1])).Add(v2.UV.Scale(pw[2])).Scale(w)

	lw := b
	if r.PerspectiveVaryings {
		lw = [3]float64{pw[0] * w, pw[1] * w, pw[2] * w}
	}
	lerp := func(a0, a1, a2 math3d.Vec3) math3d.Vec3 {
		return a0.Scale(lw[0]).Add(a1.Scale(lw[1])).Add(a2.Scale(lw[2])).Normalize()
	}

	return Vertex{
		Position: math3d.V4(
			b[0]*v0.Position.X+b[1]*v1.Position.X+b[2]*v2.Position.X,
			b[0]*v0.Position.Y+b[1]*v1.Position.Y+b[2]*v2.Position.Y,
			z, w),
		UV:      uv,
		Normal:  lerp(v0.Normal, v1.Normal, v2.Normal),
		Tangent: lerp(v0.Tangent, v1.Tangent, v2.Tangent),
		ViewDir: lerp(v0.ViewDir, v1.ViewDir, v2.ViewDir),
	}
}

// inClipVolume reports whether p lies inside x, y in [-1, 1] and z in
// [0, 1]. NaN is outside.
func inClipVolume(p math3d.Vec4) bool {
	return p.X >= -1 && p.X <= 1 &&
		p.Y >= -1 && p.Y <= 1 &&
		p.Z >= 0 && p.Z <= 1
}

func cross2(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// safeDiv returns a / b, or 0 when a is 0.
func safeDiv(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return a / b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
