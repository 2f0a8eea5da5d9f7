// Package gpu describes the hardware pipeline: shader effects, the packed
// vertex layout, and the device a frame is submitted to. Nothing here
// talks to real graphics hardware; Recorder is an in-memory device that
// keeps every submission for inspection.
package gpu

import (
	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/render"
)

// Technique names, indexed by render.FilterMode.
var techniques = []string{"PointTechnique", "LinearTechnique", "AnisotropicTechnique"}

// Mat4 is a single-precision column-major matrix as uploaded to a device.
type Mat4 [16]float32

// ToMat4 narrows m to single precision.
func ToMat4(m math3d.Mat4) Mat4 {
	var out Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// Float64 widens m back to double precision.
func (m Mat4) Float64() math3d.Mat4 {
	var out math3d.Mat4
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}

// Matrices are the per-draw transform variables of an effect.
type Matrices struct {
	WorldViewProj Mat4
	World         Mat4
	ViewInverse   Mat4
}

// Maps are the texture variables of an effect. Nil entries leave the
// currently bound texture in place.
type Maps struct {
	Diffuse  *render.Texture
	Normal   *render.Texture
	Specular *render.Texture
	Gloss    *render.Texture
}

// Uniforms is a snapshot of an effect's variables at draw time.
type Uniforms struct {
	Matrices Matrices
	Maps     Maps
	Flat     bool
}

// DepthFunc is a depth comparison.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthAlways
)

// Blend factors used by the effects.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendInvSrcAlpha
)

// RasterState is the fixed-function state a draw runs with.
type RasterState struct {
	Cull                  render.CullMode
	FrontCounterClockwise bool
	DepthClip             bool

	DepthTest  bool
	DepthWrite bool
	DepthFunc  DepthFunc

	BlendEnable bool
	SrcBlend    BlendFactor
	DstBlend    BlendFactor
}

// Effect is a compiled shader program with its variables and states.
type Effect interface {
	Name() string
	Techniques() []string
	Technique(filter render.FilterMode) string
	SetMatrices(m Matrices)
	SetMaps(m Maps)
	RasterState(cull render.CullMode) RasterState
	Uniforms() Uniforms
}

// baseEffect carries what every effect shares: the technique table, the
// world-view-projection matrix and the diffuse map.
type baseEffect struct {
	wvp     Mat4
	diffuse *render.Texture
}

func (baseEffect) Techniques() []string {
	return append([]string(nil), techniques...)
}

func (baseEffect) Technique(filter render.FilterMode) string {
	if filter < 0 || int(filter) >= len(techniques) {
		return techniques[render.FilterPoint]
	}
	return techniques[filter]
}

func baseRaster(cull render.CullMode) RasterState {
	return RasterState{
		Cull:                  cull,
		FrontCounterClockwise: true,
		DepthClip:             true,
		DepthTest:             true,
		DepthWrite:            true,
		DepthFunc:             DepthLess,
	}
}

// Shaded is the normal-mapped, specular effect of the main mesh.
type Shaded struct {
	baseEffect
	world, viewInverse       Mat4
	normal, specular, glossy *render.Texture
}

// NewShaded creates a shaded effect.
func NewShaded() *Shaded { return &Shaded{} }

// Name implements Effect.
func (*Shaded) Name() string { return "shaded" }

// SetMatrices implements Effect.
func (e *Shaded) SetMatrices(m Matrices) {
	e.wvp, e.world, e.viewInverse = m.WorldViewProj, m.World, m.ViewInverse
}

// SetMaps implements Effect.
func (e *Shaded) SetMaps(m Maps) {
	if m.Diffuse != nil {
		e.diffuse = m.Diffuse
	}
	if m.Normal != nil {
		e.normal = m.Normal
	}
	if m.Specular != nil {
		e.specular = m.Specular
	}
	if m.Gloss != nil {
		e.glossy = m.Gloss
	}
}

// RasterState implements Effect. Depth is tested and written, blending is
// off and the requested cull mode applies.
func (*Shaded) RasterState(cull render.CullMode) RasterState {
	return baseRaster(cull)
}

// Uniforms implements Effect.
func (e *Shaded) Uniforms() Uniforms {
	return Uniforms{
		Matrices: Matrices{WorldViewProj: e.wvp, World: e.world, ViewInverse: e.viewInverse},
		Maps:     Maps{Diffuse: e.diffuse, Normal: e.normal, Specular: e.specular, Gloss: e.glossy},
	}
}

// Flat is the alpha-blended, unlit effect of the fire mesh. It only uses
// the world-view-projection matrix and the diffuse map.
type Flat struct {
	baseEffect
}

// NewFlat creates a flat effect.
func NewFlat() *Flat { return &Flat{} }

// Name implements Effect.
func (*Flat) Name() string { return "flat" }

// SetMatrices implements Effect.
func (e *Flat) SetMatrices(m Matrices) {
	e.wvp = m.WorldViewProj
}

// SetMaps implements Effect.
func (e *Flat) SetMaps(m Maps) {
	if m.Diffuse != nil {
		e.diffuse = m.Diffuse
	}
}

// RasterState implements Effect. The cull mode is ignored: both faces are
// drawn, depth is tested but not written, and color is alpha blended.
func (*Flat) RasterState(render.CullMode) RasterState {
	rs := baseRaster(render.CullNone)
	rs.DepthWrite = false
	rs.BlendEnable = true
	rs.SrcBlend = BlendSrcAlpha
	rs.DstBlend = BlendInvSrcAlpha
	return rs
}

// Uniforms implements Effect.
func (e *Flat) Uniforms() Uniforms {
	return Uniforms{
		Matrices: Matrices{WorldViewProj: e.wvp},
		Maps:     Maps{Diffuse: e.diffuse},
		Flat:     true,
	}
}
