package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/render"
)

// ErrNoFrame is returned by Replay before anything was presented.
var ErrNoFrame = errors.New("no presented frame")

// Replayer draws the frames a Recorder captured with the software
// rasterizer, so the hardware path can be shown where no graphics device
// exists. Draws run in submission order with each call's cull mode.
// Depth writes are always on: the flat draw comes last in every frame.
type Replayer struct {
	Rasterizer *render.Rasterizer

	// Lighting of the shaded effect.
	Light     render.Light
	Shininess float64
	Ambient   render.Color3

	rec     *Recorder
	buf     []render.Vertex
	indices []uint32

	// Stand-ins for maps a draw left unbound.
	white, flatNormal, black *render.Texture
}

// NewReplayer creates a replayer over rec.
func NewReplayer(rec *Recorder) *Replayer {
	return &Replayer{
		Rasterizer: render.NewRasterizer(nil),
		Light:      render.DefaultLight(),
		Shininess:  25,
		Ambient:    render.Gray(0.025),
		rec:        rec,
		white:      render.NewSolidTexture(render.ColorWhite),
		flatNormal: render.NewSolidTexture(render.RGB(128, 128, 255)),
		black:      render.NewSolidTexture(render.ColorBlack),
	}
}

// Replay draws the last presented frame into fb.
func (p *Replayer) Replay(fb *render.Framebuffer) error {
	frame, ok := p.rec.LastFrame()
	if !ok {
		return ErrNoFrame
	}

	fb.Clear(frame.Clear)
	p.Rasterizer.SetSurface(fb)
	defer p.Rasterizer.EndFrame()

	for _, call := range frame.Draws {
		if err := p.draw(call); err != nil {
			return fmt.Errorf("replay %s: %w", call.Effect, err)
		}
	}
	return nil
}

func (p *Replayer) draw(call DrawCall) error {
	vb, ok := p.rec.Buffer(call.Vertices)
	if !ok {
		return fmt.Errorf("vertex buffer %d: %w", call.Vertices, ErrUnknownBuffer)
	}
	ib, ok := p.rec.Buffer(call.Indices)
	if !ok {
		return fmt.Errorf("index buffer %d: %w", call.Indices, ErrUnknownBuffer)
	}

	p.unpackVertices(vb, call.Stride, call.Uniforms.Matrices)
	p.indices = p.indices[:0]
	for i := range call.IndexCount {
		p.indices = append(p.indices, binary.LittleEndian.Uint32(ib[4*i:]))
	}

	p.Rasterizer.Cull = call.Raster.Cull
	return p.Rasterizer.Draw(p.buf, p.indices, p.shader(call.Uniforms))
}

// unpackVertices runs the vertex stage of the recorded effect: clip-space
// position from the world-view-projection matrix, world-space normal and
// tangent, and the direction from the eye.
func (p *Replayer) unpackVertices(vb []byte, stride int, m Matrices) {
	if stride <= 0 {
		stride = VertexStride
	}
	n := len(vb) / stride
	if cap(p.buf) < n {
		p.buf = make([]render.Vertex, n)
	}
	p.buf = p.buf[:n]

	wvp, world := m.WorldViewProj.Float64(), m.World.Float64()
	eye := m.ViewInverse.Float64().Translation()

	for i := range n {
		b := vb[i*stride:]
		pos := unpackVec3(b[0:])
		clip := wvp.MulVec4(math3d.Point(pos))
		inv := 1 / clip.W

		p.buf[i] = render.Vertex{
			Position: math3d.V4(clip.X*inv, clip.Y*inv, clip.Z*inv, clip.W),
			UV:       math3d.V2(float64(UnpackFloat(b, 16)), float64(UnpackFloat(b, 20))),
			Normal:   world.MulDir(unpackVec3(b[24:])),
			Tangent:  world.MulDir(unpackVec3(b[36:])),
			ViewDir:  world.MulPoint(pos).Sub(eye).Normalize(),
		}
	}
}

func (p *Replayer) shader(u Uniforms) render.FragmentShader {
	if u.Flat {
		return unlit{diffuse: p.orDefault(u.Maps.Diffuse, p.white)}
	}
	s := render.NewPixelShader(
		p.orDefault(u.Maps.Diffuse, p.white),
		p.orDefault(u.Maps.Normal, p.flatNormal),
		p.orDefault(u.Maps.Specular, p.black),
		p.orDefault(u.Maps.Gloss, p.black),
	)
	s.Light, s.Shininess, s.Ambient = p.Light, p.Shininess, p.Ambient
	return s
}

func (p *Replayer) orDefault(t, fallback *render.Texture) *render.Texture {
	if t == nil {
		return fallback
	}
	return t
}

// unlit shades with the diffuse map alone.
type unlit struct {
	diffuse render.Sampler
}

func (s unlit) Shade(v render.Vertex) render.Color3 {
	return s.diffuse.Sample(v.UV)
}

func unpackVec3(b []byte) math3d.Vec3 {
	return math3d.V3(float64(UnpackFloat(b, 0)), float64(UnpackFloat(b, 4)), float64(UnpackFloat(b, 8)))
}
