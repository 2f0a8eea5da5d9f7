package gpu

import (
	"fmt"
	"image/color"

	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/models"
	"github.com/taigrr/duopipe/pkg/render"
)

// Binding is a mesh uploaded to a device together with the effect that
// draws it. The effect is chosen once, at bind time.
type Binding struct {
	Effect Effect
	Maps   Maps

	vertices   BufferID
	indices    BufferID
	indexCount int
}

// Bind uploads mesh to dev. Flat meshes get the Flat effect, everything
// else the Shaded one.
func Bind(dev Device, mesh *models.Mesh, flat bool, maps Maps) (*Binding, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	vb, err := dev.CreateBuffer(VertexBuffer, PackVertices(mesh))
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", mesh.Name, err)
	}
	ib, err := dev.CreateBuffer(IndexBuffer, PackIndices(mesh.Indices))
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", mesh.Name, err)
	}

	var effect Effect = NewShaded()
	if flat {
		effect = NewFlat()
	}
	return &Binding{
		Effect:     effect,
		Maps:       maps,
		vertices:   vb,
		indices:    ib,
		indexCount: len(mesh.Indices),
	}, nil
}

// FrameState is the per-frame input of the hardware pipeline.
type FrameState struct {
	Camera *render.Camera
	World  math3d.Mat4
	Filter render.FilterMode
	Cull   render.CullMode
	Fire   bool // Draw the fire binding
	Clear  color.RGBA
}

// Pipeline renders bound meshes through a Device.
type Pipeline struct {
	device Device
	main   *Binding
	fire   *Binding
}

// NewPipeline creates a pipeline for a main mesh and an optional fire
// mesh.
func NewPipeline(dev Device, main, fire *Binding) *Pipeline {
	return &Pipeline{device: dev, main: main, fire: fire}
}

// Render clears, draws and presents one frame. Matrices come from the
// camera's hardware projection.
func (p *Pipeline) Render(f FrameState) error {
	cam := f.Camera
	m := Matrices{
		WorldViewProj: ToMat4(cam.ViewProjection(render.Hardware).Mul(f.World)),
		World:         ToMat4(f.World),
		ViewInverse:   ToMat4(cam.ViewToWorld()),
	}

	p.device.Clear(f.Clear)
	if err := p.draw(p.main, m, f); err != nil {
		return err
	}
	if f.Fire && p.fire != nil {
		if err := p.draw(p.fire, m, f); err != nil {
			return err
		}
	}
	if err := p.device.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

func (p *Pipeline) draw(b *Binding, m Matrices, f FrameState) error {
	if b == nil {
		return nil
	}
	b.Effect.SetMatrices(m)
	b.Effect.SetMaps(b.Maps)

	err := p.device.Draw(DrawCall{
		Effect:     b.Effect.Name(),
		Technique:  b.Effect.Technique(f.Filter),
		Raster:     b.Effect.RasterState(f.Cull),
		Uniforms:   b.Effect.Uniforms(),
		Vertices:   b.vertices,
		Indices:    b.indices,
		Stride:     VertexStride,
		IndexCount: b.indexCount,
	})
	if err != nil {
		return fmt.Errorf("draw %s: %w", b.Effect.Name(), err)
	}
	return nil
}
