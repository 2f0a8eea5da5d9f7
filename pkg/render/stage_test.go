package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/duopipe/pkg/math3d"
)

func TestProjectionStageRun(t *testing.T) {
	cam := NewCamera(math3d.Vec3{}, 60, 1)
	stage := NewProjectionStage()
	world := math3d.Translate(math3d.V3(0, 0, -5))

	// quad sits at z = -5 already; move it to -10.
	out := stage.Run(quad{}, world, cam, Software)
	require.Len(t, out, 4)

	for i, v := range out {
		pos, _, _, uv := quad{}.VertexAttributes(i)
		worldPos := world.MulPoint(pos)

		assert.InDelta(t, 10, v.Position.W, 1e-9, "w is view distance")
		assert.True(t, v.Position.X >= -1 && v.Position.X <= 1)
		assert.True(t, v.Position.Z > 0 && v.Position.Z < 1)
		assert.Equal(t, uv, v.UV)
		assert.True(t, v.ViewDir.ApproxEqual(worldPos.Normalize(), 1e-12))
		assert.True(t, v.Normal.ApproxEqual(math3d.V3(0, 0, -4), 1e-12), "normal carries the world translation")
		assert.True(t, v.Tangent.ApproxEqual(math3d.V3(1, 0, -5), 1e-12), "tangent carries the world translation")
	}

	// Corner (1, 1) lands at 1/(10·tan 30°) in NDC.
	assert.InDelta(t, 0.1732050808, out[2].Position.X, 1e-9)
	assert.InDelta(t, 0.1732050808, out[2].Position.Y, 1e-9)
}

func TestProjectionStageTranslatedNormals(t *testing.T) {
	cam := NewCamera(math3d.Vec3{}, 45, 1)
	world := math3d.Translate(math3d.V3(0, 0, -50))
	src := single{pos: math3d.V3(0, 0, 0), normal: math3d.V3(0, 1, 0), tangent: math3d.V3(1, 0, 0)}

	tests := []struct {
		name        string
		directions  bool
		wantNormal  math3d.Vec3
		wantTangent math3d.Vec3
	}{
		{"default", false, math3d.V3(0, 1, -50), math3d.V3(1, 0, -50)},
		{"as directions", true, math3d.V3(0, 1, 0), math3d.V3(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := NewProjectionStage()
			stage.NormalsAsDirections = tt.directions
			out := stage.Run(src, world, cam, Software)
			require.Len(t, out, 1)
			assert.True(t, out[0].Normal.ApproxEqual(tt.wantNormal, 1e-12), "normal = %v", out[0].Normal)
			assert.True(t, out[0].Tangent.ApproxEqual(tt.wantTangent, 1e-12), "tangent = %v", out[0].Tangent)
		})
	}
}

func TestProjectionStageVisibilityScale(t *testing.T) {
	cam := NewCamera(math3d.Vec3{}, 60, 1)
	world := math3d.Translate(math3d.V3(0, 2, 0))

	stage := NewProjectionStage()
	require.Equal(t, 1.0, stage.VisibilityScale)
	base := append([]Vertex(nil), stage.Run(quad{}, world, cam, Software)...)

	// Unit scale frames the mesh exactly like the hardware projection.
	wvp := cam.ViewProjection(Hardware).Mul(world)
	for i := range base {
		pos, _, _, _ := quad{}.VertexAttributes(i)
		clip := wvp.MulVec4(math3d.Point(pos))
		assert.InDelta(t, clip.X/clip.W, base[i].Position.X, 1e-6)
		assert.InDelta(t, clip.Y/clip.W, base[i].Position.Y, 1e-6)
	}

	stage.VisibilityScale = 10
	scaled := stage.Run(quad{}, world, cam, Software)
	for i := range base {
		assert.InDelta(t, base[i].Position.W*10, scaled[i].Position.W, 1e-9)
		assert.InDelta(t, base[i].Position.X/10, scaled[i].Position.X, 1e-12)
	}
}

// single is a one-vertex source.
type single struct {
	pos, normal, tangent math3d.Vec3
}

func (single) VertexCount() int { return 1 }

func (s single) VertexAttributes(int) (pos, normal, tangent math3d.Vec3, uv math3d.Vec2) {
	return s.pos, s.normal, s.tangent, math3d.Vec2{}
}

func TestProjectionStageReusesBuffer(t *testing.T) {
	cam := NewCamera(math3d.Vec3{}, 60, 1)
	stage := NewProjectionStage()

	first := stage.Run(grid{n: 4}, math3d.Identity(), cam, Software)
	second := stage.Run(quad{}, math3d.Identity(), cam, Software)
	require.Len(t, second, 4)
	assert.Same(t, &first[0], &second[0])
}
