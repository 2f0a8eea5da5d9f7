package scene

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/duopipe/pkg/config"
	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/render"
)

func newTestRenderer(t *testing.T, cfg config.Config) (*Renderer, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r, err := NewRenderer(Procedural(), cfg, logger)
	require.NoError(t, err)
	return r, &logs
}

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Width, cfg.Height = 64, 48
	cfg.Pipeline.Workers = 2
	return cfg
}

func TestRendererToggles(t *testing.T) {
	r, logs := newTestRenderer(t, smallConfig())
	require.Equal(t, render.Software, r.Mode())

	// Filter and fire only respond in hardware mode.
	r.ToggleFilter()
	r.ToggleFire()
	assert.Equal(t, render.FilterPoint, r.Filter())
	assert.False(t, r.FireVisible())

	r.ToggleMode()
	assert.Equal(t, render.Hardware, r.Mode())
	r.ToggleFilter()
	r.ToggleFire()
	assert.Equal(t, render.FilterLinear, r.Filter())
	assert.True(t, r.FireVisible())

	r.ToggleCull()
	assert.Equal(t, render.CullFront, r.Cull())
	r.ToggleRotation()
	assert.True(t, r.Rotating())
	r.ToggleWireframe()
	assert.True(t, r.Wireframe())

	out := logs.String()
	for _, want := range []string{
		"render mode changed", "mode=hardware",
		"sample state changed", "filter=linear",
		"fire mesh toggled", "visible=true",
		"cull mode changed", "mode=front",
		"rotation toggled", "rotating=true",
		"wireframe toggled",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRendererWorld(t *testing.T) {
	r, _ := newTestRenderer(t, smallConfig())
	const dt = 1.0 / 30

	for range 10 {
		r.Update(dt, render.InputState{})
	}
	assert.True(t, r.World().ApproxEqual(math3d.Translate(math3d.V3(0, 0, -50)), 1e-12), "no rotation while stopped")

	r.ToggleRotation()
	for range 60 {
		r.Update(dt, render.InputState{})
	}
	world := r.World()
	assert.Equal(t, math3d.V3(0, 0, -50), world.Translation(), "rotation keeps the translation")
	assert.False(t, world.ApproxEqual(math3d.Translate(math3d.V3(0, 0, -50)), 1e-6))
}

func TestRendererSoftwareFrame(t *testing.T) {
	cfg := smallConfig()
	r, _ := newTestRenderer(t, cfg)
	fb := render.NewFramebuffer(cfg.Width, cfg.Height)

	require.NoError(t, r.Render(fb))
	bg := cfg.BackgroundColor()
	assert.Equal(t, bg, fb.GetPixel(0, 0))
	assert.NotEqual(t, bg, fb.GetPixel(32, 24), "sphere covers the center")

	stats := r.Stats()
	assert.Equal(t, r.Scene().Mesh.TriangleCount(), stats.Triangles)
	assert.Positive(t, stats.FragmentsWritten)
	assert.Positive(t, stats.FacingCulled, "back half of the sphere is culled")

	// Depth is cleared once the frame is done.
	for y := range cfg.Height {
		for x := range cfg.Width {
			require.True(t, math.IsInf(r.rast.Depth(x, y), 1))
		}
	}
}

func TestRendererSoftwareCullFront(t *testing.T) {
	cfg := smallConfig()
	cfg.Cull = render.CullFront
	r, _ := newTestRenderer(t, cfg)
	fb := render.NewFramebuffer(cfg.Width, cfg.Height)

	require.NoError(t, r.Render(fb))
	// Only the inside of the far hemisphere is drawn.
	assert.Positive(t, r.Stats().FragmentsWritten)
	assert.Positive(t, r.Stats().FacingCulled)
}

func TestRendererOffscreen(t *testing.T) {
	cfg := smallConfig()
	cfg.World.Translation = config.Vec3{0, 0, 50}
	r, _ := newTestRenderer(t, cfg)
	fb := render.NewFramebuffer(cfg.Width, cfg.Height)

	require.NoError(t, r.Render(fb))
	assert.Zero(t, r.Stats().Triangles, "mesh behind the camera is skipped whole")
	assert.Equal(t, cfg.BackgroundColor(), fb.GetPixel(32, 24))
}

func TestRendererHardwareFrame(t *testing.T) {
	cfg := smallConfig()
	cfg.Mode = render.Hardware
	r, _ := newTestRenderer(t, cfg)
	fb := render.NewFramebuffer(cfg.Width, cfg.Height)

	require.NoError(t, r.Render(fb))
	frame, ok := r.Device().LastFrame()
	require.True(t, ok)
	require.Len(t, frame.Draws, 1)
	assert.Equal(t, "shaded", frame.Draws[0].Effect)
	assert.Equal(t, "PointTechnique", frame.Draws[0].Technique)
	assert.Equal(t, cfg.BackgroundColor(), frame.Clear)
	assert.NotEqual(t, cfg.BackgroundColor(), fb.GetPixel(32, 24))

	r.ToggleFire()
	r.ToggleFilter()
	require.NoError(t, r.Render(fb))
	frame, _ = r.Device().LastFrame()
	require.Len(t, frame.Draws, 2)
	assert.Equal(t, "flat", frame.Draws[1].Effect)
	assert.Equal(t, render.CullNone, frame.Draws[1].Raster.Cull)
	assert.Equal(t, "LinearTechnique", frame.Draws[0].Technique)
}

func TestRendererWireframe(t *testing.T) {
	cfg := smallConfig()
	cfg.Background = "#000000"
	r, _ := newTestRenderer(t, cfg)
	r.ToggleWireframe()
	fb := render.NewFramebuffer(cfg.Width, cfg.Height)

	require.NoError(t, r.Render(fb))
	green := 0
	for _, p := range fb.Pixels {
		if p == render.ColorGreen {
			green++
		}
	}
	assert.Positive(t, green)
}

func TestSetSize(t *testing.T) {
	r, _ := newTestRenderer(t, smallConfig())
	before := r.Camera().ProjectionMatrix(render.Software)
	r.SetSize(0, 10)
	assert.Equal(t, before, r.Camera().ProjectionMatrix(render.Software))

	r.SetSize(200, 100)
	after := r.Camera().ProjectionMatrix(render.Software)
	assert.InDelta(t, before[5], after[5], 1e-12, "vertical scale is unchanged")
	assert.InDelta(t, before[0]*(64.0/48)/2, after[0], 1e-12)
}
