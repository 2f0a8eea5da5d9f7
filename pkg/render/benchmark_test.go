package render

import (
	"math"
	"testing"

	"github.com/taigrr/duopipe/pkg/math3d"
)

// grid is an n x n tessellated plane at z = -4 facing the camera.
type grid struct{ n int }

func (g grid) VertexCount() int { return (g.n + 1) * (g.n + 1) }

func (g grid) VertexAttributes(i int) (pos, normal, tangent math3d.Vec3, uv math3d.Vec2) {
	x, y := i%(g.n+1), i/(g.n+1)
	u, v := float64(x)/float64(g.n), float64(y)/float64(g.n)
	return math3d.V3(2*u-1, 1-2*v, -4), math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V2(u, v)
}

func (g grid) indices() []uint32 {
	var idx []uint32
	row := uint32(g.n + 1)
	for y := range uint32(g.n) {
		for x := range uint32(g.n) {
			a := y*row + x
			idx = append(idx, a, a+row, a+row+1, a, a+row+1, a+1)
		}
	}
	return idx
}

func benchmarkDraw(b *testing.B, workers int) {
	g := grid{n: 32}
	cam := NewCamera(math3d.Vec3{}, 60, 2)
	buf := NewProjectionStage().Run(g, math3d.Identity(), cam, Software)
	idx := g.indices()

	fb := NewFramebuffer(320, 160)
	r := NewRasterizer(fb)
	r.Workers = workers
	shader := NewPixelShader(
		NewCheckerTexture(64, 64, 8, ColorWhite, ColorGreen),
		NewSolidTexture(RGB(128, 128, 255)),
		NewSolidTexture(RGB(64, 64, 64)),
		NewSolidTexture(RGB(200, 200, 200)),
	)

	for b.Loop() {
		if err := r.Draw(buf, idx, shader); err != nil {
			b.Fatal(err)
		}
		r.EndFrame()
	}
}

func BenchmarkDrawSerial(b *testing.B) { benchmarkDraw(b, 1) }

func BenchmarkDrawBanded(b *testing.B) { benchmarkDraw(b, 8) }

func BenchmarkProjectionStage(b *testing.B) {
	g := grid{n: 64}
	cam := NewCamera(math3d.Vec3{}, 60, 2)
	stage := NewProjectionStage()
	world := math3d.RotateY(math.Pi / 8)

	for b.Loop() {
		_ = stage.Run(g, world, cam, Software)
	}
}

func BenchmarkFrustumExtract(b *testing.B) {
	cam := NewCamera(math3d.Vec3{}, 60, 16.0/9)
	for b.Loop() {
		_ = cam.ModelFrustum(Software, math3d.Identity(), 1)
	}
}

func BenchmarkTextureSample(b *testing.B) {
	tex := NewCheckerTexture(256, 256, 16, ColorWhite, ColorBlack)
	uv := math3d.V2(0.37, 0.61)
	for b.Loop() {
		_ = tex.Sample(uv)
	}
}
