// Package scene assembles the meshes and textures of a frame and drives
// both pipelines over them.
package scene

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/taigrr/duopipe/pkg/config"
	"github.com/taigrr/duopipe/pkg/gpu"
	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/models"
	"github.com/taigrr/duopipe/pkg/render"
)

// Scene holds the resources loaded before the first frame. They are
// read-only while frames render.
type Scene struct {
	Name string

	Mesh *models.Mesh
	Maps gpu.Maps

	// Fire is drawn with the flat effect. Nil when the scene has none.
	Fire    *models.Mesh
	FireMap *render.Texture
}

// Load reads the configured assets. An empty mesh path returns the
// procedural scene. Maps left unset get neutral stand-ins.
func Load(a config.Assets) (*Scene, error) {
	if a.Mesh == "" {
		return Procedural(), nil
	}

	mesh, err := models.Load(a.Mesh)
	if err != nil {
		return nil, fmt.Errorf("load mesh: %w", err)
	}
	sc := &Scene{Name: filepath.Base(a.Mesh), Mesh: mesh}

	maps := []struct {
		name     string
		path     string
		dst      **render.Texture
		fallback render.Color
	}{
		{"diffuse", a.Diffuse, &sc.Maps.Diffuse, render.ColorWhite},
		{"normal", a.Normal, &sc.Maps.Normal, flatNormal},
		{"specular", a.Specular, &sc.Maps.Specular, render.ColorBlack},
		{"gloss", a.Gloss, &sc.Maps.Gloss, render.ColorBlack},
		{"fire diffuse", a.FireDiffuse, &sc.FireMap, fireColor},
	}
	for _, m := range maps {
		if m.path == "" {
			*m.dst = render.NewSolidTexture(m.fallback)
			continue
		}
		tex, err := render.LoadTexture(m.path, a.TextureMaxSize)
		if err != nil {
			return nil, fmt.Errorf("load %s map: %w", m.name, err)
		}
		*m.dst = tex
	}

	if a.Fire != "" {
		sc.Fire, err = models.Load(a.Fire)
		if err != nil {
			return nil, fmt.Errorf("load fire mesh: %w", err)
		}
	}
	return sc, nil
}

var (
	flatNormal = render.RGB(128, 128, 255)
	fireColor  = render.RGB(255, 140, 32)
)

// Procedural builds a scene that needs no files: a striped, rippled
// sphere with a flame quad above it.
func Procedural() *Scene {
	return &Scene{
		Name: "procedural",
		Mesh: Sphere(10, 24, 48),
		Maps: gpu.Maps{
			Diffuse:  render.NewCheckerTexture(256, 128, 16, render.RGB(200, 60, 40), render.RGB(230, 220, 200)),
			Normal:   rippleNormals(256, 128, 12, 0.35),
			Specular: render.NewSolidTexture(render.RGB(128, 128, 128)),
			Gloss:    render.NewSolidTexture(render.RGB(150, 150, 150)),
		},
		Fire:    Quad(math3d.V3(0, 14, 0), 6),
		FireMap: flameTexture(32, 64),
	}
}

// Sphere generates a UV sphere centered on the origin. Triangles wind
// counter-clockwise seen from outside.
func Sphere(radius float64, rings, segments int) *models.Mesh {
	m := models.NewMesh("sphere")
	for i := 0; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= segments; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segments)
			n := math3d.V3(math.Sin(theta)*math.Cos(phi), math.Cos(theta), math.Sin(theta)*math.Sin(phi))
			m.Vertices = append(m.Vertices, models.Vertex{
				Position: n.Scale(radius),
				UV:       math3d.V2(float64(j)/float64(segments), float64(i)/float64(rings)),
				Normal:   n,
			})
		}
	}

	stride := uint32(segments + 1)
	for i := range uint32(rings) {
		for j := range uint32(segments) {
			a := i*stride + j
			b := a + stride
			c := b + 1
			d := a + 1
			if i != uint32(rings)-1 {
				m.Indices = append(m.Indices, a, c, b)
			}
			if i != 0 {
				m.Indices = append(m.Indices, a, d, c)
			}
		}
	}

	m.CalculateTangents()
	m.CalculateBounds()
	return m
}

// Quad generates a square of side size facing +z, centered on center.
func Quad(center math3d.Vec3, size float64) *models.Mesh {
	h := size / 2
	m := models.NewMesh("quad")
	corners := [4]struct{ x, y, u, v float64 }{
		{-h, -h, 0, 1},
		{h, -h, 1, 1},
		{h, h, 1, 0},
		{-h, h, 0, 0},
	}
	for _, c := range corners {
		m.Vertices = append(m.Vertices, models.Vertex{
			Position: center.Add(math3d.V3(c.x, c.y, 0)),
			UV:       math3d.V2(c.u, c.v),
			Normal:   math3d.V3(0, 0, 1),
			Tangent:  math3d.V3(1, 0, 0),
		})
	}
	m.Indices = []uint32{0, 1, 2, 0, 2, 3}
	m.CalculateBounds()
	return m
}

// rippleNormals encodes a tangent-space normal map of vertical ripples.
func rippleNormals(width, height, waves int, amplitude float64) *render.Texture {
	tex := render.NewTexture(width, height)
	for x := range width {
		nx := amplitude * math.Sin(2*math.Pi*float64(waves*x)/float64(width))
		n := math3d.V3(nx, 0, 1).Normalize()
		c := render.RGB(encodeUnit(n.X), encodeUnit(n.Y), encodeUnit(n.Z))
		for y := range height {
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}

func encodeUnit(v float64) uint8 {
	return uint8(math.Round((v + 1) / 2 * 255))
}

// flameTexture fades from yellow at the bottom to red at the top.
func flameTexture(width, height int) *render.Texture {
	tex := render.NewTexture(width, height)
	for y := range height {
		t := float64(y) / float64(height-1)
		c := render.RGB(255, uint8(60+160*t), uint8(32*t))
		for x := range width {
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}
