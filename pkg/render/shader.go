package render

import (
	"github.com/taigrr/duopipe/pkg/math3d"
)

// Light is a single directional light.
type Light struct {
	Direction math3d.Vec3 // Direction the light travels, unit length
	Color     Color3
	Intensity float64
}

// DefaultLight returns the white key light used by both pipelines.
func DefaultLight() Light {
	return Light{
		Direction: math3d.V3(0.577, -0.577, -0.577),
		Color:     Gray(1),
		Intensity: 7,
	}
}

// PixelShader shades fragments with tangent-space normal mapping, a
// diffuse map and a Phong specular lobe modulated by specular and gloss
// maps.
type PixelShader struct {
	Diffuse  Sampler
	Normal   Sampler
	Specular Sampler
	Gloss    Sampler

	Light     Light
	Shininess float64 // Multiplies the gloss map's red channel
	Ambient   Color3
}

// NewPixelShader creates a shader over the four maps with default light,
// shininess 25 and ambient 0.025.
func NewPixelShader(diffuse, normal, specular, gloss Sampler) *PixelShader {
	return &PixelShader{
		Diffuse:   diffuse,
		Normal:    normal,
		Specular:  specular,
		Gloss:     gloss,
		Light:     DefaultLight(),
		Shininess: 25,
		Ambient:   Gray(0.025),
	}
}

// Shade implements FragmentShader.
func (s *PixelShader) Shade(v Vertex) Color3 {
	n := s.perturbedNormal(v)
	l := s.Light.Direction

	cosTheta := math3d.Clamp(n.Dot(l.Negate()), 0, 1)

	gloss := s.Gloss.Sample(v.UV).R
	spec := Phong(s.Specular.Sample(v.UV), s.Shininess*gloss, l, v.ViewDir, v.Normal)

	diffuse := s.Diffuse.Sample(v.UV).Add(spec).Add(s.Ambient).MaxToOne()

	return Lambert(cosTheta, s.Light.Color.Scale(s.Light.Intensity).Mul(diffuse))
}

// perturbedNormal maps the normal-map sample from tangent space into
// world space.
func (s *PixelShader) perturbedNormal(v Vertex) math3d.Vec3 {
	c := s.Normal.Sample(v.UV)
	local := math3d.V3(2*c.R-1, 2*c.G-1, 2*c.B-1)

	t, n := v.Tangent, v.Normal
	b := t.Cross(n)
	return t.Scale(local.X).Add(b.Scale(local.Y)).Add(n.Scale(local.Z)).Normalize()
}

// FlatShader returns one color for every fragment.
type FlatShader struct {
	Color Color3
}

// Shade implements FragmentShader.
func (s FlatShader) Shade(Vertex) Color3 {
	return s.Color
}
