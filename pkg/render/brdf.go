package render

import (
	"math"

	"github.com/taigrr/duopipe/pkg/math3d"
)

// Lambert returns the diffuse reflectance cd·kd/π.
func Lambert(kd float64, cd Color3) Color3 {
	return cd.Scale(kd / math.Pi)
}

// Phong returns the specular lobe ks·cos(α)^exp, where α is the angle
// between l reflected about n and the direction back toward the viewer.
// l and v point away from the light and away from the eye respectively.
func Phong(ks Color3, exp float64, l, v, n math3d.Vec3) Color3 {
	r := l.Reflect(n)
	cosA := max(0, r.Dot(v.Negate()))
	return ks.Scale(math.Pow(cosA, exp))
}
