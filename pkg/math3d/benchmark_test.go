package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Reject(b *testing.B) {
	v := V3(1, 2, 3)
	n := V3(0, 1, 0)

	for b.Loop() {
		_ = v.Reject(n)
	}
}

// BenchmarkWorldViewProjection mirrors the per-frame matrix chain of the
// projection stage.
func BenchmarkWorldViewProjection(b *testing.B) {
	world := Translate(V3(0, 0, -50)).Mul(RotateY(0.3))
	view := Translate(V3(0, 0, -5)).Inverse()
	proj := Scale(V3(2, 2, 1))

	for b.Loop() {
		_ = proj.Mul(view).Mul(world)
	}
}
