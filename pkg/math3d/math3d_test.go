package math3d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(V3(1, -2, 3))},
		{"rotate", RotateY(0.7).Mul(RotateX(-0.3))},
		{"axis rotate", Rotate(V3(1, 1, 0), 1.1)},
		{"affine", Translate(V3(4, 5, 6)).Mul(Rotate(V3(0, 1, 1), 0.4)).Mul(Scale(V3(2, 3, 0.5)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.Mul(tt.m.Inverse())
			assert.True(t, got.ApproxEqual(Identity(), eps), "m * m^-1 = %v", got)
		})
	}
}

func TestInverseSingular(t *testing.T) {
	assert.Equal(t, Identity(), Scale(V3(1, 0, 1)).Inverse())
}

func TestRotateYForward(t *testing.T) {
	got := RotateY(math.Pi / 2).MulDir(Forward())
	assert.True(t, got.ApproxEqual(V3(-1, 0, 0), eps), "got %v", got)
}

func TestRotateMatchesAxisRotations(t *testing.T) {
	assert.True(t, Rotate(V3(0, 1, 0), 0.8).ApproxEqual(RotateY(0.8), eps))
	assert.True(t, Rotate(V3(1, 0, 0), -0.4).ApproxEqual(RotateX(-0.4), eps))
}

func TestFromColumns(t *testing.T) {
	m := FromColumns(V4(1, 2, 3, 4), V4(5, 6, 7, 8), V4(9, 10, 11, 12), V4(13, 14, 15, 16))
	assert.Equal(t, V4(9, 10, 11, 12), m.Column(2))
	assert.Equal(t, V3(13, 14, 15), m.Translation())
	assert.Equal(t, m, m.Transpose().Transpose())
}

func TestPointAndDirection(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	assert.Equal(t, V3(2, 3, 4), m.MulPoint(V3(1, 1, 1)))
	assert.Equal(t, V3(1, 1, 1), m.MulDir(V3(1, 1, 1)))
}

func TestVec3Reject(t *testing.T) {
	n := V3(0, 0, 1)
	r := V3(3, 4, 5).Reject(n)
	assert.Equal(t, V3(3, 4, 0), r)
	assert.InDelta(t, 0, r.Dot(n), eps)
}

func TestVec3Reflect(t *testing.T) {
	got := V3(1, -1, 0).Reflect(V3(0, 1, 0))
	assert.Equal(t, V3(1, 1, 0), got)
}

func TestVec2Cross(t *testing.T) {
	assert.Equal(t, 1.0, V2(1, 0).Cross(V2(0, 1)))
	assert.Equal(t, -1.0, V2(0, 1).Cross(V2(1, 0)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 1.0, Clamp(7, 0, 1))
	assert.Equal(t, 0.25, Clamp(0.25, 0, 1))
}
