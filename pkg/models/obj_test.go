package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/duopipe/pkg/math3d"
)

const quadOBJ = `# unit quad facing +z
v -1 -1 0
v  1 -1 0
v  1  1 0
v -1  1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad")
	require.NoError(t, err)

	assert.Equal(t, 4, mesh.VertexCount())
	assert.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)

	// v is flipped on import.
	assert.Equal(t, math3d.V2(0, 1), mesh.Vertices[0].UV)
	assert.Equal(t, math3d.V2(1, 0), mesh.Vertices[2].UV)

	assert.Equal(t, math3d.V3(-1, -1, 0), mesh.BoundsMin)
	assert.Equal(t, math3d.V3(1, 1, 0), mesh.BoundsMax)
}

func TestParseOBJCornerForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
f -3 -2 -1
`
	mesh, err := ParseOBJ(strings.NewReader(src), "forms")
	require.NoError(t, err)

	assert.Equal(t, 2, mesh.TriangleCount())
	// Corners without a normal are distinct from corners with one.
	assert.Equal(t, 6, mesh.VertexCount())
	assert.Equal(t, math3d.V3(0, 0, 1), mesh.Vertices[0].Normal)
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad float", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src), tt.name)
			assert.Error(t, err)
		})
	}
}

func TestTangentsFollowU(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad")
	require.NoError(t, err)

	for i, v := range mesh.Vertices {
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-9, "vertex %d tangent not unit", i)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-9, "vertex %d tangent not orthogonal", i)
		// u grows along +x.
		assert.True(t, v.Tangent.ApproxEqual(math3d.V3(1, 0, 0), 1e-9), "vertex %d tangent %v", i, v.Tangent)
	}
}

func TestTangentsOrthogonalized(t *testing.T) {
	mesh := &Mesh{
		Vertices: []Vertex{
			{Position: math3d.V3(0, 0, 0), UV: math3d.V2(0, 0), Normal: math3d.V3(0, 1, 1).Normalize()},
			{Position: math3d.V3(1, 0, 0), UV: math3d.V2(1, 0), Normal: math3d.V3(0, 1, 1).Normalize()},
			{Position: math3d.V3(0, 1, 0), UV: math3d.V2(0, 1), Normal: math3d.V3(1, 0, 1).Normalize()},
		},
		Indices: []uint32{0, 1, 2},
	}
	mesh.CalculateTangents()

	for _, v := range mesh.Vertices {
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-9)
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-9)
	}
}

func TestTangentsDegenerateUV(t *testing.T) {
	mesh := &Mesh{
		Vertices: []Vertex{
			{Position: math3d.V3(0, 0, 0), Normal: math3d.V3(0, 0, 1)},
			{Position: math3d.V3(1, 0, 0), Normal: math3d.V3(0, 0, 1)},
			{Position: math3d.V3(0, 1, 0), Normal: math3d.V3(0, 0, 1)},
		},
		Indices: []uint32{0, 1, 2},
	}
	mesh.CalculateTangents()

	for _, v := range mesh.Vertices {
		assert.Equal(t, math3d.Vec3{}, v.Tangent)
	}
}

func TestSmoothNormalsGenerated(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "tri")
	require.NoError(t, err)

	for _, v := range mesh.Vertices {
		assert.True(t, v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-9))
	}
}
