package gpu

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/taigrr/duopipe/pkg/math3d"
	"github.com/taigrr/duopipe/pkg/models"
)

// VertexStride is the size in bytes of one packed vertex.
const VertexStride = 48

// Format is the component layout of a vertex element.
type Format int

const (
	Float2 Format = 2
	Float3 Format = 3
	Float4 Format = 4
)

// InputElement describes one attribute of the packed vertex.
type InputElement struct {
	Semantic string
	Format   Format
	Offset   int
}

// VertexLayout is the input layout matching PackVertices.
var VertexLayout = []InputElement{
	{"POSITION", Float4, 0},
	{"TEXCOORD", Float2, 16},
	{"NORMAL", Float3, 24},
	{"TANGENT", Float3, 36},
}

// PackVertices interleaves the mesh vertices as little-endian float32 in
// VertexLayout order. Position is written with w = 1.
func PackVertices(mesh *models.Mesh) []byte {
	buf := make([]byte, len(mesh.Vertices)*VertexStride)
	for i, v := range mesh.Vertices {
		b := buf[i*VertexStride : (i+1)*VertexStride]
		putVec3(b[0:], v.Position)
		putFloat(b[12:], 1)
		putFloat(b[16:], v.UV.X)
		putFloat(b[20:], v.UV.Y)
		putVec3(b[24:], v.Normal)
		putVec3(b[36:], v.Tangent)
	}
	return buf
}

// PackIndices writes the index buffer as little-endian uint32.
func PackIndices(indices []uint32) []byte {
	buf := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[4*i:], idx)
	}
	return buf
}

// UnpackFloat reads the float32 at byte offset off.
func UnpackFloat(b []byte, off int) float32 {
	return math32.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func putFloat(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math32.Float32bits(float32(v)))
}

func putVec3(b []byte, v math3d.Vec3) {
	putFloat(b[0:], v.X)
	putFloat(b[4:], v.Y)
	putFloat(b[8:], v.Z)
}
