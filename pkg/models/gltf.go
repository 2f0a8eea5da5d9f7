package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/duopipe/pkg/math3d"
)

// LoadGLTF loads every triangle primitive of a glTF or GLB file into one
// mesh. glTF front faces are counter-clockwise, which is also the
// rasterizer's front-face winding, so indices are kept in file order.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := appendGLTFMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	hadTangents := false
	for _, v := range mesh.Vertices {
		if v.Tangent.LenSq() > 0 {
			hadTangents = true
			break
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	if !hadTangents {
		mesh.CalculateTangents()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// LoadGLTFImage returns the first image embedded in (or referenced by) a
// glTF document, or nil when there is none.
func LoadGLTFImage(path string) (image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	for _, img := range doc.Images {
		if img.BufferView == nil {
			continue
		}
		bv := doc.BufferViews[*img.BufferView]
		data := doc.Buffers[bv.Buffer].Data
		if data == nil {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]))
		if err != nil {
			return nil, fmt.Errorf("decode image %q: %w", img.Name, err)
		}
		return decoded, nil
	}
	return nil, nil
}

func appendGLTFMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readFloats(doc, posIdx, 3)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals, uvs, tangents [][]float64
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readFloats(doc, idx, 3); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readFloats(doc, idx, 2); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}
		if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
			if tangents, err = readFloats(doc, idx, 4); err != nil {
				return fmt.Errorf("read tangents: %w", err)
			}
		}

		base := uint32(len(mesh.Vertices))
		for i, p := range positions {
			v := Vertex{Position: math3d.V3(p[0], p[1], p[2])}
			if i < len(normals) {
				v.Normal = math3d.V3(normals[i][0], normals[i][1], normals[i][2])
			}
			if i < len(uvs) {
				// glTF already has v=0 at the top of the image.
				v.UV = math3d.V2(uvs[i][0], uvs[i][1])
			}
			if i < len(tangents) {
				v.Tangent = math3d.V3(tangents[i][0], tangents[i][1], tangents[i][2])
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		if prim.Indices == nil {
			for i := range uint32(len(positions)) {
				mesh.Indices = append(mesh.Indices, base+i)
			}
			continue
		}
		indices, err := readIndices(doc, *prim.Indices)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
		for _, idx := range indices {
			mesh.Indices = append(mesh.Indices, base+idx)
		}
	}
	return nil
}

// accessorBytes returns the buffer backing an accessor together with the
// start offset and element stride.
func accessorBytes(doc *gltf.Document, acc *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if acc.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bv := doc.BufferViews[*acc.BufferView]
	data := doc.Buffers[bv.Buffer].Data
	if data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %d has no data", bv.Buffer)
	}

	start := bv.ByteOffset + acc.ByteOffset
	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if acc.Count > 0 && start+(acc.Count-1)*stride+elemSize > len(data) {
		return nil, 0, 0, fmt.Errorf("accessor overruns buffer (%d bytes)", len(data))
	}
	return data, start, stride, nil
}

// readFloats reads a float32 VECn accessor.
func readFloats(doc *gltf.Document, idx, n int) ([][]float64, error) {
	acc := doc.Accessors[idx]
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", acc.ComponentType)
	}
	if got := acc.Type.Components(); int(got) != n {
		return nil, fmt.Errorf("expected %d components, got %v", n, acc.Type)
	}

	data, start, stride, err := accessorBytes(doc, acc, 4*n)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, acc.Count)
	for i := range acc.Count {
		off := start + i*stride
		row := make([]float64, n)
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[off+4*j:])
			row[j] = float64(math.Float32frombits(bits))
		}
		out[i] = row
	}
	return out, nil
}

// readIndices reads a SCALAR index accessor of any unsigned width.
func readIndices(doc *gltf.Document, idx int) ([]uint32, error) {
	acc := doc.Accessors[idx]

	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", acc.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, acc, size)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, acc.Count)
	for i := range acc.Count {
		b := data[start+i*stride:]
		switch size {
		case 1:
			out[i] = uint32(b[0])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		case 4:
			out[i] = binary.LittleEndian.Uint32(b)
		}
	}
	return out, nil
}
