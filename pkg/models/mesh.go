// Package models holds indexed triangle meshes and the loaders that
// produce them.
package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/duopipe/pkg/math3d"
)

var (
	// ErrIndexCount is returned when the index buffer is not a whole
	// number of triangles.
	ErrIndexCount = errors.New("index count is not a multiple of 3")
	// ErrIndexRange is returned when an index points past the vertex buffer.
	ErrIndexRange = errors.New("index out of range")
	// ErrUnsupportedFormat is returned by Load for unknown extensions.
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
)

// Vertex holds the model-space attributes of one vertex.
type Vertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
}

// Mesh is an indexed triangle list. Every consecutive triple of Indices
// forms one triangle; indices are 0-based.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Load reads a mesh from disk, choosing the loader by file extension.
// The result is validated and carries normalized tangents.
func Load(path string) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err = LoadOBJ(path)
	case ".glb", ".gltf":
		mesh, err = LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return mesh, nil
}

// Validate checks that Indices form a triangle list of in-range indices.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %w (%d)", m.Name, ErrIndexCount, len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: %w: indices[%d] = %d, %d vertices", m.Name, ErrIndexRange, i, idx, n)
		}
	}
	return nil
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// VertexAttributes returns the attributes of vertex i.
func (m *Mesh) VertexAttributes(i int) (pos, normal, tangent math3d.Vec3, uv math3d.Vec2) {
	v := &m.Vertices[i]
	return v.Position, v.Normal, v.Tangent, v.UV
}

// Bounds returns the model-space bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (m *Mesh) HasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// CalculateSmoothNormals replaces every normal with the area-weighted
// average of the face normals that share the vertex.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	for t := range m.TriangleCount() {
		tri := m.Triangle(t)
		p0 := m.Vertices[tri[0]].Position
		p1 := m.Vertices[tri[1]].Position
		p2 := m.Vertices[tri[2]].Position

		// Unnormalized, so larger faces weigh more.
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range tri {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// CalculateTangents derives per-vertex tangents from positions and UVs.
// Each triangle's tangent is accumulated into its shared vertices, then
// every tangent is made perpendicular to the vertex normal and
// normalized. Triangles with degenerate UV mapping contribute nothing.
func (m *Mesh) CalculateTangents() {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Vec3{}
	}

	for t := range m.TriangleCount() {
		tri := m.Triangle(t)
		v0, v1, v2 := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]

		edge0 := v1.Position.Sub(v0.Position)
		edge1 := v2.Position.Sub(v0.Position)
		du := math3d.V2(v1.UV.X-v0.UV.X, v2.UV.X-v0.UV.X)
		dv := math3d.V2(v1.UV.Y-v0.UV.Y, v2.UV.Y-v0.UV.Y)

		denom := du.Cross(dv)
		if denom == 0 {
			continue
		}
		r := 1 / denom
		tangent := edge0.Scale(dv.Y).Sub(edge1.Scale(dv.X)).Scale(r)

		for _, idx := range tri {
			m.Vertices[idx].Tangent = m.Vertices[idx].Tangent.Add(tangent)
		}
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Tangent = v.Tangent.Reject(v.Normal).Normalize()
	}
}

// Transform applies a transformation matrix to all positions, and its
// rotational part to normals and tangents.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulPoint(v.Position)
		v.Normal = mat.MulDir(v.Normal).Normalize()
		v.Tangent = mat.MulDir(v.Tangent).Normalize()
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it so its largest
// dimension equals size.
func (m *Mesh) Normalize(size float64) {
	m.CalculateBounds()
	dims := m.Size()
	largest := max(dims.X, dims.Y, dims.Z)
	if largest == 0 {
		return
	}
	s := size / largest
	m.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]Vertex, len(m.Vertices)),
		Indices:   make([]uint32, len(m.Indices)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	return clone
}

// finish runs the post-load steps shared by every loader.
func (m *Mesh) finish() error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !m.HasNormals() {
		m.CalculateSmoothNormals()
	}
	m.CalculateTangents()
	m.CalculateBounds()
	return nil
}
