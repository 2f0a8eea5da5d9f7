package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/duopipe/pkg/math3d"
)

// objCorner identifies one face corner by its 0-based position, texcoord
// and normal indices (-1 when absent).
type objCorner struct {
	p, t, n int
}

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ reads OBJ geometry from r. Texture V coordinates are flipped
// (stored as 1-v) so that v=0 is the top row of the image. Polygons are
// fan-triangulated and identical corners share a vertex.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		normals   []math3d.Vec3
	)
	mesh := NewMesh(name)
	seen := make(map[objCorner]uint32)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math3d.V3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, math3d.V2(v[0], 1-v[1]))
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math3d.V3(v[0], v[1], v[2]))
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners", lineNo)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx, ok := seen[c]
				if !ok {
					idx = uint32(len(mesh.Vertices))
					seen[c] = idx
					mesh.Vertices = append(mesh.Vertices, cornerVertex(c, positions, uvs, normals))
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				mesh.Indices = append(mesh.Indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := mesh.finish(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func cornerVertex(c objCorner, positions []math3d.Vec3, uvs []math3d.Vec2, normals []math3d.Vec3) Vertex {
	v := Vertex{Position: positions[c.p]}
	if c.t >= 0 {
		v.UV = uvs[c.t]
	}
	if c.n >= 0 {
		v.Normal = normals[c.n]
	}
	return v
}

// parseCorner parses "p", "p/t", "p//n" or "p/t/n". Indices are 1-based;
// negative indices count back from the end of the list read so far.
func parseCorner(tok string, np, nt, nn int) (objCorner, error) {
	parts := strings.Split(tok, "/")
	c := objCorner{p: -1, t: -1, n: -1}

	var err error
	if c.p, err = objIndex(parts[0], np); err != nil {
		return c, fmt.Errorf("position index %q: %w", tok, err)
	}
	if c.p < 0 {
		return c, fmt.Errorf("corner %q has no position", tok)
	}
	if len(parts) > 1 {
		if c.t, err = objIndex(parts[1], nt); err != nil {
			return c, fmt.Errorf("texcoord index %q: %w", tok, err)
		}
	}
	if len(parts) > 2 {
		if c.n, err = objIndex(parts[2], nn); err != nil {
			return c, fmt.Errorf("normal index %q: %w", tok, err)
		}
	}
	return c, nil
}

func objIndex(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexRange, i, count)
	}
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
