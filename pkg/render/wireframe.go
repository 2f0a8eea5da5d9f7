package render

// Wireframe draws triangle edges of a transformed vertex buffer over a
// framebuffer. It skips the same triangles the rasterizer discards for
// leaving the clip volume, so the overlay matches the filled image.
type Wireframe struct {
	Color Color
}

// NewWireframe creates an overlay drawing in c.
func NewWireframe(c Color) *Wireframe {
	return &Wireframe{Color: c}
}

// Draw outlines every index triple and returns the number of triangles
// drawn.
func (w *Wireframe) Draw(fb *Framebuffer, buf []Vertex, indices []uint32) int {
	n := uint32(len(buf))
	width, height := float64(fb.Width), float64(fb.Height)
	drawn := 0

	for t := 0; t+2 < len(indices); t += 3 {
		tri := [3]uint32{indices[t], indices[t+1], indices[t+2]}
		if tri[0] >= n || tri[1] >= n || tri[2] >= n {
			continue
		}

		var xs, ys [3]int
		visible := true
		for k, idx := range tri {
			p := buf[idx].Position
			if !inClipVolume(p) {
				visible = false
				break
			}
			xs[k] = int((p.X + 1) / 2 * width)
			ys[k] = int((1 - p.Y) / 2 * height)
		}
		if !visible {
			continue
		}

		fb.DrawLine(xs[0], ys[0], xs[1], ys[1], w.Color)
		fb.DrawLine(xs[1], ys[1], xs[2], ys[2], w.Color)
		fb.DrawLine(xs[2], ys[2], xs[0], ys[0], w.Color)
		drawn++
	}
	return drawn
}
