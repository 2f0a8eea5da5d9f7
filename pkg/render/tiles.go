package render

import (
	"golang.org/x/sync/errgroup"
)

// band is a half-open row range [Y0, Y1).
type band struct {
	Y0, Y1 int
}

// splitBands divides height rows into at most n contiguous bands of
// near-equal size.
func splitBands(height, n int) []band {
	if height <= 0 {
		return nil
	}
	n = max(1, min(n, height))
	rows := (height + n - 1) / n

	bands := make([]band, 0, n)
	for y := 0; y < height; y += rows {
		bands = append(bands, band{y, min(y+rows, height)})
	}
	return bands
}

// fill rasterizes the current setups. With more than one worker each band
// runs on its own goroutine; every band still walks triangles in index
// order, so the result matches the serial path pixel for pixel.
func (r *Rasterizer) fill(shader FragmentShader) Stats {
	if r.Workers < 2 {
		return r.rasterizeRows(0, r.height, shader)
	}

	bands := splitBands(r.height, r.Workers)
	stats := make([]Stats, len(bands))

	var g errgroup.Group
	g.SetLimit(r.Workers)
	for i, b := range bands {
		g.Go(func() error {
			stats[i] = r.rasterizeRows(b.Y0, b.Y1, shader)
			return nil
		})
	}
	_ = g.Wait() // Band workers never fail

	var total Stats
	for _, s := range stats {
		total.add(s)
	}
	return total
}
