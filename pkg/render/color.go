package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGreen = color.RGBA{0, 255, 128, 255}
)

// RGB creates an opaque color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Color3 is a linear RGB color with unbounded float channels.
type Color3 struct {
	R, G, B float64
}

// C3 creates a Color3.
func C3(r, g, b float64) Color3 {
	return Color3{r, g, b}
}

// Gray returns a Color3 with all channels set to v.
func Gray(v float64) Color3 {
	return Color3{v, v, v}
}

// Add returns the channel-wise sum.
func (c Color3) Add(o Color3) Color3 {
	return Color3{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the channel-wise product.
func (c Color3) Mul(o Color3) Color3 {
	return Color3{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every channel by s.
func (c Color3) Scale(s float64) Color3 {
	return Color3{c.R * s, c.G * s, c.B * s}
}

// MaxToOne scales the color down so that its largest channel is at most
// one. Hue is preserved.
func (c Color3) MaxToOne() Color3 {
	m := math.Max(c.R, math.Max(c.G, c.B))
	if m <= 1 {
		return c
	}
	return c.Scale(1 / m)
}

// RGB8 quantizes the color to 8-bit channels, clamping to [0, 1] first.
func (c Color3) RGB8() (r, g, b uint8) {
	return quantize(c.R), quantize(c.G), quantize(c.B)
}

func quantize(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// Color3FromRGBA converts an 8-bit color to [0, 1] channels.
func Color3FromRGBA(c Color) Color3 {
	return Color3{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}
