package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/taigrr/duopipe/pkg/math3d"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrEmptyTexture is returned when a decoded image has no pixels.
var ErrEmptyTexture = errors.New("texture has no pixels")

// Sampler returns the color of a texture at normalized coordinates.
type Sampler interface {
	Sample(uv math3d.Vec2) Color3
}

// Texture holds a decoded 2D image in row-major order.
type Texture struct {
	Width  int
	Height int
	Pixels []Color
}

// NewTexture creates a black texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture decodes an image file. When maxSize is positive, images
// larger than maxSize on either side are downscaled to fit.
func LoadTexture(path string, maxSize int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if maxSize > 0 {
		img = fitImage(img, maxSize)
	}
	tex, err := TextureFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tex, nil
}

// TextureFromImage copies any image into a texture.
func TextureFromImage(img image.Image) (*Texture, error) {
	rgba := clone.AsRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyTexture
	}

	tex := NewTexture(w, h)
	for y := range h {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*w]
		for x := range w {
			p := row[4*x : 4*x+4]
			tex.Pixels[y*w+x] = Color{R: p[0], G: p[1], B: p[2], A: p[3]}
		}
	}
	return tex, nil
}

// fitImage scales img down so neither side exceeds maxSize.
func fitImage(img image.Image, maxSize int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}
	s := float64(maxSize) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*s)))
	nh := max(1, int(math.Round(float64(h)*s)))
	return transform.Resize(img, nw, nh, transform.Linear)
}

// NewSolidTexture creates a 1x1 texture of a single color.
func NewSolidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.Pixels[y*width+x] = c1
			} else {
				tex.Pixels[y*width+x] = c2
			}
		}
	}
	return tex
}

// At returns the pixel at (x, y), or transparent black outside the image.
func (t *Texture) At(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the nearest texel to uv as [0, 1] RGB. u grows to the
// right and v grows downwards. Coordinates outside the texture are
// clamped on the flattened index, so small overshoots wrap to the
// neighbouring row rather than failing. An empty texture samples black.
func (t *Texture) Sample(uv math3d.Vec2) Color3 {
	if len(t.Pixels) == 0 {
		return Color3{}
	}
	x := int(math.Round(uv.X * float64(t.Width)))
	y := int(math.Round(uv.Y * float64(t.Height)))

	idx := x + y*t.Width
	if idx < 0 {
		idx = 0
	} else if idx >= len(t.Pixels) {
		idx = len(t.Pixels) - 1
	}
	return Color3FromRGBA(t.Pixels[idx])
}
