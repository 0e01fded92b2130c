package render

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
)

// Canvas is a bounds-checked RGB pixel buffer backed by an RGBA image.
// Writes outside the canvas are dropped instead of panicking, so callers
// can rasterize without clipping first.
type Canvas struct {
	img    *image.RGBA
	width  int
	height int
}

// NewCanvas allocates a canvas filled with the given color.
func NewCanvas(width, height int, fill RGB) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			row[x*4] = fill.R
			row[x*4+1] = fill.G
			row[x*4+2] = fill.B
			row[x*4+3] = 0xff
		}
	}
	return &Canvas{img: img, width: width, height: height}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Set writes a pixel, ignoring out-of-bounds coordinates.
func (c *Canvas) Set(x, y int, col RGB) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	o := c.img.PixOffset(x, y)
	c.img.Pix[o] = col.R
	c.img.Pix[o+1] = col.G
	c.img.Pix[o+2] = col.B
	c.img.Pix[o+3] = 0xff
}

// At reads a pixel; out-of-bounds reads return black.
func (c *Canvas) At(x, y int) RGB {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return RGB{}
	}
	o := c.img.PixOffset(x, y)
	return RGB{R: c.img.Pix[o], G: c.img.Pix[o+1], B: c.img.Pix[o+2]}
}

// Blend mixes col into the existing pixel with weight alpha in [0, 1].
func (c *Canvas) Blend(x, y int, col RGB, alpha float64) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.Set(x, y, blend(c.At(x, y), col, alpha))
}

// Lighten adds delta to each channel of a pixel, saturating at the channel
// bounds.
func (c *Canvas) Lighten(x, y, delta int) {
	px := c.At(x, y)
	add := func(v uint8) uint8 {
		n := int(v) + delta
		if n > 255 {
			n = 255
		} else if n < 0 {
			n = 0
		}
		return uint8(n)
	}
	c.Set(x, y, RGB{R: add(px.R), G: add(px.G), B: add(px.B)})
}

// EncodePNG writes the canvas as a PNG image.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// EncodeJPEG writes the canvas as a JPEG image at the given quality.
func (c *Canvas) EncodeJPEG(w io.Writer, quality int) error {
	return jpeg.Encode(w, c.img, &jpeg.Options{Quality: quality})
}

// blend mixes two colors, truncating to integer channel values.
func blend(existing, col RGB, alpha float64) RGB {
	mix := func(e, n uint8) uint8 {
		return uint8((1-alpha)*float64(e) + alpha*float64(n))
	}
	return RGB{
		R: mix(existing.R, col.R),
		G: mix(existing.G, col.G),
		B: mix(existing.B, col.B),
	}
}
