package render

import (
	"fmt"
	"math"

	"github.com/olivier-w/wavescope/internal/dsp"
)

// Waveform renders the peak envelope of a sound, one anti-aliased vertical
// segment per column, connected to the previous column so the trace reads
// as a single line. Columns must be drawn left to right.
type Waveform struct {
	canvas  *Canvas
	palette Palette
	prevX   int
	prevY   float64
	hasPrev bool
}

// NewWaveform validates the geometry and prepares a background-filled
// canvas. Height must be odd so zero amplitude maps to a single center row.
func NewWaveform(width, height int, style Style) (*Waveform, error) {
	if width < 1 {
		return nil, fmt.Errorf("waveform width must be positive, got %d", width)
	}
	if height < 1 || height%2 == 0 {
		return nil, fmt.Errorf("waveform height must be odd, got %d", height)
	}
	pal, bg := WaveformPalette(style)
	return &Waveform{
		canvas:  NewCanvas(width, height, bg),
		palette: pal,
	}, nil
}

// DrawColumn draws the peak pair for column x, colored by the normalized
// spectral centroid. Peak values are in [-1, 1]; a 2-pixel margin at the
// top and bottom is kept clear for the anti-aliasing rows.
func (w *Waveform) DrawColumn(x int, pair dsp.PeakPair, centroid float64) {
	h := float64(w.canvas.Height())
	y1 := h*0.5 - pair.First*(h-4)*0.5
	y2 := h*0.5 - pair.Second*(h-4)*0.5

	idx := int(math.Round(centroid * 255))
	if idx < 0 {
		idx = 0
	} else if idx > 255 {
		idx = 255
	}
	col := w.palette[idx]

	if w.hasPrev {
		w.drawLine(w.prevX, int(w.prevY), x, int(y1), col)
	}
	w.drawLine(x, int(y1), x, int(y2), col)
	w.prevX, w.prevY, w.hasPrev = x, y2, true

	w.antiAlias(x, y1, y2, col)
}

// Finalize lightens the center row so the zero-amplitude line stays
// visible, then returns the canvas for encoding.
func (w *Waveform) Finalize() *Canvas {
	mid := w.canvas.Height() / 2
	for x := 0; x < w.canvas.Width(); x++ {
		w.canvas.Lighten(x, mid, 25)
	}
	return w.canvas
}

// drawLine rasterizes a segment with Bresenham stepping; the canvas clips
// anything out of bounds.
func (w *Waveform) drawLine(x0, y0, x1, y1 int, col RGB) {
	dx := abs(x1 - x0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	dy := -abs(y1 - y0)
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		w.canvas.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// antiAlias softens the segment ends with one blended pixel past each
// extreme, weighted by the sub-pixel remainder. Whole-pixel ends need no
// softening and are skipped.
func (w *Waveform) antiAlias(x int, y1, y2 float64, col RGB) {
	yMax := math.Max(y1, y2)
	row := int(yMax)
	if alpha := yMax - float64(row); alpha > 0 && alpha < 1 && row+1 < w.canvas.Height() {
		w.canvas.Blend(x, row+1, col, alpha)
	}
	yMin := math.Min(y1, y2)
	row = int(yMin)
	if alpha := 1 - (yMin - float64(row)); alpha > 0 && alpha < 1 && row-1 >= 0 {
		w.canvas.Blend(x, row-1, col, alpha)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
