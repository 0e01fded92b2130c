package render

import (
	"fmt"
	"math"
)

// Spectrogram renders dB spectra as one column per time step. Rows map to
// frequency on a log scale between 100 Hz and 22050 Hz, low frequencies at
// the bottom of the image.
type Spectrogram struct {
	canvas  *Canvas
	palette Palette
	rows    []binWeight
}

// binWeight places a canvas row between two adjacent spectrum bins.
type binWeight struct {
	bin   int
	alpha float64
}

// NewSpectrogram validates the geometry and precomputes the row-to-bin
// lookup for the given FFT size.
func NewSpectrogram(width, height, fftSize int) (*Spectrogram, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid spectrogram size %dx%d", width, height)
	}
	pal := SpectrogramPalette()
	return &Spectrogram{
		canvas:  NewCanvas(width, height, pal[0]),
		palette: pal,
		rows:    binLookup(height, fftSize),
	}, nil
}

// DrawColumn writes one spectrum column at x. The spectrum holds normalized
// dB values in [0, 1], one per FFT bin.
func (s *Spectrogram) DrawColumn(x int, spectrum []float64) {
	h := s.canvas.Height()
	for y, bw := range s.rows {
		v := (1-bw.alpha)*spectrum[bw.bin] + bw.alpha*spectrum[bw.bin+1]
		idx := int(v * 255)
		if idx < 0 {
			idx = 0
		} else if idx > 255 {
			idx = 255
		}
		s.canvas.Set(x, h-1-y, s.palette[idx])
	}
}

// Finalize returns the canvas for encoding.
func (s *Spectrogram) Finalize() *Canvas {
	return s.canvas
}

// binLookup precomputes the fractional spectrum bin for each row, bottom
// row first. Rows whose frequency lands past half the FFT size have no
// spectral resolution left; they are omitted and keep the background color.
func binLookup(height, fftSize int) []binWeight {
	lowLog := math.Log10(100)
	highLog := math.Log10(22050)
	span := float64(height - 1)
	if span < 1 {
		span = 1
	}
	rows := make([]binWeight, 0, height)
	for y := 0; y < height; y++ {
		freq := math.Pow(10, lowLog+float64(y)/span*(highLog-lowLog))
		bin := freq / 22050 * float64(fftSize/2+1)
		if bin >= float64(fftSize/2) {
			break
		}
		rows = append(rows, binWeight{bin: int(bin), alpha: bin - math.Floor(bin)})
	}
	return rows
}
