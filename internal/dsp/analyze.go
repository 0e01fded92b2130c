package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/olivier-w/wavescope/internal/audio"
)

// Frequency bounds for the spectral centroid, matching the rendered range.
const (
	centroidLowHz  = 100.0
	centroidHighHz = 22050.0
)

// DefaultRangeDB is the dB range mapped onto [0, 1] spectra.
const DefaultRangeDB = 110.0

// Analyzer computes per-column spectra. It holds an FFT plan and scratch
// buffers, so it is not safe for concurrent use; give each worker its own
// instance. The reader, window, and scale may be shared freely.
type Analyzer struct {
	reader  *audio.Reader
	window  Window
	scale   float64
	rangeDB float64
	fft     *fourier.FFT
	scratch []float64
	coeffs  []complex128
	lowLog  float64
	highLog float64
}

// NewAnalyzer builds an analyzer from a precomputed normalization scale
// (see ComputeScale). A rangeDB of zero or less selects DefaultRangeDB.
func NewAnalyzer(r *audio.Reader, w Window, scale, rangeDB float64) *Analyzer {
	if rangeDB <= 0 {
		rangeDB = DefaultRangeDB
	}
	return &Analyzer{
		reader:  r,
		window:  w,
		scale:   scale,
		rangeDB: rangeDB,
		fft:     fourier.NewFFT(w.Size),
		scratch: make([]float64, w.Size),
		lowLog:  math.Log10(centroidLowHz),
		highLog: math.Log10(centroidHighHz),
	}
}

// Analyze reads a window centered on seekPoint and returns the normalized
// spectral centroid and the dB-mapped spectrum, both in [0, 1]. The spectrum
// has Size/2+1 bins; each is the magnitude in [-rangeDB, 0] dB remapped so
// that 0 dB becomes 1 and the range floor becomes 0.
func (a *Analyzer) Analyze(seekPoint int64) (float64, []float64) {
	size := int64(a.window.Size)
	samples := a.reader.ReadWindow(seekPoint-size/2, size, true)
	for i, c := range a.window.Coeffs {
		a.scratch[i] = samples[i] * c
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.scratch)

	db := make([]float64, len(a.coeffs))
	var energy, weighted float64
	for i, c := range a.coeffs {
		mag := cmplx.Abs(c) * a.scale
		energy += mag
		weighted += mag * float64(i)

		v := 20 * math.Log10(mag+1e-60)
		if v < -a.rangeDB {
			v = -a.rangeDB
		} else if v > 0 {
			v = 0
		}
		db[i] = (v + a.rangeDB) / a.rangeDB
	}

	var centroid float64
	if energy > 1e-60 {
		hz := weighted / (energy * float64(len(a.coeffs)-1)) * float64(a.reader.SampleRate()) * 0.5
		hz = clamp(hz, centroidLowHz, centroidHighHz)
		centroid = (math.Log10(hz) - a.lowLog) / (a.highLog - a.lowLog)
	}
	return centroid, db
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
