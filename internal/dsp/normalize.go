package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/olivier-w/wavescope/internal/audio"
)

// scanBlock is the frame count per block for full-file scans.
const scanBlock = 4096

// ComputeScale makes one sequential first-channel pass over the source to
// find the peak absolute sample level, then returns a factor that maps both
// sample amplitude and FFT magnitude into [0, 1]. The FFT reference level is
// the response of the window to a DC signal. A decode fault truncates the
// scan and the data seen so far decides the scale; a silent source yields 1.
func ComputeScale(src audio.Source, w Window) float64 {
	ch := src.Channels()
	buf := make([]float64, scanBlock*ch)
	frames := src.Frames()

	var maxLevel float64
	for off := int64(0); off < frames; off += scanBlock {
		n, err := src.ReadAt(buf, off)
		for i := 0; i < n; i++ {
			if v := math.Abs(buf[i*ch]); v > maxLevel {
				maxLevel = v
			}
		}
		if err != nil || n == 0 {
			break
		}
	}

	if maxLevel <= 0 {
		return 1
	}
	return 1 / (maxLevel * maxFFT(w))
}

// maxFFT is the peak FFT magnitude of an all-ones signal under the window.
func maxFFT(w Window) float64 {
	dc := make([]float64, w.Size)
	copy(dc, w.Coeffs)

	var peak float64
	for _, c := range fourier.NewFFT(w.Size).Coefficients(nil, dc) {
		if m := cmplx.Abs(c); m > peak {
			peak = m
		}
	}
	return peak
}
