package dsp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mjibson/go-dsp/window"
)

// Window holds the analysis window coefficients applied before each FFT.
// Built once, read-only afterward, safe to share across workers.
type Window struct {
	Size   int
	Kind   string
	Coeffs []float64
}

var windowFuncs = map[string]func(int) []float64{
	"hann":        window.Hann,
	"hamming":     window.Hamming,
	"blackman":    window.Blackman,
	"bartlett":    window.Bartlett,
	"flattop":     window.FlatTop,
	"rectangular": window.Rectangular,
}

// NewWindow builds the coefficient table for the named window function.
// Size must be a power of two.
func NewWindow(size int, kind string) (Window, error) {
	if size < 2 || size&(size-1) != 0 {
		return Window{}, fmt.Errorf("FFT size must be a power of two, got %d", size)
	}
	fn, ok := windowFuncs[kind]
	if !ok {
		return Window{}, fmt.Errorf("unknown window function %q (supported: %s)", kind, windowKindList())
	}
	return Window{Size: size, Kind: kind, Coeffs: fn(size)}, nil
}

func windowKindList() string {
	kinds := make([]string, 0, len(windowFuncs))
	for k := range windowFuncs {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ", ")
}
