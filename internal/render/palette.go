package render

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// PaletteSize is the number of interpolated entries in a rendering palette.
const PaletteSize = 256

// Palette is an interpolated color table indexed by [0, len-1].
type Palette []RGB

// RampKind selects how waveform palette anchors are produced.
type RampKind uint8

const (
	RampFixed RampKind = iota // hand-picked anchor list
	RampHSL                   // procedural hue sweep
)

// Style is the waveform palette selection: anchor generation plus an
// optional desaturated variant on a light background.
type Style struct {
	Ramp        RampKind
	Desaturated bool
}

// ParseStyle maps a palette name to a Style.
func ParseStyle(name string) (Style, error) {
	switch name {
	case "anchor-fixed":
		return Style{Ramp: RampFixed}, nil
	case "hsl-ramp":
		return Style{Ramp: RampHSL}, nil
	case "anchor-fixed-desaturated":
		return Style{Ramp: RampFixed, Desaturated: true}, nil
	case "hsl-ramp-desaturated":
		return Style{Ramp: RampHSL, Desaturated: true}, nil
	}
	return Style{}, fmt.Errorf("unknown palette %q (supported: anchor-fixed, hsl-ramp, anchor-fixed-desaturated, hsl-ramp-desaturated)", name)
}

var fixedAnchors = []RGB{
	{50, 0, 200},
	{0, 220, 80},
	{255, 224, 0},
	{255, 70, 0},
}

// spectrogramAnchors is the fixed heat ramp used for spectrogram columns.
var spectrogramAnchors = []RGB{
	{0, 0, 0},
	{14, 17, 16},
	{40, 50, 76},
	{90, 180, 100},
	{224, 224, 44},
	{255, 60, 30},
	{255, 255, 255},
}

var (
	darkBackground  = RGB{0, 0, 0}
	lightBackground = RGB{213, 217, 221}
)

// WaveformPalette builds the 256-entry table and background color for a
// style. The desaturated fixed variant keeps only the first three anchors.
func WaveformPalette(style Style) (Palette, RGB) {
	switch {
	case style.Ramp == RampFixed && !style.Desaturated:
		return Interpolate(fixedAnchors, PaletteSize), darkBackground
	case style.Ramp == RampFixed:
		anchors := make([]RGB, 3)
		for i, c := range fixedAnchors[:3] {
			anchors[i] = desaturate(c, 0.7)
		}
		return Interpolate(anchors, PaletteSize), lightBackground
	case !style.Desaturated:
		return Interpolate(hslAnchors(), PaletteSize), darkBackground
	default:
		anchors := hslAnchors()
		for i, c := range anchors {
			anchors[i] = desaturate(c, 0.8)
		}
		return Interpolate(anchors, PaletteSize), lightBackground
	}
}

// SpectrogramPalette builds the 256-entry table for spectrogram rendering.
func SpectrogramPalette() Palette {
	return Interpolate(spectrogramAnchors, PaletteSize)
}

// Interpolate expands anchor colors into a table of count entries by linear
// per-channel blending, truncating to integer channel values. Entry 0 is
// the first anchor and entry count-1 the last.
func Interpolate(anchors []RGB, count int) Palette {
	pal := make(Palette, count)
	for i := range pal {
		t := float64(i*(len(anchors)-1)) / float64(count-1)
		idx := int(t)
		alpha := t - float64(idx)
		if alpha == 0 {
			pal[i] = anchors[idx]
			continue
		}
		a, b := anchors[idx], anchors[idx+1]
		pal[i] = RGB{
			R: uint8((1-alpha)*float64(a.R) + alpha*float64(b.R)),
			G: uint8((1-alpha)*float64(a.G) + alpha*float64(b.G)),
			B: uint8((1-alpha)*float64(a.B) + alpha*float64(b.B)),
		}
	}
	return pal
}

// hslAnchors sweeps the hue wheel backward from 360 degrees, bright and
// saturated, in 30 steps.
func hslAnchors() []RGB {
	anchors := make([]RGB, 30)
	for i := range anchors {
		v := float64(i) / 29
		hue := float64(int((1 - v) * 360))
		r, g, b := colorful.Hsl(hue, 0.8, 0.5).Clamped().RGB255()
		anchors[i] = RGB{r, g, b}
	}
	return anchors
}

// desaturate blends a color toward its mean luminosity; amount 0 leaves it
// unchanged, 1 turns it gray.
func desaturate(c RGB, amount float64) RGB {
	lum := (float64(c.R) + float64(c.G) + float64(c.B)) / 3
	adjust := func(v uint8) uint8 {
		return uint8(float64(v) - amount*(float64(v)-lum))
	}
	return RGB{adjust(c.R), adjust(c.G), adjust(c.B)}
}
