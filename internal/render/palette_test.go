package render

import "testing"

func TestParseStyle(t *testing.T) {
	cases := []struct {
		name string
		want Style
	}{
		{"anchor-fixed", Style{Ramp: RampFixed}},
		{"hsl-ramp", Style{Ramp: RampHSL}},
		{"anchor-fixed-desaturated", Style{Ramp: RampFixed, Desaturated: true}},
		{"hsl-ramp-desaturated", Style{Ramp: RampHSL, Desaturated: true}},
	}
	for _, tc := range cases {
		got, err := ParseStyle(tc.name)
		if err != nil {
			t.Fatalf("ParseStyle(%q) returned error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStyle(%q) = %+v, want %+v", tc.name, got, tc.want)
		}
	}
	if _, err := ParseStyle("rainbow"); err == nil {
		t.Fatal("ParseStyle(rainbow) did not return an error")
	}
}

func TestInterpolateGrayscaleRamp(t *testing.T) {
	pal := Interpolate([]RGB{{0, 0, 0}, {255, 255, 255}}, 256)
	if len(pal) != 256 {
		t.Fatalf("len(pal) = %d, want 256", len(pal))
	}
	if pal[0] != (RGB{0, 0, 0}) {
		t.Fatalf("pal[0] = %+v, want black", pal[0])
	}
	if pal[255] != (RGB{255, 255, 255}) {
		t.Fatalf("pal[255] = %+v, want white", pal[255])
	}
	for i := 1; i < len(pal); i++ {
		if pal[i].R != pal[i].G || pal[i].R != pal[i].B {
			t.Fatalf("pal[%d] = %+v is not gray", i, pal[i])
		}
		if pal[i].R < pal[i-1].R {
			t.Fatalf("pal[%d].R = %d decreases from %d", i, pal[i].R, pal[i-1].R)
		}
	}
}

func TestInterpolateEndpointsExact(t *testing.T) {
	anchors := []RGB{{50, 0, 200}, {0, 220, 80}, {255, 70, 0}}
	pal := Interpolate(anchors, 256)
	if pal[0] != anchors[0] {
		t.Fatalf("pal[0] = %+v, want %+v", pal[0], anchors[0])
	}
	if pal[255] != anchors[len(anchors)-1] {
		t.Fatalf("pal[255] = %+v, want %+v", pal[255], anchors[len(anchors)-1])
	}
}

func TestInterpolateSingleAnchor(t *testing.T) {
	pal := Interpolate([]RGB{{10, 20, 30}}, 16)
	for i, c := range pal {
		if c != (RGB{10, 20, 30}) {
			t.Fatalf("pal[%d] = %+v, want the lone anchor", i, c)
		}
	}
}

func TestWaveformPaletteBackgrounds(t *testing.T) {
	for _, name := range []string{"anchor-fixed", "hsl-ramp"} {
		style, _ := ParseStyle(name)
		pal, bg := WaveformPalette(style)
		if len(pal) != PaletteSize {
			t.Fatalf("%s: len(pal) = %d, want %d", name, len(pal), PaletteSize)
		}
		if bg != (RGB{0, 0, 0}) {
			t.Fatalf("%s: background = %+v, want black", name, bg)
		}
	}
	for _, name := range []string{"anchor-fixed-desaturated", "hsl-ramp-desaturated"} {
		style, _ := ParseStyle(name)
		_, bg := WaveformPalette(style)
		if bg != (RGB{213, 217, 221}) {
			t.Fatalf("%s: background = %+v, want light gray", name, bg)
		}
	}
}

func TestDesaturateFullyGraysOut(t *testing.T) {
	got := desaturate(RGB{90, 180, 100}, 1)
	if got.R != got.G || got.R != got.B {
		t.Fatalf("desaturate(_, 1) = %+v, want equal channels", got)
	}
}

func TestSpectrogramPaletteEndpoints(t *testing.T) {
	pal := SpectrogramPalette()
	if pal[0] != (RGB{0, 0, 0}) {
		t.Fatalf("pal[0] = %+v, want black", pal[0])
	}
	if pal[255] != (RGB{255, 255, 255}) {
		t.Fatalf("pal[255] = %+v, want white", pal[255])
	}
}
