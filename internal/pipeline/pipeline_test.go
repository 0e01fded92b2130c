package pipeline

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/olivier-w/wavescope/internal/dsp"
	"github.com/olivier-w/wavescope/internal/render"
)

// stubSource serves interleaved samples from memory and can be told to
// fail any read reaching past a given frame.
type stubSource struct {
	data       []float64
	channels   int
	sampleRate int
	failFrom   int64
}

func (s *stubSource) ReadAt(dst []float64, off int64) (int, error) {
	frames := s.Frames()
	if off >= frames {
		return 0, io.EOF
	}
	want := int64(len(dst)) / int64(s.channels)
	if s.failFrom > 0 && off+want > s.failFrom {
		return 0, io.ErrUnexpectedEOF
	}
	n := want
	if off+n > frames {
		n = frames - off
	}
	copy(dst, s.data[off*int64(s.channels):(off+n)*int64(s.channels)])
	if n < want {
		return int(n), io.EOF
	}
	return int(n), nil
}

func (s *stubSource) SampleRate() int { return s.sampleRate }
func (s *stubSource) Channels() int   { return s.channels }
func (s *stubSource) Frames() int64   { return int64(len(s.data)) / int64(s.channels) }
func (s *stubSource) Close() error    { return nil }

func testConfig() Config {
	return Config{
		Width:             16,
		WaveformHeight:    7,
		SpectrogramHeight: 32,
		FFTSize:           256,
		WindowKind:        "hann",
		Palette:           render.Style{Ramp: render.RampFixed},
		Workers:           3,
	}
}

func TestRunSilentSource(t *testing.T) {
	src := &stubSource{data: make([]float64, 44100), channels: 1, sampleRate: 44100}
	cfg := testConfig()
	cfg.Width = 100
	cfg.FFTSize = 1024

	res, err := Run(context.Background(), src, cfg, nil)
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if res.Warnings != 0 {
		t.Fatalf("Warnings = %d, want 0", res.Warnings)
	}
	if res.Columns != 100 {
		t.Fatalf("Columns = %d, want 100", res.Columns)
	}

	// The whole trace collapses onto the lightened center row. Zero
	// amplitude sits exactly between pixel rows, so the rows either side
	// carry the half-blended fringe.
	wf := res.Waveform
	center := render.RGB{R: 75, G: 25, B: 225}
	fringe := render.RGB{R: 25, G: 0, B: 100}
	for x := 0; x < wf.Width(); x++ {
		if got := wf.At(x, 3); got != center {
			t.Fatalf("waveform At(%d, 3) = %+v, want %+v", x, got, center)
		}
		for _, row := range []int{2, 4} {
			if got := wf.At(x, row); got != fringe {
				t.Fatalf("waveform At(%d, %d) = %+v, want %+v", x, row, got, fringe)
			}
		}
		for _, row := range []int{0, 1, 5, 6} {
			if got := wf.At(x, row); got != (render.RGB{}) {
				t.Fatalf("waveform At(%d, %d) = %+v, want background", x, row, got)
			}
		}
	}
	sp := res.Spectrogram
	for y := 0; y < sp.Height(); y++ {
		for x := 0; x < sp.Width(); x++ {
			if got := sp.At(x, y); got != (render.RGB{}) {
				t.Fatalf("spectrogram At(%d, %d) = %+v, want black", x, y, got)
			}
		}
	}
}

func TestRunProgressProtocol(t *testing.T) {
	src := &stubSource{data: make([]float64, 8000), channels: 1, sampleRate: 8000}
	cfg := testConfig()
	cfg.Width = 50

	var calls []int
	if _, err := Run(context.Background(), src, cfg, func(p int) {
		calls = append(calls, p)
	}); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(calls) < 10 {
		t.Fatalf("got %d progress calls, want at least 10", len(calls))
	}
	if last := calls[len(calls)-1]; last != 100 {
		t.Fatalf("final progress = %d, want 100", last)
	}
	for i := 1; i < len(calls); i++ {
		if calls[i] < calls[i-1] {
			t.Fatalf("progress went backward: %v", calls)
		}
	}
}

// Rendering must consume analysis results in column order regardless of
// how many workers produced them, so worker count cannot change a pixel.
func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	data := make([]float64, 8192)
	for i := range data {
		data[i] = 0.8 * math.Sin(2*math.Pi*440*float64(i)/8000)
	}
	src := &stubSource{data: data, channels: 1, sampleRate: 8000}

	cfg := testConfig()
	cfg.Width = 32
	cfg.FFTSize = 512

	cfg.Workers = 1
	one, err := Run(context.Background(), src, cfg, nil)
	if err != nil {
		t.Fatalf("Run(workers=1) returned error: %v", err)
	}
	cfg.Workers = 4
	four, err := Run(context.Background(), src, cfg, nil)
	if err != nil {
		t.Fatalf("Run(workers=4) returned error: %v", err)
	}
	sameCanvas(t, one.Waveform, four.Waveform)
	sameCanvas(t, one.Spectrogram, four.Spectrogram)
}

// The observer sees every column exactly once, in render order, no matter
// how the workers interleave.
func TestRunObserverOrdered(t *testing.T) {
	data := make([]float64, 8000)
	for i := range data {
		data[i] = 0.5 * math.Sin(float64(i)/20)
	}
	src := &stubSource{data: data, channels: 1, sampleRate: 8000}

	cfg := testConfig()
	cfg.Workers = 4
	var seen []int
	cfg.OnColumn = func(x int, _ dsp.PeakPair) {
		seen = append(seen, x)
	}

	if _, err := Run(context.Background(), src, cfg, nil); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(seen) != cfg.Width {
		t.Fatalf("observer saw %d columns, want %d", len(seen), cfg.Width)
	}
	for i, x := range seen {
		if x != i {
			t.Fatalf("observer column %d = %d, want %d", i, x, i)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	src := &stubSource{data: make([]float64, 8000), channels: 1, sampleRate: 8000}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, src, testConfig(), nil)
	if err == nil {
		t.Fatal("Run() with cancelled context did not return an error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Fatalf("Run() returned a partial result: %+v", res)
	}
}

func TestRunRecoversDecodeFaults(t *testing.T) {
	src := &stubSource{
		data:       make([]float64, 8000),
		channels:   1,
		sampleRate: 8000,
		failFrom:   2000,
	}
	res, err := Run(context.Background(), src, testConfig(), nil)
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if res.Warnings == 0 {
		t.Fatal("Warnings = 0, want decode faults recorded")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	src := &stubSource{data: make([]float64, 800), channels: 1, sampleRate: 8000}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"even waveform height", func(c *Config) { c.WaveformHeight = 100 }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"zero spectrogram height", func(c *Config) { c.SpectrogramHeight = 0 }},
		{"non power of two fft", func(c *Config) { c.FFTSize = 1000 }},
		{"unknown window", func(c *Config) { c.WindowKind = "cosine" }},
	}
	for _, tc := range cases {
		cfg := testConfig()
		tc.mutate(&cfg)
		_, err := Run(context.Background(), src, cfg, nil)
		if err == nil {
			t.Fatalf("%s: Run() did not return an error", tc.name)
		}
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: Run() error = %v, want a ConfigError", tc.name, err)
		}
	}
}

func sameCanvas(t *testing.T, a, b *render.Canvas) {
	t.Helper()
	if a.Width() != b.Width() || a.Height() != b.Height() {
		t.Fatalf("canvas sizes differ: %dx%d vs %dx%d", a.Width(), a.Height(), b.Width(), b.Height())
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("pixel (%d, %d) differs: %+v vs %+v", x, y, a.At(x, y), b.At(x, y))
			}
		}
	}
}
