package pipeline

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/olivier-w/wavescope/internal/audio"
	"github.com/olivier-w/wavescope/internal/dsp"
	"github.com/olivier-w/wavescope/internal/render"
)

const defaultWindowKind = "hann"

// Config holds the rendering parameters for one run.
type Config struct {
	Width             int          // output columns in both images
	WaveformHeight    int          // must be odd
	SpectrogramHeight int
	FFTSize           int          // must be a power of two
	WindowKind        string       // analysis window name, defaults to hann
	Palette           render.Style // waveform palette selection
	RangeDB           float64      // 0 selects dsp.DefaultRangeDB
	Workers           int          // 0 selects runtime.NumCPU

	// OnColumn, when set, observes each column in render order after it is
	// drawn. Called from the consuming goroutine; keep it fast.
	OnColumn func(x int, peaks dsp.PeakPair)
}

// ConfigError marks a rejected rendering configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// Result carries the finished rasters and run statistics.
type Result struct {
	Waveform    *render.Canvas
	Spectrogram *render.Canvas
	Columns     int    // columns rendered, equals Config.Width
	Warnings    uint64 // decode faults recovered as silence
}

// columnResult is the analysis output for one output column.
type columnResult struct {
	x        int
	peaks    dsp.PeakPair
	centroid float64
	spectrum []float64
}

// Run renders the waveform and spectrogram rasters for src. Analysis runs
// on a worker pool; rendering consumes results in column order because the
// waveform trace is connected across columns. If progress is non-nil it
// receives integer percentages at roughly ten points plus a final 100.
//
// Cancelling ctx stops the run before the next column and returns an error
// describing how far it got; no rasters are returned in that case.
func Run(ctx context.Context, src audio.Source, cfg Config, progress func(percent int)) (*Result, error) {
	kind := cfg.WindowKind
	if kind == "" {
		kind = defaultWindowKind
	}
	window, err := dsp.NewWindow(cfg.FFTSize, kind)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	wf, err := render.NewWaveform(cfg.Width, cfg.WaveformHeight, cfg.Palette)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	sp, err := render.NewSpectrogram(cfg.Width, cfg.SpectrogramHeight, cfg.FFTSize)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	// One sequential pass to find the normalization scale, then the
	// per-column work fans out. Scale and window are read-only from here on.
	scale := dsp.ComputeScale(src, window)
	reader := audio.NewReader(src)
	samplesPerPixel := float64(src.Frames()) / float64(cfg.Width)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Width {
		workers = cfg.Width
	}

	jobs := make(chan int)
	results := make(chan columnResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			an := dsp.NewAnalyzer(reader, window, scale, cfg.RangeDB)
			for x := range jobs {
				seek := int64(math.Floor(float64(x) * samplesPerPixel))
				next := int64(math.Floor(float64(x+1) * samplesPerPixel))
				centroid, spectrum := an.Analyze(seek)
				results <- columnResult{
					x:        x,
					peaks:    dsp.ScanPeaks(reader, seek, next),
					centroid: centroid,
					spectrum: spectrum,
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for x := 0; x < cfg.Width; x++ {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- x:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Workers may finish out of order; park early arrivals until their
	// column is next.
	pending := make(map[int]columnResult, workers)
	step := cfg.Width / 10
	if step < 1 {
		step = 1
	}
	done := 0
	for res := range results {
		pending[res.x] = res
		for {
			col, ok := pending[done]
			if !ok {
				break
			}
			delete(pending, done)
			wf.DrawColumn(col.x, col.peaks, col.centroid)
			sp.DrawColumn(col.x, col.spectrum)
			done++
			if cfg.OnColumn != nil {
				cfg.OnColumn(col.x, col.peaks)
			}
			if progress != nil && done%step == 0 {
				progress(done * 100 / cfg.Width)
			}
		}
	}

	if done < cfg.Width {
		return nil, fmt.Errorf("rendering aborted after %d of %d columns: %w", done, cfg.Width, ctx.Err())
	}
	if progress != nil {
		progress(100)
	}
	return &Result{
		Waveform:    wf.Finalize(),
		Spectrogram: sp.Finalize(),
		Columns:     done,
		Warnings:    reader.Warnings(),
	}, nil
}
