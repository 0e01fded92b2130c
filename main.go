package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/olivier-w/wavescope/internal/audio"
	"github.com/olivier-w/wavescope/internal/dsp"
	"github.com/olivier-w/wavescope/internal/ffmpeg"
	"github.com/olivier-w/wavescope/internal/media"
	"github.com/olivier-w/wavescope/internal/pipeline"
	"github.com/olivier-w/wavescope/internal/render"
	"github.com/olivier-w/wavescope/internal/ui"
	"github.com/olivier-w/wavescope/internal/util"
)

const (
	thumbWidth         = 120
	thumbHeight        = 71
	previewBitrateKbps = 70
	jpegQuality        = 80
)

type options struct {
	width   int
	height  int
	fftSize int
	window  string
	palette string
	rangeDB float64
	outDir  string
	mp3Path string
	thumbs  bool
	workers int
	plain   bool
}

func main() {
	var opts options
	flag.IntVar(&opts.width, "width", 900, "output image width in pixels")
	flag.IntVar(&opts.height, "height", 201, "output image height in pixels (must be odd)")
	flag.IntVar(&opts.fftSize, "fft", 2048, "analysis FFT size (power of two)")
	flag.StringVar(&opts.window, "window", "hann", "analysis window: hann, hamming, blackman, bartlett, flattop, rectangular")
	flag.StringVar(&opts.palette, "palette", "anchor-fixed", "waveform palette: anchor-fixed, hsl-ramp, anchor-fixed-desaturated, hsl-ramp-desaturated")
	flag.Float64Var(&opts.rangeDB, "db", dsp.DefaultRangeDB, "spectral dynamic range in dB")
	flag.StringVar(&opts.outDir, "o", "", "output directory (default: alongside the input)")
	flag.StringVar(&opts.mp3Path, "mp3", "", "also write an mp3 preview to this path")
	flag.BoolVar(&opts.thumbs, "thumb", false, "also render 120x71 thumbnails")
	flag.IntVar(&opts.workers, "workers", 0, "analysis workers (default: all CPUs)")
	flag.BoolVar(&opts.plain, "plain", false, "plain progress output, no terminal UI")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if opts.width < 1 {
		fmt.Fprintf(os.Stderr, "Error: width must be positive (got %d)\n", opts.width)
		os.Exit(1)
	}
	if opts.height < 1 || opts.height%2 == 0 {
		fmt.Fprintf(os.Stderr, "Error: height must be odd (got %d)\n", opts.height)
		os.Exit(1)
	}
	if opts.fftSize < 2 || opts.fftSize&(opts.fftSize-1) != 0 {
		fmt.Fprintf(os.Stderr, "Error: fft size must be a power of two (got %d)\n", opts.fftSize)
		os.Exit(1)
	}
	style, err := render.ParseStyle(opts.palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is a directory\n", path)
		os.Exit(1)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %s (supported: %s)\n", ext, media.SupportedExtsList())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interactive := !opts.plain && isatty.IsTerminal(os.Stdout.Fd())
	statusCh := make(chan ui.Status, 16)
	job := &renderJob{path: path, opts: opts, style: style, statusCh: statusCh, interactive: interactive}

	if !interactive {
		drained := relayPlain(statusCh)
		err := job.run(ctx)
		<-drained
		exitOnRunError(err)
	} else {
		model := ui.NewModel(filepath.Base(path), statusCh, func() error {
			return job.run(ctx)
		}, cancel)
		finalModel, err := tea.NewProgram(model).Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if m, ok := finalModel.(ui.Model); ok {
			exitOnRunError(m.Err())
		}
	}

	printSummary(job)
}

// renderJob holds one run's inputs and collects its outcomes for the
// completion summary.
type renderJob struct {
	path        string
	opts        options
	style       render.Style
	statusCh    chan<- ui.Status
	interactive bool

	info     *ffmpeg.Info
	probeErr error
	meta     media.Metadata
	outputs  []string
	warnings uint64
	elapsed  time.Duration
}

func (j *renderJob) run(ctx context.Context) error {
	defer close(j.statusCh)
	start := time.Now()

	j.send(ui.Status{Phase: ui.PhaseProbe})
	j.meta = media.ReadMetadata(j.path)
	j.info, j.probeErr = ffmpeg.Probe(ctx, j.path)

	src, cleanup, err := j.openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()
	if cleanup != nil {
		defer cleanup()
	}

	cfg := pipeline.Config{
		Width:             j.opts.width,
		WaveformHeight:    j.opts.height,
		SpectrogramHeight: j.opts.height,
		FFTSize:           j.opts.fftSize,
		WindowKind:        j.opts.window,
		Palette:           j.style,
		RangeDB:           j.opts.rangeDB,
		Workers:           j.opts.workers,
	}
	progress := func(percent int) {
		j.send(ui.Status{Phase: ui.PhaseRender, Percent: float64(percent) / 100})
	}
	if j.interactive {
		// Interactive runs take percent and peak from the column observer.
		progress = nil
		width := float64(j.opts.width)
		cfg.OnColumn = func(x int, peaks dsp.PeakPair) {
			peak := math.Max(math.Abs(peaks.First), math.Abs(peaks.Second))
			j.send(ui.Status{
				Phase:   ui.PhaseRender,
				Percent: float64(x+1) / width,
				Peak:    peak,
			})
		}
	}
	j.send(ui.Status{Phase: ui.PhaseRender})
	res, err := pipeline.Run(ctx, src, cfg, progress)
	if err != nil {
		return err
	}
	j.warnings = res.Warnings

	j.send(ui.Status{Phase: ui.PhaseEncode})
	wavePath, specPath := outputPaths(j.path, j.opts.outDir)
	if err := savePNG(res.Waveform, wavePath); err != nil {
		return err
	}
	j.outputs = append(j.outputs, wavePath)
	if err := saveJPEG(res.Spectrogram, specPath); err != nil {
		return err
	}
	j.outputs = append(j.outputs, specPath)

	if j.opts.thumbs {
		cfg.Width = thumbWidth
		cfg.WaveformHeight = thumbHeight
		cfg.SpectrogramHeight = thumbHeight
		cfg.OnColumn = nil
		thumb, err := pipeline.Run(ctx, src, cfg, nil)
		if err != nil {
			return err
		}
		j.warnings += thumb.Warnings
		wt, st := thumbPath(wavePath), thumbPath(specPath)
		if err := savePNG(thumb.Waveform, wt); err != nil {
			return err
		}
		j.outputs = append(j.outputs, wt)
		if err := saveJPEG(thumb.Spectrogram, st); err != nil {
			return err
		}
		j.outputs = append(j.outputs, st)
	}

	if j.opts.mp3Path != "" {
		if err := ffmpeg.EncodePreviewMP3(ctx, j.path, j.opts.mp3Path, previewBitrateKbps); err != nil {
			return err
		}
		j.outputs = append(j.outputs, j.opts.mp3Path)
	}

	j.elapsed = time.Since(start)
	return nil
}

// openSource opens the input with the native decoders, converting through
// ffmpeg first (or as a fallback) when needed.
func (j *renderJob) openSource(ctx context.Context) (audio.Source, func(), error) {
	ext := strings.ToLower(filepath.Ext(j.path))
	if media.IsNativeExt(ext) {
		src, err := audio.Open(j.path)
		if err == nil {
			return src, nil, nil
		}
		if !ffmpeg.Available() {
			return nil, nil, err
		}
		// Some files lie about their extension or use codec variants the
		// native decoders reject; let ffmpeg try before giving up.
	} else if !ffmpeg.Available() {
		return nil, nil, fmt.Errorf("%s input needs ffmpeg (not found on PATH)", ext)
	}

	j.send(ui.Status{Phase: ui.PhaseTranscode})
	tmp, err := os.CreateTemp("", "wavescope-*.wav")
	if err != nil {
		return nil, nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(tmpPath) }

	if err := ffmpeg.TranscodeToWAV(ctx, j.path, tmpPath); err != nil {
		cleanup()
		return nil, nil, err
	}
	src, err := audio.Open(tmpPath)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return src, cleanup, nil
}

func (j *renderJob) send(status ui.Status) {
	select {
	case j.statusCh <- status:
	default:
	}
}

// relayPlain prints phase changes and render percentages to stderr and
// reports when the channel has drained.
func relayPlain(statusCh <-chan ui.Status) <-chan struct{} {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		var lastPhase ui.Phase
		lastPercent := -1
		for status := range statusCh {
			switch status.Phase {
			case ui.PhaseRender:
				percent := int(math.Round(status.Percent * 100))
				if percent != lastPercent {
					fmt.Fprintf(os.Stderr, "rendering %d%%\n", percent)
					lastPercent = percent
				}
			case ui.PhaseTranscode:
				if status.Phase != lastPhase {
					fmt.Fprintln(os.Stderr, "converting with ffmpeg")
				}
			case ui.PhaseEncode:
				if status.Phase != lastPhase {
					fmt.Fprintln(os.Stderr, "encoding images")
				}
			}
			lastPhase = status.Phase
		}
	}()
	return drained
}

func exitOnRunError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Cancelled.")
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func printSummary(j *renderJob) {
	title := j.meta.Title
	if j.meta.Artist != "" {
		title = j.meta.Artist + " - " + title
	}
	fmt.Println(title)

	if j.info != nil {
		var parts []string
		if j.info.SampleRate > 0 {
			parts = append(parts, util.FormatHz(j.info.SampleRate))
		}
		switch j.info.Channels {
		case 0:
		case 1:
			parts = append(parts, "mono")
		case 2:
			parts = append(parts, "stereo")
		default:
			parts = append(parts, fmt.Sprintf("%d channels", j.info.Channels))
		}
		if j.info.BitDepth > 0 {
			parts = append(parts, fmt.Sprintf("%d-bit", j.info.BitDepth))
		}
		if j.info.Bitrate > 0 {
			parts = append(parts, fmt.Sprintf("%d kbps", j.info.Bitrate))
		}
		if j.info.Duration > 0 {
			parts = append(parts, util.FormatDuration(j.info.Duration))
		}
		if len(parts) > 0 {
			fmt.Printf("  %s\n", strings.Join(parts, " · "))
		}
	} else if j.probeErr != nil {
		fmt.Printf("  media info unavailable: %v\n", j.probeErr)
	}

	for _, out := range j.outputs {
		if fi, err := os.Stat(out); err == nil {
			fmt.Printf("  wrote %s (%s)\n", out, util.FormatSize(fi.Size()))
		} else {
			fmt.Printf("  wrote %s\n", out)
		}
	}
	if j.warnings > 0 {
		fmt.Printf("  %d corrupted regions rendered as silence\n", j.warnings)
	}
	fmt.Printf("  done in %s\n", j.elapsed.Round(10*time.Millisecond))
}

// outputPaths derives the image paths from the input name: <base>_w.png and
// <base>_s.jpg, placed in dir when set.
func outputPaths(inputPath, dir string) (string, string) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, base+"_w.png"), filepath.Join(dir, base+"_s.jpg")
}

// thumbPath inserts a _t marker before the extension.
func thumbPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_t" + ext
}

func savePNG(c *render.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := c.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func saveJPEG(c *render.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := c.EncodeJPEG(f, jpegQuality); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: wavescope [flags] FILE\n\nRenders a waveform PNG and a spectrogram JPEG from an audio file.\n\nFlags:\n")
	flag.PrintDefaults()
}
