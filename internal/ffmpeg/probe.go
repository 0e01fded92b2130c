package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

const probeTimeout = 10 * time.Second

// Info describes the audio stream of a media file as reported by ffprobe.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int // 0 when the codec has no fixed sample width
	Bitrate    int // kbit/s, 0 when unknown
	Duration   time.Duration
	Format     string // container name
}

// probeResult mirrors the ffprobe JSON fields we care about.
type probeResult struct {
	Streams []struct {
		CodecType        string `json:"codec_type"`
		SampleRate       string `json:"sample_rate"`
		Channels         int    `json:"channels"`
		BitsPerSample    int    `json:"bits_per_sample"`
		BitsPerRawSample string `json:"bits_per_raw_sample"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// Probe runs ffprobe on path and returns the audio stream description.
func Probe(ctx context.Context, path string) (*Info, error) {
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found (required to inspect media files)")
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		"-select_streams", "a:0",
		path,
	)
	cmd.Stdin = nil

	output, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, &ToolError{Tool: "ffprobe", Output: ee.Stderr, Err: err}
		}
		return nil, &ToolError{Tool: "ffprobe", Err: err}
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (*Info, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(result.Streams) == 0 {
		return nil, fmt.Errorf("no audio stream found")
	}

	stream := result.Streams[0]
	info := &Info{
		Channels: stream.Channels,
		Format:   result.Format.FormatName,
	}
	if sr, err := strconv.Atoi(stream.SampleRate); err == nil && sr > 0 {
		info.SampleRate = sr
	}
	info.BitDepth = stream.BitsPerSample
	if info.BitDepth == 0 {
		if raw, err := strconv.Atoi(stream.BitsPerRawSample); err == nil {
			info.BitDepth = raw
		}
	}
	if durSec, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil && durSec > 0 {
		info.Duration = time.Duration(durSec * float64(time.Second))
	}
	if bps, err := strconv.Atoi(result.Format.BitRate); err == nil && bps > 0 {
		info.Bitrate = bps / 1000
	}
	return info, nil
}
