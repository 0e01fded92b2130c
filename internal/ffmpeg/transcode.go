package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// ToolError reports an external tool failure together with everything the
// tool printed, so the caller sees the real reason instead of an exit code.
type ToolError struct {
	Tool   string
	Output []byte
	Err    error
}

func (e *ToolError) Error() string {
	if len(e.Output) == 0 {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s failed: %v\n%s", e.Tool, e.Err, e.Output)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Available reports whether ffmpeg is on PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// TranscodeToWAV converts any ffmpeg-readable file into a 16-bit PCM WAV
// that the native decoders can open. Video streams are dropped.
func TranscodeToWAV(ctx context.Context, src, dst string) error {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found (required to convert this format)")
	}
	cmd := exec.CommandContext(ctx, ffmpeg, transcodeArgs(src, dst)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ToolError{Tool: "ffmpeg", Output: output, Err: err}
	}
	return nil
}

// EncodePreviewMP3 writes an ABR-encoded MP3 preview of src at roughly the
// given bitrate.
func EncodePreviewMP3(ctx context.Context, src, dst string, bitrateKbps int) error {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found (required for the mp3 preview)")
	}
	cmd := exec.CommandContext(ctx, ffmpeg, previewArgs(src, dst, bitrateKbps)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ToolError{Tool: "ffmpeg", Output: output, Err: err}
	}
	return nil
}

func transcodeArgs(src, dst string) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		dst,
	}
}

func previewArgs(src, dst string, bitrateKbps int) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-i", src,
		"-vn",
		"-codec:a", "libmp3lame",
		"-abr", "1",
		"-b:a", strconv.Itoa(bitrateKbps) + "k",
		dst,
	}
}
