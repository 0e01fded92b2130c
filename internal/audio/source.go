package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is implemented by all format-specific sample sources. ReadAt fills
// dst with interleaved samples scaled to [-1, 1] starting at frame off and
// returns the number of whole frames read; len(dst) must be a multiple of
// Channels(). If fewer frames than requested are read, a non-nil error is
// returned. Implementations are safe for concurrent ReadAt calls.
type Source interface {
	ReadAt(dst []float64, off int64) (int, error)
	SampleRate() int
	Channels() int
	Frames() int64
	Close() error
}

// Open detects the format by file extension and returns the appropriate source.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := newSource(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	return src, nil
}

func newSource(f *os.File) (Source, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Source(f)
	case ".wav":
		return newWAVSource(f)
	case ".flac":
		return newFLACSource(f)
	case ".ogg":
		return newOGGSource(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}
