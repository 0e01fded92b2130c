package audio

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

type flacSource struct {
	mu         sync.Mutex
	stream     *flac.Stream
	file       *os.File
	frames     int64
	sampleRate int
	channels   int
	bps        int

	// Current decoded frame and the absolute index of its first sample.
	cur      *frame.Frame
	curStart int64
}

func newFLACSource(f *os.File) (*flacSource, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	return &flacSource{
		stream:     stream,
		file:       f,
		frames:     int64(info.NSamples),
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (s *flacSource) ReadAt(dst []float64, off int64) (int, error) {
	count := len(dst) / s.channels
	if count == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if off >= s.frames {
		return 0, io.EOF
	}

	// Seek only when the requested range falls outside the buffered frame.
	if s.cur == nil || off < s.curStart || off >= s.curStart+int64(s.cur.Subframes[0].NSamples) {
		pos, err := s.stream.Seek(uint64(off))
		if err != nil {
			return 0, err
		}
		frm, err := s.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		s.cur = frm
		s.curStart = int64(pos)
	}

	div := float64(int64(1) << (s.bps - 1))
	read := 0
	for read < count {
		frameLen := int64(s.cur.Subframes[0].NSamples)
		rel := off + int64(read) - s.curStart
		if rel >= frameLen {
			frm, err := s.stream.ParseNext()
			if err != nil {
				return read, err
			}
			s.curStart += frameLen
			s.cur = frm
			continue
		}
		for ; rel < frameLen && read < count; rel++ {
			for ch := 0; ch < s.channels; ch++ {
				dst[read*s.channels+ch] = float64(s.cur.Subframes[ch].Samples[rel]) / div
			}
			read++
		}
	}
	return read, nil
}

func (s *flacSource) SampleRate() int { return s.sampleRate }
func (s *flacSource) Channels() int  { return s.channels }
func (s *flacSource) Frames() int64  { return s.frames }
func (s *flacSource) Close() error   { return s.file.Close() }
