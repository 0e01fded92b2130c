package audio

import (
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always emits 16-bit stereo PCM, so one frame is four bytes.
const mp3FrameSize = 4

type mp3Source struct {
	mu     sync.Mutex
	dec    *mp3.Decoder
	file   *os.File
	frames int64
}

func newMP3Source(f *os.File) (*mp3Source, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return &mp3Source{
		dec:    dec,
		file:   f,
		frames: dec.Length() / mp3FrameSize,
	}, nil
}

func (s *mp3Source) ReadAt(dst []float64, off int64) (int, error) {
	count := len(dst) / 2
	if count == 0 {
		return 0, nil
	}

	raw := make([]byte, count*mp3FrameSize)
	s.mu.Lock()
	if _, err := s.dec.Seek(off*mp3FrameSize, io.SeekStart); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	n, err := io.ReadFull(s.dec, raw)
	s.mu.Unlock()

	framesRead := n / mp3FrameSize
	for i := 0; i < framesRead*2; i++ {
		dst[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}

	if framesRead < count {
		if err == io.ErrUnexpectedEOF || err == nil {
			err = io.EOF
		}
		return framesRead, err
	}
	return framesRead, nil
}

func (s *mp3Source) SampleRate() int { return s.dec.SampleRate() }
func (s *mp3Source) Channels() int  { return 2 }
func (s *mp3Source) Frames() int64  { return s.frames }
func (s *mp3Source) Close() error   { return s.file.Close() }
