package audio

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jfreymuth/oggvorbis"
)

type oggSource struct {
	mu         sync.Mutex
	reader     *oggvorbis.Reader
	file       *os.File
	frames     int64
	sampleRate int
	channels   int
	pos        int64 // frame position of the reader's cursor
}

func newOGGSource(f *os.File) (*oggSource, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggSource{
		reader:     reader,
		file:       f,
		frames:     reader.Length(),
		sampleRate: reader.SampleRate(),
		channels:   reader.Channels(),
	}, nil
}

func (s *oggSource) ReadAt(dst []float64, off int64) (int, error) {
	count := len(dst) / s.channels
	if count == 0 {
		return 0, nil
	}

	buf := make([]float32, count*s.channels)
	s.mu.Lock()
	if off != s.pos {
		if err := s.reader.SetPosition(off); err != nil {
			s.mu.Unlock()
			return 0, err
		}
		s.pos = off
	}
	read := 0
	var err error
	for read < len(buf) {
		var n int
		n, err = s.reader.Read(buf[read:])
		read += n
		if err != nil || n == 0 {
			break
		}
	}
	framesRead := read / s.channels
	s.pos = off + int64(framesRead)
	s.mu.Unlock()

	// Vorbis output can overshoot full scale slightly.
	for i := 0; i < framesRead*s.channels; i++ {
		v := float64(buf[i])
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		dst[i] = v
	}

	if framesRead < count {
		if err == nil {
			err = io.EOF
		}
		return framesRead, err
	}
	return framesRead, nil
}

func (s *oggSource) SampleRate() int { return s.sampleRate }
func (s *oggSource) Channels() int  { return s.channels }
func (s *oggSource) Frames() int64  { return s.frames }
func (s *oggSource) Close() error   { return s.file.Close() }
