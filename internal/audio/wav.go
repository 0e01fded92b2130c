package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
)

type wavSource struct {
	file       *os.File
	pcmStart   int64 // byte offset in file where PCM data begins
	frames     int64
	sampleRate int
	channels   int
	bitDepth   int
	frameSize  int64 // bytes per sample frame
}

func newWAVSource(f *os.File) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	sampleRate := int(dec.SampleRate)
	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	frameSize := int64(channels) * int64(bitDepth) / 8

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("getting PCM start position: %w", err)
	}

	return &wavSource{
		file:       f,
		pcmStart:   pcmStart,
		frames:     dec.PCMLen() / frameSize,
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		frameSize:  frameSize,
	}, nil
}

// ReadAt uses positional file reads, so no cursor state is shared between
// concurrent calls.
func (s *wavSource) ReadAt(dst []float64, off int64) (int, error) {
	count := len(dst) / s.channels
	if count == 0 {
		return 0, nil
	}

	raw := make([]byte, int64(count)*s.frameSize)
	n, err := s.file.ReadAt(raw, s.pcmStart+off*s.frameSize)

	// Truncate to whole frames
	framesRead := n / int(s.frameSize)
	if framesRead == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	bytesPerSample := s.bitDepth / 8
	for i := 0; i < framesRead*s.channels; i++ {
		o := i * bytesPerSample
		switch s.bitDepth {
		case 8:
			// 8-bit WAV is unsigned
			dst[i] = (float64(raw[o]) - 128) / 128
		case 16:
			dst[i] = float64(int16(binary.LittleEndian.Uint16(raw[o:]))) / 32768
		case 24:
			v := int32(raw[o]) | int32(raw[o+1])<<8 | int32(raw[o+2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF // sign extend
			}
			dst[i] = float64(v) / 8388608
		case 32:
			dst[i] = float64(int32(binary.LittleEndian.Uint32(raw[o:]))) / 2147483648
		}
	}

	if framesRead < count {
		if err == nil {
			err = io.EOF
		}
		return framesRead, err
	}
	return framesRead, nil
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int  { return s.channels }
func (s *wavSource) Frames() int64  { return s.frames }
func (s *wavSource) Close() error   { return s.file.Close() }
