package audio

import "sync/atomic"

// Reader provides windowed, zero-padded, mono reads over a Source. Decode
// faults never propagate: the damaged window is replaced with silence and
// counted, so one corrupt region cannot abort a whole visualization run.
// Safe for concurrent use.
type Reader struct {
	src   Source
	warns atomic.Uint64
}

func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// ReadWindow returns size mono samples starting at frame start, which may be
// negative (window centered before time zero) or extend past the end of the
// source. With pad set the result is always exactly size samples, missing
// head and tail samples zero-filled; without it only the available samples
// are returned, which may be none. Multi-channel sources are downmixed by
// selecting the first channel. On a decode fault the result is all zeros of
// the requested length (length 2 when not padding) and Warnings is bumped.
func (r *Reader) ReadWindow(start, size int64, pad bool) []float64 {
	frames := r.src.Frames()

	var addStart, addEnd int64
	toRead := size
	if start < 0 {
		if size+start <= 0 {
			if pad {
				return make([]float64, size)
			}
			return nil
		}
		addStart = -start
		toRead = size + start
		start = 0
	}
	if start+toRead > frames {
		avail := frames - start
		if avail < 0 {
			avail = 0
		}
		addEnd = toRead - avail
		toRead = avail
	}
	if toRead == 0 {
		if pad {
			return make([]float64, size)
		}
		return nil
	}

	ch := r.src.Channels()
	raw := make([]float64, toRead*int64(ch))
	n, err := r.src.ReadAt(raw, start)
	if err != nil || int64(n) < toRead {
		// Broken region in the backing data; treat it as silence.
		r.warns.Add(1)
		if pad {
			return make([]float64, size)
		}
		return make([]float64, 2)
	}

	mono := make([]float64, toRead)
	if ch == 1 {
		copy(mono, raw)
	} else {
		for i := range mono {
			mono[i] = raw[int64(i)*int64(ch)]
		}
	}

	if !pad || (addStart == 0 && addEnd == 0) {
		return mono
	}
	out := make([]float64, size)
	copy(out[addStart:], mono)
	return out
}

// Frames reports the total frame count of the underlying source.
func (r *Reader) Frames() int64 { return r.src.Frames() }

// SampleRate reports the sample rate of the underlying source.
func (r *Reader) SampleRate() int { return r.src.SampleRate() }

// Warnings reports how many decode faults were recovered as silence.
func (r *Reader) Warnings() uint64 { return r.warns.Load() }
