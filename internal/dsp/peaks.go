package dsp

import "github.com/olivier-w/wavescope/internal/audio"

// PeakPair holds the two extreme sample values of a scanned range in the
// order they occur: (min, max) when the minimum is seen first, (max, min)
// otherwise. A degenerate range with a single extreme yields the same value
// in both fields.
type PeakPair struct {
	First  float64
	Second float64
}

// ScanPeaks finds the extreme samples in [start, end), reading in blocks.
// end is clamped to the source length. Extremes are tracked with strict
// comparisons against their absolute sample index, so the first occurrence
// wins ties and the returned order reflects true temporal order.
func ScanPeaks(r *audio.Reader, start, end int64) PeakPair {
	if frames := r.Frames(); end > frames {
		end = frames
	}
	if end <= start {
		s := r.ReadWindow(start, 1, false)
		if len(s) == 0 {
			return PeakPair{}
		}
		return PeakPair{First: s[0], Second: s[0]}
	}

	blockSize := int64(scanBlock)
	if span := end - start; span < blockSize {
		blockSize = span
	}

	maxValue, minValue := -1.0, 1.0
	maxIndex, minIndex := int64(-1), int64(-1)

	for off := start; off < end; off += blockSize {
		n := blockSize
		if off+n > end {
			n = end - off
		}
		for i, v := range r.ReadWindow(off, n, false) {
			if v > maxValue {
				maxValue = v
				maxIndex = off + int64(i)
			}
			if v < minValue {
				minValue = v
				minIndex = off + int64(i)
			}
		}
	}

	if minIndex < maxIndex {
		return PeakPair{First: minValue, Second: maxValue}
	}
	return PeakPair{First: maxValue, Second: minValue}
}
