package util

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSize formats a byte count with a binary unit suffix.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatHz formats a sample rate, switching to kHz at 1000.
func FormatHz(hz int) string {
	if hz < 1000 {
		return fmt.Sprintf("%d Hz", hz)
	}
	v := float64(hz) / 1000
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f kHz", v)
	}
	return fmt.Sprintf("%.1f kHz", v)
}
