package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{61 * time.Second, "1:01"},
		{10 * time.Minute, "10:00"},
		{-5 * time.Second, "0:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.n); got != tc.want {
			t.Fatalf("FormatSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestFormatHz(t *testing.T) {
	cases := []struct {
		hz   int
		want string
	}{
		{800, "800 Hz"},
		{8000, "8 kHz"},
		{44100, "44.1 kHz"},
		{48000, "48 kHz"},
	}
	for _, tc := range cases {
		if got := FormatHz(tc.hz); got != tc.want {
			t.Fatalf("FormatHz(%d) = %q, want %q", tc.hz, got, tc.want)
		}
	}
}
