package render

import "testing"

func TestNewSpectrogramRejectsBadSize(t *testing.T) {
	if _, err := NewSpectrogram(0, 100, 2048); err == nil {
		t.Fatal("NewSpectrogram(0, 100, 2048) did not return an error")
	}
	if _, err := NewSpectrogram(100, 0, 2048); err == nil {
		t.Fatal("NewSpectrogram(100, 0, 2048) did not return an error")
	}
}

func TestSpectrogramSilence(t *testing.T) {
	sp, err := NewSpectrogram(4, 32, 1024)
	if err != nil {
		t.Fatalf("NewSpectrogram() returned error: %v", err)
	}
	spectrum := make([]float64, 1024/2+1)
	for x := 0; x < 4; x++ {
		sp.DrawColumn(x, spectrum)
	}
	canvas := sp.Finalize()
	for y := 0; y < 32; y++ {
		for x := 0; x < 4; x++ {
			if got := canvas.At(x, y); got != (RGB{}) {
				t.Fatalf("At(%d, %d) = %+v, want black", x, y, got)
			}
		}
	}
}

// Low frequencies render at the bottom of the image. A spectrum that is
// loud only in its lowest bins must light the bottom row and leave the top
// dark.
func TestSpectrogramLowFrequenciesAtBottom(t *testing.T) {
	sp, err := NewSpectrogram(1, 51, 1024)
	if err != nil {
		t.Fatalf("NewSpectrogram() returned error: %v", err)
	}
	spectrum := make([]float64, 1024/2+1)
	for i := 0; i < 100; i++ {
		spectrum[i] = 1
	}
	sp.DrawColumn(0, spectrum)
	canvas := sp.Finalize()

	if got := canvas.At(0, 50); got != (RGB{255, 255, 255}) {
		t.Fatalf("bottom row = %+v, want white", got)
	}
	if got := canvas.At(0, 0); got != (RGB{0, 0, 0}) {
		t.Fatalf("top row = %+v, want black", got)
	}
}

// Rows whose frequency exceeds the spectral resolution of the FFT keep the
// background color no matter what the spectrum holds.
func TestSpectrogramUnmappedRowsStayBackground(t *testing.T) {
	sp, err := NewSpectrogram(1, 51, 1024)
	if err != nil {
		t.Fatalf("NewSpectrogram() returned error: %v", err)
	}
	if len(sp.rows) >= 51 {
		t.Fatalf("len(sp.rows) = %d, want fewer rows than the image height", len(sp.rows))
	}
	spectrum := make([]float64, 1024/2+1)
	for i := range spectrum {
		spectrum[i] = 1
	}
	sp.DrawColumn(0, spectrum)

	for y := len(sp.rows); y < 51; y++ {
		if got := sp.canvas.At(0, 50-y); got != (RGB{}) {
			t.Fatalf("unmapped row %d = %+v, want background", y, got)
		}
	}
	if got := sp.canvas.At(0, 50); got != (RGB{255, 255, 255}) {
		t.Fatalf("bottom row = %+v, want white", got)
	}
}

func TestBinLookupMonotonic(t *testing.T) {
	rows := binLookup(100, 2048)
	if len(rows) == 0 {
		t.Fatal("binLookup(100, 2048) returned no rows")
	}
	if rows[0].bin != 4 {
		// 100 Hz maps to bin 100/22050*1025.
		t.Fatalf("rows[0].bin = %d, want 4", rows[0].bin)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].bin < rows[i-1].bin {
			t.Fatalf("rows[%d].bin = %d decreases from %d", i, rows[i].bin, rows[i-1].bin)
		}
	}
	last := rows[len(rows)-1]
	if last.bin+1 > 2048/2 {
		t.Fatalf("rows end at bin %d, past the spectrum", last.bin)
	}
}
