package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func sine(freq, lag, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) * dt
		out[i] = 0.5 + 0.5*math.Sin(2*math.Pi*(freq*t-lag))
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"1Hz", 1, 0.01, 1000},
		{"2Hz", 2, 0.01, 1000},
		{"half Hz odd length", 0.5, 0.02, 777},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DominantFrequency(sine(tt.freq, 0, tt.dt, tt.n), tt.dt)
			if err != nil {
				t.Fatal(err)
			}
			bin := 1 / (float64(tt.n) * tt.dt)
			if math.Abs(got-tt.freq) > bin {
				t.Errorf("dominant frequency = %v, want ~%v", got, tt.freq)
			}
		})
	}
}

func TestDominantFrequencyConstant(t *testing.T) {
	flat := make([]float64, 64)
	for i := range flat {
		flat[i] = 3
	}
	got, err := DominantFrequency(flat, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("constant series frequency = %v, want 0", got)
	}
}

func TestShortSeries(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2, 3}, 0.1); !errors.Is(err, ErrShortSeries) {
		t.Errorf("err = %v, want ErrShortSeries", err)
	}
	if _, err := PhaseLag([]float64{1}, []float64{1}); !errors.Is(err, ErrShortSeries) {
		t.Errorf("err = %v, want ErrShortSeries", err)
	}
}

func TestPowerSpectrumDCRemoved(t *testing.T) {
	p := PowerSpectrum(sine(1, 0, 0.01, 200))
	if p[0] > 1e-9 {
		t.Errorf("DC power = %v, want 0", p[0])
	}
	if len(p) != 101 {
		t.Errorf("len = %d, want 101", len(p))
	}
}

func TestPhaseLag(t *testing.T) {
	const dt = 0.01
	for _, lag := range []float64{0, 0.25, 0.5, 0.75} {
		a := sine(1, 0, dt, 1000)
		b := sine(1, lag, dt, 1000)
		got, err := PhaseLag(a, b)
		if err != nil {
			t.Fatal(err)
		}
		diff := math.Abs(got - lag)
		diff = math.Min(diff, 1-diff)
		if diff > 0.01 {
			t.Errorf("lag %v: got %v", lag, got)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	xs := []float64{-1, 0, 1, 0, -1}
	ys := []float64{0, 1, 0, -1, 0}

	p := NewPhasePortrait(xs, ys, 1)
	if len(p.Points) != 4 {
		t.Fatalf("points = %d, want 4", len(p.Points))
	}
	p.XLabel, p.YLabel = "phi", "omega"

	out := p.ASCII(20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("lines = %d, want header + 10", len(lines))
	}
	if !strings.Contains(out, "•") {
		t.Error("no points plotted")
	}
	if NewPhasePortrait(xs, ys, 10).ASCII(20, 10) != "" {
		t.Error("empty portrait should render empty")
	}
}
