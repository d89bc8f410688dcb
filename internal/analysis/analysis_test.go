package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/dynamo"
)

func TestPowerSpectrumPeak(t *testing.T) {
	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 4 * float64(i) / float64(n))
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}

	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != 4 {
		t.Errorf("peak at bin %d, want 4", peak)
	}
}

func TestFFTMatchesDFT(t *testing.T) {
	data := []float64{0.3, -1.2, 2.5, 0, 0.7, 1.1, -0.4, 3.3}
	got := FFT(data)

	n := len(data)
	for k := 0; k < n; k++ {
		var want complex128
		for j, v := range data {
			angle := -2 * math.Pi * float64(j*k) / float64(n)
			want += complex(v*math.Cos(angle), v*math.Sin(angle))
		}
		if cmplx.Abs(got[k]-want) > 1e-12 {
			t.Errorf("bin %d = %v, want %v", k, got[k], want)
		}
	}
}

func TestPadPow2(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1},
		{1, 1},
		{3, 4},
		{64, 64},
		{65, 128},
	}
	for _, tt := range tests {
		if got := len(PadPow2(make([]float64, tt.in))); got != tt.want {
			t.Errorf("PadPow2(len %d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEnergyError(t *testing.T) {
	samples := []bench.Sample{
		{Energy: -2.0},
		{Energy: -2.2},
		{Energy: -1.9},
	}
	errs := EnergyError(samples)
	want := []float64{0, -0.1, 0.05}
	for i := range want {
		if math.Abs(errs[i]-want[i]) > 1e-12 {
			t.Errorf("err[%d] = %v, want %v", i, errs[i], want[i])
		}
	}
	if EnergyError(nil) != nil {
		t.Error("expected nil for no samples")
	}
}

func TestEnergySpectrumDominant(t *testing.T) {
	interval := 0.5
	samples := make([]bench.Sample, 128)
	for i := range samples {
		tm := float64(i) * interval
		samples[i] = bench.Sample{
			Step:   i,
			Time:   tm,
			Energy: -1 + 1e-3*math.Sin(2*math.Pi*tm/8),
		}
	}

	spec, err := EnergySpectrum(samples)
	if err != nil {
		t.Fatal(err)
	}
	freq, power := spec.Dominant()
	if power <= 0 {
		t.Fatal("expected a non-zero peak")
	}
	if math.Abs(1/freq-8) > 0.5 {
		t.Errorf("dominant period = %v, want ~8", 1/freq)
	}
}

func TestEnergySpectrumTooShort(t *testing.T) {
	_, err := EnergySpectrum([]bench.Sample{{}, {}})
	if !errors.Is(err, dynamo.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestDivergence(t *testing.T) {
	a, err := Divergence(2000, 0.01, 1e-8, 100)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(a) || math.IsInf(a, 0) {
		t.Fatalf("non-finite exponent %v", a)
	}

	b, err := Divergence(2000, 0.01, 1e-8, 100)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("divergence not deterministic: %v vs %v", a, b)
	}
}

func TestDivergenceInvalid(t *testing.T) {
	tests := []struct {
		name         string
		steps        int
		dt, pert     float64
		renormalizer int
	}{
		{"zero steps", 0, 0.01, 1e-8, 10},
		{"zero dt", 10, 0, 1e-8, 10},
		{"zero perturbation", 10, 0.01, 0, 10},
		{"zero renorm", 10, 0.01, 1e-8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Divergence(tt.steps, tt.dt, tt.pert, tt.renormalizer)
			if !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
