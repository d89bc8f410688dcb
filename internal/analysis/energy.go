package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/dynamo"
)

// EnergyError returns (E - E0) / |E0| for every sample, E0 being the first.
func EnergyError(samples []bench.Sample) []float64 {
	if len(samples) == 0 {
		return nil
	}
	e0 := samples[0].Energy
	errs := make([]float64, len(samples))
	for i, s := range samples {
		if e0 != 0 {
			errs[i] = (s.Energy - e0) / math.Abs(e0)
		}
	}
	return errs
}

type Spectrum struct {
	Power []float64
	// Interval is the time between input samples.
	Interval float64
	// Length is the padded transform length.
	Length int
}

// EnergySpectrum computes the power spectrum of the mean-removed energy error.
// Samples must be evenly spaced.
func EnergySpectrum(samples []bench.Sample) (*Spectrum, error) {
	if len(samples) < 4 {
		return nil, fmt.Errorf("need at least 4 samples, got %d: %w", len(samples), dynamo.ErrNoData)
	}

	errs := EnergyError(samples)
	mean := 0.0
	for _, e := range errs {
		mean += e
	}
	mean /= float64(len(errs))
	for i := range errs {
		errs[i] -= mean
	}

	padded := PadPow2(errs)
	return &Spectrum{
		Power:    PowerSpectrum(padded),
		Interval: samples[1].Time - samples[0].Time,
		Length:   len(padded),
	}, nil
}

// Dominant returns the frequency (1/years) and power of the strongest
// non-constant bin. A flat spectrum yields zero frequency.
func (s *Spectrum) Dominant() (freq, power float64) {
	idx := 0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			power = s.Power[i]
			idx = i
		}
	}
	if idx == 0 || s.Interval <= 0 {
		return 0, power
	}
	return float64(idx) / (float64(s.Length) * s.Interval), power
}
