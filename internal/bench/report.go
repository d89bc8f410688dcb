package bench

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/san-kum/nbody/internal/physics"
)

type Sample struct {
	Step   int     `json:"step"`
	Time   float64 `json:"time"`
	Energy float64 `json:"energy"`
}

type Report struct {
	Steps         int                `json:"steps"`
	Dt            float64            `json:"dt"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	Elapsed       time.Duration      `json:"elapsed"`
	Samples       []Sample           `json:"samples,omitempty"`
	Tracks        []physics.Snapshot `json:"tracks,omitempty"`
	// Joules holds the measured energy use per RAPL domain kind. It is nil
	// when no meter ran.
	Joules map[string]float64 `json:"joules,omitempty"`
}

// RelativeDrift is |E_final - E_initial| / |E_initial|.
func (r *Report) RelativeDrift() float64 {
	if r.InitialEnergy == 0 {
		return 0
	}
	return math.Abs(r.FinalEnergy-r.InitialEnergy) / math.Abs(r.InitialEnergy)
}

// Finite reports whether both energies are finite numbers. Non-finite
// energies are kept in the report as they were computed.
func (r *Report) Finite() bool {
	for _, e := range []float64{r.InitialEnergy, r.FinalEnergy} {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}

func (r *Report) StepsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Steps) / r.Elapsed.Seconds()
}

func (r *Report) TotalJoules() float64 {
	total := 0.0
	for _, j := range r.Joules {
		total += j
	}
	return total
}

func FormatEnergy(e float64) string {
	return fmt.Sprintf("%.9f", e)
}

// WriteEnergies prints the initial and final energy, one per line.
func WriteEnergies(w io.Writer, r *Report) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", FormatEnergy(r.InitialEnergy), FormatEnergy(r.FinalEnergy))
	return err
}
