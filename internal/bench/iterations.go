package bench

import (
	"math"
	"sort"
)

// Stat is a mean with its population standard deviation.
type Stat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

func newStat(vals []float64) Stat {
	if len(vals) == 0 {
		return Stat{}
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	ss := 0.0
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	return Stat{Mean: mean, Std: math.Sqrt(ss / float64(len(vals)))}
}

// Summary aggregates repeated runs of the same configuration.
type Summary struct {
	Iterations int             `json:"iterations"`
	Seconds    Stat            `json:"seconds"`
	Joules     map[string]Stat `json:"joules,omitempty"`
	// TotalJoules is only set when every iteration was metered.
	TotalJoules *Stat `json:"total_joules,omitempty"`
}

// Summarize computes mean and deviation of duration and energy use over
// reports. A domain is summarised only if every report measured it.
func Summarize(reports []*Report) Summary {
	sum := Summary{Iterations: len(reports)}
	if len(reports) == 0 {
		return sum
	}

	seconds := make([]float64, len(reports))
	for i, r := range reports {
		seconds[i] = r.Elapsed.Seconds()
	}
	sum.Seconds = newStat(seconds)

	metered := true
	for _, r := range reports {
		if r.Joules == nil {
			metered = false
			break
		}
	}
	if !metered {
		return sum
	}

	totals := make([]float64, len(reports))
	for i, r := range reports {
		totals[i] = r.TotalJoules()
	}
	total := newStat(totals)
	sum.TotalJoules = &total

	sum.Joules = make(map[string]Stat)
	for _, domain := range Domains(reports[0]) {
		vals := make([]float64, 0, len(reports))
		for _, r := range reports {
			j, ok := r.Joules[domain]
			if !ok {
				break
			}
			vals = append(vals, j)
		}
		if len(vals) == len(reports) {
			sum.Joules[domain] = newStat(vals)
		}
	}
	return sum
}

// Domains returns the measured domain kinds of r in sorted order.
func Domains(r *Report) []string {
	names := make([]string, 0, len(r.Joules))
	for name := range r.Joules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
