package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/nbody/internal/bench"
)

const namespace = "nbody"

// Collector exports benchmark runs to Prometheus. It implements bench.Hook.
type Collector struct {
	runsTotal     *prometheus.CounterVec
	stepsTotal    prometheus.Counter
	energy        *prometheus.GaugeVec
	drift         prometheus.Gauge
	samplesTotal  prometheus.Counter
	runDuration   prometheus.Histogram
	stepsPerSec   prometheus.Gauge
	nonFiniteRuns prometheus.Counter
	joules        *prometheus.GaugeVec
	preset        string
}

// NewCollector registers the run collectors on reg. preset labels runs_total.
func NewCollector(reg prometheus.Registerer, preset string) *Collector {
	if preset == "" {
		preset = "custom"
	}
	c := &Collector{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of completed benchmark runs",
			},
			[]string{"preset"},
		),
		stepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of kernel advance steps",
		}),
		energy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "energy",
				Help:      "Total system energy of the latest run",
			},
			[]string{"phase"},
		),
		drift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_relative_drift",
			Help:      "Relative energy drift of the latest run",
		}),
		samplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "energy_samples_total",
			Help:      "Total number of energy samples taken",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time spent advancing the kernel per run",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		stepsPerSec: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "steps_per_second",
			Help:      "Advance throughput of the latest run",
		}),
		nonFiniteRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nonfinite_runs_total",
			Help:      "Runs whose final energy was NaN or Inf",
		}),
		joules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "energy_joules",
				Help:      "Measured RAPL energy use of the latest run",
			},
			[]string{"domain"},
		),
		preset: preset,
	}

	reg.MustRegister(
		c.runsTotal,
		c.stepsTotal,
		c.energy,
		c.drift,
		c.samplesTotal,
		c.runDuration,
		c.stepsPerSec,
		c.nonFiniteRuns,
		c.joules,
	)

	return c
}

func (c *Collector) OnStart(cfg bench.Config, initialEnergy float64) {
	c.energy.WithLabelValues("initial").Set(initialEnergy)
}

// OnSample also keeps energy{phase="current"} at the latest sample.
func (c *Collector) OnSample(s bench.Sample) {
	c.samplesTotal.Inc()
	c.energy.WithLabelValues("current").Set(s.Energy)
}

func (c *Collector) OnFinish(r *bench.Report) {
	c.runsTotal.WithLabelValues(c.preset).Inc()
	c.stepsTotal.Add(float64(r.Steps))
	c.energy.WithLabelValues("final").Set(r.FinalEnergy)
	c.drift.Set(r.RelativeDrift())
	c.runDuration.Observe(r.Elapsed.Seconds())
	c.stepsPerSec.Set(r.StepsPerSecond())
	if !r.Finite() {
		c.nonFiniteRuns.Inc()
	}
	for domain, j := range r.Joules {
		c.joules.WithLabelValues(domain).Set(j)
	}
}

// ObserveSteps counts kernel steps taken outside a bench run, such as by the
// stream server.
func (c *Collector) ObserveSteps(n int) {
	c.stepsTotal.Add(float64(n))
}
