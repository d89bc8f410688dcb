package bench

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/nbody/internal/logger"
	"github.com/san-kum/nbody/internal/physics"
)

// cancelCheck is how many steps run between context checks.
const cancelCheck = 1024

// Hook observes a run. Hooks are called synchronously from the run loop.
type Hook interface {
	OnStart(cfg Config, initialEnergy float64)
	OnSample(s Sample)
	OnFinish(r *Report)
}

type Runner struct {
	hooks []Hook
	log   *slog.Logger
}

func NewRunner() *Runner {
	return &Runner{log: logger.L()}
}

func (r *Runner) AddHook(h Hook) { r.hooks = append(r.hooks, h) }

// Run executes the benchmark: a momentum-offset Jovian system advanced
// cfg.Steps times. On cancellation it returns the report so far with ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sys := physics.NewJovian()
	report := &Report{
		Dt:            cfg.Dt,
		InitialEnergy: sys.Energy(),
	}

	r.log.Info("run.started", "steps", cfg.Steps, "dt", cfg.Dt, "initial_energy", report.InitialEnergy)
	for _, h := range r.hooks {
		h.OnStart(cfg, report.InitialEnergy)
	}
	r.sample(report, 0, report.InitialEnergy)
	if cfg.TrackEvery > 0 {
		report.Tracks = append(report.Tracks, sys.Snapshot(0, cfg.Dt))
	}

	start := time.Now()
	for step := 1; step <= cfg.Steps; step++ {
		if (step-1)%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				report.Elapsed = time.Since(start)
				report.FinalEnergy = sys.Energy()
				r.log.Warn("run.canceled", "step", report.Steps, "err", err)
				return report, err
			}
		}

		sys.Advance(cfg.Dt)
		report.Steps = step

		if cfg.SampleEvery > 0 && step%cfg.SampleEvery == 0 && step != cfg.Steps {
			r.sample(report, step, sys.Energy())
		}
		if cfg.TrackEvery > 0 && step%cfg.TrackEvery == 0 {
			report.Tracks = append(report.Tracks, sys.Snapshot(step, cfg.Dt))
		}
	}
	report.Elapsed = time.Since(start)

	report.FinalEnergy = sys.Energy()
	if cfg.Steps > 0 {
		r.sample(report, cfg.Steps, report.FinalEnergy)
	}

	for _, h := range r.hooks {
		h.OnFinish(report)
	}
	r.log.Info("run.finished",
		"steps", report.Steps,
		"final_energy", report.FinalEnergy,
		"drift", report.RelativeDrift(),
		"elapsed", report.Elapsed,
		"finite", report.Finite(),
	)

	return report, nil
}

func (r *Runner) sample(report *Report, step int, e float64) {
	s := Sample{Step: step, Time: float64(step) * report.Dt, Energy: e}
	report.Samples = append(report.Samples, s)
	for _, h := range r.hooks {
		h.OnSample(s)
	}
}
