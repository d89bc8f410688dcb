package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/logger"
	"github.com/san-kum/nbody/internal/storage"
)

// Scenario is a scripted sequence of benchmark runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Iterations repeats every step; the last repetition is the one saved.
	Iterations int            `yaml:"iterations"`
	Steps      []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset, if one is named, and overrides any
// non-zero field on top of it.
type ScenarioStep struct {
	Preset      string  `yaml:"preset"`
	Steps       int     `yaml:"steps"`
	Dt          float64 `yaml:"dt"`
	SampleEvery int     `yaml:"sample_every"`
	TrackEvery  int     `yaml:"track_every"`
	SaveAs      string  `yaml:"save_as"`
}

// StepResult pairs a finished run with the id it was saved under. RunID is
// empty when no store was given.
type StepResult struct {
	Name    string
	RunID   string
	Report  *bench.Report
	Summary bench.Summary
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps: %w", path, dynamo.ErrInvalidArgument)
	}
	if scenario.Iterations < 0 {
		return nil, fmt.Errorf("scenario %s has %d iterations: %w", path, scenario.Iterations, dynamo.ErrInvalidArgument)
	}
	return &scenario, nil
}

// Config resolves the step to a bench configuration.
func (s ScenarioStep) Config() (bench.Config, error) {
	cfg := bench.DefaultConfig()
	if s.Preset != "" {
		p, err := config.LookupPreset(s.Preset)
		if err != nil {
			return cfg, err
		}
		cfg = p.Bench()
	}
	if s.Steps != 0 {
		cfg.Steps = s.Steps
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.SampleEvery != 0 {
		cfg.SampleEvery = s.SampleEvery
	}
	if s.TrackEvery != 0 {
		cfg.TrackEvery = s.TrackEvery
	}
	return cfg, cfg.Validate()
}

func (s ScenarioStep) name() string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	default:
		return "scenario"
	}
}

// RunScenario executes the steps in order, each one scenario.Iterations times.
// Every step is validated before the first one runs. Results of completed steps are returned even when a later
// step fails.
func RunScenario(ctx context.Context, scenario *Scenario, runner *bench.Runner, st *storage.Store) ([]StepResult, error) {
	configs := make([]bench.Config, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		configs[i] = cfg
	}

	iterations := scenario.Iterations
	if iterations < 1 {
		iterations = 1
	}

	log := logger.L()
	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		name := step.name()
		log.Info("scenario.step", "scenario", scenario.Name, "index", i+1, "name", name, "steps", configs[i].Steps)

		reports := make([]*bench.Report, 0, iterations)
		for n := 0; n < iterations; n++ {
			report, err := runner.Run(ctx, configs[i])
			if err != nil {
				return results, fmt.Errorf("step %d run: %w", i+1, err)
			}
			reports = append(reports, report)
		}

		report := reports[len(reports)-1]
		res := StepResult{Name: name, Report: report, Summary: bench.Summarize(reports)}
		if st != nil {
			id, err := st.Save(name, report)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			if iterations > 1 {
				if err := st.SaveIterations(id, reports); err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
			}
			res.RunID = id
		}
		results = append(results, res)
	}
	return results, nil
}
