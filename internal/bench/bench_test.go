package bench

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nbody/internal/dynamo"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{"absent", nil, DefaultSteps, false},
		{"explicit", []string{"5000"}, 5000, false},
		{"zero", []string{"0"}, 0, false},
		{"unparsable", []string{"many"}, DefaultSteps, false},
		{"float", []string{"1.5"}, DefaultSteps, false},
		{"negative", []string{"-1"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSteps(tt.args)
			if tt.wantErr {
				if !errors.Is(err, dynamo.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSteps(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative steps", Config{Steps: -1, Dt: 0.01}},
		{"zero dt", Config{Steps: 10, Dt: 0}},
		{"negative sample", Config{Steps: 10, Dt: 0.01, SampleEvery: -1}},
		{"negative track", Config{Steps: 10, Dt: 0.01, TrackEvery: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestRunReferenceOutput(t *testing.T) {
	report, err := NewRunner().Run(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteEnergies(&buf, report); err != nil {
		t.Fatal(err)
	}

	want := "-0.169075164\n-0.169087605\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if report.Steps != DefaultSteps {
		t.Errorf("steps = %d, want %d", report.Steps, DefaultSteps)
	}
	if !report.Finite() {
		t.Error("reference run should be finite")
	}
}

func TestRunZeroSteps(t *testing.T) {
	report, err := NewRunner().Run(context.Background(), Config{Steps: 0, Dt: DefaultDt})
	if err != nil {
		t.Fatal(err)
	}
	if report.InitialEnergy != report.FinalEnergy {
		t.Errorf("zero steps changed energy: %v -> %v", report.InitialEnergy, report.FinalEnergy)
	}
	if len(report.Samples) != 1 {
		t.Errorf("expected only the initial sample, got %d", len(report.Samples))
	}
	if report.RelativeDrift() != 0 {
		t.Errorf("drift = %v, want 0", report.RelativeDrift())
	}
}

func TestRunRejectsNegativeSteps(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), Config{Steps: -10, Dt: DefaultDt})
	if !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRunSamplingAndTracks(t *testing.T) {
	cfg := Config{Steps: 100, Dt: 0.01, SampleEvery: 25, TrackEvery: 50}
	report, err := NewRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	wantSteps := []int{0, 25, 50, 75, 100}
	if len(report.Samples) != len(wantSteps) {
		t.Fatalf("got %d samples, want %d", len(report.Samples), len(wantSteps))
	}
	for i, s := range report.Samples {
		if s.Step != wantSteps[i] {
			t.Errorf("sample %d step = %d, want %d", i, s.Step, wantSteps[i])
		}
		if math.Abs(s.Time-float64(s.Step)*0.01) > 1e-12 {
			t.Errorf("sample %d time = %v", i, s.Time)
		}
	}
	if last := report.Samples[len(report.Samples)-1]; last.Energy != report.FinalEnergy {
		t.Error("last sample should be the final energy")
	}

	if len(report.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(report.Tracks))
	}
	if report.Tracks[2].Step != 100 {
		t.Errorf("last track step = %d", report.Tracks[2].Step)
	}
}

func TestRunDeterministic(t *testing.T) {
	cfg := Config{Steps: 300, Dt: 0.01, SampleEvery: 10}
	a, err := NewRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner().Run(ctx, Config{Steps: 1_000_000, Dt: 0.01})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil || report.Steps != 0 {
		t.Errorf("expected an empty partial report, got %+v", report)
	}
}

type recordingHook struct {
	started  bool
	samples  []Sample
	finished *Report
}

func (h *recordingHook) OnStart(cfg Config, e float64) { h.started = true }
func (h *recordingHook) OnSample(s Sample)             { h.samples = append(h.samples, s) }
func (h *recordingHook) OnFinish(r *Report)            { h.finished = r }

func TestRunHooks(t *testing.T) {
	hook := &recordingHook{}
	runner := NewRunner()
	runner.AddHook(hook)

	report, err := runner.Run(context.Background(), Config{Steps: 20, Dt: 0.01, SampleEvery: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !hook.started {
		t.Error("OnStart not called")
	}
	if len(hook.samples) != 3 {
		t.Errorf("expected 3 samples, got %d", len(hook.samples))
	}
	if hook.finished != report {
		t.Error("OnFinish should receive the returned report")
	}
}

func TestReportFinite(t *testing.T) {
	r := &Report{InitialEnergy: -0.1, FinalEnergy: math.NaN()}
	if r.Finite() {
		t.Error("NaN energy reported as finite")
	}
	if FormatEnergy(math.Inf(-1)) != "-Inf" {
		t.Errorf("non-finite energy should format as-is, got %s", FormatEnergy(math.Inf(-1)))
	}
}
