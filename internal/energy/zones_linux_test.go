//go:build linux

package energy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/dynamo"
)

// fakeSysFS lays out a sysfs tree with one socket: package, core and dram
// powercap zones. It returns the mount point and the powercap class dir.
func fakeSysFS(t *testing.T, maxRange uint64) (mount, zones string) {
	t.Helper()
	mount = t.TempDir()
	zones = filepath.Join(mount, "class", "powercap")
	writeZone(t, zones, "intel-rapl:0", "package-0", maxRange)
	writeZone(t, zones, "intel-rapl:0:0", "core", maxRange)
	writeZone(t, zones, "intel-rapl:0:1", "dram", maxRange)
	return mount, zones
}

func writeZone(t *testing.T, zones, dir, name string, maxRange uint64) {
	t.Helper()
	path := filepath.Join(zones, dir)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"name":                name + "\n",
		"max_energy_range_uj": strconv.FormatUint(maxRange, 10) + "\n",
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(path, file), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	setCounter(t, zones, dir, 0)
}

func setCounter(t *testing.T, zones, dir string, value uint64) {
	t.Helper()
	data := []byte(strconv.FormatUint(value, 10) + "\n")
	if err := os.WriteFile(filepath.Join(zones, dir, "energy_uj"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewMeterDiscoversDomains(t *testing.T) {
	mount, _ := fakeSysFS(t, 1_000_000)

	m, err := NewMeter(Options{SysFS: mount})
	if err != nil {
		t.Fatal(err)
	}
	got := m.Domains()
	if len(got) != 2 || got[0] != "package-0" || got[1] != "dram-0" {
		t.Errorf("domains = %v, want [package-0 dram-0]", got)
	}
}

func TestNewMeterWithoutRAPL(t *testing.T) {
	if _, err := NewMeter(Options{SysFS: t.TempDir()}); !errors.Is(err, dynamo.ErrNoData) {
		t.Errorf("expected ErrNoData for a tree without powercap, got %v", err)
	}
	if _, err := NewMeter(Options{SysFS: filepath.Join(t.TempDir(), "missing")}); !errors.Is(err, dynamo.ErrNoData) {
		t.Errorf("expected ErrNoData for a missing mount, got %v", err)
	}

	// a core-only tree has nothing to count
	mount := t.TempDir()
	writeZone(t, filepath.Join(mount, "class", "powercap"), "intel-rapl:0:0", "core", 1000)
	if _, err := NewMeter(Options{SysFS: mount}); !errors.Is(err, dynamo.ErrNoData) {
		t.Errorf("expected ErrNoData for core-only tree, got %v", err)
	}

	if _, err := NewMeter(Options{SysFS: mount, Interval: -time.Second}); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMeterSkipsUnreadableCounter(t *testing.T) {
	mount, zones := fakeSysFS(t, 1_000_000)
	if err := os.Remove(filepath.Join(zones, "intel-rapl:0:1", "energy_uj")); err != nil {
		t.Fatal(err)
	}

	m, err := NewMeter(Options{SysFS: mount})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Domains(); len(got) != 1 || got[0] != "package-0" {
		t.Errorf("domains = %v, want [package-0]", got)
	}
}

func TestMeterAccumulatesAcrossWraps(t *testing.T) {
	mount, zones := fakeSysFS(t, 1_000_000)
	setCounter(t, zones, "intel-rapl:0", 900_000)
	setCounter(t, zones, "intel-rapl:0:1", 10_000)

	m, err := NewMeter(Options{SysFS: mount})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}

	// package wraps twice between start and stop
	setCounter(t, zones, "intel-rapl:0", 100_000)
	if err := m.Sample(); err != nil {
		t.Fatal(err)
	}
	setCounter(t, zones, "intel-rapl:0", 950_000)
	if err := m.Sample(); err != nil {
		t.Fatal(err)
	}
	setCounter(t, zones, "intel-rapl:0", 50_000)
	setCounter(t, zones, "intel-rapl:0:1", 260_000)

	joules, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if got := joules[Package]; got != 1.15 {
		t.Errorf("package = %v J, want 1.15", got)
	}
	if got := joules[DRAM]; got != 0.25 {
		t.Errorf("dram = %v J, want 0.25", got)
	}
}

func TestMeterBackgroundSampling(t *testing.T) {
	mount, zones := fakeSysFS(t, 1_000_000)

	m, err := NewMeter(Options{SysFS: mount, Interval: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	setCounter(t, zones, "intel-rapl:0", 300_000)
	time.Sleep(20 * time.Millisecond)

	joules, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if joules[Package] != 0.3 {
		t.Errorf("package = %v J, want 0.3", joules[Package])
	}
	m.Close()
}

func TestMeterAsRunHook(t *testing.T) {
	mount, _ := fakeSysFS(t, 1_000_000)

	m, err := NewMeter(Options{SysFS: mount})
	if err != nil {
		t.Fatal(err)
	}
	runner := bench.NewRunner()
	runner.AddHook(m)

	report, err := runner.Run(context.Background(), bench.Config{Steps: 10, Dt: 0.01})
	if err != nil {
		t.Fatal(err)
	}
	if report.Joules == nil {
		t.Fatal("meter did not record joules")
	}
	if _, ok := report.Joules[Package]; !ok {
		t.Errorf("joules missing package: %v", report.Joules)
	}
	if _, ok := report.Joules[DRAM]; !ok {
		t.Errorf("joules missing dram: %v", report.Joules)
	}

	// a meter that never started leaves the report alone
	idle, err := NewMeter(Options{SysFS: mount})
	if err != nil {
		t.Fatal(err)
	}
	r := &bench.Report{}
	idle.OnFinish(r)
	if r.Joules != nil {
		t.Errorf("idle meter wrote joules: %v", r.Joules)
	}
}
