package energy

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/logger"
)

const (
	DefaultSysFS    = "/sys"
	DefaultInterval = time.Second
)

// Domain kinds reported in bench.Report.Joules.
const (
	Package = "package"
	DRAM    = "dram"
)

type Options struct {
	// SysFS is the sysfs mount point. Defaults to DefaultSysFS.
	SysFS string
	// Interval between background samples. Zero disables background
	// sampling, leaving only the readings taken at start and stop.
	Interval time.Duration
}

type domain struct {
	name     string
	kind     string
	read     func() (uint64, error)
	maxRange uint64
	last     uint64
	used     uint64
}

type Meter struct {
	mu       sync.Mutex
	domains  []*domain
	interval time.Duration
	running  bool
	stop     chan struct{}
	done     chan struct{}
	log      *slog.Logger
}

// NewMeter discovers the readable package and DRAM domains.
func NewMeter(opts Options) (*Meter, error) {
	if opts.SysFS == "" {
		opts.SysFS = DefaultSysFS
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("interval must not be negative, got %v: %w", opts.Interval, dynamo.ErrInvalidArgument)
	}

	log := logger.L()
	domains, err := discover(opts.SysFS, log)
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("no readable RAPL package or dram domains under %s: %w", opts.SysFS, dynamo.ErrNoData)
	}

	m := &Meter{domains: domains, interval: opts.Interval, log: log}
	log.Info("rapl.ready", "sysfs", opts.SysFS, "domains", m.Domains())
	return m, nil
}

// delta is the energy used between two readings of a counter that wraps
// back to zero after maxRange.
func delta(prev, now, maxRange uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	return maxRange - prev + now
}

// Domains lists the counted domains, such as package-0 or dram-0.
func (m *Meter) Domains() []string {
	names := make([]string, len(m.domains))
	for i, d := range m.domains {
		names[i] = d.name
	}
	return names
}

// Start takes the baseline reading and, if an interval is set, begins
// sampling in the background. Starting a running meter restarts it.
func (m *Meter) Start() error {
	m.Close()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.domains {
		v, err := d.read()
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		d.last = v
		d.used = 0
	}

	if m.interval > 0 {
		m.stop = make(chan struct{})
		m.done = make(chan struct{})
		go m.sampleLoop(m.stop, m.done)
	}
	m.running = true
	return nil
}

func (m *Meter) sampleLoop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := m.Sample(); err != nil {
				m.log.Warn("rapl.sample_failed", "err", err)
			}
		}
	}
}

// Sample adds the energy used since the previous reading. Sampling more often
// than the counters wrap keeps the totals exact.
func (m *Meter) Sample() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sampleLocked()
}

func (m *Meter) sampleLocked() error {
	for _, d := range m.domains {
		v, err := d.read()
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		d.used += delta(d.last, v, d.maxRange)
		d.last = v
	}
	return nil
}

// Stop takes a final reading and returns joules used per domain kind since
// Start. Sockets of the same kind are summed.
func (m *Meter) Stop() (map[string]float64, error) {
	m.Close()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.sampleLocked(); err != nil {
		return nil, err
	}

	joules := make(map[string]float64)
	for _, d := range m.domains {
		joules[d.kind] += float64(d.used) / 1e6
	}
	return joules, nil
}

// Close ends background sampling without a final reading. It is safe to call
// on a stopped meter.
func (m *Meter) Close() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.running = false
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (m *Meter) OnStart(cfg bench.Config, initialEnergy float64) {
	if err := m.Start(); err != nil {
		m.log.Warn("rapl.start_failed", "err", err)
	}
}

func (m *Meter) OnSample(s bench.Sample) {}

func (m *Meter) OnFinish(r *bench.Report) {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if !running {
		return
	}

	joules, err := m.Stop()
	if err != nil {
		m.log.Warn("rapl.stop_failed", "err", err)
		return
	}
	r.Joules = joules
	m.log.Info("rapl.measured", "joules", joules, "elapsed", r.Elapsed)
}
