package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/logger"
	"github.com/san-kum/nbody/internal/physics"
)

const (
	metadataFile   = "metadata.json"
	energyFile     = "energy.csv"
	orbitsFile     = "orbits.csv"
	iterationsCSV  = "iterations.csv"
	iterationsJSON = "iterations.json"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string    `json:"id"`
	Preset         string    `json:"preset"`
	Timestamp      time.Time `json:"timestamp"`
	Steps          int       `json:"steps"`
	Dt             float64   `json:"dt"`
	InitialEnergy  float64   `json:"initial_energy"`
	FinalEnergy    float64   `json:"final_energy"`
	RelativeDrift  float64   `json:"relative_drift"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Samples        int       `json:"samples"`
	Tracked        bool      `json:"tracked"`
	// Joules is the RAPL energy use per domain kind, when it was measured.
	Joules     map[string]float64 `json:"joules,omitempty"`
	Iterations int                `json:"iterations,omitempty"`
}

// Save writes the report under a new run directory and returns its id.
func (s *Store) Save(preset string, report *bench.Report) (string, error) {
	if preset == "" {
		preset = "custom"
	}
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", preset, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:             runID,
		Preset:         preset,
		Timestamp:      ts,
		Steps:          report.Steps,
		Dt:             report.Dt,
		InitialEnergy:  report.InitialEnergy,
		FinalEnergy:    report.FinalEnergy,
		RelativeDrift:  report.RelativeDrift(),
		ElapsedSeconds: report.Elapsed.Seconds(),
		Samples:        len(report.Samples),
		Tracked:        len(report.Tracks) > 0,
		Joules:         report.Joules,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, energyFile), report.Samples); err != nil {
		return "", err
	}
	if meta.Tracked {
		if err := writeTracks(filepath.Join(runDir, orbitsFile), report.Tracks); err != nil {
			return "", err
		}
	}

	logger.L().Info("store.saved", "id", runID, "dir", runDir, "samples", meta.Samples)
	return runID, nil
}

// Iterations is the stored form of a repeated run.
type Iterations struct {
	Summary bench.Summary    `json:"summary"`
	Runs    []IterationEntry `json:"runs"`
}

type IterationEntry struct {
	Iteration int                `json:"iteration"`
	Seconds   float64            `json:"seconds"`
	Energy    float64            `json:"final_energy"`
	Joules    map[string]float64 `json:"joules,omitempty"`
}

// SaveIterations records every repetition of a saved run in iterations.csv
// and the summary in iterations.json, and marks the run's metadata.
func (s *Store) SaveIterations(runID string, reports []*bench.Report) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	runDir := filepath.Join(s.baseDir, runID)

	data := Iterations{Summary: bench.Summarize(reports), Runs: make([]IterationEntry, len(reports))}
	var domains []string
	if data.Summary.TotalJoules != nil {
		domains = bench.Domains(reports[0])
	}

	header := append([]string{"iteration", "seconds", "final_energy"}, domains...)
	if domains != nil {
		header = append(header, "total_joules")
	}
	rows := make([][]string, len(reports))
	for i, r := range reports {
		data.Runs[i] = IterationEntry{
			Iteration: i + 1,
			Seconds:   r.Elapsed.Seconds(),
			Energy:    r.FinalEnergy,
			Joules:    r.Joules,
		}
		row := []string{strconv.Itoa(i + 1), formatFloat(r.Elapsed.Seconds()), formatFloat(r.FinalEnergy)}
		for _, d := range domains {
			row = append(row, formatFloat(r.Joules[d]))
		}
		if domains != nil {
			row = append(row, formatFloat(r.TotalJoules()))
		}
		rows[i] = row
	}

	if err := writeCSV(filepath.Join(runDir, iterationsCSV), header, rows); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(runDir, iterationsJSON), data); err != nil {
		return err
	}

	meta.Iterations = len(reports)
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	logger.L().Info("store.iterations_saved", "id", runID, "iterations", len(reports))
	return nil
}

func (s *Store) LoadIterations(runID string) (*Iterations, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, iterationsJSON))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var it Iterations
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("decode %s iterations: %w", runID, err)
	}
	return &it, nil
}

// List returns every stored run, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]bench.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, notFound(runID, err)
	}

	samples := make([]bench.Sample, 0, len(records))
	for i, record := range records {
		if len(record) != 3 {
			return nil, fmt.Errorf("%s line %d: want 3 fields, got %d", energyFile, i+2, len(record))
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", energyFile, i+2, err)
		}
		samples = append(samples, bench.Sample{Step: int(vals[0]), Time: vals[1], Energy: vals[2]})
	}
	return samples, nil
}

// LoadTracks regroups orbits.csv rows into one snapshot per recorded step.
func (s *Store) LoadTracks(runID string) ([]physics.Snapshot, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, orbitsFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	if len(records)%physics.NumBodies != 0 {
		return nil, fmt.Errorf("%s: %d rows is not a multiple of %d bodies", orbitsFile, len(records), physics.NumBodies)
	}

	tracks := make([]physics.Snapshot, 0, len(records)/physics.NumBodies)
	for i := 0; i < len(records); i += physics.NumBodies {
		var snap physics.Snapshot
		for b := 0; b < physics.NumBodies; b++ {
			record := records[i+b]
			if len(record) != 10 {
				return nil, fmt.Errorf("%s line %d: want 10 fields, got %d", orbitsFile, i+b+2, len(record))
			}
			vals, err := parseFloats(append(record[:3:3], record[4:]...))
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", orbitsFile, i+b+2, err)
			}
			snap.Step = int(vals[0])
			snap.Time = vals[1]
			snap.Energy = vals[2]
			snap.Bodies[b] = physics.BodySnapshot{
				Name:     record[3],
				Position: [3]float64{vals[3], vals[4], vals[5]},
				Velocity: [3]float64{vals[6], vals[7], vals[8]},
			}
		}
		tracks = append(tracks, snap)
	}
	return tracks, nil
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", dynamo.ErrRunNotFound, runID)
	}
	return err
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSamples(path string, samples []bench.Sample) error {
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{strconv.Itoa(s.Step), formatFloat(s.Time), formatFloat(s.Energy)})
	}
	return writeCSV(path, []string{"step", "time", "energy"}, rows)
}

func writeTracks(path string, tracks []physics.Snapshot) error {
	rows := make([][]string, 0, len(tracks)*physics.NumBodies)
	for _, snap := range tracks {
		for _, b := range snap.Bodies {
			rows = append(rows, []string{
				strconv.Itoa(snap.Step), formatFloat(snap.Time), formatFloat(snap.Energy), b.Name,
				formatFloat(b.Position[0]), formatFloat(b.Position[1]), formatFloat(b.Position[2]),
				formatFloat(b.Velocity[0]), formatFloat(b.Velocity[1]), formatFloat(b.Velocity[2]),
			})
		}
	}
	header := []string{"step", "time", "energy", "body", "x", "y", "z", "vx", "vy", "vz"}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// readCSV returns the data rows without the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// formatFloat keeps full precision so energies survive a round trip.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
