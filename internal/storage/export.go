package storage

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/san-kum/nbody/internal/bench"
	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/physics"
)

type ExportData struct {
	Run        RunMetadata        `json:"run"`
	Samples    []bench.Sample     `json:"samples"`
	Tracks     []physics.Snapshot `json:"tracks,omitempty"`
	Iterations *Iterations        `json:"iterations,omitempty"`
}

// ExportJSON writes a stored run, including its samples and tracks, to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: *meta, Samples: samples}
	if meta.Tracked {
		tracks, err := s.LoadTracks(runID)
		if err != nil && !errors.Is(err, dynamo.ErrRunNotFound) {
			return err
		}
		data.Tracks = tracks
	}
	if meta.Iterations > 0 {
		it, err := s.LoadIterations(runID)
		if err != nil && !errors.Is(err, dynamo.ErrRunNotFound) {
			return err
		}
		data.Iterations = it
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
