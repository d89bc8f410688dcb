package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/nbody/internal/dynamo"
)

var Presets = map[string]*Config{
	"benchmark": {Steps: 1000, Dt: 0.01},
	"quick":     {Steps: 10, Dt: 0.01},
	"game":      {Steps: 50_000_000, Dt: 0.01, SampleEvery: 500_000},
	"orbit":     {Steps: 200_000, Dt: 0.01, SampleEvery: 1000, TrackEvery: 500},
	"drift":     {Steps: 100_000, Dt: 0.01, SampleEvery: 100, Integrator: "leapfrog"},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

// LookupPreset is GetPreset with an error naming the available presets.
func LookupPreset(name string) (*Config, error) {
	cfg := GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownPreset, name, ListPresets())
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
