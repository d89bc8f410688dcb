package bench

import (
	"fmt"
	"strconv"

	"github.com/san-kum/nbody/internal/dynamo"
)

const (
	DefaultSteps = 1000
	DefaultDt    = 0.01
)

type Config struct {
	Steps int
	Dt    float64
	// SampleEvery records energy every n steps; 0 keeps only the endpoints.
	SampleEvery int
	// TrackEvery records body snapshots every n steps; 0 records none.
	TrackEvery int
}

func DefaultConfig() Config {
	return Config{Steps: DefaultSteps, Dt: DefaultDt}
}

func (c Config) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d: %w", c.Steps, dynamo.ErrInvalidArgument)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrInvalidArgument)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample interval must be non-negative, got %d: %w", c.SampleEvery, dynamo.ErrInvalidArgument)
	}
	if c.TrackEvery < 0 {
		return fmt.Errorf("track interval must be non-negative, got %d: %w", c.TrackEvery, dynamo.ErrInvalidArgument)
	}
	return nil
}

// ParseSteps reads the step count from the first argument. A missing or
// unparsable argument yields DefaultSteps; a negative count is rejected.
func ParseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return DefaultSteps, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return DefaultSteps, nil
	}
	if n < 0 {
		return 0, fmt.Errorf("step count %d: %w", n, dynamo.ErrInvalidArgument)
	}
	return n, nil
}
