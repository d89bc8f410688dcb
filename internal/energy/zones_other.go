//go:build !linux

package energy

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/nbody/internal/dynamo"
)

func discover(mount string, log *slog.Logger) ([]*domain, error) {
	return nil, fmt.Errorf("RAPL counters are only read on linux: %w", dynamo.ErrNoData)
}
