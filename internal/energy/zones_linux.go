//go:build linux

package energy

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/procfs/sysfs"

	"github.com/san-kum/nbody/internal/dynamo"
)

// discover reads the powercap zones the way node_exporter's rapl collector
// does. core and uncore are part of the package reading and are skipped.
func discover(mount string, log *slog.Logger) ([]*domain, error) {
	fs, err := sysfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrNoData, err)
	}
	zones, err := sysfs.GetRaplZones(fs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrNoData, err)
	}

	var domains []*domain
	for _, z := range zones {
		if z.Name != Package && z.Name != DRAM {
			continue
		}
		name := fmt.Sprintf("%s-%d", z.Name, z.Index)
		if _, err := z.GetEnergyMicrojoules(); err != nil {
			log.Debug("rapl.domain_skipped", "domain", name, "path", z.Path, "err", err)
			continue
		}
		domains = append(domains, &domain{
			name:     name,
			kind:     z.Name,
			read:     z.GetEnergyMicrojoules,
			maxRange: z.MaxMicrojoules,
		})
	}
	return domains, nil
}
