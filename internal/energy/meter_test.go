package energy

import (
	"testing"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name                string
		prev, now, maxRange uint64
		want                uint64
	}{
		{"forward", 100, 250, 1000, 150},
		{"unchanged", 42, 42, 1000, 0},
		{"wrapped", 900, 100, 1000, 200},
		{"wrapped to zero", 600, 0, 1000, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := delta(tt.prev, tt.now, tt.maxRange); got != tt.want {
				t.Errorf("delta(%d, %d, %d) = %d, want %d", tt.prev, tt.now, tt.maxRange, got, tt.want)
			}
		})
	}
}

func TestMeterWithStubDomains(t *testing.T) {
	values := []uint64{500, 900, 100}
	i := 0
	d := &domain{
		name:     "package-0",
		kind:     Package,
		maxRange: 1000,
		read: func() (uint64, error) {
			v := values[i]
			if i < len(values)-1 {
				i++
			}
			return v, nil
		},
	}
	m := &Meter{domains: []*domain{d}}

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if err := m.Sample(); err != nil {
		t.Fatal(err)
	}
	joules, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	// 500 -> 900 -> wrap -> 100 is 400 + 200 microjoules
	if joules[Package] != 600e-6 {
		t.Errorf("package = %v J, want 6e-4", joules[Package])
	}
}
