package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/physics"
)

func TestTracksToSVG(t *testing.T) {
	s := physics.NewJovian()
	tracks := []physics.Snapshot{s.Snapshot(0, 0.01)}
	for i := 1; i <= 3; i++ {
		for j := 0; j < 100; j++ {
			s.Advance(0.01)
		}
		tracks = append(tracks, s.Snapshot(i*100, 0.01))
	}

	svg, err := TracksToSVG(tracks, 400, 300)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("output is not a complete SVG document")
	}
	if n := strings.Count(svg, "<path "); n != physics.NumBodies {
		t.Errorf("expected %d paths, got %d", physics.NumBodies, n)
	}
	if n := strings.Count(svg, "<circle "); n != physics.NumBodies {
		t.Errorf("expected %d markers, got %d", physics.NumBodies, n)
	}
	for _, name := range physics.Names {
		if !strings.Contains(svg, `id="`+name+`"`) {
			t.Errorf("missing path for %s", name)
		}
	}
	if strings.Count(svg, " L") != physics.NumBodies*3 {
		t.Errorf("expected 3 segments per body")
	}
}

func TestTracksToSVGTooShort(t *testing.T) {
	_, err := TracksToSVG([]physics.Snapshot{physics.NewJovian().Snapshot(0, 0.01)}, 100, 100)
	if !errors.Is(err, dynamo.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
