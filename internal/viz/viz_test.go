package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/nbody/internal/physics"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if !c.IsSet(0, 0) || !c.IsSet(3, 3) {
		t.Error("expected dots to be set")
	}
	if c.IsSet(1, 0) {
		t.Error("unexpected dot set")
	}
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("cell 1 = %U, want U+2880", c.Grid[0][1])
	}

	c.Clear()
	if c.String() != string([]rune{blank, blank}) {
		t.Errorf("clear failed: %q", c.String())
	}
}

func TestCanvasDisc(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Disc(4, 4, 1)

	for _, p := range [][2]int{{4, 4}, {3, 4}, {5, 4}, {4, 3}, {4, 5}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("dot %v not set", p)
		}
	}
	if c.IsSet(3, 3) {
		t.Error("corner should be outside a radius-1 disc")
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTickAdvances(t *testing.T) {
	var counted int
	m := NewModel(Options{Dt: 0.01, StepsPerFrame: 10, OnSteps: func(n int) { counted += n }})

	next, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("tick should schedule the next frame")
	}
	m = next.(Model)

	if m.Step() != 10 || counted != 10 {
		t.Errorf("step = %d, counted = %d, want 10", m.Step(), counted)
	}

	ref := physics.NewJovian()
	for i := 0; i < 10; i++ {
		ref.Advance(0.01)
	}
	if m.Energy() != ref.Energy() {
		t.Error("live view diverged from the kernel")
	}
}

func TestModelPauseAndReset(t *testing.T) {
	m := NewModel(Options{StepsPerFrame: 5})

	next, _ := m.Update(key(" "))
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.Step() != 0 {
		t.Errorf("paused model advanced to step %d", m.Step())
	}

	next, _ = m.Update(key(" "))
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.Step() != 5 {
		t.Errorf("step = %d, want 5", m.Step())
	}

	next, _ = m.Update(key("r"))
	m = next.(Model)
	if m.Step() != 0 || m.Energy() != physics.NewJovian().Energy() {
		t.Error("reset did not restore the initial system")
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(Options{})
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelView(t *testing.T) {
	m := NewModel(Options{StepsPerFrame: 50})
	for i := 0; i < 3; i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}

	view := m.View()
	for _, name := range physics.Names {
		if !strings.Contains(view, name) {
			t.Errorf("view missing %s", name)
		}
	}
	if !strings.Contains(view, "energy error") {
		t.Error("view missing energy graph")
	}
}

func TestProjectCentersOrigin(t *testing.T) {
	m := NewModel(Options{})
	p := m.project([3]float64{0, 0, 0})
	if p.x != canvasWidth || p.y != canvasHeight*2 {
		t.Errorf("origin projects to %+v", p)
	}

	edge := m.project([3]float64{m.zoom, 0, 0})
	if edge.x != canvasWidth*2 {
		t.Errorf("zoom radius should reach the right edge, got x=%d", edge.x)
	}
}
