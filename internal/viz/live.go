package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nbody/internal/physics"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	trailCapacity   = 400
	historyCapacity = 120
	defaultZoom     = 32.0
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

type point struct{ x, y int }

// Options configures the live orrery.
type Options struct {
	Dt            float64
	StepsPerFrame int
	// OnSteps, when set, is told how many kernel steps each frame took.
	OnSteps func(n int)
}

// Model advances a five-body kernel a few steps per frame and draws a
// top-down (x/y) view with trails and an energy error graph.
type Model struct {
	opts    Options
	sys     *physics.System
	step    int
	e0      float64
	zoom    float64
	running bool
	canvas  *Canvas
	trails  [physics.NumBodies][]point
	errHist []float64 // relative energy error, parts per million
}

func NewModel(opts Options) Model {
	if opts.Dt <= 0 {
		opts.Dt = 0.01
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 20
	}
	m := Model{
		opts:    opts,
		zoom:    defaultZoom,
		running: true,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
	}
	m.reset()
	return m
}

func (m *Model) reset() {
	m.sys = physics.NewJovian()
	m.step = 0
	m.e0 = m.sys.Energy()
	for i := range m.trails {
		m.trails[i] = make([]point, 0, trailCapacity)
	}
	m.errHist = make([]float64, 0, historyCapacity)
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.zoom = math.Max(m.zoom/1.25, 1)
			m.clearTrails()
		case "-", "_":
			m.zoom = math.Min(m.zoom*1.25, 200)
			m.clearTrails()
		}
		return m, nil

	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}

	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.opts.StepsPerFrame; i++ {
		m.sys.Advance(m.opts.Dt)
	}
	m.step += m.opts.StepsPerFrame
	if m.opts.OnSteps != nil {
		m.opts.OnSteps(m.opts.StepsPerFrame)
	}

	for i := 0; i < physics.NumBodies; i++ {
		p := m.project(m.sys.Body(i).Position)
		trail := m.trails[i]
		if len(trail) == trailCapacity {
			trail = trail[1:]
		}
		m.trails[i] = append(trail, p)
	}

	if len(m.errHist) == historyCapacity {
		m.errHist = m.errHist[1:]
	}
	m.errHist = append(m.errHist, m.relativeError()*1e6)
}

func (m *Model) clearTrails() {
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
}

func (m Model) relativeError() float64 {
	if m.e0 == 0 {
		return 0
	}
	return (m.sys.Energy() - m.e0) / math.Abs(m.e0)
}

// project maps AU to canvas dots, the sun's starting point at the centre and
// zoom AU from centre to the horizontal edge.
func (m Model) project(p [3]float64) point {
	w, h := canvasWidth*2, canvasHeight*4
	scale := float64(w/2) / m.zoom
	return point{
		x: w/2 + int(math.Round(p[0]*scale)),
		y: h/2 - int(math.Round(p[1]*scale)),
	}
}

func (m Model) render() string {
	m.canvas.Clear()
	for _, trail := range m.trails {
		for _, p := range trail {
			m.canvas.Set(p.x, p.y)
		}
	}
	for i := 0; i < physics.NumBodies; i++ {
		p := m.project(m.sys.Body(i).Position)
		r := 1
		if i == 0 {
			r = 2
		}
		m.canvas.Disc(p.x, p.y, r)
	}
	return m.canvas.String()
}

func (m Model) View() string {
	status := statusRunning.Render("RUNNING")
	if !m.running {
		status = statusPaused.Render("PAUSED")
	}

	var stats strings.Builder
	stats.WriteString(headerStyle.Render("JOVIAN FIVE-BODY") + "\n")
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("status", status)
	row("step", fmt.Sprintf("%d", m.step))
	row("time", fmt.Sprintf("%.2f yr", float64(m.step)*m.opts.Dt))
	row("energy", fmt.Sprintf("%.9f", m.sys.Energy()))
	row("error", fmt.Sprintf("%+.3e", m.relativeError()))
	row("zoom", fmt.Sprintf("%.1f AU", m.zoom))

	stats.WriteString("\n")
	for i, name := range physics.Names {
		b := m.sys.Body(i)
		r := math.Sqrt(b.Position[0]*b.Position[0] + b.Position[1]*b.Position[1] + b.Position[2]*b.Position[2])
		stats.WriteString(bodyStyles[i].Render(fmt.Sprintf("● %-8s %6.2f AU", name, r)) + "\n")
	}

	if len(m.errHist) > 1 {
		graph := asciigraph.Plot(m.errHist,
			asciigraph.Height(6),
			asciigraph.Width(24),
			asciigraph.Precision(3),
			asciigraph.Caption("energy error (ppm)"),
		)
		stats.WriteString(graphStyle.Render(graph) + "\n")
	}

	stats.WriteString(helpStyle.Render("space pause · r reset · +/- zoom · q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.render()),
		statsStyle.Render(stats.String()),
	)
}

// Step is the number of kernel steps taken since the last reset.
func (m Model) Step() int { return m.step }

// Energy is the kernel's current total energy.
func (m Model) Energy() float64 { return m.sys.Energy() }
