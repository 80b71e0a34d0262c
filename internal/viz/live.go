package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/curvesim/internal/dynamo"
	"github.com/san-kum/curvesim/internal/geometry"
	"github.com/san-kum/curvesim/internal/metrics"
	"github.com/san-kum/curvesim/internal/particle"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	maxStepsPerTick = 4096
	ellipseSegments = 240
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a simulator a few times per frame and draws the particles on
// the ellipse with an energy trace.
type Model struct {
	sim     *dynamo.Simulator
	e       geometry.Ellipse
	title   string
	initial dynamo.Generation
	gen     dynamo.Generation
	canvas  *Canvas

	running       bool
	done          bool
	err           error
	stepsPerTick  int
	collisions    int
	violations    int
	stalls        int
	energy        []float64
	initialEnergy float64
}

func NewModel(sim *dynamo.Simulator, particles []particle.Particle, title string) Model {
	e := sim.Ellipse()
	gen := dynamo.Generation{Particles: particles}
	c := NewCanvas(width, height)
	c.Fit(e.A, e.B)
	return Model{
		sim:           sim,
		e:             e,
		title:         title,
		initial:       gen.Clone(),
		gen:           gen.Clone(),
		canvas:        c,
		running:       true,
		stepsPerTick:  8,
		energy:        make([]float64, 0, historyCapacity),
		initialEnergy: metrics.TotalEnergy(e, particles),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = min(2*m.stepsPerTick, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick driver steps and records the energy.
func (m *Model) advance() {
	maxTime := m.sim.Config().MaxTime
	for i := 0; i < m.stepsPerTick; i++ {
		if m.gen.Time >= maxTime {
			m.done = true
			break
		}
		next, rep, err := m.sim.Step(m.gen)
		if err != nil {
			m.err = err
			m.done = true
			break
		}
		m.gen = next
		m.collisions += len(rep.Events)
		m.violations += len(rep.Violations)
		if rep.Clamped {
			m.stalls++
		}
	}

	m.energy = append(m.energy, metrics.TotalEnergy(m.e, m.gen.Particles))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) reset() {
	m.gen = m.initial.Clone()
	m.energy = m.energy[:0]
	m.collisions, m.violations, m.stalls = 0, 0, 0
	m.done, m.err = false, nil
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.DrawEllipse(m.e, ellipseSegments)
	for _, p := range m.gen.Particles {
		m.canvas.DrawDisc(p.Position(), p.Radius())
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return Bad.Render("ERROR")
	case m.done:
		return Good.Render("DONE")
	case !m.running:
		return Warn.Render("PAUSED")
	}
	return Good.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	cfg := m.sim.Config()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(ProgressBar(m.gen.Time/cfg.MaxTime, 30) + "\n\n")

	if len(m.energy) > 1 {
		s.WriteString(graphStyle.Render(Plot(RelativeDrift(m.energy, m.initialEnergy), 30, 4, "energy drift")) + "\n")
	}

	energy := metrics.TotalEnergy(m.e, m.gen.Particles)
	drift := 0.0
	if m.initialEnergy != 0 {
		drift = (energy - m.initialEnergy) / m.initialEnergy
	}
	s.WriteString(metricLine("Time", fmt.Sprintf("%.3f / %.1f", m.gen.Time, cfg.MaxTime)))
	s.WriteString(metricLine("Steps", fmt.Sprintf("%d (x%d)", m.gen.Step, m.stepsPerTick)))
	s.WriteString(metricLine("Particles", fmt.Sprintf("%d", len(m.gen.Particles))))
	s.WriteString(metricLine("Method", cfg.Method.String()))
	s.WriteString(metricLine("Collisions", fmt.Sprintf("%d", m.collisions)))
	s.WriteString(metricLine("Violations", fmt.Sprintf("%d", m.violations)))
	s.WriteString(metricLine("Stalls", fmt.Sprintf("%d", m.stalls)))
	s.WriteString(metricLine("Energy", fmt.Sprintf("%.10f", energy)))
	s.WriteString(metricLine("Rel. drift", fmt.Sprintf("%+.2e", drift)))
	s.WriteString(metricLine("Momentum", fmt.Sprintf("%+.10f", metrics.TotalConjugateMomentum(m.e, m.gen.Particles))))
	if m.err != nil {
		s.WriteString("\n" + Bad.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit +/-:Speed"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
