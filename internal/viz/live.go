package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/rng"
)

const (
	historyCapacity = 240
	stepsPerTick    = 8
	chartHeight     = 8
	chartWidth      = 64
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	chartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(34)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps an environment under a uniform random policy and charts the
// tracked state against its reference setpoint.
type Model struct {
	e       *env.Environment
	policy  *rng.Component
	title   string
	tracked string
	index   int

	running bool
	episode int
	ret     float64
	lastRew float64
	failed  error

	stateHist []float64
	refHist   []float64
}

// NewModel wires a watch view around an already seeded environment. The
// tracked name must be one of the composed system's state names.
func NewModel(e *env.Environment, title, tracked string) (Model, error) {
	info := e.System().Info()
	index, ok := info.StatePositions[tracked]
	if !ok {
		return Model{}, fmt.Errorf("viz: no state named %q", tracked)
	}

	// The environment children hang off the root and the scripted runner
	// policy off root+1, so the watch policy draws from root+2.
	seed := e.RootEntropy() + 2
	policy := &rng.Component{}
	policy.Seed(rng.NewTree(&seed))
	policy.NextGenerator()

	m := Model{
		e:         e,
		policy:    policy,
		title:     title,
		tracked:   tracked,
		index:     index,
		running:   true,
		stateHist: make([]float64, 0, historyCapacity),
		refHist:   make([]float64, 0, historyCapacity),
	}
	m.startEpisode()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
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
			m.stateHist = m.stateHist[:0]
			m.refHist = m.refHist[:0]
			m.failed = nil
			m.startEpisode()
		}
	case TickMsg:
		if m.running && m.failed == nil {
			for i := 0; i < stepsPerTick; i++ {
				m.step()
				if m.failed != nil {
					break
				}
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) startEpisode() {
	obs := m.e.Reset()
	m.episode++
	m.ret = 0
	m.lastRew = 0
	m.record(obs.State[m.index], obs.Reference[0])
}

func (m *Model) step() {
	if m.e.Done() {
		m.startEpisode()
		return
	}

	res, err := m.e.Step(m.e.ActionSpace().Sample(m.policy.Rand()))
	if err != nil {
		m.failed = err
		m.running = false
		return
	}

	m.ret += res.Reward
	m.lastRew = res.Reward
	m.record(res.Observation.State[m.index], res.Observation.Reference[0])
}

func (m *Model) record(state, reference float64) {
	m.stateHist = append(m.stateHist, state)
	if len(m.stateHist) > historyCapacity {
		m.stateHist = m.stateHist[1:]
	}
	m.refHist = append(m.refHist, reference)
	if len(m.refHist) > historyCapacity {
		m.refHist = m.refHist[1:]
	}
}

func (m Model) View() string {
	var charts strings.Builder
	if len(m.stateHist) > 1 {
		charts.WriteString(chartStyle.Render(asciigraph.Plot(m.stateHist,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption(m.tracked),
		)))
		charts.WriteString("\n")
		charts.WriteString(chartStyle.Render(asciigraph.Plot(m.refHist,
			asciigraph.Height(chartHeight/2),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("reference"),
		)))
	}

	status := "RUNNING"
	if m.failed != nil {
		status = errorStyle.Render("FAILED: " + m.failed.Error())
	} else if !m.running {
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(status + "\n\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4fs", m.e.System().T())) + "\n")
	s.WriteString(labelStyle.Render("Cycle") + valueStyle.Render(fmt.Sprintf("%d", m.e.System().K())) + "\n")
	s.WriteString(labelStyle.Render("Episode") + valueStyle.Render(fmt.Sprintf("%d", m.episode)) + "\n")
	s.WriteString(labelStyle.Render("Return") + valueStyle.Render(fmt.Sprintf("%.3f", m.ret)) + "\n")
	s.WriteString(labelStyle.Render("Reward") + valueStyle.Render(fmt.Sprintf("%.3f", m.lastRew)) + "\n")
	s.WriteString(labelStyle.Render("Entropy") + valueStyle.Render(fmt.Sprintf("%d", m.e.RootEntropy())) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause  R:Restart  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, charts.String(), statsStyle.Render(s.String()))
}
