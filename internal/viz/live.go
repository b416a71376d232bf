package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/sysdyn/internal/sysdyn"
)

const liveHistory = 200

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the bubbletea model for the live stepping view. It owns the
// simulation and advances it on every tick while running.
type Model struct {
	sim       *sysdyn.Simulation
	modelName string
	names     []string // selectable (non-constant) variables
	selected  int
	running   bool
	fps       int
}

// NewModel wraps a freshly constructed simulation for live viewing.
func NewModel(sim *sysdyn.Simulation, modelName string, fps int) Model {
	if fps <= 0 {
		fps = 10
	}
	results := sim.Results()
	names := make([]string, 0, len(results))
	for _, n := range sim.Names() {
		if _, ok := results[n]; ok {
			names = append(names, n)
		}
	}
	return Model{
		sim:       sim,
		modelName: modelName,
		names:     names,
		running:   true,
		fps:       fps,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "left", "h":
			if len(m.names) > 0 {
				m.selected = (m.selected + len(m.names) - 1) % len(m.names)
			}
		case "right", "l", "tab":
			if len(m.names) > 0 {
				m.selected = (m.selected + 1) % len(m.names)
			}
		}
		return m, nil
	case TickMsg:
		if m.running && m.sim.CurrentStep() < m.sim.Config().TimeSteps {
			m.sim.Step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.names) == 0 {
		return headerStyle.Render(fmt.Sprintf("sysdyn live: %s", m.modelName)) +
			"\n" + helpStyle.Render("nothing to plot | q quit")
	}
	name := m.names[m.selected]
	series, _ := m.sim.Series(name)
	if len(series) > liveHistory {
		series = series[len(series)-liveHistory:]
	}

	graph := asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption(name),
	)

	value, _ := m.sim.Value(name)
	rate, _ := m.sim.RateOfChange(name)

	status := "running"
	if !m.running {
		status = "paused"
	}
	if m.sim.CurrentStep() >= m.sim.Config().TimeSteps {
		status = "done"
	}

	var tabs []string
	for i, n := range m.names {
		if i == m.selected {
			tabs = append(tabs, activeStyle.Render(n))
		} else {
			tabs = append(tabs, valueStyle.Render(n))
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("sysdyn live: %s [%s]", m.modelName, status)))
	b.WriteString("\n")
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n")
	b.WriteString(graphStyle.Render(graph))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("step") + valueStyle.Render(fmt.Sprintf("%d / %d", m.sim.CurrentStep(), m.sim.Config().TimeSteps)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.2f", float64(m.sim.CurrentStep())*m.sim.Config().Dt)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("value") + valueStyle.Render(fmt.Sprintf("%.6f", value)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("rate") + valueStyle.Render(fmt.Sprintf("%.6f", rate)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause | left/right variable | q quit"))
	return b.String()
}

// RunLive starts the live view and blocks until the user quits.
func RunLive(sim *sysdyn.Simulation, modelName string, fps int) error {
	p := tea.NewProgram(NewModel(sim, modelName, fps))
	_, err := p.Run()
	return err
}
