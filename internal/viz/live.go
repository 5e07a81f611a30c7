package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skraemer/detsens/internal/solver"
)

var (
	liveBoxStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 2)
	liveDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	liveHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// ProgressMsg carries one solver progress report into the live view.
type ProgressMsg solver.Progress

// DoneMsg signals solve completion.
type DoneMsg struct {
	Result *solver.Result
	Err    error
}

// LiveModel is a bubbletea model showing solver progress while a solve runs
// in the background. Feed it ProgressMsg/DoneMsg via Program.Send.
type LiveModel struct {
	rows    int
	phase   solver.Phase
	round   int
	active  int
	history []float64 // active-row counts per round
	result  *solver.Result
	err     error
	done    bool
}

func NewLiveModel(rows int) LiveModel {
	return LiveModel{rows: rows, active: rows}
}

func (m LiveModel) Init() tea.Cmd { return nil }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case ProgressMsg:
		m.phase = msg.Phase
		m.round = msg.Round
		m.active = msg.Active
		m.history = append(m.history, float64(msg.Active))
	case DoneMsg:
		m.result = msg.Result
		m.err = msg.Err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m LiveModel) View() string {
	var b strings.Builder

	phase := "bracketing"
	if m.phase == solver.PhaseBisect {
		phase = "bisection"
	}
	b.WriteString(headerStyle.Render("sensitivity solve"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("rows"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.rows)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("phase"))
	b.WriteString(valueStyle.Render(phase))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("round"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.round)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("active"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.active)))
	b.WriteString("\n")

	if len(m.history) >= 2 {
		b.WriteString(PlotCurve(m.history, "active rows per round"))
		b.WriteString("\n")
	}

	if m.done {
		if m.err != nil {
			b.WriteString(warnStyle.Render(fmt.Sprintf("failed: %v", m.err)))
		} else {
			b.WriteString(liveDoneStyle.Render("converged"))
		}
		b.WriteString("\n")
	}

	b.WriteString(liveHelpStyle.Render("q: quit"))
	return liveBoxStyle.Render(b.String())
}
