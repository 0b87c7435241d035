// Package ui renders a processing run as a terminal progress view.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"optisheet/internal/processor"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ProgressMsg carries a status snapshot after an attempted row.
type ProgressMsg processor.Status

// DoneMsg carries the terminal status of the run.
type DoneMsg processor.Status

// Model is the progress view of one run.
type Model struct {
	title  string
	bar    progress.Model
	status processor.Status
	done   bool
}

// NewModel returns a view for a run over total rows.
func NewModel(title string, total int) Model {
	return Model{
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient()),
		status: processor.Status{State: processor.Running, Total: total},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.status = processor.Status(msg)
	case DoneMsg:
		m.status = processor.Status(msg)
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = max(msg.Width-4, 10)
	}
	return m, nil
}

// Percent returns the fraction of attempted rows.
func (m Model) Percent() float64 {
	if m.status.Total == 0 {
		if m.done {
			return 1
		}
		return 0
	}
	return float64(m.status.Completed) / float64(m.status.Total)
}

// Status returns the last status received.
func (m Model) Status() processor.Status { return m.status }

// Done reports whether the terminal status was received.
func (m Model) Done() bool { return m.done }

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title) + "\n\n")
	sb.WriteString(m.bar.ViewAs(m.Percent()) + "\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d rows  %d written  %d skipped",
		m.status.Completed, m.status.Total, m.status.Written, m.status.Skipped)) + "\n")

	if m.done {
		if m.status.State == processor.Failed {
			sb.WriteString(errorStyle.Render("Processing failed: "+m.status.Message) + "\n")
		} else {
			sb.WriteString(successStyle.Render("Processing complete") + "\n")
		}
	}
	return sb.String()
}

// Program displays a run until its completion event arrives.
type Program struct {
	p *tea.Program
}

// NewProgram returns a program rendering to out. It reads no input and
// leaves signal handling to the caller.
func NewProgram(title string, total int, out io.Writer) *Program {
	return &Program{
		p: tea.NewProgram(NewModel(title, total),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
	}
}

// Listener returns a processor.Listener feeding this program.
func (p *Program) Listener() processor.Listener {
	return processor.ListenerFuncs{
		Progress: func(s processor.Status) { p.p.Send(ProgressMsg(s)) },
		Complete: func(s processor.Status) { p.p.Send(DoneMsg(s)) },
	}
}

// Run blocks until the run completes.
func (p *Program) Run() error {
	if _, err := p.p.Run(); err != nil {
		return fmt.Errorf("progress view: %w", err)
	}
	return nil
}
