package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// progress describes one request shown on stderr while it runs.
type progress struct {
	Running string
	Done    string
	Failed  string
}

var fetchProgress = progress{
	Running: "Fetching draft state...",
	Done:    "Draft state loaded",
	Failed:  "Could not load draft state",
}

func actionProgress(kind domain.ActionKind) progress {
	name := strings.ReplaceAll(string(kind), "_", " ")
	return progress{
		Running: fmt.Sprintf("Submitting %s...", name),
		Done:    fmt.Sprintf("Submitted %s", name),
		Failed:  fmt.Sprintf("%s failed", strings.ToUpper(name[:1])+name[1:]),
	}
}

type requestDoneMsg struct {
	err error
}

type progressModel struct {
	spinner spinner.Model
	labels  progress
	run     tea.Cmd
	err     error
	done    bool

	okStyle   lipgloss.Style
	failStyle lipgloss.Style
}

func newProgressModel(labels progress, run tea.Cmd) progressModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return progressModel{
		spinner:   s,
		labels:    labels,
		run:       run,
		okStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case requestDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

// View keeps a one-line outcome on screen once the request is over.
func (m progressModel) View() string {
	switch {
	case !m.done:
		return fmt.Sprintf("%s %s", m.spinner.View(), m.labels.Running)
	case m.err != nil:
		return m.failStyle.Render("✗ "+m.labels.Failed) + "\n"
	default:
		return m.okStyle.Render("✓ "+m.labels.Done) + "\n"
	}
}

// runWithProgress shows labels on output while fn runs and returns fn's error.
func runWithProgress(ctx context.Context, output io.Writer, labels progress, fn func(context.Context) error) error {
	run := func() tea.Msg {
		return requestDoneMsg{err: fn(ctx)}
	}

	p := tea.NewProgram(
		newProgressModel(labels, run),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(progressModel)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", finalModel)
	}

	return result.err
}
