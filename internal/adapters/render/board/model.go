package board

import (
	"errors"
	"io"

	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	snapshot *domain.Snapshot
	rows     []application.Row
	opts     RenderOptions
	styles   styles
	output   string
}

func newModel(snapshot *domain.Snapshot, rows []application.Row, opts RenderOptions) model {
	return model{
		snapshot: snapshot,
		rows:     rows,
		opts:     opts,
		styles:   newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.snapshot, m.rows, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render produces the full board for one-shot commands.
func Render(snapshot *domain.Snapshot, rows []application.Row, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(snapshot, rows, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}

// View renders synchronously; the interactive program calls it from its own
// View method.
func View(snapshot *domain.Snapshot, rows []application.Row, opts RenderOptions) string {
	return renderView(snapshot, rows, opts, newStyles())
}
