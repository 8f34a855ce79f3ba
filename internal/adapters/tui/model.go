package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/family-draft-cli/internal/adapters/render/board"
	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

const configProblem = "Set the draft endpoint (fdraft config set endpoint <url>)"

type Options struct {
	Synchronizer *application.Synchronizer
	Dispatcher   *application.Dispatcher
	PlayerID     string
	Logger       zerolog.Logger
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modePickPIN
	modeAdminPIN
)

type tickMsg struct{}

type fetchedMsg struct {
	err error
}

type submittedMsg struct {
	action domain.Action
	err    error
}

// Model is the interactive board. Update is the only place that touches the
// session; network calls run as commands and report back through messages.
type Model struct {
	ctx        context.Context
	syncer     *application.Synchronizer
	dispatcher *application.Dispatcher
	session    *application.Session
	logger     zerolog.Logger

	mode        mode
	search      textinput.Model
	pin         textinput.Model
	adminPIN    textinput.Model
	adminIntent func(pin string) application.Intent
	adminLabel  string
	spinner     spinner.Model

	fetching   bool
	submitting bool
	problem    string
	cursor     int
	playerID   string
	height     int
}

func New(ctx context.Context, opts Options) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "country or sport"

	pin := textinput.New()
	pin.Prompt = "PIN: "
	pin.EchoMode = textinput.EchoPassword
	pin.EchoCharacter = '•'

	adminPIN := textinput.New()
	adminPIN.Prompt = "Admin PIN: "
	adminPIN.EchoMode = textinput.EchoPassword
	adminPIN.EchoCharacter = '•'

	return Model{
		ctx:        ctx,
		syncer:     opts.Synchronizer,
		dispatcher: opts.Dispatcher,
		session:    application.NewSession(opts.Synchronizer.Cell()),
		logger:     opts.Logger.With().Str("component", "tui").Logger(),
		search:     search,
		pin:        pin,
		adminPIN:   adminPIN,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		fetching: true,
		playerID: strings.TrimSpace(opts.PlayerID),
	}
}

// Init starts the first fetch; New already marks it in flight.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.fetching {
			m.fetching = true
			cmds = append(cmds, m.fetchCmd())
		}
		return m, tea.Batch(cmds...)
	case fetchedMsg:
		m.fetching = false
		m.recordFetch(msg.err)
		m.clampCursor()
		return m, nil
	case submittedMsg:
		m.submitting = false
		m.session.Complete(msg.action, msg.err)
		if msg.err == nil && msg.action.Kind == domain.ActionPick {
			m.pin.SetValue("")
		}
		if errors.Is(msg.err, domain.ErrEndpointNotConfigured) {
			m.problem = configProblem
		}
		m.clampCursor()
		return m, nil
	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) recordFetch(err error) {
	if errors.Is(err, domain.ErrEndpointNotConfigured) {
		m.problem = configProblem
		return
	}
	m.problem = ""
	if err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		m.logger.Debug().Err(err).Msg("refresh failed; keeping last state")
	}
	m.session.Fetched(err)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modePickPIN:
		return m.handlePickKey(msg)
	case modeAdminPIN:
		return m.handleAdminKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "enter":
		if row, ok := m.selectedRow(); ok {
			m.session.Handle(application.SelectItem{PairID: row.PairID})
		}
	case "1", "2", "3", "4", "5", "6":
		m.session.Handle(application.SortBy{Key: domain.SortKeys[key[0]-'1']})
		m.clampCursor()
	case "t":
		m.session.Handle(application.ShowTaken{Show: !m.session.View().Filters.ShowTaken})
		m.clampCursor()
	case "f", "F":
		m.session.Handle(application.FilterSport{Sport: m.nextSport(key == "f")})
		m.cursor = 0
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.session.View().Filters.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "c":
		m.session.Handle(application.ClearFilters{})
		m.search.SetValue("")
		m.cursor = 0
	case "r":
		return m.apply(m.session.Handle(application.Refresh{}))
	case "[", "]":
		m.playerID = m.nextPlayer(key == "]")
	case "p":
		if m.submitting {
			return m, nil
		}
		if row, ok := m.selectedRow(); ok {
			m.session.Handle(application.SelectItem{PairID: row.PairID})
		}
		m.mode = modePickPIN
		return m, m.pin.Focus()
	case "u", "X", "o", "x":
		if m.submitting {
			return m, nil
		}
		m.adminLabel, m.adminIntent = adminPrompt(key)
		m.mode = modeAdminPIN
		return m, m.adminPIN.Focus()
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.search.Blur()
		m.search.SetValue("")
		m.session.Handle(application.Search{Query: ""})
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.session.Handle(application.Search{Query: m.search.Value()})
	m.cursor = 0
	return m, cmd
}

func (m Model) handlePickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.pin.Blur()
		return m, nil
	case "enter":
		m.mode = modeBrowse
		m.pin.Blur()
		return m.apply(m.session.Handle(application.SubmitPick{PlayerID: m.currentPlayer(), PIN: m.pin.Value()}))
	}

	var cmd tea.Cmd
	m.pin, cmd = m.pin.Update(msg)
	return m, cmd
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.adminPIN.Blur()
		return m, nil
	case "enter":
		m.mode = modeBrowse
		m.adminPIN.Blur()
		return m.apply(m.session.Handle(m.adminIntent(m.adminPIN.Value())))
	}

	var cmd tea.Cmd
	m.adminPIN, cmd = m.adminPIN.Update(msg)
	return m, cmd
}

func adminPrompt(key string) (string, func(string) application.Intent) {
	switch key {
	case "u":
		return "Undo last pick", func(pin string) application.Intent { return application.Undo{PIN: pin} }
	case "X":
		return "Reset the whole draft", func(pin string) application.Intent { return application.Reset{PIN: pin} }
	case "o":
		return "Open the draft", func(pin string) application.Intent {
			return application.SetStatus{PIN: pin, Status: domain.DraftStatusOpen}
		}
	default:
		return "Close the draft", func(pin string) application.Intent {
			return application.SetStatus{PIN: pin, Status: domain.DraftStatusClosed}
		}
	}
}

func (m Model) apply(effect application.Effect) (tea.Model, tea.Cmd) {
	if effect.Action != nil {
		m.submitting = true
		return m, tea.Batch(m.submitCmd(*effect.Action), m.spinner.Tick)
	}
	if effect.Refresh && !m.fetching {
		m.fetching = true
		return m, m.fetchCmd()
	}
	return m, nil
}

func (m Model) fetchCmd() tea.Cmd {
	syncer, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		_, err := syncer.Fetch(ctx)
		return fetchedMsg{err: err}
	}
}

func (m Model) submitCmd(action domain.Action) tea.Cmd {
	dispatcher, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		_, err := dispatcher.Submit(ctx, action)
		return submittedMsg{action: action, err: err}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.syncer.Interval(), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) selectedRow() (application.Row, bool) {
	rows := m.session.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return application.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	rows := len(m.session.Rows())
	m.cursor = max(0, min(m.cursor, rows-1))
}

func (m Model) nextSport(forward bool) string {
	snapshot, ok := m.session.Snapshot()
	if !ok {
		return ""
	}
	options := append([]string{""}, application.SportOptions(snapshot)...)
	return cycle(options, m.session.View().Filters.Sport, forward)
}

// currentPlayer is the selected player, falling back to the first player in
// the snapshot.
func (m Model) currentPlayer() string {
	if m.playerID != "" {
		return m.playerID
	}
	snapshot, ok := m.session.Snapshot()
	if !ok || len(snapshot.Players) == 0 {
		return ""
	}
	return snapshot.Players[0].ID
}

func (m Model) nextPlayer(forward bool) string {
	snapshot, ok := m.session.Snapshot()
	if !ok || len(snapshot.Players) == 0 {
		return m.playerID
	}
	ids := make([]string, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		ids = append(ids, p.ID)
	}
	return cycle(ids, m.currentPlayer(), forward)
}

func cycle(options []string, current string, forward bool) string {
	if len(options) == 0 {
		return current
	}
	index := -1
	for i, option := range options {
		if option == current {
			index = i
			break
		}
	}
	if forward {
		return options[(index+1)%len(options)]
	}
	if index <= 0 {
		return options[len(options)-1]
	}
	return options[index-1]
}

func (m Model) View() string {
	snapshot, _ := m.session.Snapshot()
	view := m.session.View()

	rendered := board.View(snapshot, m.session.Rows(), board.RenderOptions{
		Sort:       view.Sort,
		Filters:    view.Filters,
		Cursor:     m.cursor,
		ShowCursor: true,
		MaxRows:    m.maxRows(),
		Notice:     m.session.Notice(),
		Problem:    m.problem,
	})

	return lipgloss.JoinVertical(lipgloss.Left, rendered, "", m.footer(snapshot))
}

func (m Model) maxRows() int {
	if m.height <= 0 {
		return 15
	}
	return max(5, m.height/3)
}

func (m Model) footer(snapshot *domain.Snapshot) string {
	player := m.currentPlayer()
	if snapshot != nil {
		if p, ok := snapshot.Player(player); ok {
			player = p.DisplayName
		}
	}
	if player == "" {
		player = "—"
	}

	pending := m.session.Pending()
	target := "—"
	if pending.Sport != "" || pending.Country != "" {
		target = fmt.Sprintf("%s — %s", pending.Sport, pending.Country)
	}

	lines := []string{fmt.Sprintf("Player: %s   Pick: %s", player, target)}
	switch m.mode {
	case modeSearch:
		lines = append(lines, m.search.View())
	case modePickPIN:
		lines = append(lines, fmt.Sprintf("Pick %s for %s", target, player), m.pin.View())
	case modeAdminPIN:
		lines = append(lines, m.adminLabel, m.adminPIN.View())
	}
	if m.submitting {
		lines = append(lines, m.spinner.View()+" Submitting…")
	}
	lines = append(lines, helpLine)

	return strings.Join(lines, "\n")
}

const helpLine = "↑/↓ move  enter select  1-6 sort  t taken  f/F sport  / search  c clear  r refresh  [/] player  p pick  u undo  X reset  o/x open/close  q quit"

// Run drives the board until the user quits or ctx ends.
func Run(ctx context.Context, opts Options, input io.Reader, output io.Writer) error {
	p := tea.NewProgram(
		New(ctx, opts),
		tea.WithContext(ctx),
		tea.WithInput(input),
		tea.WithOutput(output),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run board: %w", err)
	}

	return nil
}
