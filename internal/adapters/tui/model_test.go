package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	mu       sync.Mutex
	state    *domain.Snapshot
	fetchErr error
	submit   func(domain.Action) (*domain.Snapshot, error)
	actions  []domain.Action
}

func (s *stubService) FetchState(context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.state, nil
}

func (s *stubService) Submit(_ context.Context, action domain.Action) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return s.submit(action)
}

func (s *stubService) recorded() []domain.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Action(nil), s.actions...)
}

func boardState(taken ...string) *domain.Snapshot {
	return &domain.Snapshot{
		Config:  domain.Config{DraftStatus: domain.DraftStatusOpen},
		Current: domain.Current{PickNumber: domain.NumberOf(1), Direction: domain.DirectionForward, OnTheClock: "Alice"},
		Players: []domain.Player{{ID: "p1", DisplayName: "Alice"}, {ID: "p2", DisplayName: "Bob"}},
		Projections: []domain.Projection{
			{PairID: "A", Sport: "Skiing", Country: "NOR", PowerRank: domain.NumberOf(1), ProjectedPoints: domain.NumberOf(20)},
			{PairID: "B", Sport: "Curling", Country: "SWE", PowerRank: domain.NumberOf(2), ProjectedPoints: domain.NumberOf(10)},
			{PairID: "C", Sport: "Skiing", Country: "AUT", PowerRank: domain.NumberOf(3), ProjectedPoints: domain.NumberOf(15)},
		},
		TakenPairIDs: taken,
		Leaderboard: []domain.LeaderboardEntry{
			{PlayerID: "p1", DisplayName: "Alice", TotalProjectedPoints: domain.NumberOf(0)},
			{PlayerID: "p2", DisplayName: "Bob", TotalProjectedPoints: domain.NumberOf(0)},
		},
		Teams: map[string][]domain.TeamItem{},
	}
}

func newTestModel(t *testing.T, service *stubService, opts ...application.SynchronizerOption) Model {
	t.Helper()

	cell := application.NewStateCell()
	opts = append([]application.SynchronizerOption{application.WithPollInterval(time.Hour)}, opts...)
	m := New(context.Background(), Options{
		Synchronizer: application.NewSynchronizer(service, cell, opts...),
		Dispatcher:   application.NewDispatcher(service, cell),
	})

	m = update(t, m, drain(t, m.fetchCmd())...)
	return m
}

// drain runs cmd and any batched commands, returning the messages that arrive
// within a short wait. Poll ticks, spinner frames and cursor blinks never
// arrive in time and are dropped.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	results := make(chan tea.Msg, 16)
	var pending int
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		pending++
		go func() { results <- c() }()
	}
	run(cmd)

	var msgs []tea.Msg
	timeout := time.After(200 * time.Millisecond)
	for pending > 0 {
		select {
		case msg := <-results:
			pending--
			switch msg := msg.(type) {
			case tea.BatchMsg:
				for _, c := range msg {
					run(c)
				}
			case tickMsg, spinner.TickMsg:
			default:
				if msg != nil {
					msgs = append(msgs, msg)
				}
			}
		case <-timeout:
			return msgs
		}
	}
	return msgs
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

// press feeds a key and then every message its command produces.
func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, key := range keys {
		next, cmd := m.Update(key)
		m = update(t, next.(Model), drain(t, cmd)...)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typed(s string) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		keys = append(keys, runes(string(r)))
	}
	return keys
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestModelShowsBoardAfterFirstFetch(t *testing.T) {
	m := newTestModel(t, &stubService{state: boardState("A")})

	view := m.View()
	assert.Contains(t, view, "Draft: OPEN")
	assert.Contains(t, view, "Items: 2")
	assert.Contains(t, view, "Player: Alice")
	assert.NotContains(t, view, "NOR")
}

func TestModelFailedPollKeepsBoardAndShowsError(t *testing.T) {
	service := &stubService{state: boardState()}
	m := newTestModel(t, service)

	service.mu.Lock()
	service.fetchErr = &domain.TransportError{Op: "fetch state", Err: errors.New("offline")}
	service.mu.Unlock()

	next, cmd := m.Update(tickMsg{})
	m = update(t, next.(Model), drain(t, cmd)...)

	view := m.View()
	assert.Contains(t, view, "Error loading state")
	assert.Contains(t, view, "Items: 3")
	assert.False(t, m.fetching)
}

func TestModelTickSkipsFetchWhileOneIsInFlight(t *testing.T) {
	m := newTestModel(t, &stubService{state: boardState()})
	m.fetching = true

	_, cmd := m.Update(tickMsg{})
	assert.Empty(t, drain(t, cmd))
}

func TestModelViewKeysReorderAndFilter(t *testing.T) {
	m := newTestModel(t, &stubService{state: boardState()})

	row, ok := m.selectedRow()
	require.True(t, ok)
	assert.Equal(t, "A", row.PairID)

	m = press(t, m, runes("3"))
	assert.Equal(t, domain.Sort{Key: domain.SortByPowerRank, Direction: domain.SortAscending}, m.session.View().Sort)

	m = press(t, m, runes("f"))
	assert.Equal(t, "Curling", m.session.View().Filters.Sport)
	m = press(t, m, runes("f"))
	assert.Equal(t, "Skiing", m.session.View().Filters.Sport)
	m = press(t, m, runes("F"), runes("F"))
	assert.Empty(t, m.session.View().Filters.Sport)

	m = press(t, m, append([]tea.KeyMsg{runes("/")}, typed("aut")...)...)
	assert.Equal(t, modeSearch, m.mode)
	assert.Equal(t, "aut", m.session.View().Filters.Search)
	assert.Len(t, m.session.Rows(), 1)

	m = press(t, m, enter, runes("t"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.True(t, m.session.View().Filters.ShowTaken)

	m = press(t, m, runes("c"))
	assert.Equal(t, domain.Filters{ShowTaken: true}, m.session.View().Filters)
}

func TestModelPickFlowSubmitsSelectedRow(t *testing.T) {
	service := &stubService{state: boardState()}
	service.submit = func(action domain.Action) (*domain.Snapshot, error) {
		return boardState("C"), nil
	}
	m := newTestModel(t, service)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, runes("]"))
	assert.Equal(t, "p2", m.playerID)

	m = press(t, m, runes("p"))
	assert.Equal(t, modePickPIN, m.mode)
	assert.Contains(t, m.View(), "Pick Skiing — AUT for Bob")

	m = press(t, m, append(typed("4321"), enter)...)

	assert.Equal(t, []domain.Action{domain.PickAction("p2", "4321", "Skiing", "AUT")}, service.recorded())
	assert.Equal(t, "Pick accepted ✅", m.session.Notice().Text)
	assert.Empty(t, m.pin.Value())
	assert.False(t, m.submitting)
	assert.NotContains(t, m.View(), "4321")
	assert.Len(t, m.session.Rows(), 2)
}

func TestModelRejectedPickKeepsPIN(t *testing.T) {
	service := &stubService{state: boardState()}
	service.submit = func(domain.Action) (*domain.Snapshot, error) {
		return nil, &domain.RejectionError{Route: "pick", Message: "Not your turn"}
	}
	m := newTestModel(t, service)

	m = press(t, m, append([]tea.KeyMsg{runes("p")}, append(typed("11"), enter)...)...)

	assert.Equal(t, "Not your turn", m.session.Notice().Text)
	assert.Equal(t, "11", m.pin.Value())
	assert.Contains(t, m.View(), "Items: 3")
}

func TestModelAdminKeys(t *testing.T) {
	tests := []struct {
		key  string
		want domain.Action
	}{
		{key: "u", want: domain.UndoAction("9")},
		{key: "X", want: domain.ResetAction("9")},
		{key: "o", want: domain.SetStatusAction("9", domain.DraftStatusOpen)},
		{key: "x", want: domain.SetStatusAction("9", domain.DraftStatusClosed)},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service := &stubService{state: boardState()}
			service.submit = func(domain.Action) (*domain.Snapshot, error) { return boardState(), nil }
			m := newTestModel(t, service)

			m = press(t, m, runes(tt.key), runes("9"), enter)

			assert.Equal(t, []domain.Action{tt.want}, service.recorded())
			assert.Equal(t, "Done ✅", m.session.Notice().Text)
		})
	}
}

func TestModelEscapeCancelsPrompt(t *testing.T) {
	service := &stubService{state: boardState()}
	m := newTestModel(t, service)

	m = press(t, m, runes("X"), runes("1"), tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, service.recorded())
}

func TestModelShowsConfigurationProblem(t *testing.T) {
	m := newTestModel(t, &stubService{}, application.WithConfigError(domain.ErrEndpointNotConfigured))

	view := m.View()
	assert.Contains(t, view, "Loading draft state…")
	assert.Contains(t, view, "fdraft config set endpoint")
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, &stubService{state: boardState()})

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCycle(t *testing.T) {
	options := []string{"", "Curling", "Skiing"}

	assert.Equal(t, "Curling", cycle(options, "", true))
	assert.Equal(t, "", cycle(options, "Skiing", true))
	assert.Equal(t, "Skiing", cycle(options, "", false))
	assert.Equal(t, "", cycle(options, "missing", true))
	assert.Equal(t, "x", cycle(nil, "x", true))
}
