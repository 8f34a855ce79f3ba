package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/family-draft-cli/internal/domain"
)

// Intent is something the user asked for. Session.Handle routes each intent
// either to a view parameter update or to an Effect for the caller to run.
type Intent interface {
	isIntent()
}

type SortBy struct{ Key domain.SortKey }
type FilterSport struct{ Sport string }
type Search struct{ Query string }
type ShowTaken struct{ Show bool }
type ClearFilters struct{}
type SelectItem struct{ PairID string }
type Refresh struct{}
type SubmitPick struct{ PlayerID, PIN string }
type Undo struct{ PIN string }
type Reset struct{ PIN string }
type SetStatus struct {
	PIN    string
	Status domain.DraftStatus
}

func (SortBy) isIntent()       {}
func (FilterSport) isIntent()  {}
func (Search) isIntent()       {}
func (ShowTaken) isIntent()    {}
func (ClearFilters) isIntent() {}
func (SelectItem) isIntent()   {}
func (Refresh) isIntent()      {}
func (SubmitPick) isIntent()   {}
func (Undo) isIntent()         {}
func (Reset) isIntent()        {}
func (SetStatus) isIntent()    {}

// Effect is the I/O an intent requires. The zero value means "re-render only".
type Effect struct {
	Refresh bool
	Action  *domain.Action
}

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

type Notice struct {
	Level NoticeLevel
	Text  string
}

// PendingPick holds the pick form fields.
type PendingPick struct {
	PlayerID string
	PIN      string
	Sport    string
	Country  string
}

// Session is the process-local UI state: view parameters, the pending pick
// and the last notice. It belongs to a single goroutine.
type Session struct {
	cell    *StateCell
	view    domain.ViewParams
	pending PendingPick
	notice  Notice
}

func NewSession(cell *StateCell) *Session {
	return &Session{cell: cell, view: domain.DefaultViewParams()}
}

func (s *Session) View() domain.ViewParams {
	return s.view
}

func (s *Session) Pending() PendingPick {
	return s.pending
}

func (s *Session) Notice() Notice {
	return s.notice
}

func (s *Session) Snapshot() (*domain.Snapshot, bool) {
	return s.cell.Load()
}

// Rows derives the item table from the snapshot held right now.
func (s *Session) Rows() []Row {
	snapshot, ok := s.cell.Load()
	if !ok {
		return nil
	}
	return DeriveRows(snapshot, s.view)
}

func (s *Session) Handle(intent Intent) Effect {
	switch in := intent.(type) {
	case SortBy:
		if in.Key.Valid() {
			s.view.Sort = s.view.Sort.Toggle(in.Key)
		}
	case FilterSport:
		s.view.Filters.Sport = in.Sport
	case Search:
		s.view.Filters.Search = in.Query
	case ShowTaken:
		s.view.Filters.ShowTaken = in.Show
	case ClearFilters:
		s.view.Filters = domain.Filters{ShowTaken: s.view.Filters.ShowTaken}
	case SelectItem:
		s.selectItem(in.PairID)
	case Refresh:
		return Effect{Refresh: true}
	case SubmitPick:
		s.pending.PlayerID = strings.TrimSpace(in.PlayerID)
		s.pending.PIN = strings.TrimSpace(in.PIN)
		action := domain.PickAction(s.pending.PlayerID, s.pending.PIN, strings.TrimSpace(s.pending.Sport), strings.TrimSpace(s.pending.Country))
		s.notice = Notice{Level: NoticeInfo, Text: "Submitting…"}
		return Effect{Action: &action}
	case Undo:
		action := domain.UndoAction(strings.TrimSpace(in.PIN))
		return s.submitting(action)
	case Reset:
		action := domain.ResetAction(strings.TrimSpace(in.PIN))
		return s.submitting(action)
	case SetStatus:
		action := domain.SetStatusAction(strings.TrimSpace(in.PIN), in.Status)
		return s.submitting(action)
	}

	return Effect{}
}

// Complete records the outcome of an action produced by Handle.
func (s *Session) Complete(action domain.Action, err error) {
	if err != nil {
		s.notice = Notice{Level: NoticeError, Text: err.Error()}
		return
	}

	if action.Kind == domain.ActionPick {
		s.pending.PIN = ""
		s.notice = Notice{Level: NoticeSuccess, Text: "Pick accepted ✅"}
		return
	}

	s.notice = Notice{Level: NoticeSuccess, Text: "Done ✅"}
}

// Fetched records the outcome of a poll or refresh. Stale data stays on
// screen, so a failure only changes the notice.
func (s *Session) Fetched(err error) {
	switch {
	case err == nil, errors.Is(err, domain.ErrStaleResponse):
		if s.notice.Level == NoticeError && s.notice.Text == fetchFailedText {
			s.notice = Notice{}
		}
	case errors.Is(err, domain.ErrEndpointNotConfigured):
		s.notice = Notice{Level: NoticeError, Text: "Set the draft endpoint (fdraft config set endpoint <url>)"}
	default:
		s.notice = Notice{Level: NoticeError, Text: fetchFailedText}
	}
}

const fetchFailedText = "Error loading state"

func (s *Session) submitting(action domain.Action) Effect {
	s.notice = Notice{Level: NoticeInfo, Text: "Submitting…"}
	return Effect{Action: &action}
}

func (s *Session) selectItem(pairID string) {
	snapshot, ok := s.cell.Load()
	if !ok {
		return
	}
	p, ok := snapshot.Projection(pairID)
	if !ok {
		return
	}

	s.pending.Sport = p.Sport
	s.pending.Country = p.Country
	s.notice = Notice{Level: NoticeInfo, Text: fmt.Sprintf("Selected: %s — %s", p.Sport, p.Country)}
}
