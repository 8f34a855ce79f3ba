package domain

type ActionKind string

const (
	ActionPick      ActionKind = "pick"
	ActionUndo      ActionKind = "undo"
	ActionReset     ActionKind = "reset"
	ActionSetStatus ActionKind = "set_status"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionPick, ActionUndo, ActionReset, ActionSetStatus:
		return true
	default:
		return false
	}
}

// Action is a mutating request. Which fields are sent depends on Kind; the
// PIN is passed to the service untouched.
type Action struct {
	Kind        ActionKind
	PlayerID    string
	PIN         string
	Sport       string
	Country     string
	DraftStatus DraftStatus
}

func PickAction(playerID, pin, sport, country string) Action {
	return Action{Kind: ActionPick, PlayerID: playerID, PIN: pin, Sport: sport, Country: country}
}

func UndoAction(pin string) Action {
	return Action{Kind: ActionUndo, PIN: pin}
}

func ResetAction(pin string) Action {
	return Action{Kind: ActionReset, PIN: pin}
}

func SetStatusAction(pin string, status DraftStatus) Action {
	return Action{Kind: ActionSetStatus, PIN: pin, DraftStatus: status}
}
