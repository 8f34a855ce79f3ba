package application

import (
	"sync/atomic"

	"github.com/bnema/family-draft-cli/internal/domain"
)

// ticket identifies one request to the service.
type ticket struct {
	seq uint64
	// epoch counts the actions begun before the request was issued.
	epoch uint64
	// busy is set when an action was in flight at issue time.
	busy bool
}

type held struct {
	seq      uint64
	epoch    uint64
	snapshot *domain.Snapshot
}

// StateCell owns the current snapshot. Anyone holding the cell may read it;
// only the Synchronizer and the Dispatcher replace it, always as a whole.
type StateCell struct {
	current      atomic.Pointer[held]
	issued       atomic.Uint64
	actions      atomic.Uint64
	inFlight     atomic.Int64
	discardStale bool
}

type StateCellOption func(*StateCell)

// WithDiscardStale makes the cell drop poll responses that may predate the
// held snapshot: polls issued before a newer published request, and polls
// that overlapped an action. Action responses always apply. Without it the
// response that arrives last wins.
func WithDiscardStale(enabled bool) StateCellOption {
	return func(c *StateCell) {
		c.discardStale = enabled
	}
}

func NewStateCell(opts ...StateCellOption) *StateCell {
	cell := &StateCell{discardStale: true}
	for _, opt := range opts {
		opt(cell)
	}
	return cell
}

// Load returns the held snapshot, or false before the first successful load.
func (c *StateCell) Load() (*domain.Snapshot, bool) {
	h := c.current.Load()
	if h == nil {
		return nil, false
	}
	return h.snapshot, true
}

// Sequence is the issue number of the request that produced the held snapshot.
func (c *StateCell) Sequence() uint64 {
	h := c.current.Load()
	if h == nil {
		return 0
	}
	return h.seq
}

// issue numbers a poll. The action count is read before the in-flight count
// so an action starting in between always shows up as a changed epoch.
func (c *StateCell) issue() ticket {
	epoch := c.actions.Load()
	busy := c.inFlight.Load() > 0
	return ticket{seq: c.issued.Add(1), epoch: epoch, busy: busy}
}

// beginAction numbers an action. Until endAction is called, polls issued in
// the meantime cannot publish: the service may have answered them before it
// handled the action.
func (c *StateCell) beginAction() ticket {
	c.inFlight.Add(1)
	epoch := c.actions.Add(1)
	return ticket{seq: c.issued.Add(1), epoch: epoch}
}

func (c *StateCell) endAction() {
	c.inFlight.Add(-1)
}

// replace publishes a poll response and reports whether it was kept.
func (c *StateCell) replace(t ticket, snapshot *domain.Snapshot) bool {
	if c.discardStale && (t.busy || c.actions.Load() != t.epoch) {
		return false
	}

	next := &held{seq: t.seq, epoch: t.epoch, snapshot: snapshot}
	for {
		prev := c.current.Load()
		if c.discardStale && prev != nil && (prev.seq > t.seq || prev.epoch > t.epoch) {
			return false
		}
		if c.current.CompareAndSwap(prev, next) {
			return true
		}
	}
}

// apply publishes an action response unconditionally.
func (c *StateCell) apply(t ticket, snapshot *domain.Snapshot) {
	for {
		prev := c.current.Load()
		next := &held{seq: t.seq, epoch: t.epoch, snapshot: snapshot}
		if prev != nil {
			next.seq = max(next.seq, prev.seq)
			next.epoch = max(next.epoch, prev.epoch)
		}
		if c.current.CompareAndSwap(prev, next) {
			return
		}
	}
}
