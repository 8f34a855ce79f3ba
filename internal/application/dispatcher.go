package application

import (
	"context"
	"fmt"

	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/bnema/family-draft-cli/internal/ports"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Dispatcher sends mutating actions. It does not judge whether an action is
// legal; the service does, and answers with the complete new state.
type Dispatcher struct {
	service    ports.DraftService
	cell       *StateCell
	clock      clockwork.Clock
	configured error
	metrics    ports.Metrics
	logger     zerolog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithDispatchClock(clock clockwork.Clock) DispatcherOption {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

func WithDispatchConfigError(err error) DispatcherOption {
	return func(d *Dispatcher) {
		d.configured = err
	}
}

func WithDispatchMetrics(metrics ports.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		if metrics != nil {
			d.metrics = metrics
		}
	}
}

func WithDispatchLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func NewDispatcher(service ports.DraftService, cell *StateCell, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		service: service,
		cell:    cell,
		clock:   clockwork.NewRealClock(),
		metrics: ports.NopMetrics{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With().Str("component", "dispatcher").Logger()
	return d
}

// Submit performs one request/response exchange. On success the returned
// snapshot replaces the held one; on failure the held snapshot is untouched
// and the error is a *domain.RejectionError or *domain.TransportError. Polls
// that overlap the exchange are not published, so the answer cannot be
// overwritten by state from before the action.
func (d *Dispatcher) Submit(ctx context.Context, action domain.Action) (*domain.Snapshot, error) {
	if !action.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedAction, action.Kind)
	}
	if action.Kind == domain.ActionSetStatus && !action.DraftStatus.Valid() {
		return nil, fmt.Errorf("%w: draft status %q", domain.ErrUnsupportedAction, action.DraftStatus)
	}
	if d.configured != nil {
		d.metrics.ObserveSubmit(string(action.Kind), ports.OutcomeConfig, 0)
		return nil, d.configured
	}

	t := d.cell.beginAction()
	defer d.cell.endAction()
	started := d.clock.Now()

	snapshot, err := d.service.Submit(ctx, action)
	elapsed := d.clock.Since(started)
	if err != nil {
		d.metrics.ObserveSubmit(string(action.Kind), outcomeOf(err), elapsed)
		d.logger.Info().Err(err).Str("action", string(action.Kind)).Msg("action failed")
		return nil, err
	}

	d.cell.apply(t, snapshot)
	d.metrics.ObserveSubmit(string(action.Kind), ports.OutcomeOK, elapsed)
	d.metrics.SetSequence(t.seq)
	d.logger.Info().
		Str("action", string(action.Kind)).
		Str("player_id", action.PlayerID).
		Dur("elapsed", elapsed).
		Msg("action accepted")

	return snapshot, nil
}
