package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/bnema/family-draft-cli/internal/ports"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const DefaultPollInterval = 4 * time.Second

type Synchronizer struct {
	service    ports.DraftService
	cell       *StateCell
	clock      clockwork.Clock
	interval   time.Duration
	configured error
	metrics    ports.Metrics
	logger     zerolog.Logger
}

type SynchronizerOption func(*Synchronizer)

func WithClock(clock clockwork.Clock) SynchronizerOption {
	return func(s *Synchronizer) {
		s.clock = clock
	}
}

func WithPollInterval(interval time.Duration) SynchronizerOption {
	return func(s *Synchronizer) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithConfigError suppresses every fetch with err until the process restarts
// with a valid configuration.
func WithConfigError(err error) SynchronizerOption {
	return func(s *Synchronizer) {
		s.configured = err
	}
}

func WithSyncMetrics(metrics ports.Metrics) SynchronizerOption {
	return func(s *Synchronizer) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

func WithSyncLogger(logger zerolog.Logger) SynchronizerOption {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

func NewSynchronizer(service ports.DraftService, cell *StateCell, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		service:  service,
		cell:     cell,
		clock:    clockwork.NewRealClock(),
		interval: DefaultPollInterval,
		metrics:  ports.NopMetrics{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "synchronizer").Logger()
	return s
}

func (s *Synchronizer) Interval() time.Duration {
	return s.interval
}

func (s *Synchronizer) Cell() *StateCell {
	return s.cell
}

// Fetch reads the full state and publishes it. On any failure the held
// snapshot stays as it was.
func (s *Synchronizer) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	if s.configured != nil {
		s.metrics.ObserveFetch(ports.OutcomeConfig, 0)
		return nil, s.configured
	}

	t := s.cell.issue()
	started := s.clock.Now()

	snapshot, err := s.service.FetchState(ctx)
	elapsed := s.clock.Since(started)
	if err != nil {
		s.metrics.ObserveFetch(outcomeOf(err), elapsed)
		return nil, fmt.Errorf("fetch draft state: %w", err)
	}

	if !s.cell.replace(t, snapshot) {
		s.metrics.ObserveFetch(ports.OutcomeStale, elapsed)
		s.logger.Debug().Uint64("seq", t.seq).Uint64("held_seq", s.cell.Sequence()).Msg("discarded stale state response")
		return nil, domain.ErrStaleResponse
	}

	s.metrics.ObserveFetch(ports.OutcomeOK, elapsed)
	s.metrics.SetSequence(t.seq)
	if err := snapshot.Check(); err != nil {
		s.logger.Warn().Err(err).Uint64("seq", t.seq).Msg("draft state is inconsistent")
	}

	return snapshot, nil
}

// Run fetches immediately and then on every tick until ctx ends. Failed
// fetches are logged and handed to notify; they never stop the loop.
func (s *Synchronizer) Run(ctx context.Context, notify func(*domain.Snapshot, error)) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("polling draft state")

	for {
		snapshot, err := s.Fetch(ctx)
		if err != nil && !errors.Is(err, domain.ErrStaleResponse) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn().Err(err).Msg("poll failed")
		}
		if notify != nil {
			notify(snapshot, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrEndpointNotConfigured):
		return ports.OutcomeConfig
	case domain.IsRejection(err):
		return ports.OutcomeRejected
	default:
		return ports.OutcomeTransport
	}
}
