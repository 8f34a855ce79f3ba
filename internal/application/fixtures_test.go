package application

import (
	"context"
	"sync"

	"github.com/bnema/family-draft-cli/internal/domain"
)

type fakeDraftService struct {
	mu       sync.Mutex
	fetches  []fakeResponse
	submits  []fakeResponse
	actions  []domain.Action
	fetchCnt int
	// gate, when set, blocks FetchState until it is closed.
	gate chan struct{}
	// submitGate, when set, blocks Submit until it is closed.
	submitGate chan struct{}
	submitting chan struct{}
}

type fakeResponse struct {
	snapshot *domain.Snapshot
	err      error
}

func (f *fakeDraftService) FetchState(ctx context.Context) (*domain.Snapshot, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCnt++
	if len(f.fetches) == 0 {
		return nil, &domain.TransportError{Op: "fetch state", Err: context.DeadlineExceeded}
	}
	next := f.fetches[0]
	if len(f.fetches) > 1 {
		f.fetches = f.fetches[1:]
	}
	return next.snapshot, next.err
}

func (f *fakeDraftService) Submit(ctx context.Context, action domain.Action) (*domain.Snapshot, error) {
	f.mu.Lock()
	gate, started := f.submitGate, f.submitting
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	if len(f.submits) == 0 {
		return nil, &domain.TransportError{Op: "submit", Err: context.DeadlineExceeded}
	}
	next := f.submits[0]
	f.submits = f.submits[1:]
	return next.snapshot, next.err
}

func (f *fakeDraftService) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCnt
}

func projection(id, sport, country string, rank, points, medals, lastYear float64) domain.Projection {
	return domain.Projection{
		PairID:          id,
		Sport:           sport,
		Country:         country,
		PowerRank:       domain.NumberOf(rank),
		ProjectedPoints: domain.NumberOf(points),
		NumMedals:       domain.NumberOf(medals),
		LastYearScore:   domain.NumberOf(lastYear),
	}
}

func snapshotWith(taken []string, projections ...domain.Projection) *domain.Snapshot {
	return &domain.Snapshot{
		Config:       domain.Config{DraftStatus: domain.DraftStatusOpen},
		Current:      domain.Current{PickNumber: domain.NumberOf(1), Direction: domain.DirectionForward, OnTheClock: "Ana"},
		Players:      []domain.Player{{ID: "p1", DisplayName: "Ana"}},
		Projections:  projections,
		TakenPairIDs: taken,
		Leaderboard:  []domain.LeaderboardEntry{{PlayerID: "p1", DisplayName: "Ana", TotalProjectedPoints: domain.NumberOf(0)}},
		Teams:        map[string][]domain.TeamItem{},
	}
}

func pairIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PairID)
	}
	return ids
}
