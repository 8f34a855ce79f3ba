package ports

import (
	"context"

	"github.com/bnema/family-draft-cli/internal/domain"
)

// DraftService is the remote service that owns the draft. Every successful
// call returns a complete snapshot.
type DraftService interface {
	FetchState(ctx context.Context) (*domain.Snapshot, error)
	Submit(ctx context.Context, action domain.Action) (*domain.Snapshot, error)
}
