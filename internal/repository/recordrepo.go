package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/cyclewise/cyclewise/internal/model"
)

// RecordRepository stores opaque encrypted records per user. Writes are
// last-write-wins; the server does no conflict resolution.
type RecordRepository interface {
	// ApplyOps applies a batch of upserts and deletes atomically.
	ApplyOps(ctx context.Context, userID uuid.UUID, ops []model.SyncOp) error

	// ListByUser returns the user's records ordered by last-update time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RemoteRecord, error)
}
