package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/cyclewise/cyclewise/internal/model"
	"github.com/cyclewise/cyclewise/internal/repository"
)

// SyncService defines operations over opaque encrypted records.
type SyncService interface {
	// Push applies a batch of ops atomically, last-write-wins.
	Push(ctx context.Context, userID uuid.UUID, ops []model.SyncOp) error
	// Pull returns the user's records ordered by last-update time.
	Pull(ctx context.Context, userID uuid.UUID) ([]model.RemoteRecord, error)
}

type SyncServiceImpl struct {
	repo     repository.RecordRepository
	maxBatch int
}

// NewSyncService constructs SyncService with batch limits.
func NewSyncService(repo repository.RecordRepository, maxBatch int) *SyncServiceImpl {
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &SyncServiceImpl{repo: repo, maxBatch: maxBatch}
}

// Push validates every op before delegating the atomic batch to the repository.
func (s *SyncServiceImpl) Push(ctx context.Context, userID uuid.UUID, ops []model.SyncOp) error {
	if userID == uuid.Nil {
		return errors.New("validation: empty userID")
	}
	if len(ops) == 0 {
		return nil
	}
	if s.maxBatch > 0 && len(ops) > s.maxBatch {
		return fmt.Errorf("validation: batch too large (%d > %d)", len(ops), s.maxBatch)
	}
	for i := range ops {
		if err := ops[i].Validate(); err != nil {
			return fmt.Errorf("op[%d]: %w", i, err)
		}
	}
	return s.repo.ApplyOps(ctx, userID, ops)
}

// Pull fetches all records for a user.
func (s *SyncServiceImpl) Pull(ctx context.Context, userID uuid.UUID) ([]model.RemoteRecord, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	return s.repo.ListByUser(ctx, userID)
}
