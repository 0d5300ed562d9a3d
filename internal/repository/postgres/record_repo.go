package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/cyclewise/cyclewise/internal/model"
)

// RecordRepo implements RecordRepository using PostgreSQL. The encrypted
// envelope is stored as jsonb the server never inspects.
type RecordRepo struct{ db *DB }

// NewRecordRepo constructs a record repository.
func NewRecordRepo(db *DB) *RecordRepo { return &RecordRepo{db: db} }

// ApplyOps applies upserts and deletes in one transaction. Upserts are
// last-write-wins on (user_id, id).
func (r *RecordRepo) ApplyOps(ctx context.Context, userID uuid.UUID, ops []model.SyncOp) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const ups = `
INSERT INTO encrypted_records (id, user_id, tbl, encrypted, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (user_id, id)
DO UPDATE SET tbl=excluded.tbl, encrypted=excluded.encrypted, updated_at=now()`
	const del = `DELETE FROM encrypted_records WHERE user_id=$1 AND id=$2`

	for i, op := range ops {
		switch op.Action {
		case model.SyncUpsert:
			payload, merr := json.Marshal(op.Encrypted)
			if merr != nil {
				return fmt.Errorf("op[%d]: %w", i, merr)
			}
			if _, err = tx.Exec(ctx, ups, op.ID, userID, op.Table, payload); err != nil {
				return fmt.Errorf("op[%d]: %w", i, err)
			}
		case model.SyncDelete:
			if _, err = tx.Exec(ctx, del, userID, op.ID); err != nil {
				return fmt.Errorf("op[%d]: %w", i, err)
			}
		default:
			return fmt.Errorf("op[%d]: unknown action %q", i, op.Action)
		}
	}
	return nil
}

// ListByUser returns all records for a user ordered by updated_at ASC.
func (r *RecordRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RemoteRecord, error) {
	const q = `
SELECT id, tbl, encrypted, created_at, updated_at
FROM encrypted_records WHERE user_id=$1 ORDER BY updated_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RemoteRecord
	for rows.Next() {
		var rec model.RemoteRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Table, &payload, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &rec.Encrypted); err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
