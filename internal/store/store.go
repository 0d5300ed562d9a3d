// Package store persists entities locally such that sensitive tables never
// reach disk as plaintext. Encrypted tables transparently wrap records in an
// EncryptedRecord envelope on write and decrypt+validate on read, failing
// closed on a wrong passphrase or corrupted ciphertext.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cyclewise/cyclewise/internal/crypto"
	"github.com/cyclewise/cyclewise/internal/errs"
)

const currentVersion = 1

// Store is the local encrypted record store. A single local actor writes to
// it; conflicting writes to one id are last-write-wins.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the SQLite database at dbPath and runs migrations.
func Open(dbPath string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory store for testing.
func OpenMemory(log *zap.Logger) (*Store, error) {
	return Open(":memory:", log)
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}
	const ddl = `
	CREATE TABLE IF NOT EXISTS records (
		tbl         TEXT NOT NULL,
		id          TEXT NOT NULL,
		payload     TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (tbl, id)
	);
	CREATE INDEX IF NOT EXISTS idx_records_updated ON records(tbl, updated_at);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// Put stores an entity under (table, id), overwriting any prior record with
// the same id. Encrypted tables substitute the plaintext with its envelope
// before the row is written.
func (s *Store) Put(ctx context.Context, table Table, id string, entity any, passphrase string) error {
	payload, err := s.sealPayload(table, entity, passphrase)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	const q = `
	INSERT INTO records (tbl, id, payload, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (tbl, id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`
	_, err = s.db.ExecContext(ctx, q, table.Name(), id, payload, now, now)
	return err
}

// Get loads, decrypts and validates a single record into out. A missing
// record is errs.ErrNotFound; a record that cannot be decrypted or fails
// validation is errs.ErrDecryptFailed / errs.ErrInvalidRecord.
func (s *Store) Get(ctx context.Context, table Table, id string, passphrase string, out any) error {
	var payload string
	const q = `SELECT payload FROM records WHERE tbl=? AND id=?`
	if err := s.db.QueryRowContext(ctx, q, table.Name(), id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	plain, err := s.openPayload(table, []byte(payload), passphrase)
	if err != nil {
		return err
	}
	return json.Unmarshal(plain, out)
}

// GetAll loads every record of a table. In this bulk context a per-record
// decrypt or validation failure is logged and the record skipped; partial
// results beat total failure.
func (s *Store) GetAll(ctx context.Context, table Table, passphrase string) ([]json.RawMessage, error) {
	const q = `SELECT id, payload FROM records WHERE tbl=? ORDER BY updated_at`
	rows, err := s.db.QueryContext(ctx, q, table.Name())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		plain, err := s.openPayload(table, []byte(payload), passphrase)
		if err != nil {
			s.log.Warn("skipping unreadable record",
				zap.String("table", table.Name()),
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		out = append(out, json.RawMessage(plain))
	}
	return out, rows.Err()
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *Store) Delete(ctx context.Context, table Table, id string) error {
	const q = `DELETE FROM records WHERE tbl=? AND id=?`
	_, err := s.db.ExecContext(ctx, q, table.Name(), id)
	return err
}

// PutEncryptedRecord stores an already-sealed envelope as-is; used when
// applying pulled sync records, which the client cannot (and need not)
// decrypt at write time.
func (s *Store) PutEncryptedRecord(ctx context.Context, table Table, id string, enc crypto.EncryptedData) error {
	if !table.Encrypted() {
		return fmt.Errorf("table %s is not encrypted", table.Name())
	}
	payload, err := json.Marshal(enc)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	const q = `
	INSERT INTO records (tbl, id, payload, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (tbl, id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`
	_, err = s.db.ExecContext(ctx, q, table.Name(), id, payload, now, now)
	return err
}

// EncryptedRecords returns the raw envelopes of an encrypted table, for
// shipping to the sync endpoint without decrypting.
func (s *Store) EncryptedRecords(ctx context.Context, table Table) (map[string]crypto.EncryptedData, error) {
	if !table.Encrypted() {
		return nil, fmt.Errorf("table %s is not encrypted", table.Name())
	}
	const q = `SELECT id, payload FROM records WHERE tbl=? ORDER BY updated_at`
	rows, err := s.db.QueryContext(ctx, q, table.Name())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]crypto.EncryptedData)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		var enc crypto.EncryptedData
		if err := json.Unmarshal([]byte(payload), &enc); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidRecord, err)
		}
		out[id] = enc
	}
	return out, rows.Err()
}

// Wipe irreversibly destroys every table. Not recoverable; callers must
// obtain explicit confirmation before invoking it.
func (s *Store) Wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `VACUUM`)
	return err
}

func (s *Store) sealPayload(table Table, entity any, passphrase string) ([]byte, error) {
	if !table.Encrypted() {
		return json.Marshal(entity)
	}
	enc, err := crypto.EncryptObject(entity, passphrase)
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

func (s *Store) openPayload(table Table, payload []byte, passphrase string) ([]byte, error) {
	if !table.Encrypted() {
		return payload, nil
	}
	var enc crypto.EncryptedData
	if err := json.Unmarshal(payload, &enc); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidRecord, err)
	}
	plain, err := crypto.Decrypt(enc, passphrase)
	if err != nil {
		return nil, err
	}
	if err := tableSpecs[table].validate([]byte(plain)); err != nil {
		return nil, err
	}
	return []byte(plain), nil
}
