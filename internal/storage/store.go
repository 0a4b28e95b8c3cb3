package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"payengine/internal/domain"
	"payengine/pkg/money"
)

// ArchiveStore persists history entries evicted from the bounded cache so
// that late disputes can still find them. It implements the cache's
// Fallback, Archiver and StateWriter capabilities over SQLite.
type ArchiveStore struct {
	db *sql.DB
}

// NewArchiveStore opens (or creates) the archive database with WAL mode enabled.
func NewArchiveStore(dbPath string) (*ArchiveStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// Metadata table for KV run bookkeeping
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	// Archived history entries; amount is the raw scaled integer.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			tx INTEGER PRIMARY KEY,
			client INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			disputed INTEGER NOT NULL DEFAULT 0,
			archived_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &ArchiveStore{db: db}, nil
}

// Archive stores an evicted history entry.
func (s *ArchiveStore) Archive(e domain.HistoryEntry) error {
	disputed := 0
	if e.State == domain.StateDisputed {
		disputed = 1
	}

	_, err := s.db.Exec(
		"INSERT INTO history (tx, client, amount, disputed, archived_at) VALUES (?, ?, ?, ?, ?) ON CONFLICT(tx) DO UPDATE SET client=excluded.client, amount=excluded.amount, disputed=excluded.disputed, archived_at=excluded.archived_at",
		uint64(e.Tx), uint64(e.Client), uint64(e.Amount), disputed, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive entry: %w", err)
	}
	return nil
}

// Lookup retrieves an archived entry. Returns (nil, nil) when absent.
// Idempotent and side-effect free.
func (s *ArchiveStore) Lookup(tx domain.TxID) (*domain.HistoryEntry, error) {
	var client uint64
	var amount uint64
	var disputed int

	err := s.db.QueryRow(
		"SELECT client, amount, disputed FROM history WHERE tx = ?",
		uint64(tx),
	).Scan(&client, &amount, &disputed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up entry: %w", err)
	}

	state := domain.StateNormal
	if disputed != 0 {
		state = domain.StateDisputed
	}

	return &domain.HistoryEntry{
		Tx:     tx,
		Client: domain.ClientID(client),
		Amount: money.Amount(amount),
		State:  state,
	}, nil
}

// MarkDisputed transitions an archived entry to the disputed state.
// Returns whether the entry existed.
func (s *ArchiveStore) MarkDisputed(tx domain.TxID) (bool, error) {
	res, err := s.db.Exec("UPDATE history SET disputed = 1 WHERE tx = ?", uint64(tx))
	if err != nil {
		return false, fmt.Errorf("failed to mark entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remove deletes an archived entry once its transaction completes.
// Returns whether the entry existed.
func (s *ArchiveStore) Remove(tx domain.TxID) (bool, error) {
	res, err := s.db.Exec("DELETE FROM history WHERE tx = ?", uint64(tx))
	if err != nil {
		return false, fmt.Errorf("failed to remove entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *ArchiveStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a value from the metadata table.
func (s *ArchiveStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ArchivedEntry is one audit row.
type ArchivedEntry struct {
	Entry      domain.HistoryEntry
	ArchivedAt time.Time
}

// ListEntries returns archived entries in tx order, up to limit (0 = all).
// Used by the audit command.
func (s *ArchiveStore) ListEntries(ctx context.Context, limit int) ([]ArchivedEntry, error) {
	query := "SELECT tx, client, amount, disputed, archived_at FROM history ORDER BY tx ASC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ArchivedEntry
	for rows.Next() {
		var tx, client, amount uint64
		var disputed int
		var archivedAt int64

		if err := rows.Scan(&tx, &client, &amount, &disputed, &archivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		state := domain.StateNormal
		if disputed != 0 {
			state = domain.StateDisputed
		}

		entries = append(entries, ArchivedEntry{
			Entry: domain.HistoryEntry{
				Tx:     domain.TxID(tx),
				Client: domain.ClientID(client),
				Amount: money.Amount(amount),
				State:  state,
			},
			ArchivedAt: time.Unix(archivedAt, 0),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (s *ArchiveStore) Close() error {
	return s.db.Close()
}
