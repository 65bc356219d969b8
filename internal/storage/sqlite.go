package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/solhwan/pointclick/pkg/game"
)

// SQLiteStore persists save snapshots in a local SQLite database. It is the
// backend of choice for single-player desktop installs, where running Redis
// makes no sense.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ game.SaveStore = (*SQLiteStore)(nil)

const createSavesTable = `
CREATE TABLE IF NOT EXISTS saves (
	slot       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(createSavesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close sqlite database", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, slot string, snap *game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (slot, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		slot, string(data), time.Now().UTC())
	if err != nil {
		s.logger.Error("Failed to save snapshot", "slot", slot, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, slot string) (*game.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Return nil for not found
	}
	if err != nil {
		s.logger.Error("Failed to load snapshot", "slot", slot, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) HasSnapshot(ctx context.Context, slot string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM saves WHERE slot = ?`, slot).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	return n > 0, nil
}
