// Package sqlite implements core.CheckpointStore on SQLite using
// modernc.org/sqlite (no cgo). Suitable for durable single-node deployments;
// the schema is created automatically on open.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/logging"

	_ "modernc.org/sqlite"
)

// Store implements core.CheckpointStore backed by a SQLite database. Each
// Append inserts a new snapshot row plus a write-log row in one transaction;
// Latest reads the highest-sequence snapshot, giving last-write-wins
// resolution per session.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Options configure the SQLite checkpoint store.
type Options struct {
	Logger logging.Logger
}

// New opens (or creates) a SQLite checkpoint database at the given path.
// Parent directories are created if needed.
func New(path string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL improves concurrent reader behavior under the single-writer model.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db, logger: opts.Logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.logger.Info("sqlite checkpoint store initialized", "path", path)
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (session_id, seq)
		);

		CREATE TABLE IF NOT EXISTS checkpoint_writes (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_checkpoint_writes_session
			ON checkpoint_writes(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Latest returns the most recent snapshot for the session, or (nil, nil)
// when none exists.
func (s *Store) Latest(ctx context.Context, sessionID string) (*core.ConversationState, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT state FROM checkpoints WHERE session_id = ? ORDER BY seq DESC LIMIT 1`,
		sessionID,
	)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading latest checkpoint: %w", err)
	}

	var state core.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding checkpoint state: %w", err)
	}
	return &state, nil
}

// Append stores a new snapshot with the next sequence number and logs the
// write, both in one transaction.
func (s *Store) Append(ctx context.Context, sessionID string, state *core.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding checkpoint state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM checkpoints WHERE session_id = ?`,
		sessionID,
	)
	if err := row.Scan(&seq); err != nil {
		return fmt.Errorf("allocating sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoints (session_id, seq, state, created_at) VALUES (?, ?, ?, datetime('now'))`,
		sessionID, seq, string(raw),
	); err != nil {
		return fmt.Errorf("inserting checkpoint: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoint_writes (id, session_id, seq, created_at) VALUES (?, ?, ?, datetime('now'))`,
		core.NewID(), sessionID, seq,
	); err != nil {
		return fmt.Errorf("inserting write record: %w", err)
	}

	return tx.Commit()
}

// DeleteAll removes every checkpoint and write record for the session and
// returns the respective counts. Zero deleted is a valid success.
func (s *Store) DeleteAll(ctx context.Context, sessionID string) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM checkpoints WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("deleting checkpoints: %w", err)
	}
	checkpoints, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM checkpoint_writes WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("deleting write records: %w", err)
	}
	writes, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing delete: %w", err)
	}

	s.logger.Info("session history cleared",
		"session_id", sessionID,
		"checkpoints_deleted", checkpoints,
		"writes_deleted", writes,
	)
	return int(checkpoints), int(writes), nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
