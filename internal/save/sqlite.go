// Package save implements the persistence gateway: durable key-value
// snapshots of the whole player aggregate.
package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"soviet/internal/game"
)

// snapshotKey is the single slot the game plays in.
const snapshotKey = "player"

// SQLite stores aggregate snapshots as JSON rows in an embedded database.
type SQLite struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// OpenSQLite opens or creates the snapshot database at path.
func OpenSQLite(path string, log zerolog.Logger) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open save db: %w", err)
	}
	s := &SQLite{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate save db: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key      TEXT PRIMARY KEY,
		id       TEXT NOT NULL,
		data     TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts the aggregate snapshot.
func (s *SQLite) Save(ctx context.Context, p *game.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, id, data, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET id = excluded.id, data = excluded.data, saved_at = excluded.saved_at`,
		snapshotKey, uuid.NewString(), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.log.Debug().Int("bytes", len(data)).Msg("snapshot saved")
	return nil
}

// Load restores the aggregate. The second return is false when no snapshot
// exists; a corrupt snapshot is an error the caller recovers from by
// starting fresh.
func (s *SQLite) Load(ctx context.Context) (*game.Player, bool, error) {
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT data FROM snapshots WHERE key = ?`, snapshotKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	var p game.Player
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &p, true, nil
}

// Clear removes the snapshot, resetting to a fresh game on next load.
func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, snapshotKey); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
