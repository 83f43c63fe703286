// Package sqlite provides a SQLite-backed draft.Store for drafts that must
// survive process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-census/pkg/draft"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store persists drafts in a single key-value table.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a draft store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: ping db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := store.migrate(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save implements draft.Store.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("sqlite: storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sqlite: draft key is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO drafts (draft_key, payload_json, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(draft_key) DO UPDATE SET
		    payload_json = excluded.payload_json,
		    saved_at = excluded.saved_at`,
		key, value, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save draft: %w", err)
	}
	return nil
}

// Load implements draft.Store.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("sqlite: storage is not configured")
	}
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload_json FROM drafts WHERE draft_key = ?`,
		strings.TrimSpace(key),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load draft: %w", err)
	}
	return payload, nil
}

// Clear implements draft.Store.
func (s *Store) Clear(ctx context.Context, key string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("sqlite: storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM drafts WHERE draft_key = ?`, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("sqlite: clear draft: %w", err)
	}
	return nil
}

// migrate applies the embedded migrations in filename order, at most once each.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		var applied int
		if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, file).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		up := upSection(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		tx, err := s.sqlDB.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, file, s.now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// upSection isolates the `-- +migrate Up` segment of a migration file.
func upSection(content string) string {
	const upMarker, downMarker = "-- +migrate Up", "-- +migrate Down"
	start := strings.Index(content, upMarker)
	if start < 0 {
		return content
	}
	content = content[start+len(upMarker):]
	if end := strings.Index(content, downMarker); end >= 0 {
		content = content[:end]
	}
	return content
}
