// Package history persists a record of completed builds in SQLite.
//
// The store is append-only: one row per build attempt, successful or not,
// holding the recipe hash, target platforms, outcome, duration, and the
// artifacts written to the output directory. The daemon and the CLI both
// write to the same database under the user's data directory.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Build outcome values stored in a record's Status field.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// A single build record.
type Record struct {
	ID         string        // Build identifier, assigned on append when empty.
	Resource   string        // Resource name the build was run for.
	RecipeHash string        // Deterministic hash of the expanded recipe.
	Platforms  []string      // Platforms built.
	Status     string        // "success" or "failed".
	Duration   time.Duration // Wall-clock build duration.
	Artifacts  []string      // Paths written under the output directory.
	Commit     string        // Source commit for git contexts, empty otherwise.
	CreatedAt  time.Time     // Completion time.
}

// An append-only SQLite-backed build log.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Opens (and if needed initializes) the history database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		resource TEXT NOT NULL,
		recipe_hash TEXT NOT NULL,
		platforms TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		artifacts TEXT,
		commit_hash TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at);
	CREATE INDEX IF NOT EXISTS idx_builds_resource ON builds(resource);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Appends a build record. A missing ID or CreatedAt is filled in.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	platforms, err := json.Marshal(rec.Platforms)
	if err != nil {
		return Record{}, fmt.Errorf("marshal platforms: %w", err)
	}
	artifacts, err := json.Marshal(rec.Artifacts)
	if err != nil {
		return Record{}, fmt.Errorf("marshal artifacts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO builds (id, resource, recipe_hash, platforms, status, duration_ms, artifacts, commit_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Resource, rec.RecipeHash, string(platforms), rec.Status,
		rec.Duration.Milliseconds(), string(artifacts), rec.Commit, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert build record: %w", err)
	}

	return rec, nil
}

// Returns the most recent build records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, resource, recipe_hash, platforms, status, duration_ms, artifacts, commit_hash, created_at
		 FROM builds ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			platforms  string
			artifacts  sql.NullString
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&rec.ID, &rec.Resource, &rec.RecipeHash, &platforms,
			&rec.Status, &durationMS, &artifacts, &rec.Commit, &createdAt); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}

		if err := json.Unmarshal([]byte(platforms), &rec.Platforms); err != nil {
			return nil, fmt.Errorf("unmarshal platforms: %w", err)
		}
		if artifacts.Valid && artifacts.String != "" {
			if err := json.Unmarshal([]byte(artifacts.String), &rec.Artifacts); err != nil {
				return nil, fmt.Errorf("unmarshal artifacts: %w", err)
			}
		}

		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}

	return records, rows.Err()
}
