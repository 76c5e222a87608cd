// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package activity persists a log of workflow activities in SQLite.
package activity

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	details TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_action ON activities(action);
`

// Status values written by the recorder.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// 📄 Activity is one row of the log
type Activity struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// 💾 Store is an activity log backed by a SQLite file
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// 🏭 Open opens (creating if needed) the activity database at path.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Errorf("opening database: %w", err)
	}
	// one connection, so an in-memory database is shared by every query
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Errorf("creating tables: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("activity database ready")

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Log inserts a row and returns its id. A zero CreatedAt is stamped now.
func (s *Store) Log(ctx context.Context, a Activity) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO activities (action, details, status, created_at) VALUES (?, ?, ?, ?)",
		a.Action, a.Details, a.Status, a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, errors.Errorf("inserting activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Errorf("reading activity id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, action, details, status, created_at FROM activities ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, errors.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var (
			a       Activity
			created string
		)
		if err := rows.Scan(&a.ID, &a.Action, &a.Details, &a.Status, &created); err != nil {
			return nil, errors.Errorf("reading activity row: %w", err)
		}
		a.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, errors.Errorf("parsing created_at of activity %d: %w", a.ID, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("iterating activities: %w", err)
	}

	return out, nil
}
