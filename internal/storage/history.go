/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zoomview/internal/config"
	applog "zoomview/internal/log"
	"zoomview/internal/vector"
	"zoomview/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName = "history.sqlite"

	// schemaVersion tracks the history schema. Bump it and add a migration
	// step for breaking changes.
	schemaVersion = 2
)

// stamp sorts lexically in time order.
const stamp = "2006-01-02T15:04:05.000000000Z"

// ErrDisabled is returned by Path when history is switched off.
var ErrDisabled = errors.New("history disabled")

// Run is one recorded script replay.
type Run struct {
	ID       int64
	Script   string
	Name     string
	Viewport vector.Size
	Content  vector.Size
	Scale    float32
	Fit      float32
	Frames   int
	Ticks    int
	Failures int
	At       time.Time
}

func (r Run) OK() bool { return r.Failures == 0 }

// Store is an open history database.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Path resolves the history file from the config value: "off" disables,
// "" means <user cache dir>/zoomview/history.sqlite.
func Path(setting string) (string, error) {
	setting = strings.TrimSpace(setting)
	switch {
	case strings.EqualFold(setting, "off"):
		return "", ErrDisabled
	case setting != "":
		return setting, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "zoomview", FileName), nil
}

// PathFromConfig is Path for the general section of the user config.
func PathFromConfig(c config.GeneralConfig) (string, error) { return Path(c.History) }

// Open creates or opens the history at path, enables WAL mode and brings the
// schema up to date.
func Open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create history dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	for _, step := range []func(context.Context, *sql.DB) error{ensureVersion, ensureSchema, runMigrations} {
		if err := step(ctx, db); err != nil {
			_ = db.Close()
			l.Error("prepare history failed", slog.Any("err", err))
			return nil, err
		}
	}
	l.Debug("history ready")
	return &Store{db: db, path: path, log: l}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
		id          INTEGER PRIMARY KEY CHECK(id=1),
		schema      INTEGER NOT NULL,
		app         TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh files start at the baseline schema and migrate forward
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema for the migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		run_id      INTEGER PRIMARY KEY,
		script      TEXT    NOT NULL,
		name        TEXT,
		viewport_w  REAL    NOT NULL,
		viewport_h  REAL    NOT NULL,
		content_w   REAL    NOT NULL,
		content_h   REAL    NOT NULL,
		scale       REAL    NOT NULL,
		fit         REAL    NOT NULL,
		frames      INTEGER NOT NULL,
		ticks       INTEGER NOT NULL,
		failures    INTEGER NOT NULL,
		at          TEXT    NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// per-script listing
			stmts = []string{`CREATE INDEX IF NOT EXISTS idx_runs_script ON runs(script, at);`}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// Record stores r and returns its row id. A zero At is stamped with the
// current time.
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	if strings.TrimSpace(r.Script) == "" {
		return 0, errors.New("run needs a script")
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(script, name, viewport_w, viewport_h, content_w, content_h, scale, fit, frames, ticks, failures, at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Script, r.Name, r.Viewport.W, r.Viewport.H, r.Content.W, r.Content.H,
		r.Scale, r.Fit, r.Frames, r.Ticks, r.Failures, r.At.UTC().Format(stamp))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	s.log.Debug("run recorded", slog.Int64("id", id), slog.String("script", r.Script), slog.Int("failures", r.Failures))
	return id, nil
}

// Recent returns up to limit runs, newest first. A non-empty script keeps
// only that script's runs.
func (s *Store) Recent(ctx context.Context, script string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT run_id, script, name, viewport_w, viewport_h, content_w, content_h, scale, fit, frames, ticks, failures, at FROM runs`
	var args []any
	if script != "" {
		q += ` WHERE script = ?`
		args = append(args, script)
	}
	q += ` ORDER BY at DESC, run_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var (
			r    Run
			name sql.NullString
			at   string
		)
		if err := rows.Scan(&r.ID, &r.Script, &name, &r.Viewport.W, &r.Viewport.H, &r.Content.W, &r.Content.H,
			&r.Scale, &r.Fit, &r.Frames, &r.Ticks, &r.Failures, &at); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Name = name.String
		if r.At, err = time.Parse(stamp, at); err != nil {
			return nil, fmt.Errorf("run %d time: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep runs and reports how many went.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id NOT IN (
		SELECT run_id FROM runs ORDER BY at DESC, run_id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
