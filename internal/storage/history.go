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

	applog "gopinpoint/internal/log"
	"gopinpoint/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	HistoryFileName = "history.sqlite"

	// baseSchema is what ensureSchema creates; migrations take it to schemaVersion.
	baseSchema = 1
	// schemaVersion tracks the local SQLite schema of the history database.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// History is the per-script SQLite database recording script snapshots,
// rehearsal runs and a searchable copy of the current slides.
type History struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// HistoryPath returns the database path used for scriptPath.
func HistoryPath(scriptPath string) string {
	return filepath.Join(StateDir(scriptPath), HistoryFileName)
}

// OpenHistory ensures that the history database for scriptPath exists, opens
// it, enables WAL mode and brings the schema up to date.
func OpenHistory(scriptPath string) (*History, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(
		slog.String("script", scriptPath),
	)
	if strings.TrimSpace(scriptPath) == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(StateDir(scriptPath), 0o755); err != nil {
		l.Error("create state dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create %s dir: %w", StateDirName, err)
	}

	path := HistoryPath(scriptPath)
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
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
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("history ready", slog.String("path", path))
	return &History{db: db, path: path, log: applog.WithComponent("storage")}, nil
}

// Path returns the database file path.
func (h *History) Path() string { return h.path }

// Close releases the database handle.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh databases start at the base schema and run every migration
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, baseSchema, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		switch next {
		case 2:
			err = migrateSnapshotDigests(ctx, tx)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", next, err)
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

// migrateSnapshotDigests adds the content digest used to skip duplicate
// snapshots and fills it for existing rows.
func migrateSnapshotDigests(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `ALTER TABLE script_snapshots ADD COLUMN digest TEXT NOT NULL DEFAULT ''`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_script_snapshots_digest ON script_snapshots(digest)`); err != nil {
		return err
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, text FROM script_snapshots`)
	if err != nil {
		return err
	}
	type pending struct {
		id     int64
		digest string
	}
	var todo []pending
	for rows.Next() {
		var id int64
		var text string
		if err := rows.Scan(&id, &text); err != nil {
			_ = rows.Close()
			return err
		}
		todo = append(todo, pending{id: id, digest: Digest(text)})
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, p := range todo {
		if _, err := tx.ExecContext(ctx, `UPDATE script_snapshots SET digest=? WHERE id=?`, p.digest, p.id); err != nil {
			return err
		}
	}
	return nil
}

// ensureSchema creates the base tables if they do not exist.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// Script snapshots (history of script text for change tracking)
		`CREATE TABLE IF NOT EXISTS script_snapshots (
			id    INTEGER PRIMARY KEY,
			ts    TEXT    NOT NULL,
			text  TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_script_snapshots_ts ON script_snapshots(ts);`,

		// Rehearsal runs and the time spent on each slide
		`CREATE TABLE IF NOT EXISTS rehearsals (
			id            TEXT PRIMARY KEY,
			started_at    TEXT NOT NULL,
			finished_at   TEXT NOT NULL,
			total_seconds REAL NOT NULL,
			slides        INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rehearsals_started ON rehearsals(started_at);`,
		`CREATE TABLE IF NOT EXISTS rehearsal_slides (
			run_id  TEXT    NOT NULL,
			idx     INTEGER NOT NULL,
			seconds REAL    NOT NULL,
			text    TEXT    NOT NULL,
			PRIMARY KEY(run_id, idx),
			FOREIGN KEY(run_id) REFERENCES rehearsals(id) ON DELETE CASCADE
		);`,

		// Searchable copy of the current deck
		`CREATE TABLE IF NOT EXISTS slides (
			doc_id INTEGER PRIMARY KEY,
			idx    INTEGER NOT NULL,
			kind   TEXT    NOT NULL,
			text   TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_slides_idx ON slides(idx);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_slides USING fts5(
			text,
			content='slides',
			content_rowid='doc_id',
			tokenize = 'unicode61'
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	// Triggers keeping the external-content FTS table in sync with slides.text
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS slides_ai AFTER INSERT ON slides BEGIN
			INSERT INTO fts_slides(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS slides_ad AFTER DELETE ON slides BEGIN
			INSERT INTO fts_slides(fts_slides, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// DetectAndResetHistory checks the history database of scriptPath for
// corruption. A damaged file is copied to .gpp/backups and replaced by an
// empty database. It returns true when a reset was performed.
func DetectAndResetHistory(ctx context.Context, scriptPath string) (bool, error) {
	path := HistoryPath(scriptPath)
	h, err := OpenHistory(scriptPath)
	if err == nil {
		var chk string
		qerr := h.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk)
		if qerr == nil && strings.Contains(strings.ToLower(chk), "ok") {
			if _, perr := h.db.ExecContext(ctx, `SELECT 1 FROM script_snapshots LIMIT 1;`); perr == nil {
				return false, h.Close()
			}
		}
		_ = h.Close()
	}
	applog.WithOperation(applog.WithComponent("storage"), "history-reset").
		WarnContext(ctx, "history database damaged, recreating", slog.String("path", path))
	backupHistoryFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	h, err = OpenHistory(scriptPath)
	if err != nil {
		return false, fmt.Errorf("recreate history: %w", err)
	}
	return true, h.Close()
}

// backupHistoryFile copies the database file into a timestamped backup.
func backupHistoryFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
