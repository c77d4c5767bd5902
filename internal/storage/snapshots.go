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
	"log/slog"
	"time"
)

// language=SQL
// dialect=SQLite
const insertScriptSnapshotSQL = `INSERT INTO script_snapshots(ts, text, digest) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestScriptSnapshotSQL = `SELECT ts, text, digest FROM script_snapshots ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listScriptSnapshotsSQL = `SELECT ts, text, digest FROM script_snapshots ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldScriptSnapshotsSQL = `DELETE FROM script_snapshots WHERE id NOT IN (
	SELECT id FROM script_snapshots ORDER BY ts DESC, id DESC LIMIT ?
)`

// ScriptSnapshot is one recorded version of the script text.
type ScriptSnapshot struct {
	TS     time.Time
	Text   string
	Digest string
}

// SaveScriptSnapshot records text unless it matches the latest snapshot.
// It reports whether a row was written.
func (h *History) SaveScriptSnapshot(ctx context.Context, text string, ts time.Time) (bool, error) {
	digest := Digest(text)
	latest, ok, err := h.LatestScriptSnapshot(ctx)
	if err != nil {
		return false, err
	}
	if ok && latest.Digest == digest {
		return false, nil
	}
	if _, err := h.db.ExecContext(ctx, insertScriptSnapshotSQL, ts.UTC().Format(time.RFC3339Nano), text, digest); err != nil {
		h.log.Error("save snapshot failed", slog.Any("err", err))
		return false, err
	}
	return true, nil
}

// LatestScriptSnapshot returns the newest snapshot; ok is false when none exist.
func (h *History) LatestScriptSnapshot(ctx context.Context) (ScriptSnapshot, bool, error) {
	var s ScriptSnapshot
	var tsStr string
	err := h.db.QueryRowContext(ctx, selectLatestScriptSnapshotSQL).Scan(&tsStr, &s.Text, &s.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return ScriptSnapshot{}, false, nil
	}
	if err != nil {
		return ScriptSnapshot{}, false, err
	}
	s.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
	return s, true, nil
}

// ListScriptSnapshots returns up to limit most recent snapshots, newest first.
func (h *History) ListScriptSnapshots(ctx context.Context, limit int) ([]ScriptSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, listScriptSnapshotsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ScriptSnapshot
	for rows.Next() {
		var s ScriptSnapshot
		var tsStr string
		if err := rows.Scan(&tsStr, &s.Text, &s.Digest); err != nil {
			return nil, err
		}
		s.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneScriptSnapshots keeps at most keepLast snapshots and deletes older ones.
func (h *History) PruneScriptSnapshots(ctx context.Context, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := h.db.ExecContext(ctx, pruneOldScriptSnapshotsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
