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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RehearsalSlide is the time spent on one slide during a rehearsal.
type RehearsalSlide struct {
	Index   int
	Seconds float64
	Text    string
}

// Rehearsal summarizes one recorded rehearsal run.
type Rehearsal struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalSeconds float64
	Slides       int
}

// RecordRehearsal stores a finished rehearsal run and returns its ID.
func (h *History) RecordRehearsal(ctx context.Context, started, finished time.Time, slides []RehearsalSlide) (string, error) {
	id := uuid.NewString()
	var total float64
	for _, s := range slides {
		total += s.Seconds
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin rehearsal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rehearsals(id, started_at, finished_at, total_seconds, slides) VALUES(?, ?, ?, ?, ?)`,
		id, started.UTC().Format(time.RFC3339Nano), finished.UTC().Format(time.RFC3339Nano), total, len(slides),
	); err != nil {
		return "", fmt.Errorf("insert rehearsal: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rehearsal_slides(run_id, idx, seconds, text) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare rehearsal slides: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, s := range slides {
		if _, err := stmt.ExecContext(ctx, id, s.Index, s.Seconds, s.Text); err != nil {
			return "", fmt.Errorf("insert rehearsal slide %d: %w", s.Index, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit rehearsal: %w", err)
	}
	h.log.Info("rehearsal recorded", slog.String("id", id), slog.Int("slides", len(slides)), slog.Float64("seconds", total))
	return id, nil
}

// ListRehearsals returns up to limit runs, newest first.
func (h *History) ListRehearsals(ctx context.Context, limit int) ([]Rehearsal, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, total_seconds, slides FROM rehearsals ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Rehearsal
	for rows.Next() {
		var r Rehearsal
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.TotalSeconds, &r.Slides); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RehearsalSlides returns the per-slide timings of run id in slide order.
func (h *History) RehearsalSlides(ctx context.Context, id string) ([]RehearsalSlide, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT idx, seconds, text FROM rehearsal_slides WHERE run_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []RehearsalSlide
	for rows.Next() {
		var s RehearsalSlide
		if err := rows.Scan(&s.Index, &s.Seconds, &s.Text); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
