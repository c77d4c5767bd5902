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
	"strings"

	"gopinpoint/internal/script"
)

// Kinds of indexed slide documents.
const (
	KindText  = "text"
	KindNotes = "notes"
)

// SlideQuery describes a search over the indexed deck.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Kinds restricts matches to KindText or KindNotes; empty means both.
type SlideQuery struct {
	Text   string
	Kinds  []string
	Limit  int
	Offset int
}

// SlideHit is one matching slide document. Snippet marks matches with [ ].
type SlideHit struct {
	Slide   int
	Kind    string
	Text    string
	Snippet string
}

// IndexDeck replaces the searchable copy of the deck with d's slides.
func (h *History) IndexDeck(ctx context.Context, d script.Deck) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM slides`); err != nil {
		return fmt.Errorf("clear slides: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO slides(idx, kind, text) VALUES(?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare slides: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, p := range d.Slides {
		if strings.TrimSpace(p.Text) != "" {
			if _, err := stmt.ExecContext(ctx, i, KindText, p.Text); err != nil {
				return fmt.Errorf("index slide %d: %w", i, err)
			}
		}
		if strings.TrimSpace(p.SpeakerNotes) != "" {
			if _, err := stmt.ExecContext(ctx, i, KindNotes, p.SpeakerNotes); err != nil {
				return fmt.Errorf("index notes %d: %w", i, err)
			}
		}
	}
	return tx.Commit()
}

// SearchSlides runs q against the indexed deck. An empty Text lists every
// indexed document that passes the kind filter.
func (h *History) SearchSlides(ctx context.Context, q SlideQuery) ([]SlideHit, error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT s.idx, s.kind, s.text, snippet(fts_slides, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_slides JOIN slides s ON fts_slides.rowid = s.doc_id\n")
		sb.WriteString("WHERE fts_slides MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT s.idx, s.kind, s.text, ''\n")
		sb.WriteString("FROM slides s\nWHERE 1=1\n")
	}
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND s.kind IN (" + placeholders(len(q.Kinds)) + ")\n")
		for _, k := range q.Kinds {
			args = append(args, k)
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY s.idx, s.kind DESC\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := h.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []SlideHit
	for rows.Next() {
		var hit SlideHit
		if err := rows.Scan(&hit.Slide, &hit.Kind, &hit.Text, &hit.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, hit)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
