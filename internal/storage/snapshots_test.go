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
	"testing"
	"time"
)

func TestScriptSnapshots_SaveDedupeAndList(t *testing.T) {
	h, _ := openTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, ok, err := h.LatestScriptSnapshot(ctx); err != nil || ok {
		t.Fatalf("expected no snapshots, ok=%v err=%v", ok, err)
	}
	steps := []struct {
		text string
		want bool
	}{
		{"--\none\n", true},
		{"--\none\n", false},
		{"--\ntwo\n", true},
		{"--\none\n", true},
	}
	for i, st := range steps {
		saved, err := h.SaveScriptSnapshot(ctx, st.text, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if saved != st.want {
			t.Fatalf("save %d saved=%v want %v", i, saved, st.want)
		}
	}
	list, err := h.ListScriptSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(list))
	}
	if list[0].Text != "--\none\n" || list[1].Text != "--\ntwo\n" {
		t.Fatalf("unexpected order: %q, %q", list[0].Text, list[1].Text)
	}
	if !list[0].TS.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("newest ts = %v", list[0].TS)
	}
	if list[0].Digest != Digest("--\none\n") {
		t.Fatalf("digest mismatch")
	}
}

func TestScriptSnapshots_Prune(t *testing.T) {
	h, _ := openTestHistory(t)
	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if _, err := h.SaveScriptSnapshot(ctx, string(rune('a'+i)), base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	n, err := h.PruneScriptSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pruned, got %d", n)
	}
	list, _ := h.ListScriptSnapshots(ctx, 0)
	if len(list) != 2 || list[0].Text != "e" || list[1].Text != "d" {
		t.Fatalf("unexpected survivors: %+v", list)
	}
	if n, _ := h.PruneScriptSnapshots(ctx, 0); n != 0 {
		t.Fatalf("keepLast=0 must not delete, got %d", n)
	}
}

func TestRehearsals_RecordAndList(t *testing.T) {
	h, _ := openTestHistory(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	slides := []RehearsalSlide{
		{Index: 0, Seconds: 12.5, Text: "Welcome"},
		{Index: 1, Seconds: 30, Text: "Agenda"},
		{Index: 2, Seconds: 7.5, Text: ""},
	}
	id, err := h.RecordRehearsal(ctx, start, start.Add(50*time.Second), slides)
	if err != nil {
		t.Fatalf("RecordRehearsal: %v", err)
	}
	if len(id) != 36 {
		t.Fatalf("expected uuid id, got %q", id)
	}
	id2, err := h.RecordRehearsal(ctx, start.Add(time.Hour), start.Add(time.Hour+time.Minute), slides[:1])
	if err != nil {
		t.Fatalf("RecordRehearsal 2: %v", err)
	}
	runs, err := h.ListRehearsals(ctx, 0)
	if err != nil {
		t.Fatalf("ListRehearsals: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != id2 || runs[1].ID != id {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[1].TotalSeconds != 50 || runs[1].Slides != 3 {
		t.Fatalf("unexpected summary: %+v", runs[1])
	}
	if !runs[1].StartedAt.Equal(start) {
		t.Fatalf("started = %v", runs[1].StartedAt)
	}
	got, err := h.RehearsalSlides(ctx, id)
	if err != nil {
		t.Fatalf("RehearsalSlides: %v", err)
	}
	if len(got) != 3 || got[1] != slides[1] {
		t.Fatalf("unexpected slides: %+v", got)
	}
}
