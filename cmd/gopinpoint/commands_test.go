/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopinpoint/internal/config"
	"gopinpoint/internal/script"
	"gopinpoint/internal/storage"
)

func globals() (*Globals, *bytes.Buffer) {
	var out bytes.Buffer
	return &Globals{Out: &out, Config: config.Defaults()}, &out
}

func writeScript(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspect_Table(t *testing.T) {
	g, out := globals()
	path := writeScript(t, "--\nhello\nworld\n-- [red]\nsecond\n")
	if err := (&InspectCmd{Path: path}).Run(g); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "baseline:") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if !strings.Contains(lines[1], "hello") || strings.Contains(lines[1], "world") {
		t.Fatalf("first slide row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "color") || !strings.Contains(lines[2], "red") {
		t.Fatalf("second slide row = %q", lines[2])
	}
}

func TestInspect_JSON(t *testing.T) {
	g, out := globals()
	path := writeScript(t, "--\na\n--\nb\n")
	if err := (&InspectCmd{Path: path, JSON: true}).Run(g); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var doc struct {
		Slides []struct {
			Text string `json:"text"`
		} `json:"slides"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(doc.Slides) != 2 || doc.Slides[1].Text != "b" {
		t.Fatalf("unexpected slides: %+v", doc.Slides)
	}
}

func TestInspect_MissingFile(t *testing.T) {
	g, _ := globals()
	if err := (&InspectCmd{Path: filepath.Join(t.TempDir(), "nope.txt")}).Run(g); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestFmt_PrintAndWrite(t *testing.T) {
	orig := "--   [red]  \nhi\n\n\n"
	want := script.Serialize(script.Parse(orig))
	g, out := globals()
	path := writeScript(t, orig)
	if err := (&FmtCmd{Path: path}).Run(g); err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if out.String() != want {
		t.Fatalf("fmt output = %q want %q", out.String(), want)
	}
	if err := (&FmtCmd{Path: path, Write: true}).Run(g); err != nil {
		t.Fatalf("fmt -w: %v", err)
	}
	got, _ := storage.ReadScript(path)
	if got != want {
		t.Fatalf("file = %q want %q", got, want)
	}
	b, err := storage.LatestBackup(path)
	if err != nil {
		t.Fatalf("expected backup: %v", err)
	}
	if old, _ := storage.ReadBackup(b.Path); old != orig {
		t.Fatalf("backup = %q", old)
	}
	// formatting is idempotent
	if err := (&FmtCmd{Path: path, Write: true}).Run(g); err != nil {
		t.Fatalf("fmt -w again: %v", err)
	}
	if bs, _ := storage.ListBackups(path); len(bs) != 1 {
		t.Fatalf("second fmt must not create a backup, got %d", len(bs))
	}
}

func TestTiming_Budgets(t *testing.T) {
	g, out := globals()
	path := writeScript(t, "[duration=1]\n--\na\n-- [duration=3]\nb\n")
	if err := (&TimingCmd{Path: path}).Run(g); err != nil {
		t.Fatalf("timing: %v", err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "talk 1:00 (60s), 2 slides, total weight 4s") {
		t.Fatalf("header = %q", s)
	}
	if !strings.Contains(s, "0:15") || !strings.Contains(s, "0:45") {
		t.Fatalf("budgets missing: %q", s)
	}
}

func TestHistory_ListsEverything(t *testing.T) {
	path := writeScript(t, "--\none\n")
	if err := storage.WriteScript(path, "--\ntwo\n", 0); err != nil {
		t.Fatal(err)
	}
	h, err := storage.OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	ctx := context.Background()
	now := time.Now()
	if _, err := h.SaveScriptSnapshot(ctx, "--\ntwo\n", now); err != nil {
		t.Fatal(err)
	}
	if _, err := h.RecordRehearsal(ctx, now.Add(-time.Minute), now, []storage.RehearsalSlide{{Index: 0, Seconds: 61, Text: "two"}}); err != nil {
		t.Fatal(err)
	}
	_ = h.Close()

	g, out := globals()
	if err := (&HistoryCmd{Path: path, Limit: 5}).Run(g); err != nil {
		t.Fatalf("history: %v", err)
	}
	s := out.String()
	for _, want := range []string{"Rehearsals:", "1 slides  1:01", "Snapshots:", "Backups:", ".xz"} {
		if !strings.Contains(s, want) {
			t.Fatalf("history output missing %q:\n%s", want, s)
		}
	}
}

func TestSearch_Notes(t *testing.T) {
	path := writeScript(t, "--\nWelcome\n# greet the audience\n--\nAudience questions\n")
	g, out := globals()
	if err := (&SearchCmd{Path: path, Query: []string{"audience"}, Notes: true, Limit: 10}).Run(g); err != nil {
		t.Fatalf("search: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "notes") || !strings.Contains(lines[0], "[audience]") {
		t.Fatalf("unexpected hits: %q", out.String())
	}
	out.Reset()
	if err := (&SearchCmd{Path: path, Query: []string{"nothing"}, Limit: 10}).Run(g); err != nil {
		t.Fatalf("search: %v", err)
	}
	if out.String() != "no matches\n" {
		t.Fatalf("empty search = %q", out.String())
	}
}

func TestRestore_LatestBackup(t *testing.T) {
	path := writeScript(t, "--\nv1\n")
	if err := storage.WriteScript(path, "--\nv2\n", 0); err != nil {
		t.Fatal(err)
	}
	g, out := globals()
	if err := (&RestoreCmd{Path: path}).Run(g); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got, _ := storage.ReadScript(path); got != "--\nv1\n" {
		t.Fatalf("restored = %q", got)
	}
	if !strings.HasPrefix(out.String(), "restored ") {
		t.Fatalf("output = %q", out.String())
	}
	// the replaced content is itself backed up
	b, _ := storage.LatestBackup(path)
	if txt, _ := storage.ReadBackup(b.Path); txt != "--\nv2\n" {
		t.Fatalf("latest backup = %q", txt)
	}
}

func TestRestore_NoBackups(t *testing.T) {
	g, _ := globals()
	if err := (&RestoreCmd{Path: writeScript(t, "--\nx\n")}).Run(g); err == nil {
		t.Fatalf("expected error without backups")
	}
}

func TestVersion(t *testing.T) {
	g, out := globals()
	if err := (&VersionCmd{}).Run(g); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "gopinpoint ") {
		t.Fatalf("version = %q", out.String())
	}
}
