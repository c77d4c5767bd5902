/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	"gopinpoint/internal/console"
	applog "gopinpoint/internal/log"
	"gopinpoint/internal/script"
	"gopinpoint/internal/storage"
	"gopinpoint/internal/timing"
	"gopinpoint/internal/watch"
)

// usageDeck is presented when no script is given.
const usageDeck = "[no-markup][transition=sheet][red]\n--\nusage: gopinpoint [present] <slides.pin>\n"

func loadDeck(path string) (string, script.Deck, error) {
	text, err := storage.ReadScript(path)
	if err != nil {
		return "", script.Deck{}, err
	}
	return text, script.Parse(text), nil
}

func firstLine(s string, width int) string {
	line, _, _ := strings.Cut(s, "\n")
	return runewidth.Truncate(line, width, "…")
}

func clockText(sec float64) string {
	s := int(sec)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// InspectCmd prints the parsed deck.
type InspectCmd struct {
	Path string `arg:"" help:"Slide script" type:"existingfile"`
	JSON bool   `help:"Print the deck as JSON"`
}

func (c *InspectCmd) Run(g *Globals) error {
	_, deck, err := loadDeck(c.Path)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(deck)
	}
	b := deck.Baseline
	fmt.Fprintf(g.Out, "baseline: stage %s, text %s, font %q, %s, duration %gs\n",
		b.StageColor, b.TextColor, b.Font, b.Position, b.Duration)
	for i, p := range deck.Slides {
		bg := p.Background
		if bg == "" {
			bg = "-"
		}
		fmt.Fprintf(g.Out, "%3d  %-6s %-20s %6.1fs  %s\n",
			i+1, p.BackgroundKind, runewidth.Truncate(bg, 20, "…"), timing.SlideSeconds(p), firstLine(p.Text, 40))
	}
	return nil
}

// FmtCmd normalizes a script.
type FmtCmd struct {
	Path  string `arg:"" help:"Slide script" type:"existingfile"`
	Write bool   `short:"w" help:"Write the result back to the file (previous content is backed up)"`
}

func (c *FmtCmd) Run(g *Globals) error {
	text, deck, err := loadDeck(c.Path)
	if err != nil {
		return err
	}
	out := script.Serialize(deck)
	if !c.Write {
		_, err := fmt.Fprint(g.Out, out)
		return err
	}
	if out == text {
		return nil
	}
	if err := storage.WriteScript(c.Path, out, g.Config.Presenter.KeepBackups); err != nil {
		return err
	}
	applog.WithComponent("cli").Info("script formatted", slog.String("path", c.Path))
	return nil
}

// TimingCmd prints per-slide budgets for an on-schedule talk.
type TimingCmd struct {
	Path string `arg:"" help:"Slide script" type:"existingfile"`
}

func (c *TimingCmd) Run(g *Globals) error {
	_, deck, err := loadDeck(c.Path)
	if err != nil {
		return err
	}
	talk := timing.TalkSeconds(deck.Baseline)
	fmt.Fprintf(g.Out, "talk %s (%s), %d slides, total weight %gs\n",
		clockText(talk), timing.FormatRemaining(talk), deck.Len(), timing.Total(deck.Slides))
	remaining := talk
	for i, p := range deck.Slides {
		budget := timing.SlideBudget(deck.Slides, i, remaining)
		fmt.Fprintf(g.Out, "%3d  %6.1fs  %7s  %s\n", i+1, timing.SlideSeconds(p), clockText(budget), firstLine(p.Text, 40))
		remaining -= budget
	}
	return nil
}

// PresentCmd runs the terminal presenter.
type PresentCmd struct {
	Path     string `arg:"" optional:"" help:"Slide script; without one a usage slide is shown" type:"existingfile"`
	Rehearse bool   `help:"Start recording slide timings immediately"`
	Autoplay bool   `help:"Advance slides when their time budget runs out"`
	NoWatch  bool   `help:"Do not reload the script when it changes on disk"`
}

func (c *PresentCmd) Run(g *Globals) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "present")
	// liner cannot interrupt a pending prompt, so signals keep their default action.
	ctx := context.Background()

	text := usageDeck
	path := ""
	if c.Path != "" {
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			return err
		}
		path = abs
		if text, err = storage.ReadScript(path); err != nil {
			return err
		}
		ctx = applog.WithScript(ctx, path)
	}
	pc := g.Config.Presenter

	var history *storage.History
	if pc.History && path != "" {
		if reset, err := storage.DetectAndResetHistory(ctx, path); err != nil {
			l.WarnContext(ctx, "history check failed", slog.Any("err", err))
		} else if reset {
			l.WarnContext(ctx, "history database was damaged and has been reset")
		}
		h, err := storage.OpenHistory(path)
		if err != nil {
			l.WarnContext(ctx, "history disabled", slog.Any("err", err))
		} else {
			history = h
			defer h.Close()
		}
	}

	var w *watch.Watcher
	watching := path != "" && !c.NoWatch
	con := console.New(console.Options{
		ScriptPath:    path,
		Stage:         console.Stage{Cols: pc.StageColumns, Rows: pc.StageRows},
		Autoplay:      c.Autoplay || pc.Autoplay,
		KeepBackups:   pc.KeepBackups,
		KeepSnapshots: pc.KeepSnapshots,
		History:       history,
		Out:           g.Out,
		Synced: func(t string) {
			if w != nil {
				w.Prime(t)
			}
		},
	})
	if g.Crash != nil {
		g.Crash.ScriptPath = path
		g.Crash.Snapshot = func() string { return con.Session().Serialize() }
	}
	con.Load(text)
	if c.Rehearse {
		if _, err := con.Exec(ctx, "rehearse"); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, gctx := errgroup.WithContext(ctx)
	if watching {
		w = watch.New(path, time.Duration(pc.ReloadDebounce())*time.Millisecond, func(t string) { con.Load(t) })
		w.Prime(text)
		eg.Go(func() error { return w.Run(gctx) })
	}
	eg.Go(func() error {
		defer cancel()
		return con.Run(gctx)
	})
	return eg.Wait()
}

// HistoryCmd lists what is recorded about a script.
type HistoryCmd struct {
	Path  string `arg:"" help:"Slide script" type:"path"`
	Limit int    `short:"n" default:"10" help:"Entries per section"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	ctx := context.Background()
	h, err := storage.OpenHistory(c.Path)
	if err != nil {
		return err
	}
	defer h.Close()

	runs, err := h.ListRehearsals(ctx, c.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Rehearsals:")
	if len(runs) == 0 {
		fmt.Fprintln(g.Out, "  none")
	}
	for _, r := range runs {
		fmt.Fprintf(g.Out, "  %s  %-14s %3d slides  %s\n",
			r.ID[:8], humanize.Time(r.StartedAt), r.Slides, clockText(r.TotalSeconds))
	}

	snaps, err := h.ListScriptSnapshots(ctx, c.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Snapshots:")
	if len(snaps) == 0 {
		fmt.Fprintln(g.Out, "  none")
	}
	for _, s := range snaps {
		fmt.Fprintf(g.Out, "  %s  %-14s %8s  %d slides\n",
			s.Digest[:min(12, len(s.Digest))], humanize.Time(s.TS), humanize.Bytes(uint64(len(s.Text))), script.Parse(s.Text).Len())
	}

	backups, err := storage.ListBackups(c.Path)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Backups:")
	if len(backups) == 0 {
		fmt.Fprintln(g.Out, "  none")
	}
	for i, b := range backups {
		if i == c.Limit {
			break
		}
		tag := ""
		if b.Autosave {
			tag = "  (crash autosave)"
		}
		fmt.Fprintf(g.Out, "  %s  %-14s %8s%s\n", filepath.Base(b.Path), humanize.Time(b.Time), humanize.Bytes(uint64(b.Size)), tag)
	}
	return nil
}

// SearchCmd queries the slide index of a script.
type SearchCmd struct {
	Path  string   `arg:"" help:"Slide script" type:"existingfile"`
	Query []string `arg:"" optional:"" help:"FTS5 query terms; without any, every indexed entry is listed"`
	Notes bool     `help:"Search speaker notes only"`
	Text  bool     `help:"Search slide text only"`
	Limit int      `short:"n" default:"20" help:"Maximum hits"`
}

func (c *SearchCmd) Run(g *Globals) error {
	ctx := context.Background()
	_, deck, err := loadDeck(c.Path)
	if err != nil {
		return err
	}
	h, err := storage.OpenHistory(c.Path)
	if err != nil {
		return err
	}
	defer h.Close()
	if err := h.IndexDeck(ctx, deck); err != nil {
		return err
	}
	q := storage.SlideQuery{Text: strings.Join(c.Query, " "), Limit: c.Limit}
	switch {
	case c.Notes && !c.Text:
		q.Kinds = []string{storage.KindNotes}
	case c.Text && !c.Notes:
		q.Kinds = []string{storage.KindText}
	}
	hits, err := h.SearchSlides(ctx, q)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(g.Out, "no matches")
		return nil
	}
	for _, hit := range hits {
		fmt.Fprintf(g.Out, "%3d  %-5s  %s\n", hit.Slide+1, hit.Kind, strings.ReplaceAll(hit.Snippet, "\n", " "))
	}
	return nil
}

// RestoreCmd puts a backup back in place of the script.
type RestoreCmd struct {
	Path   string `arg:"" help:"Slide script" type:"path"`
	Backup string `arg:"" optional:"" help:"Backup file; defaults to the newest regular backup" type:"existingfile"`
}

func (c *RestoreCmd) Run(g *Globals) error {
	src := c.Backup
	if src == "" {
		b, err := storage.LatestBackup(c.Path)
		if err != nil {
			return err
		}
		src = b.Path
	}
	text, err := storage.ReadBackup(src)
	if err != nil {
		return err
	}
	if err := storage.WriteScript(c.Path, text, g.Config.Presenter.KeepBackups); err != nil {
		return fmt.Errorf("restore %s: %w", c.Path, err)
	}
	fmt.Fprintf(g.Out, "restored %s from %s\n", c.Path, filepath.Base(src))
	return nil
}
