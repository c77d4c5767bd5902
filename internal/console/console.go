/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"
	"golang.org/x/sync/errgroup"

	applog "gopinpoint/internal/log"
	"gopinpoint/internal/presentation"
	"gopinpoint/internal/storage"
	"gopinpoint/internal/timing"
)

// ErrUnknownCommand is returned by Exec for input it does not understand.
var ErrUnknownCommand = errors.New("unknown command")

// Options configures a Console.
type Options struct {
	// ScriptPath is the file rehearsal timings are written to; empty for
	// decks that did not come from a file.
	ScriptPath    string
	Stage         Stage
	Autoplay      bool
	KeepBackups   int
	KeepSnapshots int
	// History records snapshots and rehearsal runs when set.
	History *storage.History
	Clock   timing.Clock
	Out     io.Writer
	// Runner executes a slide command; the default spawns sh -c.
	Runner func(ctx context.Context, command string) error
	// Synced is called with script text known to match the file on disk.
	Synced func(text string)
	// Tick is the autoplay polling interval.
	Tick time.Duration
}

// Console drives a presentation session from text commands.
type Console struct {
	mu sync.Mutex

	opts      Options
	out       io.Writer
	clock     timing.Clock
	presenter *Presenter
	session   *presentation.Session[*Card]
	watch     *timing.Stopwatch
	tracker   *timing.Tracker
	log       *slog.Logger

	rehearsalStart time.Time
}

// New returns a console with no deck loaded.
func New(opts Options) *Console {
	if opts.Clock == nil {
		opts.Clock = timing.SystemClock{}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	dir := ""
	if opts.ScriptPath != "" {
		dir = filepath.Dir(opts.ScriptPath)
	}
	c := &Console{
		opts:      opts,
		out:       opts.Out,
		clock:     opts.Clock,
		presenter: NewPresenter(opts.Stage, dir),
		log:       applog.WithComponent("console"),
	}
	if opts.Runner == nil {
		c.opts.Runner = c.spawn
	}
	c.session = presentation.New[*Card](c.presenter)
	c.session.SetClock(opts.Clock)
	c.watch = timing.NewStopwatch(opts.Clock)
	c.tracker = timing.NewTracker(c.watch, 0)
	c.tracker.Autoplay = opts.Autoplay
	return c
}

// Load installs text as the deck and shows the slide the edit touched.
func (c *Console) Load(text string) presentation.Reparse {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.load(text)
	c.show()
	return r
}

func (c *Console) load(text string) presentation.Reparse {
	r := c.session.Load(text)
	c.tracker.SetTalkSeconds(timing.TalkSeconds(c.session.Baseline()))
	c.record(text)
	return r
}

// record keeps the history database in step with the loaded script.
func (c *Console) record(text string) {
	h := c.opts.History
	if h == nil || c.opts.ScriptPath == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l := applog.WithOperation(c.log, "record")
	saved, err := h.SaveScriptSnapshot(ctx, text, c.clock.Now())
	if err != nil {
		l.Warn("snapshot failed", slog.Any("err", err))
		return
	}
	if !saved {
		return
	}
	if c.opts.KeepSnapshots > 0 {
		if _, err := h.PruneScriptSnapshots(ctx, c.opts.KeepSnapshots); err != nil {
			l.Warn("prune snapshots failed", slog.Any("err", err))
		}
	}
	if err := h.IndexDeck(ctx, c.session.Deck()); err != nil {
		l.Warn("index deck failed", slog.Any("err", err))
	}
}

// Session exposes the underlying session; callers must not use it while Run is active.
func (c *Console) Session() *presentation.Session[*Card] { return c.session }

// Tick advances the autoplay tracker and moves on when a slide ran out.
func (c *Console) Tick() timing.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick()
}

func (c *Console) tick() timing.Status {
	st := c.tracker.Tick(c.session.Deck().Slides, c.session.Current())
	if st.Advance && c.session.Next() {
		c.show()
	}
	return st
}

// Run reads commands until quit or end of input while the tracker ticks in
// the background.
func (c *Console) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(complete)

	c.mu.Lock()
	c.watch.Start()
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.NewTicker(c.opts.Tick)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				c.Tick()
			}
		}
	})
	g.Go(func() error {
		defer cancel()
		for {
			in, err := line.Prompt(c.prompt())
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			} else if err != nil {
				return fmt.Errorf("read command: %w", err)
			}
			in = strings.TrimSpace(in)
			if in == "" {
				continue
			}
			line.AppendHistory(in)
			quit, err := c.Exec(gctx, in)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit || gctx.Err() != nil {
				return nil
			}
		}
	})
	return g.Wait()
}

func (c *Console) prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := ""
	if c.session.Rehearsing() {
		rec = " rec"
	}
	return fmt.Sprintf("[%d/%d%s]> ", c.session.Current()+1, c.session.Len(), rec)
}

var commands = []string{
	"next", "prev", "goto", "list", "show", "notes", "time", "run",
	"rehearse", "done", "abort", "autoplay", "pause", "reload", "help", "quit",
}

func complete(line string) []string {
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}
	return out
}

// Exec runs one command line and reports whether the console should quit.
func (c *Console) Exec(ctx context.Context, line string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	c.log.DebugContext(ctx, "command", slog.String("line", line))
	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "n", "next":
		if c.session.Next() {
			c.show()
		}
	case "p", "prev":
		if c.session.Prev() {
			c.show()
		}
	case "g", "goto":
		if len(args) != 1 {
			return false, errors.New("usage: goto <slide>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > c.session.Len() {
			return false, fmt.Errorf("no slide %q (1-%d)", args[0], c.session.Len())
		}
		if c.session.Goto(n - 1) {
			c.show()
		}
	case "l", "list":
		c.list()
	case "s", "show":
		c.show()
	case "notes":
		c.notes()
	case "time":
		c.status()
	case "run":
		return false, c.run(ctx)
	case "rehearse":
		if c.session.Rehearsing() {
			return false, errors.New("already rehearsing")
		}
		c.session.BeginRehearsal()
		c.rehearsalStart = c.clock.Now()
		fmt.Fprintln(c.out, "rehearsal started; timings are recorded until done")
	case "done":
		return false, c.finishRehearsal(ctx)
	case "abort":
		if err := c.session.AbortRehearsal(); err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, "rehearsal discarded")
	case "autoplay":
		c.tracker.Autoplay = !c.tracker.Autoplay
		fmt.Fprintf(c.out, "autoplay %s\n", onOff(c.tracker.Autoplay))
	case "pause":
		if c.watch.Toggle() {
			fmt.Fprintln(c.out, "timer running")
		} else {
			fmt.Fprintln(c.out, "timer paused")
		}
	case "reload":
		return false, c.reload()
	case "h", "help", "?":
		c.help()
	case "q", "quit", "exit":
		if c.session.Rehearsing() {
			_ = c.session.AbortRehearsal()
			fmt.Fprintln(c.out, "rehearsal discarded")
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return false, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (c *Console) show() {
	p := c.session.CurrentPoint()
	card, ok := c.session.Payload(c.session.Current())
	if p == nil || !ok {
		return
	}
	head := fmt.Sprintf("── %d/%d ", c.session.Current()+1, c.session.Len())
	if p.Background != "" {
		head += fmt.Sprintf("── %s %s ", p.BackgroundKind, p.Background)
		if card.Placement != nil {
			head += fmt.Sprintf("(%s ×%.2f) ", p.BackgroundScale, card.Placement.ScaleX)
		}
	}
	if p.Transition != "" {
		head += "── " + p.Transition + " "
	}
	width := c.presenter.Stage.Cols
	if pad := width - runewidth.StringWidth(head); pad > 0 {
		head += strings.Repeat("─", pad)
	}
	fmt.Fprintln(c.out, head)
	fmt.Fprintln(c.out, card.Render())
	if p.Command != "" {
		fmt.Fprintf(c.out, "cmd: %s\n", p.Command)
	}
}

func (c *Console) list() {
	deck := c.session.Deck()
	for i, p := range deck.Slides {
		mark := " "
		if i == c.session.Current() {
			mark = ">"
		}
		first, _, _ := strings.Cut(p.Text, "\n")
		if p.UseMarkup {
			first = stripMarkup(first)
		}
		fmt.Fprintf(c.out, "%s %3d %6.1fs  %s\n", mark, i+1, timing.SlideSeconds(p), runewidth.Truncate(first, 48, "…"))
	}
}

func (c *Console) notes() {
	p := c.session.CurrentPoint()
	if p == nil || strings.TrimSpace(p.SpeakerNotes) == "" {
		fmt.Fprintln(c.out, "(no notes)")
		return
	}
	fmt.Fprint(c.out, p.SpeakerNotes)
	if !strings.HasSuffix(p.SpeakerNotes, "\n") {
		fmt.Fprintln(c.out)
	}
}

func (c *Console) status() {
	st := c.tracker.Peek(c.session.Deck().Slides, c.session.Current())
	talk := timing.TalkSeconds(c.session.Baseline())
	elapsed := c.watch.Seconds()
	fmt.Fprintf(c.out, "slide %s / %s  left %s  done %d%%",
		clockText(st.SlideElapsed), clockText(st.SlideBudget),
		timing.FormatRemaining(st.Remaining), int(timing.Fraction(elapsed, talk)*100))
	if st.Overdue {
		fmt.Fprint(c.out, "  [over slide budget]")
	}
	if st.Advance {
		fmt.Fprint(c.out, "  [advancing]")
	}
	if st.TalkOverdue() {
		fmt.Fprint(c.out, "  [over time]")
	}
	if !c.watch.Running() {
		fmt.Fprint(c.out, "  [paused]")
	}
	if c.session.Rehearsing() {
		fmt.Fprintf(c.out, "  rec %s", clockText(c.session.RehearsalSeconds(c.session.Current())))
	}
	fmt.Fprintln(c.out)
}

func clockText(sec float64) string {
	s := int(sec)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func (c *Console) run(ctx context.Context) error {
	p := c.session.CurrentPoint()
	if p == nil || p.Command == "" {
		return errors.New("slide has no command")
	}
	fmt.Fprintf(c.out, "$ %s\n", shellescape.QuoteCommand([]string{"sh", "-c", p.Command}))
	return c.opts.Runner(ctx, p.Command)
}

// spawn starts command in the background and logs how it ended.
func (c *Console) spawn(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = c.out
	cmd.Stderr = c.out
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			c.log.Warn("slide command failed", slog.String("cmd", command), slog.Any("err", err))
		}
	}()
	return nil
}

func (c *Console) finishRehearsal(ctx context.Context) error {
	cur := c.session.Current()
	text, err := c.session.EndRehearsal()
	if err != nil {
		return err
	}
	finished := c.clock.Now()
	deck := c.session.Deck()
	runs := make([]storage.RehearsalSlide, len(deck.Slides))
	var total float64
	for i, p := range deck.Slides {
		runs[i] = storage.RehearsalSlide{Index: i, Seconds: p.Duration, Text: p.Text}
		total += p.Duration
	}

	l := applog.WithOperation(c.log, "rehearsal")
	if c.opts.ScriptPath == "" {
		fmt.Fprintln(c.out, "rehearsal finished; no script file to save timings to")
	} else {
		if err := storage.WriteScript(c.opts.ScriptPath, text, c.opts.KeepBackups); err != nil {
			return fmt.Errorf("save timings: %w", err)
		}
		if c.opts.Synced != nil {
			c.opts.Synced(text)
		}
		fmt.Fprintf(c.out, "rehearsal saved to %s (%s total)\n", c.opts.ScriptPath, clockText(total))
	}
	if h := c.opts.History; h != nil && c.opts.ScriptPath != "" {
		if _, err := h.RecordRehearsal(ctx, c.rehearsalStart, finished, runs); err != nil {
			l.WarnContext(ctx, "record rehearsal failed", slog.Any("err", err))
		}
	}
	c.load(text)
	c.session.Goto(cur)
	c.show()
	return nil
}

func (c *Console) reload() error {
	if c.opts.ScriptPath == "" {
		return errors.New("no script file to reload")
	}
	text, err := storage.ReadScript(c.opts.ScriptPath)
	if err != nil {
		return err
	}
	c.load(text)
	c.show()
	if c.opts.Synced != nil {
		c.opts.Synced(text)
	}
	return nil
}

func (c *Console) help() {
	fmt.Fprint(c.out, `n, next        next slide
p, prev        previous slide
g, goto N      jump to slide N
l, list        list slides with durations
s, show        redraw the current slide
notes          show speaker notes
time           show slide and talk timing
run            run the slide command
rehearse       start recording slide timings
done           finish rehearsal and save timings
abort          discard the rehearsal
autoplay       toggle automatic advance
pause          pause or resume the talk timer
reload         reread the script file
q, quit        leave
`)
}
