/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package watch reloads a slide script when its file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"

	applog "gopinpoint/internal/log"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange with the new script text after the file settles.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(text string)
	log      *slog.Logger

	mu     sync.Mutex
	digest [32]byte
	primed bool

	ready chan struct{}
}

// New returns a watcher for path. A non-positive debounce uses DefaultDebounce.
func New(path string, debounce time.Duration, onChange func(text string)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		log:      applog.WithComponent("watch").With(slog.String("script", path)),
		ready:    make(chan struct{}),
	}
}

// Prime records text as the content already loaded so an identical file
// does not trigger a reload.
func (w *Watcher) Prime(text string) {
	w.mu.Lock()
	w.digest = blake3.Sum256([]byte(text))
	w.primed = true
	w.mu.Unlock()
}

// Run watches the script's directory until ctx is done. Watching the
// directory keeps working when editors replace the file by renaming.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	close(w.ready)
	w.log.DebugContext(ctx, "watching", slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.DebugContext(ctx, "event", slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnContext(ctx, "watch error", slog.Any("err", err))
		case <-timer.C:
			w.check(ctx)
		}
	}
}

// check reads the file and reports whether onChange was called.
func (w *Watcher) check(ctx context.Context) bool {
	b, err := os.ReadFile(w.path)
	if err != nil {
		// keep the current deck; a later event retries
		w.log.WarnContext(ctx, "reload read failed", slog.Any("err", err))
		return false
	}
	sum := blake3.Sum256(b)
	w.mu.Lock()
	same := w.primed && sum == w.digest
	w.digest = sum
	w.primed = true
	w.mu.Unlock()
	if same {
		w.log.DebugContext(ctx, "content unchanged")
		return false
	}
	w.onChange(string(b))
	return true
}
