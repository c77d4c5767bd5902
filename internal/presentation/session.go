/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package presentation owns a loaded slide deck together with the renderer
// payload of every slide, the current slide pointer and rehearsal timing.
//
// A Session is not safe for concurrent use; callers serialize access from a
// single event loop.
package presentation

import (
	"errors"
	"log/slog"
	"time"

	applog "gopinpoint/internal/log"
	"gopinpoint/internal/point"
	"gopinpoint/internal/script"
	"gopinpoint/internal/timing"
)

// Renderer builds and frees the per-slide payload of one display back-end.
// Materialize is called once per slide in deck order after a parse, Release
// once per slide before the deck holding it is dropped. Neither may call back
// into the Session.
type Renderer[T any] interface {
	Materialize(p *point.Point) T
	Release(p *point.Point, payload T)
}

// Reparse describes a completed Load.
type Reparse struct {
	// Previous is the slide index before the load, -1 on the first load.
	Previous int
	Current  int
	Slides   int
}

// ErrNotRehearsing is returned when a rehearsal operation has nothing to act on.
var ErrNotRehearsing = errors.New("no rehearsal in progress")

// Session is a deck bound to a renderer.
type Session[T any] struct {
	renderer Renderer[T]
	clock    timing.Clock
	log      *slog.Logger

	loaded   bool
	source   string
	deck     script.Deck
	payloads []T
	current  int

	listeners []func(Reparse)

	rehearsing   bool
	slideEntered time.Time
}

// New returns an empty session. Call Load before navigating.
func New[T any](r Renderer[T]) *Session[T] {
	return &Session[T]{
		renderer: r,
		clock:    timing.SystemClock{},
		log:      applog.WithComponent("presentation"),
	}
}

// SetClock replaces the clock used for rehearsal timing.
func (s *Session[T]) SetClock(c timing.Clock) {
	if c == nil {
		c = timing.SystemClock{}
	}
	s.clock = c
}

// OnReparse registers fn to run after every Load.
func (s *Session[T]) OnReparse(fn func(Reparse)) {
	s.listeners = append(s.listeners, fn)
}

// Load parses text and installs it as the deck. The previous deck is fully
// released before the new one is materialized. On a reload the current slide
// becomes the one the edit touched, or the first slide if that is out of range.
func (s *Session[T]) Load(text string) Reparse {
	deck := script.Parse(text)

	ev := Reparse{Previous: -1, Slides: deck.Len()}
	if s.loaded {
		ev.Previous = s.current
		ev.Current = script.RestoreIndex(s.source, text, deck.Len())
	}

	s.releaseAll()
	payloads := make([]T, len(deck.Slides))
	for i, p := range deck.Slides {
		payloads[i] = s.renderer.Materialize(p)
	}

	s.deck = deck
	s.payloads = payloads
	s.source = text
	s.loaded = true
	s.current = ev.Current
	if s.rehearsing {
		// timings of the released slides are gone; restart on the new current slide
		s.slideEntered = s.clock.Now()
	}

	applog.WithOperation(s.log, "load").Debug("deck installed",
		slog.Int("slides", ev.Slides), slog.Int("current", ev.Current), slog.Int("previous", ev.Previous))
	for _, fn := range s.listeners {
		fn(ev)
	}
	return ev
}

func (s *Session[T]) releaseAll() {
	for i, p := range s.deck.Slides {
		s.renderer.Release(p, s.payloads[i])
	}
	s.deck.Slides = nil
	s.payloads = nil
}

// Close releases every payload. The session can be loaded again afterwards.
func (s *Session[T]) Close() {
	s.releaseAll()
	s.loaded = false
	s.source = ""
	s.current = 0
	s.rehearsing = false
}

func (s *Session[T]) Len() int       { return len(s.deck.Slides) }
func (s *Session[T]) Current() int   { return s.current }
func (s *Session[T]) Source() string { return s.source }

// Deck returns the installed deck. Slides are shared with the session.
func (s *Session[T]) Deck() script.Deck { return s.deck }

// Baseline returns the attributes slides inherited from.
func (s *Session[T]) Baseline() point.Point { return s.deck.Baseline }

// Point returns slide i, or nil when i is out of range.
func (s *Session[T]) Point(i int) *point.Point {
	if i < 0 || i >= len(s.deck.Slides) {
		return nil
	}
	return s.deck.Slides[i]
}

// CurrentPoint returns the slide under the pointer, nil before the first Load.
func (s *Session[T]) CurrentPoint() *point.Point { return s.Point(s.current) }

// Payload returns the renderer payload of slide i.
func (s *Session[T]) Payload(i int) (T, bool) {
	if i < 0 || i >= len(s.payloads) {
		var zero T
		return zero, false
	}
	return s.payloads[i], true
}

// Next moves to the following slide and reports whether it moved.
func (s *Session[T]) Next() bool { return s.Goto(s.current + 1) }

// Prev moves to the preceding slide and reports whether it moved.
func (s *Session[T]) Prev() bool { return s.Goto(s.current - 1) }

// Goto moves to slide i. Out of range indexes leave the pointer unchanged.
func (s *Session[T]) Goto(i int) bool {
	if i < 0 || i >= len(s.deck.Slides) || i == s.current {
		return false
	}
	s.book()
	s.current = i
	return true
}

// Serialize renders the installed deck as script text.
func (s *Session[T]) Serialize() string {
	return script.Serialize(s.deck)
}
