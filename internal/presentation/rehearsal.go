/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package presentation

import "log/slog"

// Rehearsing reports whether slide times are being recorded.
func (s *Session[T]) Rehearsing() bool { return s.rehearsing }

// BeginRehearsal clears the rehearsal time of every slide and starts timing
// the current one.
func (s *Session[T]) BeginRehearsal() {
	for _, p := range s.deck.Slides {
		p.NewDuration = 0
	}
	s.rehearsing = true
	s.slideEntered = s.clock.Now()
	s.log.Info("rehearsal started", slog.Int("slide", s.current))
}

// book adds the time spent on the current slide to its rehearsal total.
func (s *Session[T]) book() {
	if !s.rehearsing {
		return
	}
	now := s.clock.Now()
	if p := s.CurrentPoint(); p != nil {
		p.NewDuration += now.Sub(s.slideEntered).Seconds()
	}
	s.slideEntered = now
}

// RehearsalSeconds returns the time recorded so far for slide i, including
// the running time when i is the current slide.
func (s *Session[T]) RehearsalSeconds(i int) float64 {
	p := s.Point(i)
	if p == nil {
		return 0
	}
	sec := p.NewDuration
	if s.rehearsing && i == s.current {
		sec += s.clock.Now().Sub(s.slideEntered).Seconds()
	}
	return sec
}

// EndRehearsal stores the recorded times as slide durations and returns the
// script text carrying them.
func (s *Session[T]) EndRehearsal() (string, error) {
	if !s.rehearsing {
		return "", ErrNotRehearsing
	}
	s.book()
	for _, p := range s.deck.Slides {
		p.Duration = p.NewDuration
	}
	s.rehearsing = false
	out := s.Serialize()
	s.log.Info("rehearsal finished", slog.Int("slides", len(s.deck.Slides)))
	return out, nil
}

// AbortRehearsal stops recording and discards the recorded times.
func (s *Session[T]) AbortRehearsal() error {
	if !s.rehearsing {
		return ErrNotRehearsing
	}
	for _, p := range s.deck.Slides {
		p.NewDuration = 0
	}
	s.rehearsing = false
	return nil
}
