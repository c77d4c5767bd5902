/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"

	"gopinpoint/internal/point"
)

// parser holds the scanner state for one pass over a script.
type parser struct {
	src         string
	startOfLine bool
	gotDefaults bool

	body  strings.Builder
	notes strings.Builder

	deck    Deck
	current *point.Point
}

// Parse turns script text into a Deck. It never fails: every input yields at
// least one slide, and unknown tokens become background specifiers.
func Parse(text string) Deck {
	ps := &parser{
		src:         text,
		startOfLine: true,
		deck:        Deck{Baseline: point.Defaults()},
	}
	ps.current = ps.deck.Baseline.Clone()
	ps.run()
	return ps.deck
}

func (ps *parser) run() {
	src := ps.src
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\':
			i++
			ps.startOfLine = false
			if i < len(src) {
				ps.body.WriteByte(src[i])
			}
		case c == '\n':
			ps.startOfLine = true
			ps.body.WriteByte(c)
		case c == '-' && ps.startOfLine:
			end := lineEnd(src, i)
			ps.separator(src[i:end])
			// the loop increment consumes the newline ending the separator line
			i = end
		case c == '#' && ps.startOfLine:
			end := lineEnd(src, i)
			ps.notes.WriteString(src[i+1 : end])
			ps.notes.WriteByte('\n')
			i = end
		default:
			ps.startOfLine = false
			ps.body.WriteByte(c)
		}
	}
	ps.flush()
}

func lineEnd(src string, from int) int {
	if n := strings.IndexByte(src[from:], '\n'); n >= 0 {
		return from + n
	}
	return len(src)
}

// separator closes the current slide and opens the one configured by config.
// The first separator instead promotes the text seen so far to the baseline.
func (ps *parser) separator(config string) {
	ps.startOfLine = false
	if !ps.gotDefaults {
		ps.captureDefaults(config)
		return
	}
	next := ps.deck.Baseline.Clone()
	point.ApplyConfig(next, config)
	ps.finish()
	ps.current = next
}

func (ps *parser) captureDefaults(config string) {
	point.ApplyConfig(&ps.deck.Baseline, ps.body.String())
	ps.current = ps.deck.Baseline.Clone()
	point.ApplyConfig(ps.current, config)
	ps.gotDefaults = true
	ps.reset()
}

// flush closes the last slide at end of input, including one opened by a
// trailing separator line with nothing after it.
func (ps *parser) flush() {
	if !ps.gotDefaults {
		ps.captureDefaults("")
	}
	ps.finish()
}

func (ps *parser) finish() {
	p := ps.current
	point.ClassifyBackground(p)
	p.Text = strings.Trim(ps.body.String(), "\n")
	if ps.notes.Len() > 0 {
		p.SpeakerNotes = ps.notes.String()
	}
	ps.deck.Slides = append(ps.deck.Slides, p)
	ps.reset()
}

func (ps *parser) reset() {
	ps.body.Reset()
	ps.notes.Reset()
}
