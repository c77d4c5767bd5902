/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"testing"

	"gopinpoint/internal/point"
)

func texts(d Deck) []string {
	out := make([]string, 0, len(d.Slides))
	for _, p := range d.Slides {
		out = append(out, p.Text)
	}
	return out
}

func TestParseEmptyScriptYieldsOneSlide(t *testing.T) {
	d := Parse("")
	if d.Len() != 1 {
		t.Fatalf("expected 1 slide, got %d", d.Len())
	}
	if d.Slides[0].Text != "" {
		t.Fatalf("unexpected text %q", d.Slides[0].Text)
	}
	def := point.Defaults()
	if !d.Baseline.SameAttributes(&def) {
		t.Fatalf("baseline should equal defaults: %+v", d.Baseline)
	}
}

func TestParseTwoSeparators(t *testing.T) {
	d := Parse("--\nA\n--\nB\n")
	got := texts(d)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("unexpected slides %q", got)
	}
}

func TestParseWithoutTrailingNewline(t *testing.T) {
	got := texts(Parse("--\nA\n--\nB"))
	if len(got) != 2 || got[1] != "B" {
		t.Fatalf("unexpected slides %q", got)
	}
}

func TestParseTrailingSeparatorOpensSlide(t *testing.T) {
	got := texts(Parse("--\nA\n--\n"))
	if len(got) != 2 || got[0] != "A" || got[1] != "" {
		t.Fatalf("unexpected slides %q", got)
	}
	for _, in := range []string{"--\nA\n\n-- [end.png]\n", "--\nA\n\n-- [end.png]\n\n", "--\nA\n\n-- [end.png]"} {
		d := Parse(in)
		if d.Len() != 2 {
			t.Fatalf("Parse(%q): expected 2 slides, got %q", in, texts(d))
		}
		last := d.Slides[1]
		if last.Text != "" || last.Background != "end.png" || last.BackgroundKind != point.BackgroundImage {
			t.Fatalf("Parse(%q): closing slide %+v", in, *last)
		}
	}
	d := Parse("-- [top]\n")
	if d.Len() != 1 || d.Slides[0].Position != point.GravityNorth {
		t.Fatalf("lone separator should yield its configured slide: %+v", d.Slides)
	}
}

func TestParseEscapes(t *testing.T) {
	d := Parse("--\na\\-b\n")
	if d.Len() != 1 || d.Slides[0].Text != "a-b" {
		t.Fatalf("unexpected slides %q", texts(d))
	}
	d = Parse("--\nA\\\n-B\n")
	if d.Len() != 1 || d.Slides[0].Text != "A\n-B" {
		t.Fatalf("escaped newline should keep the dash literal: %q", texts(d))
	}
	d = Parse("--\nA\\")
	if d.Slides[0].Text != "A" {
		t.Fatalf("trailing backslash should be dropped: %q", d.Slides[0].Text)
	}
	d = Parse("--\nA\n\\#not a note\n")
	if d.Slides[0].Text != "A\n#not a note" || d.Slides[0].SpeakerNotes != "" {
		t.Fatalf("escaped hash: %+v", d.Slides[0])
	}
}

func TestParseLineAfterSeparatorIsBody(t *testing.T) {
	d := Parse("--\n-x\n")
	if d.Len() != 1 || d.Slides[0].Text != "-x" {
		t.Fatalf("unexpected slides %q", texts(d))
	}
	d = Parse("--\n#x\n")
	if d.Slides[0].Text != "#x" || d.Slides[0].SpeakerNotes != "" {
		t.Fatalf("unexpected slide %+v", d.Slides[0])
	}
}

func TestParseAttributeInheritance(t *testing.T) {
	d := Parse("--\nA\n-- [font=Serif 40px]\nB\n--\nC\n")
	if d.Len() != 3 {
		t.Fatalf("expected 3 slides, got %d", d.Len())
	}
	if d.Slides[0].Font != "Sans 60px" || d.Slides[2].Font != "Sans 60px" {
		t.Fatalf("slides without font= should inherit: %q %q", d.Slides[0].Font, d.Slides[2].Font)
	}
	if d.Slides[1].Font != "Serif 40px" {
		t.Fatalf("font override lost: %q", d.Slides[1].Font)
	}
	if d.Baseline.Font != "Sans 60px" {
		t.Fatalf("baseline changed: %q", d.Baseline.Font)
	}
}

func TestParseScriptLevelDefaults(t *testing.T) {
	d := Parse("[blue][top]\nthese words are config\n-- [fill]\nA\n--\nB\n")
	if d.Baseline.Background != "blue" || d.Baseline.Position != point.GravityNorth {
		t.Fatalf("baseline not promoted: %+v", d.Baseline)
	}
	if d.Baseline.BackgroundScale != point.ScaleFit {
		t.Fatalf("first separator line must not touch the baseline")
	}
	a, b := d.Slides[0], d.Slides[1]
	if a.Text != "A" || a.BackgroundScale != point.ScaleFill || a.Position != point.GravityNorth {
		t.Fatalf("first slide: %+v", a)
	}
	if b.BackgroundScale != point.ScaleFit || b.BackgroundKind != point.BackgroundColor {
		t.Fatalf("second slide: %+v", b)
	}
}

func TestParseWithoutSeparator(t *testing.T) {
	d := Parse("[red] hello")
	if d.Len() != 1 {
		t.Fatalf("expected 1 slide, got %d", d.Len())
	}
	p := d.Slides[0]
	if p.Text != "" || p.Background != "red" || p.BackgroundKind != point.BackgroundColor {
		t.Fatalf("unexpected slide %+v", p)
	}
}

func TestParseBaselineIsRecomputed(t *testing.T) {
	_ = Parse("[red]\n--\nA\n")
	d := Parse("--\nA\n")
	if d.Baseline.Background != "" {
		t.Fatalf("baseline leaked between parses: %q", d.Baseline.Background)
	}
}

func TestParseBodyBracketsAreLiteral(t *testing.T) {
	d := Parse("--\nsee [red]\n")
	if d.Slides[0].Text != "see [red]" || d.Slides[0].Background != "" {
		t.Fatalf("unexpected slide %+v", d.Slides[0])
	}
}

func TestParseTrimsNewlines(t *testing.T) {
	d := Parse("--\n\n\n A \n\n\n--\n")
	if d.Slides[0].Text != " A " {
		t.Fatalf("got %q", d.Slides[0].Text)
	}
}

func TestParseSpeakerNotes(t *testing.T) {
	d := Parse("--\nA\n#hello\n#world\n--\nB\n")
	if d.Slides[0].SpeakerNotes != "hello\nworld\n" {
		t.Fatalf("notes = %q", d.Slides[0].SpeakerNotes)
	}
	if d.Slides[0].Text != "A" {
		t.Fatalf("text = %q", d.Slides[0].Text)
	}
	if d.Slides[1].SpeakerNotes != "" {
		t.Fatalf("notes leaked into next slide: %q", d.Slides[1].SpeakerNotes)
	}
}

func TestParseClassifiesBackgrounds(t *testing.T) {
	d := Parse("-- [movie.mp4]\nA\n-- [Camera]\nB\n-- [logo.svg]\nC\n-- [#ff0000]\nD\n-- [photo.png]\nE\n--\nF\n")
	want := []point.BackgroundKind{
		point.BackgroundVideo, point.BackgroundCamera, point.BackgroundSVG,
		point.BackgroundColor, point.BackgroundImage, point.BackgroundNone,
	}
	if d.Len() != len(want) {
		t.Fatalf("expected %d slides, got %d", len(want), d.Len())
	}
	for i, k := range want {
		if d.Slides[i].BackgroundKind != k {
			t.Fatalf("slide %d kind = %v, want %v", i, d.Slides[i].BackgroundKind, k)
		}
	}
}

func TestParseNeverFails(t *testing.T) {
	for _, in := range []string{
		"\\", "-", "#", "[", "]", "\n\n", "-\\", "#\\\n", "\x00\xff-", "[[]]\n--[", "--\n--\n--",
		"-- [camera-resolution=x]\n", "#only a note",
	} {
		d := Parse(in)
		if d.Len() < 1 {
			t.Fatalf("Parse(%q) produced no slides", in)
		}
	}
}
