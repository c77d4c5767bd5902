/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package console

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopinpoint/internal/point"
)

func slide(text string) *point.Point {
	p := point.Defaults()
	p.Text = text
	p.ShadingOpacity = 0
	return &p
}

func renderLines(c *Card) []string { return strings.Split(c.Render(), "\n") }

func TestLayout_CenteredText(t *testing.T) {
	c := Layout(slide("hello"), Stage{Cols: 80, Rows: 24}, "")
	if c.Scale != 1 {
		t.Fatalf("short text must not be scaled, got %v", c.Scale)
	}
	if c.Col != 38 || c.Row != 12 {
		t.Fatalf("origin = %d,%d want 38,12", c.Col, c.Row)
	}
	lines := renderLines(c)
	if len(lines) != 24 {
		t.Fatalf("expected 24 rows, got %d", len(lines))
	}
	if want := strings.Repeat(" ", 38) + "hello"; lines[12] != want {
		t.Fatalf("row 12 = %q want %q", lines[12], want)
	}
	if lines[11] != "" || lines[13] != "" {
		t.Fatalf("unexpected content around text: %q %q", lines[11], lines[13])
	}
}

func TestLayout_Gravity(t *testing.T) {
	p := slide("hi")
	p.Position = point.GravityNorthWest
	c := Layout(p, Stage{Cols: 80, Rows: 24}, "")
	if c.Col != 4 || c.Row != 1 {
		t.Fatalf("north-west origin = %d,%d want 4,1", c.Col, c.Row)
	}
	p.Position = point.GravitySouthEast
	c = Layout(p, Stage{Cols: 80, Rows: 24}, "")
	// 95% of the stage minus the text size
	if c.Col != 74 || c.Row != 22 {
		t.Fatalf("south-east origin = %d,%d want 74,22", c.Col, c.Row)
	}
}

func TestLayout_Shading(t *testing.T) {
	p := slide("hello")
	p.ShadingOpacity = 0.5
	c := Layout(p, Stage{Cols: 80, Rows: 24}, "")
	if c.Shade.Empty() {
		t.Fatalf("expected a shading box")
	}
	lines := renderLines(c)
	if !strings.Contains(lines[12], "░hello░") {
		t.Fatalf("text row not shaded: %q", lines[12])
	}
	if !strings.Contains(lines[c.Shade.Min.Y], "░") {
		t.Fatalf("top shading row missing: %q", lines[c.Shade.Min.Y])
	}
	if c.Shade.Min.Y > 0 && lines[c.Shade.Min.Y-1] != "" {
		t.Fatalf("shading leaks above the box")
	}
}

func TestLayout_ScalesDownLongText(t *testing.T) {
	c := Layout(slide(strings.Repeat("x", 100)), Stage{Cols: 80, Rows: 24}, "")
	if c.Scale >= 1 {
		t.Fatalf("expected scale below 1, got %v", c.Scale)
	}
	if c.Width < 63 || c.Width > 64 {
		t.Fatalf("scaled width = %d", c.Width)
	}
	if !strings.HasSuffix(c.Lines[0], "…") {
		t.Fatalf("long line not truncated: %q", c.Lines[0])
	}

	tall := strings.TrimSuffix(strings.Repeat("a\n", 30), "\n")
	c = Layout(slide(tall), Stage{Cols: 80, Rows: 24}, "")
	if len(c.Lines) >= 30 || len(c.Lines) == 0 {
		t.Fatalf("tall text not clipped: %d lines", len(c.Lines))
	}
}

func TestLayout_AlignRight(t *testing.T) {
	p := slide("a\nbbb")
	p.TextAlign = point.AlignRight
	c := Layout(p, Stage{Cols: 20, Rows: 5}, "")
	lines := renderLines(c)
	first := lines[c.Row]
	second := lines[c.Row+1]
	if strings.Index(first, "a") != c.Col+2 || strings.Index(second, "bbb") != c.Col {
		t.Fatalf("right alignment wrong: %q / %q", first, second)
	}
}

func TestLayout_Markup(t *testing.T) {
	c := Layout(slide("<b>bold</b> &amp; co"), Stage{Cols: 40, Rows: 5}, "")
	if len(c.Lines) != 1 || c.Lines[0] != "bold & co" {
		t.Fatalf("markup not stripped: %q", c.Lines)
	}
	p := slide("<b>raw</b>")
	p.UseMarkup = false
	c = Layout(p, Stage{Cols: 40, Rows: 5}, "")
	if c.Lines[0] != "<b>raw</b>" {
		t.Fatalf("plain text altered: %q", c.Lines)
	}
}

func TestLayout_WideRunes(t *testing.T) {
	c := Layout(slide("日本"), Stage{Cols: 20, Rows: 3}, "")
	if c.Width != 4 {
		t.Fatalf("wide rune width = %d want 4", c.Width)
	}
	if !strings.Contains(c.Render(), "日本") {
		t.Fatalf("wide runes not rendered")
	}
}

func TestLayout_EmptyText(t *testing.T) {
	c := Layout(slide(""), Stage{Cols: 10, Rows: 2}, "")
	if len(c.Lines) != 0 || c.Render() != "\n" {
		t.Fatalf("empty slide should render blank rows, got %q", c.Render())
	}
}

func TestLayout_ImageBackgroundPlacement(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "bg.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 100, 50))); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	p := slide("x")
	p.Background = "bg.png"
	point.ClassifyBackground(p)
	if p.BackgroundKind != point.BackgroundImage {
		t.Fatalf("kind = %v", p.BackgroundKind)
	}
	c := Layout(p, Stage{Cols: 20, Rows: 5}, dir)
	if c.Placement == nil {
		t.Fatalf("expected background placement")
	}
	if c.Placement.ScaleX != c.Placement.ScaleY || c.Placement.ScaleX < 19.1 || c.Placement.ScaleX > 19.3 {
		t.Fatalf("fit scale = %v", c.Placement.ScaleX)
	}
	p.Background = "missing.png"
	if c := Layout(p, Stage{Cols: 20, Rows: 5}, dir); c.Placement != nil {
		t.Fatalf("missing image must not produce a placement")
	}
}
