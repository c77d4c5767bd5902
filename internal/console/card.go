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
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"gopinpoint/internal/layout"
	"gopinpoint/internal/point"
)

// Stage is the character grid slides are drawn on.
type Stage struct {
	Cols, Rows int
}

func (s Stage) size() layout.Size { return layout.Size{W: float32(s.Cols), H: float32(s.Rows)} }

// Card is a slide laid out on a Stage.
type Card struct {
	Stage Stage
	// Lines is the visible text, already truncated to the scaled block.
	Lines []string
	// Col and Row locate the top-left corner of the text block.
	Col, Row int
	Width    int
	Scale    float32
	Align    point.TextAlign
	// Shade covers the cells painted by the text shading, empty when the
	// shading is fully transparent.
	Shade image.Rectangle

	Background string
	Kind       point.BackgroundKind
	// Placement is where an image background lands on a Screen-sized display.
	Placement *layout.Placement
}

// Screen is the nominal pixel display used for background placement.
var Screen = layout.Size{W: 1920, H: 1080}

// Layout places the text of p on stage the way a graphical renderer would.
// Relative image backgrounds are looked up in dir.
func Layout(p *point.Point, stage Stage, dir string) *Card {
	c := &Card{Stage: stage, Align: p.TextAlign, Background: p.Background, Kind: p.BackgroundKind, Scale: 1}
	text := p.Text
	if p.UseMarkup {
		text = stripMarkup(text)
	}
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	w := 0
	for _, l := range lines {
		w = max(w, runewidth.StringWidth(l))
	}
	if p.BackgroundKind == point.BackgroundImage {
		bg := p.Background
		if dir != "" && !filepath.IsAbs(bg) {
			bg = filepath.Join(dir, bg)
		}
		if sz, ok := imageSize(bg); ok {
			pl := layout.BackgroundPositionScale(p.BackgroundScale, Screen, sz)
			c.Placement = &pl
		}
	}
	if len(lines) == 0 || w == 0 {
		return c
	}

	st := stage.size()
	textSize := layout.Size{W: float32(w), H: float32(len(lines))}
	pos, scale := layout.TextPositionScale(p.Position, st, textSize)
	c.Scale = scale
	c.Col = int(math.Round(float64(pos.X)))
	c.Row = int(math.Round(float64(pos.Y)))
	c.Width = int(float32(w) * scale)
	rows := int(float32(len(lines)) * scale)
	if rows < len(lines) {
		lines = lines[:max(rows, 1)]
	}
	for i, l := range lines {
		if runewidth.StringWidth(l) > c.Width {
			lines[i] = runewidth.Truncate(l, c.Width, "…")
		}
	}
	c.Lines = lines

	if p.ShadingOpacity > 0 {
		box := layout.ShadingBox(st, pos, textSize, scale)
		c.Shade = image.Rect(
			int(math.Floor(float64(box.X))), int(math.Floor(float64(box.Y))),
			int(math.Ceil(float64(box.X+box.W))), int(math.Ceil(float64(box.Y+box.H))),
		).Intersect(image.Rect(0, 0, stage.Cols, stage.Rows))
	}
	return c
}

// Render draws the card as stage.Rows lines of stage.Cols cells.
func (c *Card) Render() string {
	grid := make([][]string, c.Stage.Rows)
	for y := range grid {
		grid[y] = make([]string, c.Stage.Cols)
		for x := range grid[y] {
			cell := " "
			if (image.Point{X: x, Y: y}).In(c.Shade) {
				cell = "░"
			}
			grid[y][x] = cell
		}
	}
	for i, l := range c.Lines {
		y := c.Row + i
		if y < 0 || y >= c.Stage.Rows {
			continue
		}
		x := c.Col + c.indent(l)
		for _, r := range l {
			rw := runewidth.RuneWidth(r)
			if x >= 0 && x+rw <= c.Stage.Cols {
				grid[y][x] = string(r)
				// wide runes occupy the following cell too
				for k := 1; k < rw; k++ {
					grid[y][x+k] = ""
				}
			}
			x += rw
		}
	}
	var b strings.Builder
	for y, row := range grid {
		b.WriteString(strings.TrimRight(strings.Join(row, ""), " "))
		if y < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Card) indent(line string) int {
	gap := c.Width - runewidth.StringWidth(line)
	if gap <= 0 {
		return 0
	}
	switch c.Align {
	case point.AlignCenter:
		return gap / 2
	case point.AlignRight:
		return gap
	}
	return 0
}

// stripMarkup drops Pango tags and decodes the entities they require.
func stripMarkup(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", "\"", "&apos;", "'", "&amp;", "&").Replace(b.String())
}

// imageSize reads the pixel size of the image file at path.
func imageSize(path string) (layout.Size, bool) {
	f, err := os.Open(path)
	if err != nil {
		return layout.Size{}, false
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return layout.Size{}, false
	}
	return layout.Size{W: float32(cfg.Width), H: float32(cfg.Height)}, true
}
