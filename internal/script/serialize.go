/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"strconv"
	"strings"

	"gopinpoint/internal/point"
)

// Serialize renders d back into script text. Baseline settings that differ
// from the program defaults form the header block; each slide carries the
// tokens that differ from the baseline on its separator line.
func Serialize(d Deck) string {
	var b strings.Builder
	b.WriteString(Header)
	defaults := point.Defaults()
	writeTokens(&b, &d.Baseline, &defaults, "\n")
	for _, p := range d.Slides {
		writeSlide(&b, p, &d.Baseline)
	}
	return b.String()
}

func writeSlide(b *strings.Builder, p, baseline *point.Point) {
	b.WriteString("\n--")
	writeTokens(b, p, baseline, " ")
	b.WriteByte('\n')
	b.WriteString(EscapeText(p.Text))
	b.WriteByte('\n')
	if p.SpeakerNotes == "" {
		return
	}
	b.WriteByte('#')
	notes := p.SpeakerNotes
	for i := 0; i < len(notes); i++ {
		b.WriteByte(notes[i])
		if notes[i] == '\n' && i+1 < len(notes) {
			b.WriteByte('#')
		}
	}
}

// Tokens lists the bracketed settings that turn ref into p, in serialization order.
func Tokens(p, ref *point.Point) []string {
	var out []string
	str := func(v, r, key string) {
		if v != r {
			out = append(out, "["+key+v+"]")
		}
	}
	num := func(v, r float64, key string) {
		if v != r {
			out = append(out, "["+key+formatFloat(v)+"]")
		}
	}

	str(p.StageColor, ref.StageColor, "stage-color=")
	str(p.Background, ref.Background, "")
	if p.BackgroundScale != ref.BackgroundScale {
		out = append(out, "["+p.BackgroundScale.String()+"]")
	}
	if p.TextAlign != ref.TextAlign {
		out = append(out, "[text-align="+p.TextAlign.String()+"]")
	}
	if p.Position != ref.Position {
		out = append(out, "["+p.Position.String()+"]")
	}
	str(p.Font, ref.Font, "font=")
	str(p.TextColor, ref.TextColor, "text-color=")
	str(p.ShadingColor, ref.ShadingColor, "shading-color=")
	num(p.ShadingOpacity, ref.ShadingOpacity, "shading-opacity=")
	str(p.Transition, ref.Transition, "transition=")
	str(p.Command, ref.Command, "command=")
	num(p.Duration, ref.Duration, "duration=")
	if p.CameraFramerate != ref.CameraFramerate {
		out = append(out, "[camera-framerate="+strconv.Itoa(p.CameraFramerate)+"]")
	}
	if p.CameraResolution != ref.CameraResolution {
		r := p.CameraResolution
		out = append(out, fmt.Sprintf("[camera-resolution=%dx%d]", r.Width, r.Height))
	}
	if p.UseMarkup != ref.UseMarkup {
		if p.UseMarkup {
			out = append(out, "[markup]")
		} else {
			out = append(out, "[no-markup]")
		}
	}
	return out
}

func writeTokens(b *strings.Builder, p, ref *point.Point, sep string) {
	for _, tok := range Tokens(p, ref) {
		b.WriteString(sep)
		b.WriteString(tok)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EscapeText makes body text survive a reparse: backslashes are doubled and a
// "-" or "#" that starts a line is escaped.
func EscapeText(text string) string {
	if !strings.ContainsAny(text, "\\-#") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	start := true
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case (c == '-' || c == '#') && start:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		start = c == '\n'
	}
	return b.String()
}
