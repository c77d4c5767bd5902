/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package point

import (
	"strconv"
	"strings"
)

// prefixRule handles a "key=value" setting; value is everything after the prefix.
type prefixRule struct {
	prefix string
	apply  func(p *Point, value string)
}

// prefixRules are tried in order before the bare keywords.
var prefixRules = []prefixRule{
	{"stage-color=", func(p *Point, v string) { p.StageColor = v }},
	{"font=", func(p *Point, v string) { p.Font = v }},
	{"text-color=", func(p *Point, v string) { p.TextColor = v }},
	{"text-align=", func(p *Point, v string) { p.TextAlign = LookupTextAlign(v) }},
	{"shading-color=", func(p *Point, v string) { p.ShadingColor = v }},
	{"shading-opacity=", func(p *Point, v string) { p.ShadingOpacity = parseFloatPrefix(v) }},
	{"duration=", func(p *Point, v string) { p.Duration = parseFloatPrefix(v) }},
	{"command=", func(p *Point, v string) { p.Command = v }},
	{"transition=", func(p *Point, v string) { p.Transition = v }},
	{"camera-framerate=", func(p *Point, v string) { p.CameraFramerate = parseIntPrefix(v) }},
	{"camera-resolution=", func(p *Point, v string) { p.CameraResolution = parseResolution(v) }},
}

var keywordRules = map[string]func(p *Point){
	"fill":         func(p *Point) { p.BackgroundScale = ScaleFill },
	"fit":          func(p *Point) { p.BackgroundScale = ScaleFit },
	"stretch":      func(p *Point) { p.BackgroundScale = ScaleStretch },
	"unscaled":     func(p *Point) { p.BackgroundScale = ScaleUnscaled },
	"center":       func(p *Point) { p.Position = GravityCenter },
	"top":          func(p *Point) { p.Position = GravityNorth },
	"bottom":       func(p *Point) { p.Position = GravitySouth },
	"left":         func(p *Point) { p.Position = GravityWest },
	"right":        func(p *Point) { p.Position = GravityEast },
	"top-left":     func(p *Point) { p.Position = GravityNorthWest },
	"top-right":    func(p *Point) { p.Position = GravityNorthEast },
	"bottom-left":  func(p *Point) { p.Position = GravitySouthWest },
	"bottom-right": func(p *Point) { p.Position = GravitySouthEast },
	"no-markup":    func(p *Point) { p.UseMarkup = false },
	"markup":       func(p *Point) { p.UseMarkup = true },
}

// ApplySetting applies one bracket-free token to p. A token that is neither a known
// "key=value" form nor a keyword becomes the background specifier verbatim, so no
// token is ever rejected.
func ApplySetting(p *Point, setting string) {
	for _, r := range prefixRules {
		if strings.HasPrefix(setting, r.prefix) {
			r.apply(p, setting[len(r.prefix):])
			return
		}
	}
	if fn, ok := keywordRules[setting]; ok {
		fn(p)
		return
	}
	p.Background = setting
}

const cSpace = " \t\n\v\f\r"

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseIntPrefix behaves like C atoi: leading space, optional sign, leading digits.
func parseIntPrefix(s string) int {
	v, _, ok := scanInt(s)
	if !ok {
		return 0
	}
	return v
}

// scanInt reads an optionally signed integer the way scanf's %d does.
func scanInt(s string) (int, string, bool) {
	s = strings.TrimLeft(s, cSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0, s, false
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		// out of range: Atoi reports the clamped value
		return v, s[i:], true
	}
	return v, s[i:], true
}

// parseFloatPrefix behaves like a locale-independent strtod: the longest numeric
// prefix is converted and anything unparsable yields 0.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, cSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	rest := strings.ToLower(s[i:])
	for _, w := range []string{"infinity", "inf", "nan"} {
		if strings.HasPrefix(rest, w) {
			v, _ := strconv.ParseFloat(s[:i+len(w)], 64)
			return v
		}
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	v, _ := strconv.ParseFloat(s[:i], 64)
	return v
}

// parseResolution reads "WxH"; on any mismatch both dimensions are 0 (auto).
func parseResolution(s string) Resolution {
	w, rest, ok := scanInt(s)
	if !ok || !strings.HasPrefix(rest, "x") {
		return Resolution{}
	}
	h, _, ok := scanInt(rest[1:])
	if !ok {
		return Resolution{}
	}
	return Resolution{Width: w, Height: h}
}
