/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package color parses the color strings accepted in slide scripts: CSS/X11 names,
// hexadecimal forms and the rgb(), rgba(), hsl() and hsla() functional notations.
// It backs background classification and gives renderers a resolved RGBA value.
package color

import (
	stdcolor "image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Parse converts s into an RGBA value. ok is false when s is not a color.
func Parse(s string) (stdcolor.RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return stdcolor.RGBA{}, false
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "rgba("):
		return parseRGB(lower[len("rgba("):], true)
	case strings.HasPrefix(lower, "rgb("):
		return parseRGB(lower[len("rgb("):], false)
	case strings.HasPrefix(lower, "hsla("):
		return parseHSL(lower[len("hsla("):], true)
	case strings.HasPrefix(lower, "hsl("):
		return parseHSL(lower[len("hsl("):], false)
	case lower[0] == '#':
		return parseHex(lower[1:])
	}
	name := strings.ReplaceAll(lower, " ", "")
	if c, ok := colornames.Map[name]; ok {
		return c, true
	}
	// X11 spells gray both ways; colornames only knows some grey variants.
	if c, ok := colornames.Map[strings.ReplaceAll(name, "grey", "gray")]; ok {
		return c, true
	}
	return stdcolor.RGBA{}, false
}

// IsColor reports whether s parses as a color.
func IsColor(s string) bool {
	_, ok := Parse(s)
	return ok
}

func parseHex(h string) (stdcolor.RGBA, bool) {
	for i := 0; i < len(h); i++ {
		if !isHex(h[i]) {
			return stdcolor.RGBA{}, false
		}
	}
	nib := func(i int) uint8 {
		v, _ := strconv.ParseUint(h[i:i+1], 16, 8)
		return uint8(v) * 17
	}
	byt := func(i int) uint8 {
		v, _ := strconv.ParseUint(h[i:i+2], 16, 8)
		return uint8(v)
	}
	switch len(h) {
	case 3:
		return stdcolor.RGBA{R: nib(0), G: nib(1), B: nib(2), A: 0xff}, true
	case 4:
		return stdcolor.RGBA{R: nib(0), G: nib(1), B: nib(2), A: nib(3)}, true
	case 6:
		return stdcolor.RGBA{R: byt(0), G: byt(2), B: byt(4), A: 0xff}, true
	case 8:
		return stdcolor.RGBA{R: byt(0), G: byt(2), B: byt(4), A: byt(6)}, true
	case 9, 12:
		// #rrrgggbbb and #rrrrggggbbbb: keep the most significant byte of each channel.
		n := len(h) / 3
		return stdcolor.RGBA{R: byt(0), G: byt(n), B: byt(2 * n), A: 0xff}, true
	}
	return stdcolor.RGBA{}, false
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

// args splits the inside of a functional notation, requiring the closing parenthesis.
func args(rest string, want int) ([]string, bool) {
	end := strings.IndexByte(rest, ')')
	if end < 0 || strings.TrimSpace(rest[end+1:]) != "" {
		return nil, false
	}
	parts := strings.Split(rest[:end], ",")
	if len(parts) != want {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, false
		}
	}
	return parts, true
}

func parseRGB(rest string, alpha bool) (stdcolor.RGBA, bool) {
	n := 3
	if alpha {
		n = 4
	}
	parts, ok := args(rest, n)
	if !ok {
		return stdcolor.RGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := channel(parts[i])
		if !ok {
			return stdcolor.RGBA{}, false
		}
		ch[i] = v
	}
	a := uint8(0xff)
	if alpha {
		v, ok := unit(parts[3])
		if !ok {
			return stdcolor.RGBA{}, false
		}
		a = uint8(math.Round(v * 255))
	}
	return stdcolor.RGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

func parseHSL(rest string, alpha bool) (stdcolor.RGBA, bool) {
	n := 3
	if alpha {
		n = 4
	}
	parts, ok := args(rest, n)
	if !ok {
		return stdcolor.RGBA{}, false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "deg"), 64)
	if err != nil {
		return stdcolor.RGBA{}, false
	}
	s, ok1 := percent(parts[1])
	l, ok2 := percent(parts[2])
	if !ok1 || !ok2 {
		return stdcolor.RGBA{}, false
	}
	r, g, b := hslToRGB(h, s, l)
	c := stdcolor.RGBA{R: r, G: g, B: b, A: 0xff}
	if alpha {
		v, ok := unit(parts[3])
		if !ok {
			return stdcolor.RGBA{}, false
		}
		c.A = uint8(math.Round(v * 255))
	}
	return c, true
}

// channel parses 0..255 or a percentage, clamping out-of-range values.
func channel(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		p, ok := percent(s)
		if !ok {
			return 0, false
		}
		return uint8(math.Round(p * 255)), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return uint8(math.Round(clamp(v, 0, 255))), true
}

func percent(s string) (float64, bool) {
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, false
	}
	return clamp(v/100, 0, 1), true
}

func unit(s string) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		return percent(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp(v, 0, 1), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to := func(v float64) uint8 { return uint8(math.Round(clamp((v+m)*255, 0, 255))) }
	return to(r), to(g), to(b)
}
