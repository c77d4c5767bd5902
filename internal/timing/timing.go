/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package timing holds the duration model used for playback and rehearsal:
// per-slide weights with a fallback, talk length, per-slide budgets derived
// from the remaining talk time, and a pausable stopwatch.
package timing

import (
	"fmt"

	"gopinpoint/internal/point"
)

// FallbackSeconds is the weight of a slide whose duration is 0.
const FallbackSeconds = 2.0

// SlideSeconds returns the timing weight of p without modifying it.
func SlideSeconds(p *point.Point) float64 {
	if p.Duration != 0 {
		return p.Duration
	}
	return FallbackSeconds
}

// Total sums SlideSeconds over points.
func Total(points []*point.Point) float64 {
	var sum float64
	for _, p := range points {
		sum += SlideSeconds(p)
	}
	return sum
}

// TalkSeconds is the planned talk length. The baseline duration is read as
// minutes.
func TalkSeconds(baseline point.Point) float64 {
	return baseline.Duration * 60
}

// SlideBudget distributes remaining seconds over slides i..end by weight and
// returns the share of slide i. Out of range indexes get 0.
func SlideBudget(points []*point.Point, i int, remaining float64) float64 {
	if i < 0 || i >= len(points) {
		return 0
	}
	total := Total(points[i:])
	if total == 0 {
		return 0
	}
	return SlideSeconds(points[i]) * remaining / total
}

// FormatRemaining renders the time left in a talk for the speaker view.
// Fractions of a second are truncated toward zero.
func FormatRemaining(seconds float64) string {
	t := int(seconds)
	switch {
	case t <= -60:
		return fmt.Sprintf("%dmin", t/60)
	case t <= 60:
		return fmt.Sprintf("%ds", t)
	default:
		half := ""
		if t%60 > 30 {
			half = "½"
		}
		return fmt.Sprintf("%d%smin", t/60, half)
	}
}

// Fraction returns elapsed/total clamped to [0,1]; a zero total yields 0.
func Fraction(elapsed, total float64) float64 {
	if total <= 0 {
		return 0
	}
	f := elapsed / total
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
