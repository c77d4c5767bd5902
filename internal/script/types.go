/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "gopinpoint/internal/point"

// Deck is the result of parsing a slide script: the baseline every slide
// inherited from and the slides in display order.
//
// The script format:
//   - text before the first separator is configuration for the baseline;
//   - a line starting with "-" separates slides, and bracketed tokens on it
//     configure the slide that follows;
//   - a line starting with "#" is a speaker note for the current slide;
//   - a backslash makes the next character literal.
type Deck struct {
	Baseline point.Point    `json:"baseline"`
	Slides   []*point.Point `json:"slides"`
}

// Len returns the number of slides.
func (d Deck) Len() int { return len(d.Slides) }

// TotalDuration sums the stored durations without applying any fallback.
func (d Deck) TotalDuration() float64 {
	var sum float64
	for _, p := range d.Slides {
		sum += p.Duration
	}
	return sum
}

// Header is the first line of every serialized script.
const Header = "#!/usr/bin/env pinpoint\n"
