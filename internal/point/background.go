/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package point

import (
	"strings"

	"gopinpoint/internal/color"
)

var videoSuffixes = []string{
	".avi", ".ogg", ".ogv", ".mpg", ".flv", ".mpeg",
	".mov", ".mp4", ".wmv", ".webm", ".mkv",
}

// HasVideoSuffix reports whether name ends in one of the recognized video
// extensions, ignoring case.
func HasVideoSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range videoSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// ClassifyBackground derives p.BackgroundKind from p.Background. An empty
// background leaves the inherited kind untouched.
func ClassifyBackground(p *Point) {
	if p.Background == "" {
		return
	}
	lower := strings.ToLower(p.Background)
	switch {
	case lower == "camera":
		p.BackgroundKind = BackgroundCamera
	case HasVideoSuffix(lower):
		p.BackgroundKind = BackgroundVideo
	case strings.HasSuffix(lower, ".svg"):
		p.BackgroundKind = BackgroundSVG
	case color.IsColor(p.Background):
		p.BackgroundKind = BackgroundColor
	default:
		p.BackgroundKind = BackgroundImage
	}
}
