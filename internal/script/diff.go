/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// ChangedSlide estimates which slide an edit touched by walking previous and
// next while they agree and counting the separator dashes seen on the way.
// The result is one less than that count, so it can be negative; callers clamp.
func ChangedSlide(previous, next string) int {
	count := 0
	startOfLine := true
	for i := 0; i < len(previous) && i < len(next) && previous[i] == next[i]; i++ {
		switch previous[i] {
		case '\n':
			startOfLine = true
		case '-':
			if startOfLine {
				count++
			}
			startOfLine = false
		default:
			startOfLine = false
		}
	}
	return count - 1
}

// RestoreIndex maps ChangedSlide onto a deck of n slides; anything out of
// range selects the first slide.
func RestoreIndex(previous, next string, n int) int {
	i := ChangedSlide(previous, next)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
