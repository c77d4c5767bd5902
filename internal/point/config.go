/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package point

import "strings"

// ApplyConfig forwards every bracketed token in config to ApplySetting. A token
// counts only when its closing bracket appears before the next newline; an
// unterminated bracket is dropped and scanning continues after it.
func ApplyConfig(p *Point, config string) {
	for i := 0; i < len(config); i++ {
		if config[i] != '[' {
			continue
		}
		rest := config[i+1:]
		end := strings.IndexAny(rest, "]\n")
		if end < 0 || rest[end] == '\n' {
			continue
		}
		ApplySetting(p, rest[:end])
		i += end + 1
	}
}
