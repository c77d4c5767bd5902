/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements script persistence and per-script history.
// It writes the slide script atomically and keeps xz-compressed timestamped backups in <dir>/.gpp/backups.
// It also manages the embedded SQLite history at <dir>/.gpp/history.sqlite holding script snapshots, rehearsal runs and a full-text slide index.
// The history is derived from the script and can be deleted at any time.
package storage
