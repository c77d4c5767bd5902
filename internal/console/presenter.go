/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package console is a terminal presenter: slides are drawn as text cards and
// driven from a line-editing prompt.
package console

import (
	"log/slog"

	applog "gopinpoint/internal/log"
	"gopinpoint/internal/point"
)

// Presenter materializes slides into cards for a presentation.Session.
type Presenter struct {
	Stage Stage
	// Dir resolves relative background paths, normally the script directory.
	Dir string

	log  *slog.Logger
	live int
}

// NewPresenter returns a presenter drawing on stage.
func NewPresenter(stage Stage, dir string) *Presenter {
	if stage.Cols <= 0 {
		stage.Cols = 80
	}
	if stage.Rows <= 0 {
		stage.Rows = 24
	}
	return &Presenter{Stage: stage, Dir: dir, log: applog.WithComponent("console")}
}

// Materialize lays p out on the stage.
func (pr *Presenter) Materialize(p *point.Point) *Card {
	pr.live++
	return Layout(p, pr.Stage, pr.Dir)
}

// Release drops a card. Cards hold no external resources.
func (pr *Presenter) Release(p *point.Point, c *Card) {
	pr.live--
	if pr.live < 0 {
		pr.log.Warn("card released twice", slog.String("text", p.Text))
		pr.live = 0
	}
}

// Live returns the number of materialized cards not yet released.
func (pr *Presenter) Live() int { return pr.live }
