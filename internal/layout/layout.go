/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout computes where backgrounds, text and text shading go on a
// stage, independent of the renderer drawing them.
package layout

import "gopinpoint/internal/point"

// Padding is the gap around shaded text, 1% of the stage width.
func Padding(stage Size) float32 {
	return stage.W * 0.01
}

// Placement is a top-left position plus per-axis scale factors.
type Placement struct {
	Pt
	ScaleX, ScaleY float32
}

// BackgroundPositionScale fits a background of size bg onto stage according
// to mode and centers it.
func BackgroundPositionScale(mode point.BackgroundScale, stage, bg Size) Placement {
	w := stage.W / bg.W
	h := stage.H / bg.H
	var pl Placement
	switch mode {
	case point.ScaleFill:
		pl.ScaleX = max(w, h)
		pl.ScaleY = pl.ScaleX
	case point.ScaleFit:
		pl.ScaleX = min(w, h)
		pl.ScaleY = pl.ScaleX
	case point.ScaleUnscaled:
		pl.ScaleX = min(w, h, 1)
		pl.ScaleY = pl.ScaleX
	case point.ScaleStretch:
		pl.ScaleX = w
		pl.ScaleY = h
	}
	pl.X = (stage.W - bg.W*pl.ScaleX) / 2
	pl.Y = (stage.H - bg.H*pl.ScaleY) / 2
	return pl
}

// TextPositionScale shrinks text to at most 80% of the stage on either axis,
// never enlarges it, and anchors it by gravity with a 5% margin.
func TextPositionScale(gravity point.Gravity, stage, text Size) (Pt, float32) {
	s := min(stage.W/text.W*0.8, stage.H/text.H*0.8, 1)

	var p Pt
	switch gravity {
	case point.GravityEast, point.GravityNorthEast, point.GravitySouthEast:
		p.X = stage.W*0.95 - text.W*s
	case point.GravityWest, point.GravityNorthWest, point.GravitySouthWest:
		p.X = stage.W * 0.05
	default:
		p.X = (stage.W - text.W*s) / 2
	}
	switch gravity {
	case point.GravitySouth, point.GravitySouthEast, point.GravitySouthWest:
		p.Y = stage.H*0.95 - text.H*s
	case point.GravityNorth, point.GravityNorthEast, point.GravityNorthWest:
		p.Y = stage.H * 0.05
	default:
		p.Y = (stage.H - text.H*s) / 2
	}
	return p, s
}

// ShadingBox is the rectangle behind scaled text at pos, grown by Padding.
func ShadingBox(stage Size, pos Pt, text Size, scale float32) Rect {
	pad := Padding(stage)
	sz := text.Scale(scale)
	return R(pos.X, pos.Y, sz.W, sz.H).Inset(-pad, -pad)
}
