/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package point defines the slide record of a pinpoint-style presentation and the
// attribute vocabulary used to configure it from bracketed script tokens.
//
// A Point starts as a copy of a baseline and is then mutated by settings. Every field
// is always resolved; there is no "unset" state.
package point

// BackgroundKind is derived from the resolved background string, never set directly.
type BackgroundKind int

const (
	BackgroundNone BackgroundKind = iota
	BackgroundColor
	BackgroundImage
	BackgroundVideo
	BackgroundSVG
	BackgroundCamera
)

// BackgroundScale selects how a background is fitted onto the stage.
type BackgroundScale int

const (
	ScaleFill BackgroundScale = iota
	ScaleFit
	ScaleStretch
	ScaleUnscaled
)

// TextAlign is the paragraph alignment of the slide body.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Gravity anchors the text block on the stage.
type Gravity int

const (
	GravityCenter Gravity = iota
	GravityNorth
	GravitySouth
	GravityWest
	GravityEast
	GravityNorthWest
	GravityNorthEast
	GravitySouthWest
	GravitySouthEast
)

// Resolution is a requested camera capture size; 0x0 means auto.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is one slide with fully resolved display, media and timing attributes.
type Point struct {
	StageColor      string          `json:"stageColor"`
	Background      string          `json:"background"`
	BackgroundKind  BackgroundKind  `json:"backgroundKind"`
	BackgroundScale BackgroundScale `json:"backgroundScale"`

	Text      string    `json:"text"`
	Position  Gravity   `json:"position"`
	Font      string    `json:"font"`
	TextColor string    `json:"textColor"`
	TextAlign TextAlign `json:"textAlign"`
	UseMarkup bool      `json:"useMarkup"`

	// Duration is in seconds; 0 means the consumer applies a fallback.
	Duration float64 `json:"duration"`
	// NewDuration accumulates rehearsal time and is copied into Duration when a
	// rehearsal pass completes.
	NewDuration float64 `json:"-"`

	SpeakerNotes string `json:"speakerNotes,omitempty"`

	ShadingColor   string  `json:"shadingColor"`
	ShadingOpacity float64 `json:"shadingOpacity"`

	Transition string `json:"transition"`
	Command    string `json:"command,omitempty"`

	CameraFramerate  int        `json:"cameraFramerate"`
	CameraResolution Resolution `json:"cameraResolution"`
}

// Defaults returns the hard-coded program defaults every parse starts from.
func Defaults() Point {
	return Point{
		StageColor:      "black",
		BackgroundKind:  BackgroundNone,
		BackgroundScale: ScaleFit,
		Position:        GravityCenter,
		Font:            "Sans 60px",
		TextColor:       "white",
		TextAlign:       AlignLeft,
		UseMarkup:       true,
		Duration:        30,
		ShadingColor:    "black",
		ShadingOpacity:  0.66,
		Transition:      "fade",
	}
}

// Clone returns an independent copy of p.
func (p *Point) Clone() *Point {
	c := *p
	return &c
}

// SameAttributes reports whether p and o resolve to the same display, media and
// timing settings, ignoring rehearsal scratch state.
func (p *Point) SameAttributes(o *Point) bool {
	a, b := *p, *o
	a.NewDuration, b.NewDuration = 0, 0
	return a == b
}
