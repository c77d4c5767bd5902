/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timing

import "gopinpoint/internal/point"

// Status is one Tracker observation.
type Status struct {
	Slide        int
	SlideElapsed float64
	SlideBudget  float64
	// Remaining is talk time left; negative once the talk overruns.
	Remaining float64
	// Overdue is set when the slide used up its budget and autoplay is off.
	Overdue bool
	// Advance asks the caller to move to the next slide (autoplay only).
	Advance bool
}

// TalkOverdue reports whether the whole talk is over time.
func (s Status) TalkOverdue() bool { return s.Remaining < 0 }

// Tracker follows the time spent on the current slide against the budget it
// was given when it was entered.
type Tracker struct {
	watch    *Stopwatch
	talk     float64
	Autoplay bool

	slide     int
	slideTime float64
	budget    float64
	prev      float64
}

// NewTracker tracks against a talk of talkSeconds measured by watch.
func NewTracker(watch *Stopwatch, talkSeconds float64) *Tracker {
	return &Tracker{watch: watch, talk: talkSeconds, slide: -1}
}

// SetTalkSeconds changes the talk length, e.g. after the script was reloaded.
func (t *Tracker) SetTalkSeconds(s float64) {
	t.talk = s
	t.Invalidate()
}

// Invalidate forgets the current slide so the next Tick recomputes its budget.
func (t *Tracker) Invalidate() { t.slide = -1 }

// Tick accounts the time since the previous tick to slide current of points.
// With autoplay a due advance restarts the slide timer.
func (t *Tracker) Tick(points []*point.Point, current int) Status {
	elapsed := t.watch.Seconds()
	st := t.status(points, current, elapsed)
	t.slide = current
	t.budget = st.SlideBudget
	t.slideTime = st.SlideElapsed
	t.prev = elapsed
	if st.Advance {
		t.slideTime = 0
	}
	return st
}

// Peek reports what Tick would return without accounting any time, so a
// pending autoplay advance stays pending.
func (t *Tracker) Peek(points []*point.Point, current int) Status {
	return t.status(points, current, t.watch.Seconds())
}

func (t *Tracker) status(points []*point.Point, current int, elapsed float64) Status {
	slideTime, budget := t.slideTime, t.budget
	if current != t.slide {
		slideTime = 0
		budget = SlideBudget(points, current, t.talk-elapsed)
	}
	slideTime += elapsed - t.prev

	st := Status{
		Slide:        current,
		SlideElapsed: slideTime,
		SlideBudget:  budget,
		Remaining:    t.talk - elapsed,
	}
	if slideTime >= budget {
		if t.Autoplay {
			st.Advance = true
		} else {
			st.Overdue = true
		}
	}
	return st
}
