/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timing

import (
	"sync"
	"time"
)

// Clock abstracts wall time so stopwatches can be driven by tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Stopwatch measures elapsed time and can be paused and resumed.
type Stopwatch struct {
	mu      sync.Mutex
	clock   Clock
	started time.Time
	banked  time.Duration
	running bool
}

// NewStopwatch returns a stopped stopwatch on clock; nil selects SystemClock.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stopwatch{clock: clock}
}

// Start resets the stopwatch to zero and runs it.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banked = 0
	s.started = s.clock.Now()
	s.running = true
}

// Stop pauses the stopwatch, keeping the elapsed time.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.banked += s.clock.Now().Sub(s.started)
	s.running = false
}

// Continue resumes a paused stopwatch.
func (s *Stopwatch) Continue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.started = s.clock.Now()
	s.running = true
}

// Toggle pauses a running stopwatch or resumes a paused one and reports
// whether it is now running.
func (s *Stopwatch) Toggle() bool {
	if s.Running() {
		s.Stop()
		return false
	}
	s.Continue()
	return true
}

func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Elapsed returns the total running time.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.banked
	if s.running {
		d += s.clock.Now().Sub(s.started)
	}
	return d
}

// Seconds is Elapsed in fractional seconds.
func (s *Stopwatch) Seconds() float64 {
	return s.Elapsed().Seconds()
}
