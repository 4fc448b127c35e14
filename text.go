// Copyright 2024 Josh Deprez
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package novel

import (
	"sync"
	"time"
)

// TextAnimator reveals a line of dialogue a step at a time. The reveal runs
// on its own goroutine; the engine collects what to show by polling
// Updates.
type TextAnimator struct {
	mu      sync.Mutex
	full    string
	stops   []int
	pos     int
	running bool
	updates []string
	gen     uint64
}

// Start begins revealing text, one step every speed. A speed of zero or
// less shows the whole line at once. Any reveal in progress is abandoned.
func (a *TextAnimator) Start(text string, speed time.Duration) {
	stops := revealStops(text)

	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.full, a.stops, a.pos = text, stops, 0
	a.updates = a.updates[:0]
	if speed <= 0 || len(stops) <= 1 {
		a.updates = append(a.updates, text)
		a.pos = len(stops)
		a.running = false
		a.mu.Unlock()
		return
	}
	a.running = true
	a.mu.Unlock()

	go a.reveal(gen, speed)
}

func (a *TextAnimator) reveal(gen uint64, speed time.Duration) {
	t := time.NewTicker(speed)
	defer t.Stop()
	for a.step(gen) {
		<-t.C
	}
}

// step publishes the next prefix of the line. It reports whether there is
// more to reveal.
func (a *TextAnimator) step(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen || !a.running {
		return false
	}
	a.updates = append(a.updates, a.full[:a.stops[a.pos]])
	a.pos++
	if a.pos >= len(a.stops) {
		a.running = false
	}
	return a.running
}

// End finishes the reveal immediately: the next Updates returns the whole
// line and nothing after it.
func (a *TextAnimator) End() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.updates = append(a.updates[:0], a.full)
	a.pos = len(a.stops)
	a.running = false
}

// Running reports whether the line is still being revealed.
func (a *TextAnimator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Text returns the full line being revealed.
func (a *TextAnimator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.full
}

// Updates returns the text published since the last call, oldest first.
func (a *TextAnimator) Updates() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.updates) == 0 {
		return nil
	}
	u := a.updates
	a.updates = nil
	return u
}
