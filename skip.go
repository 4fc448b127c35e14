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
	"context"
	"sync/atomic"
	"time"
)

// DefaultSkipPeriod is how often skip mode advances.
const DefaultSkipPeriod = 100 * time.Millisecond

// SkipScheduler produces a pulse every period while skip mode is on.
type SkipScheduler struct {
	enabled atomic.Bool
	period  time.Duration
	pulse   chan struct{}
}

// NewSkipScheduler returns a SkipScheduler with skip mode off. A period of
// zero or less means DefaultSkipPeriod.
func NewSkipScheduler(period time.Duration) *SkipScheduler {
	if period <= 0 {
		period = DefaultSkipPeriod
	}
	return &SkipScheduler{
		period: period,
		pulse:  make(chan struct{}, 1),
	}
}

// Enabled reports whether skip mode is on.
func (s *SkipScheduler) Enabled() bool { return s.enabled.Load() }

// Set turns skip mode on or off.
func (s *SkipScheduler) Set(on bool) { s.enabled.Store(on) }

// Toggle flips skip mode and returns the new state.
func (s *SkipScheduler) Toggle() bool {
	for {
		old := s.enabled.Load()
		if s.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// TakePulse consumes a pending pulse. It reports true if there was one and
// skip mode is still on.
func (s *SkipScheduler) TakePulse() bool {
	select {
	case <-s.pulse:
		return s.enabled.Load()
	default:
		return false
	}
}

// Run ticks until ctx is done.
func (s *SkipScheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.enabled.Load() {
				continue
			}
			select {
			case s.pulse <- struct{}{}:
			default:
			}
		}
	}
}
