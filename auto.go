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
	"fmt"
	"sync/atomic"
	"time"
)

// AutoScheduler triggers advancement after a wait that depends on the line
// just shown. Whether auto-play is on is a separate flag, so toggling it
// from the UI never races with the wait computed by the engine.
type AutoScheduler struct {
	enabled atomic.Bool
	stopped atomic.Bool

	// durCh carries the newest wait; a negative wait disarms the timer.
	durCh chan time.Duration
	ready chan struct{}
}

// NewAutoScheduler returns an AutoScheduler with auto-play off. Call Run to
// start its timer.
func NewAutoScheduler() *AutoScheduler {
	return &AutoScheduler{
		durCh: make(chan time.Duration, 1),
		ready: make(chan struct{}, 1),
	}
}

// Enabled reports whether auto-play is on.
func (a *AutoScheduler) Enabled() bool { return a.enabled.Load() }

// Set turns auto-play on or off.
func (a *AutoScheduler) Set(on bool) { a.enabled.Store(on) }

// Toggle flips auto-play and returns the new state.
func (a *AutoScheduler) Toggle() bool {
	for {
		old := a.enabled.Load()
		if a.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Schedule arms the timer to fire after d, replacing any wait already
// armed.
func (a *AutoScheduler) Schedule(d time.Duration) error {
	if a.stopped.Load() {
		return fmt.Errorf("%w: auto scheduler stopped", ErrAuto)
	}
	if d < 0 {
		d = 0
	}
	a.send(d)
	return nil
}

func (a *AutoScheduler) send(d time.Duration) {
	for {
		select {
		case a.durCh <- d:
			return
		default:
		}
		// Drop the stale request; the newest wins.
		select {
		case <-a.durCh:
		default:
		}
	}
}

// Reset disarms the timer without firing it.
func (a *AutoScheduler) Reset() {
	a.send(-1)
	select {
	case <-a.ready:
	default:
	}
}

// TakeReady consumes a pending pulse. It reports true if there was one and
// auto-play is on.
func (a *AutoScheduler) TakeReady() bool {
	select {
	case <-a.ready:
		return a.enabled.Load()
	default:
		return false
	}
}

// Run owns the timer until ctx is done. After Run returns, Schedule fails
// with ErrAuto.
func (a *AutoScheduler) Run(ctx context.Context) {
	defer a.stopped.Store(true)

	var timer *time.Timer
	var fire <-chan time.Time
	disarm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, fire = nil, nil
	}
	defer disarm()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-a.durCh:
			disarm()
			if d >= 0 {
				timer = time.NewTimer(d)
				fire = timer.C
			}
		case <-fire:
			timer, fire = nil, nil
			select {
			case a.ready <- struct{}{}:
			default:
			}
		}
	}
}
