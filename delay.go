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
	"sync"
	"time"
)

// delayQueueLen is the capacity of a pipeline's input channel.
const delayQueueLen = 10

type delayed struct {
	cmd   Command
	delay time.Duration
	gen   uint64 // Clear generation it was queued in
}

// DelayPipeline holds commands back until their delay has elapsed. Waiting
// happens on the goroutine running Run; commands that are due move to a
// ready list that the engine collects with Drain, so that applying them
// always happens on the engine's goroutine.
//
// Each command's delay starts when the command before it is released.
type DelayPipeline struct {
	in   chan delayed
	wake chan struct{}

	mu        sync.Mutex
	gen       uint64
	pending   []delayed
	headSince time.Time
	ready     []Command
}

// NewDelayPipeline returns a new, empty pipeline. Call Run to start
// releasing commands.
func NewDelayPipeline() *DelayPipeline {
	return &DelayPipeline{
		in:   make(chan delayed, delayQueueLen),
		wake: make(chan struct{}, 1),
	}
}

// Enqueue adds a command to the back of the queue. It never blocks: if the
// input channel is full, a goroutine waits to deliver the command instead.
// A command still being delivered when Clear is called is dropped.
func (p *DelayPipeline) Enqueue(cmd Command, delay time.Duration) {
	p.mu.Lock()
	d := delayed{cmd: cmd, delay: delay, gen: p.gen}
	p.mu.Unlock()
	select {
	case p.in <- d:
		p.notify()
	default:
		go func() {
			p.in <- d
			p.notify()
		}()
	}
}

func (p *DelayPipeline) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// absorb moves everything waiting in the input channel onto the queue,
// dropping commands queued before the last Clear. p.mu must be held.
func (p *DelayPipeline) absorb() {
	for {
		select {
		case d := <-p.in:
			if d.gen != p.gen {
				continue
			}
			p.pending = append(p.pending, d)
		default:
			return
		}
	}
}

// Skip releases every queued command now, in order, ignoring their delays.
func (p *DelayPipeline) Skip() {
	p.mu.Lock()
	p.absorb()
	for _, d := range p.pending {
		p.ready = append(p.ready, d.cmd)
	}
	p.pending = nil
	p.headSince = time.Time{}
	p.mu.Unlock()
	p.notify()
}

// Clear drops every queued command, including released commands that have
// not been drained yet.
func (p *DelayPipeline) Clear() {
	p.mu.Lock()
	p.gen++
	p.pending = nil
	p.ready = nil
	p.headSince = time.Time{}
	p.mu.Unlock()
	p.notify()
}

// Drain returns the commands released since the last call, in order.
func (p *DelayPipeline) Drain() []Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.ready
	p.ready = nil
	return r
}

// Len returns the number of commands queued or released but not drained.
func (p *DelayPipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.absorb()
	return len(p.pending) + len(p.ready)
}

// release moves due commands to the ready list and returns how long until
// the next one is due, or -1 if nothing is queued.
func (p *DelayPipeline) release(now time.Time) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.absorb()
	for len(p.pending) > 0 {
		if p.headSince.IsZero() {
			p.headSince = now
		}
		head := p.pending[0]
		if wait := head.delay - now.Sub(p.headSince); wait > 0 {
			return wait
		}
		p.ready = append(p.ready, head.cmd)
		p.pending = p.pending[1:]
		p.headSince = time.Time{}
	}
	return -1
}

// Run releases commands as their delays elapse, until ctx is done.
func (p *DelayPipeline) Run(ctx context.Context) {
	for {
		var timer *time.Timer
		var due <-chan time.Time
		if wait := p.release(time.Now()); wait >= 0 {
			timer = time.NewTimer(wait)
			due = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-p.wake:
		case <-due:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}
