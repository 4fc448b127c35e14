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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDelayPipelineSkip(t *testing.T) {
	p := NewDelayPipeline()
	p.Enqueue(SetBackground{Name: "a"}, 100*time.Millisecond)
	p.Enqueue(SetBackground{Name: "b"}, 0)
	p.Enqueue(SetBackground{Name: "c"}, time.Hour)

	p.Skip()
	want := []Command{
		SetBackground{Name: "a"},
		SetBackground{Name: "b"},
		SetBackground{Name: "c"},
	}
	if diff := cmp.Diff(p.Drain(), want); diff != "" {
		t.Errorf("Drain() diff (-got +want):\n%s", diff)
	}
	if got := p.Len(); got != 0 {
		t.Errorf("Len() = %d after Drain, want 0", got)
	}
}

func TestDelayPipelineClear(t *testing.T) {
	p := NewDelayPipeline()
	p.Enqueue(SetBackground{Name: "a"}, 0)
	p.release(time.Now())
	p.Enqueue(SetBackground{Name: "b"}, 100*time.Millisecond)

	p.Clear()
	if got := p.Drain(); len(got) != 0 {
		t.Errorf("Drain() = %v after Clear, want nothing", got)
	}
	if got := p.Len(); got != 0 {
		t.Errorf("Len() = %d after Clear, want 0", got)
	}
}

func TestDelayPipelineRelease(t *testing.T) {
	p := NewDelayPipeline()
	p.Enqueue(SetBackground{Name: "a"}, 10*time.Millisecond)
	p.Enqueue(SetBackground{Name: "b"}, 0)
	p.Enqueue(SetBackground{Name: "c"}, 20*time.Millisecond)

	t0 := time.Now()
	if got, want := p.release(t0), 10*time.Millisecond; got != want {
		t.Errorf("release(t0) = %v, want %v", got, want)
	}
	if got := p.Drain(); len(got) != 0 {
		t.Errorf("Drain() = %v before any delay elapsed, want nothing", got)
	}

	// c's delay starts when b is released.
	if got, want := p.release(t0.Add(10*time.Millisecond)), 20*time.Millisecond; got != want {
		t.Errorf("release(t0+10ms) = %v, want %v", got, want)
	}
	want := []Command{SetBackground{Name: "a"}, SetBackground{Name: "b"}}
	if diff := cmp.Diff(p.Drain(), want); diff != "" {
		t.Errorf("Drain() diff (-got +want):\n%s", diff)
	}

	if got, want := p.release(t0.Add(30*time.Millisecond)), time.Duration(-1); got != want {
		t.Errorf("release(t0+30ms) = %v, want %v", got, want)
	}
	if diff := cmp.Diff(p.Drain(), []Command{SetBackground{Name: "c"}}); diff != "" {
		t.Errorf("Drain() diff (-got +want):\n%s", diff)
	}
}

func TestDelayPipelineRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewDelayPipeline()
	go p.Run(ctx)

	p.Enqueue(SetBackground{Name: "a"}, 5*time.Millisecond)
	p.Enqueue(SetBackground{Name: "b"}, 5*time.Millisecond)

	var got []Command
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("released %v after 5s, want 2 commands", got)
		}
		got = append(got, p.Drain()...)
		time.Sleep(time.Millisecond)
	}
	want := []Command{SetBackground{Name: "a"}, SetBackground{Name: "b"}}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("released diff (-got +want):\n%s", diff)
	}
}

func TestDelayPipelineEnqueueWhenFull(t *testing.T) {
	p := NewDelayPipeline()
	n := delayQueueLen * 3
	for i := 0; i < n; i++ {
		p.Enqueue(Empty{}, time.Hour)
	}
	// Overflowing commands arrive once the channel has room.
	deadline := time.Now().Add(5 * time.Second)
	for p.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Len() = %d after 5s, want %d", p.Len(), n)
		}
		time.Sleep(time.Millisecond)
	}
	p.Skip()
	if got := len(p.Drain()); got != n {
		t.Errorf("len(Drain()) = %d, want %d", got, n)
	}
}

func TestDelayPipelineClearDropsLateDeliveries(t *testing.T) {
	p := NewDelayPipeline()
	n := delayQueueLen * 3
	for i := 0; i < n; i++ {
		p.Enqueue(Empty{}, time.Hour)
	}
	// Some of these are still waiting to get into the channel.
	p.Clear()
	p.Enqueue(SetBackground{Name: "fresh"}, time.Hour)

	deadline := time.Now().Add(5 * time.Second)
	for p.Len() != 1 || len(p.in) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Len() = %d after 5s, want 1", p.Len())
		}
		time.Sleep(time.Millisecond)
	}
	// Give any remaining deliveries a chance to land.
	for end := time.Now().Add(50 * time.Millisecond); time.Now().Before(end); {
		p.Len()
		time.Sleep(time.Millisecond)
	}
	p.Skip()
	want := []Command{SetBackground{Name: "fresh"}}
	if diff := cmp.Diff(p.Drain(), want); diff != "" {
		t.Errorf("Drain() diff (-got +want):\n%s", diff)
	}
}
